package tools

import (
	"reflect"
	"strings"
)

// Type specs understood by the validators. A trailing '?' marks an
// input-schema field optional; output schemas have no optional concept.
//
//	string, int, float, bool, dict, list
//	list[number], list[string]
//	any
//
// "int" never matches a bool, and for JSON-decoded data it also accepts a
// float64 carrying a whole number, since encoding/json decodes every JSON
// number to float64.
const (
	specString     = "string"
	specInt        = "int"
	specFloat      = "float"
	specBool       = "bool"
	specDict       = "dict"
	specList       = "list"
	specListNumber = "list[number]"
	specListString = "list[string]"
	specAny        = "any"
)

// isOptionalSpec reports whether an input-schema spec carries the '?' marker.
func isOptionalSpec(spec string) bool {
	return strings.HasSuffix(spec, "?")
}

// baseSpec strips the optionality marker and normalizes case.
func baseSpec(spec string) string {
	return strings.ToLower(strings.TrimSuffix(spec, "?"))
}

// matchSpec reports whether value satisfies the type spec. The second return
// is false when the spec itself is unknown; the caller decides whether that
// is tolerated (input side) or a schema error (output side).
func matchSpec(spec string, value any) (matched, known bool) {
	switch baseSpec(spec) {
	case specString:
		_, ok := value.(string)
		return ok, true
	case specInt:
		return isInteger(value), true
	case specFloat:
		return isNumber(value), true
	case specBool:
		_, ok := value.(bool)
		return ok, true
	case specDict:
		if value == nil {
			return false, true
		}
		return reflect.TypeOf(value).Kind() == reflect.Map, true
	case specList:
		return isSlice(value), true
	case specListNumber:
		return sliceOf(value, isNumber), true
	case specListString:
		return sliceOf(value, func(v any) bool {
			_, ok := v.(string)
			return ok
		}), true
	case specAny:
		return true, true
	default:
		return false, false
	}
}

func isInteger(value any) bool {
	switch v := value.(type) {
	case bool:
		return false
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return v == float64(int64(v))
	case float32:
		return float64(v) == float64(int64(v))
	default:
		return false
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case bool:
		return false
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func isSlice(value any) bool {
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func sliceOf(value any, elem func(any) bool) bool {
	if !isSlice(value) {
		return false
	}
	rv := reflect.ValueOf(value)
	for i := 0; i < rv.Len(); i++ {
		if !elem(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}
