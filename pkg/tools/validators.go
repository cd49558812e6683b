package tools

import (
	"sort"
	"strings"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// ArgumentValidator enforces input schemas before any connector runs. It is
// the input firewall: hallucinated or malformed parameters never reach an
// external system. A '?' suffix on a schema spec marks the field optional;
// absence skips its type check entirely. Unknown type specs are tolerated on
// the input side.
type ArgumentValidator struct {
	registry *Registry
}

// NewArgumentValidator creates a validator over the registry.
func NewArgumentValidator(registry *Registry) *ArgumentValidator {
	return &ArgumentValidator{registry: registry}
}

// Validate checks args against the tool's declared input schema. The checks
// run in order: required presence, undeclared fields, per-field types.
// All errors carry CodeValidation and name the offending fields.
func (v *ArgumentValidator) Validate(toolName string, args map[string]any) error {
	schema, err := v.registry.InputSchema(toolName)
	if err != nil {
		return err
	}

	var missing []string
	for field, spec := range schema {
		if isOptionalSpec(spec) {
			continue
		}
		if _, ok := args[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Newf(errors.CodeValidation, "missing required arguments: %s", strings.Join(missing, ", "))
	}

	if err := checkUndeclared(schema, args, "argument"); err != nil {
		return err
	}

	for field, spec := range schema {
		value, present := args[field]
		if !present {
			continue
		}
		matched, known := matchSpec(spec, value)
		if !known {
			continue
		}
		if !matched {
			return errors.Newf(errors.CodeValidation,
				"argument %q expected type %s, got %T", field, baseSpec(spec), value)
		}
	}
	return nil
}

// OutputValidator enforces output schemas after a connector returns. It is
// the output firewall: malformed tool responses never enter memory or the
// planner context. Every declared field is mandatory, undeclared fields are
// rejected, and an unknown type spec is a hard schema error rather than a
// silent pass, so a schema typo surfaces immediately.
type OutputValidator struct {
	registry *Registry
}

// NewOutputValidator creates a validator over the registry.
func NewOutputValidator(registry *Registry) *OutputValidator {
	return &OutputValidator{registry: registry}
}

// Validate checks a connector's raw output against the tool's declared
// output schema. Output must be a mapping.
func (v *OutputValidator) Validate(toolName string, output any) (map[string]any, error) {
	schema, err := v.registry.OutputSchema(toolName)
	if err != nil {
		return nil, err
	}

	fields, ok := output.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.CodeValidation, "tool output must be a mapping, got %T", output)
	}

	var missing []string
	for field := range schema {
		if _, ok := fields[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.Newf(errors.CodeValidation, "missing output fields: %s", strings.Join(missing, ", "))
	}

	if err := checkUndeclared(schema, fields, "output field"); err != nil {
		return nil, err
	}

	for field, spec := range schema {
		value := fields[field]
		matched, known := matchSpec(spec, value)
		if !known {
			return nil, errors.Newf(errors.CodeValidation,
				"unknown type specification %q in output schema of %q", spec, toolName)
		}
		if !matched {
			return nil, errors.Newf(errors.CodeValidation,
				"output field %q expected type %s, got %T", field, baseSpec(spec), value)
		}
	}
	return fields, nil
}

func checkUndeclared(schema core.Schema, fields map[string]any, kind string) error {
	var extra []string
	for field := range fields {
		if _, ok := schema[field]; !ok {
			extra = append(extra, field)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	plural := ""
	if len(extra) > 1 {
		plural = "s"
	}
	return errors.Newf(errors.CodeValidation, "unknown %s%s: %s", kind, plural, strings.Join(extra, ", "))
}
