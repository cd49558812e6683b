package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	cause := stderrors.New("boom")
	err := New(CodeToolFailure, "tool exploded", cause)

	msg := err.Error()
	if !strings.Contains(msg, "TOOL_FAILURE") {
		t.Errorf("expected code in message, got %q", msg)
	}
	if !strings.Contains(msg, "boom") {
		t.Errorf("expected cause in message, got %q", msg)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root")
	err := New(CodeInternal, "wrapper", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, ""},
		{"typed", Newf(CodeValidation, "bad field"), CodeValidation},
		{"untyped", stderrors.New("plain"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(Newf(CodeTimeout, "too slow")) {
		t.Error("expected timeout detection for CodeTimeout")
	}
	if IsTimeout(Newf(CodeToolFailure, "other")) {
		t.Error("did not expect timeout detection for CodeToolFailure")
	}
}

func TestWithContextChaining(t *testing.T) {
	err := Newf(CodeValidation, "missing field").
		WithContext("field", "text").
		WithRecoverable(false)

	if err.Context["field"] != "text" {
		t.Errorf("expected context to carry field name")
	}
	if err.Recoverable {
		t.Error("expected recoverable=false")
	}
}
