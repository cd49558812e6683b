package core

import (
	"context"
	"time"
)

// Schema maps field names to type specs. Supported specs: "string", "int",
// "float", "bool", "dict", "list", "list[number]", "list[string]", and "any".
// A trailing "?" marks a field optional; it is honored on input schemas only.
type Schema map[string]string

// Contract describes a tool: its schemas, the connector that executes it,
// and its execution policy. The executor treats contracts as immutable.
type Contract struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema    Schema   `json:"input_schema" yaml:"input_schema"`
	OutputSchema   Schema   `json:"output_schema" yaml:"output_schema"`
	ConnectorName  string   `json:"connector" yaml:"connector"`
	Version        string   `json:"version,omitempty" yaml:"version,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	Retryable      bool     `json:"retryable,omitempty" yaml:"retryable,omitempty"`
	MaxRetries     int      `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`
	SideEffect     bool     `json:"side_effect,omitempty" yaml:"side_effect,omitempty"`
	Tags           []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Timeout returns the per-attempt execution budget.
func (c Contract) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Equal reports whether two contracts are identical field for field.
// Used by the registry to detect no-op re-registrations.
func (c Contract) Equal(other Contract) bool {
	if c.Name != other.Name ||
		c.Description != other.Description ||
		c.ConnectorName != other.ConnectorName ||
		c.Version != other.Version ||
		c.TimeoutSeconds != other.TimeoutSeconds ||
		c.Retryable != other.Retryable ||
		c.MaxRetries != other.MaxRetries ||
		c.SideEffect != other.SideEffect {
		return false
	}
	if !schemaEqual(c.InputSchema, other.InputSchema) ||
		!schemaEqual(c.OutputSchema, other.OutputSchema) {
		return false
	}
	if len(c.Tags) != len(other.Tags) {
		return false
	}
	for i, tag := range c.Tags {
		if other.Tags[i] != tag {
			return false
		}
	}
	return true
}

func schemaEqual(a, b Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// ExecutionConnector is the boundary between agent cognition and external
// systems. Implementations must respect ctx and the timeout, return a
// timeout-coded error on expiry, and never mutate args.
type ExecutionConnector interface {
	// Execute runs the tool described by contract and returns its raw
	// output (a mapping or a scalar) for output validation.
	Execute(ctx context.Context, contract Contract, args map[string]any, timeout time.Duration) (any, error)

	// Health reports whether the backing system is reachable.
	Health(ctx context.Context) bool

	// Shutdown gracefully releases external resources.
	Shutdown(ctx context.Context) error
}
