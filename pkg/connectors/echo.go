package connectors

import (
	"context"
	"time"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// EchoConnector is a deterministic connector that reflects its input. It
// backs the echo tool and serves as an end-to-end pipeline smoke check.
type EchoConnector struct{}

// NewEchoConnector creates the connector.
func NewEchoConnector() *EchoConnector { return &EchoConnector{} }

// Execute returns the text argument unchanged.
func (c *EchoConnector) Execute(ctx context.Context, contract core.Contract, args map[string]any, timeout time.Duration) (any, error) {
	text, _ := args["text"].(string)
	if contract.Name != "echo" {
		return nil, errors.Newf(errors.CodeToolFailure, "echo connector cannot execute %q", contract.Name)
	}
	return map[string]any{"text": text}, nil
}

// Health always reports healthy; there is no external system.
func (c *EchoConnector) Health(ctx context.Context) bool { return true }

// Shutdown is a no-op.
func (c *EchoConnector) Shutdown(ctx context.Context) error { return nil }
