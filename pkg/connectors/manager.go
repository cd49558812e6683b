// Copyright 2026 © The TopoMind Authors
// SPDX-License-Identifier: Apache-2.0

// Package connectors provides the execution backends tools are bound to and
// the manager that routes tool calls to them. The manager is the final
// boundary between the agent runtime and external systems; it contains no
// execution logic of its own.
package connectors

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// Manager is the connector registry. An owned object passed by reference
// into the executor, guarded by one mutex; safe for registration from a
// live endpoint while turns are running.
type Manager struct {
	mu         sync.RWMutex
	connectors map[string]core.ExecutionConnector
	logger     *slog.Logger
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		connectors: make(map[string]core.ExecutionConnector),
		logger:     slog.Default(),
	}
}

// Register adds a connector under a unique name.
func (m *Manager) Register(name string, connector core.ExecutionConnector) error {
	if name == "" {
		return errors.Newf(errors.CodeValidation, "connector must have a name")
	}
	if connector == nil {
		return errors.Newf(errors.CodeValidation, "connector %q is nil", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.connectors[name]; exists {
		return errors.Newf(errors.CodeValidation, "connector %q already registered", name)
	}
	m.connectors[name] = connector
	return nil
}

// RegisterMany atomically registers multiple connectors: all or none.
func (m *Manager) RegisterMany(connectors map[string]core.ExecutionConnector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, connector := range connectors {
		if name == "" || connector == nil {
			return errors.Newf(errors.CodeValidation, "invalid connector entry %q", name)
		}
		if _, exists := m.connectors[name]; exists {
			return errors.Newf(errors.CodeValidation, "connector %q already registered", name)
		}
	}
	for name, connector := range connectors {
		m.connectors[name] = connector
	}
	return nil
}

// Get retrieves a connector by name.
func (m *Manager) Get(name string) (core.ExecutionConnector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	connector, ok := m.connectors[name]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "connector %q is not registered", name)
	}
	return connector, nil
}

// Has reports whether a connector exists.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.connectors[name]
	return ok
}

// Names returns all registered connector names sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.connectors))
	for name := range m.connectors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered connectors.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connectors)
}

// Health reports per-connector health, keyed by name. Used to detect
// degraded backends before planning leans on them.
func (m *Manager) Health(ctx context.Context) map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.connectors))
	for name, connector := range m.connectors {
		out[name] = connector.Health(ctx)
	}
	return out
}

// ShutdownAll gracefully shuts down every connector. Individual shutdown
// errors are logged, not propagated; shutdown must always complete.
func (m *Manager) ShutdownAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, connector := range m.connectors {
		if err := connector.Shutdown(ctx); err != nil {
			m.logger.Warn("connector shutdown failed",
				slog.String("connector", name),
				slog.String("error", err.Error()),
			)
		}
	}
}
