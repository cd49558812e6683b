package tools

import (
	"sync"

	"github.com/jllopis/topomind/pkg/core"
	"github.com/jllopis/topomind/pkg/errors"
)

// SchemaHistory stores historical versions of tool contracts so outputs
// produced under an older schema can still be interpreted after the live
// registry moves on.
type SchemaHistory struct {
	mu      sync.RWMutex
	schemas map[schemaKey]core.Contract
}

type schemaKey struct {
	tool    string
	version string
}

// NewSchemaHistory creates an empty history.
func NewSchemaHistory() *SchemaHistory {
	return &SchemaHistory{schemas: make(map[schemaKey]core.Contract)}
}

// Record stores a contract under its (name, version) pair. Re-recording the
// same pair overwrites; version identity is the caller's responsibility.
func (h *SchemaHistory) Record(contract core.Contract) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.schemas[schemaKey{tool: contract.Name, version: contract.Version}] = contract
}

// Get retrieves a historical contract version.
func (h *SchemaHistory) Get(toolName, version string) (core.Contract, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	contract, ok := h.schemas[schemaKey{tool: toolName, version: version}]
	if !ok {
		return core.Contract{}, errors.Newf(errors.CodeNotFound,
			"no schema recorded for %s@%s", toolName, version)
	}
	return contract, nil
}

// MigrationFunc transforms an output produced under one schema version into
// the shape of another.
type MigrationFunc func(map[string]any) (map[string]any, error)

// SchemaMigrator applies registered migrations to tool outputs across
// schema versions.
type SchemaMigrator struct {
	mu         sync.RWMutex
	migrations map[migrationKey]MigrationFunc
}

type migrationKey struct {
	tool string
	from string
	to   string
}

// NewSchemaMigrator creates an empty migrator.
func NewSchemaMigrator() *SchemaMigrator {
	return &SchemaMigrator{migrations: make(map[migrationKey]MigrationFunc)}
}

// RegisterMigration stores a migration for (tool, from, to).
func (m *SchemaMigrator) RegisterMigration(toolName, fromVersion, toVersion string, fn MigrationFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.migrations[migrationKey{tool: toolName, from: fromVersion, to: toVersion}] = fn
}

// Migrate converts data between schema versions. Identical versions pass
// through unchanged; a missing migration path is CodeNotFound.
func (m *SchemaMigrator) Migrate(toolName, fromVersion, toVersion string, data map[string]any) (map[string]any, error) {
	if fromVersion == toVersion {
		return data, nil
	}
	m.mu.RLock()
	fn, ok := m.migrations[migrationKey{tool: toolName, from: fromVersion, to: toVersion}]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound,
			"no migration path for %s: %s -> %s", toolName, fromVersion, toVersion)
	}
	return fn(data)
}
