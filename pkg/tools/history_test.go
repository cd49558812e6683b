package tools

import (
	"testing"

	"github.com/jllopis/topomind/pkg/errors"
)

func TestSchemaHistoryRecordAndGet(t *testing.T) {
	h := NewSchemaHistory()
	h.Record(CalculateContract())

	got, err := h.Get("calculate", "1.1.0")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.OutputSchema["result"] != "string" {
		t.Errorf("unexpected historical schema: %v", got.OutputSchema)
	}

	if _, err := h.Get("calculate", "0.9.0"); errors.CodeOf(err) != errors.CodeNotFound {
		t.Errorf("unknown version should be not found, got %v", err)
	}
}

func TestSchemaMigrator(t *testing.T) {
	m := NewSchemaMigrator()
	m.RegisterMigration("calculate", "1.0.0", "1.1.0", func(data map[string]any) (map[string]any, error) {
		// 1.0.0 emitted {"value": ...}; 1.1.0 renamed it to result.
		return map[string]any{"result": data["value"]}, nil
	})

	migrated, err := m.Migrate("calculate", "1.0.0", "1.1.0", map[string]any{"value": "42"})
	if err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if migrated["result"] != "42" {
		t.Errorf("migrated = %v", migrated)
	}
}

func TestSchemaMigratorIdentity(t *testing.T) {
	m := NewSchemaMigrator()
	data := map[string]any{"result": "x"}

	got, err := m.Migrate("calculate", "1.1.0", "1.1.0", data)
	if err != nil {
		t.Fatalf("Migrate identity: %v", err)
	}
	if got["result"] != "x" {
		t.Errorf("identity migration altered data: %v", got)
	}
}

func TestSchemaMigratorMissingPath(t *testing.T) {
	m := NewSchemaMigrator()
	_, err := m.Migrate("calculate", "1.0.0", "2.0.0", map[string]any{})
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Errorf("missing path should be not found, got %v", err)
	}
}
