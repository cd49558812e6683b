package planner

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// AuditEvent records one planning decision for later inspection: which tool
// the engine picked for a turn, with what confidence, and whether the
// decision came from a replan.
type AuditEvent struct {
	TurnID     string
	Input      string
	Tool       string
	Reasoning  string
	Confidence float64
	Replanned  bool
	Status     string
	Error      string
	Args       map[string]any
	CreatedAt  time.Time
}

// Audit event statuses.
const (
	AuditStatusPlanned   = "planned"
	AuditStatusReplanned = "replanned"
	AuditStatusFailed    = "failed"
)

// AuditFilter limits audit event queries.
type AuditFilter struct {
	TurnID string
	Tool   string
	Status string
	Limit  int
}

// AuditStore persists planning decisions.
type AuditStore interface {
	Record(ctx context.Context, event AuditEvent) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
}

// MemoryAuditStore keeps audit events in memory.
type MemoryAuditStore struct {
	mu     sync.Mutex
	events []AuditEvent
}

// NewMemoryAuditStore returns an in-memory audit store.
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

// Record appends an audit event.
func (s *MemoryAuditStore) Record(_ context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns audit events matching the filter in insertion order.
func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AuditEvent
	for _, event := range s.events {
		if !matchesAuditFilter(event, filter) {
			continue
		}
		out = append(out, event)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func matchesAuditFilter(event AuditEvent, filter AuditFilter) bool {
	if filter.TurnID != "" && event.TurnID != filter.TurnID {
		return false
	}
	if filter.Tool != "" && event.Tool != filter.Tool {
		return false
	}
	if filter.Status != "" && event.Status != filter.Status {
		return false
	}
	return true
}

func encodeAuditArgs(args map[string]any) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeAuditArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
