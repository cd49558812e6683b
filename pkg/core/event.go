package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted during a cognitive turn.
type EventType string

const (
	EventTurnStarted     EventType = "turn.started"
	EventPlanGenerated   EventType = "turn.plan.generated"
	EventToolExecuted    EventType = "turn.tool.executed"
	EventReplanTriggered EventType = "turn.replan.triggered"
	EventMemoryPruned    EventType = "memory.pruned"
	EventTurnError       EventType = "turn.error"
)

// Event captures a semantic logging/streaming event.
type Event struct {
	Type      EventType
	TurnID    string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter is a default no-op implementation.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// NewEvent builds an event stamped with the current UTC time.
func NewEvent(eventType EventType, turnID string, payload map[string]any) Event {
	return Event{
		Type:      eventType,
		TurnID:    turnID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
