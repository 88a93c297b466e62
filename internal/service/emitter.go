package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from the surfaces
// ─────────────────────────────────────────────────────────────

// Events the services emit.
const (
	// EventDocumentChanged follows every session mutation. Data: ChangeEvent.
	EventDocumentChanged = "document:changed"
	// EventDocumentSaved follows a successful submit or an outside write to
	// the store. Data: SavedEvent.
	EventDocumentSaved = "document:saved"
)

// ChangeEvent is the payload of EventDocumentChanged.
type ChangeEvent struct {
	Version    uint64 `json:"version"`
	SelectedID string `json:"selectedId"`
}

// SavedEvent is the payload of EventDocumentSaved.
type SavedEvent struct {
	Key    string `json:"key"`
	Blocks int    `json:"blocks"`
	// External is set when the write came from outside this process.
	External bool `json:"external,omitempty"`
}

// EventEmitter is an interface for emitting events to whatever surface is
// attached: the websocket hub, the desktop window, or nothing.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Emitters fans an event out to every member.
type Emitters []EventEmitter

func (e Emitters) Emit(ctx context.Context, event string, data any) {
	for _, em := range e {
		em.Emit(ctx, event, data)
	}
}

// NopEmitter drops every event.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded emissions of one event, in order.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
