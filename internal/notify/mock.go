package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MockNotifier logs events and keeps them in memory for tests.
type MockNotifier struct {
	Logger zerolog.Logger

	mu     sync.Mutex
	events []Event
}

func (m *MockNotifier) Notify(ctx context.Context, ev Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	m.Logger.Info().
		Str("kind", string(ev.Kind)).
		Str("request_id", ev.RequestID).
		Str("recipient", ev.Recipient).
		Msg("notification")
	return nil
}

func (m *MockNotifier) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
