package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records events in memory
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

// FailWith makes every subsequent publish return err
func (m *MockEventPublisher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockEventPublisher) record(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	m.logger.Debug("Mock event recorded", "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) PublishUserCreated(ctx context.Context, event UserCreatedEvent) error {
	return m.record(newEvent(TypeUserCreated, event))
}

func (m *MockEventPublisher) PublishUserRoleChanged(ctx context.Context, event UserRoleChangedEvent) error {
	return m.record(newEvent(TypeUserRoleChanged, event))
}

func (m *MockEventPublisher) PublishUserArchived(ctx context.Context, event UserArchivedEvent) error {
	return m.record(newEvent(TypeUserArchived, event))
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of everything published so far
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
