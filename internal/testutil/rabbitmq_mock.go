package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// PublishedEvent represents an event that was published to RabbitMQ
type PublishedEvent struct {
	RoutingKey string
	EventData  interface{}
	Timestamp  time.Time
	RawJSON    []byte
}

// MockPublisher stores published events in memory instead of talking to
// RabbitMQ. It satisfies messaging.PublisherInterface.
type MockPublisher struct {
	mu     sync.RWMutex
	events []PublishedEvent
}

// NewMockPublisher creates a new mock RabbitMQ publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		events: make([]PublishedEvent, 0),
	}
}

// Publish stores an event in memory (no real RabbitMQ call)
func (m *MockPublisher) Publish(ctx context.Context, routingKey string, eventData interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	m.events = append(m.events, PublishedEvent{
		RoutingKey: routingKey,
		EventData:  eventData,
		Timestamp:  time.Now(),
		RawJSON:    jsonData,
	})
	return nil
}

// Close is a no-op for mock publisher
func (m *MockPublisher) Close() error {
	return nil
}

// GetAllEvents returns a copy of all published events
func (m *MockPublisher) GetAllEvents() []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	eventsCopy := make([]PublishedEvent, len(m.events))
	copy(eventsCopy, m.events)
	return eventsCopy
}

// GetEventsByKey returns all events with the specified routing key
func (m *MockPublisher) GetEventsByKey(routingKey string) []PublishedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []PublishedEvent
	for _, event := range m.events {
		if event.RoutingKey == routingKey {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// GetEventCount returns the total number of events published
func (m *MockPublisher) GetEventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// Reset clears all published events (for test cleanup)
func (m *MockPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make([]PublishedEvent, 0)
}

// AssertEventPublished asserts that at least one event with the given routing key was published
func (m *MockPublisher) AssertEventPublished(t *testing.T, routingKey string) {
	t.Helper()

	if len(m.GetEventsByKey(routingKey)) == 0 {
		t.Errorf("Expected at least one %q event, got none", routingKey)
	}
}
