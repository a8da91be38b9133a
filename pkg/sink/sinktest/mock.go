// Package sinktest provides a testify mock of sink.Sink.
package sinktest

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/invisible-tech/aicompliance/pkg/sink"
)

// MockSink is a mock implementation of sink.Sink that also keeps every
// recorded event for inspection.
type MockSink struct {
	mock.Mock

	mu     sync.Mutex
	events []*sink.Event
}

// RecordEvent records ev and returns the error configured with On.
func (m *MockSink) RecordEvent(ctx context.Context, ev *sink.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// Events returns the recorded events.
func (m *MockSink) Events() []*sink.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*sink.Event, len(m.events))
	copy(out, m.events)
	return out
}

// ForService returns the recorded events for one service.
func (m *MockSink) ForService(service string) []*sink.Event {
	var out []*sink.Event
	for _, ev := range m.Events() {
		if ev.Service == service {
			out = append(out, ev)
		}
	}
	return out
}

// NewAccepting returns a MockSink that accepts any event.
func NewAccepting() *MockSink {
	m := new(MockSink)
	m.On("RecordEvent", mock.Anything, mock.Anything).Return(nil)
	return m
}
