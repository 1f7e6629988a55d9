package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory records published messages in process.
type Memory struct {
	mu       sync.Mutex
	seq      int
	closed   bool
	messages map[string][]OutgoingMessage
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{messages: map[string][]OutgoingMessage{}}
}

// Publish stores msg under destination.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}

	m.seq++
	m.messages[destination] = append(m.messages[destination], msg)

	return PublishResult{
		MessageID: strconv.Itoa(m.seq),
		Topic:     destination,
		Timestamp: time.Now(),
	}, nil
}

// Messages returns a copy of what was published to destination.
func (m *Memory) Messages(destination string) []OutgoingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]OutgoingMessage(nil), m.messages[destination]...)
}

// Close marks the publisher closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
