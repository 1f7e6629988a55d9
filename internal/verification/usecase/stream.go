package usecase

import (
	"context"

	"github.com/Trkzi-Omar/abdullahalhoothy-FrontEnd-sub001/internal/verification/entity"
)

// EventType names what an Event carries.
type EventType string

const (
	EventSession EventType = "session"
	EventToast   EventType = "toast"
)

// Event is a session change or a toast, delivered to subscribers in the
// order the coordinator produced them.
type Event struct {
	Type    EventType
	Session entity.Session
	Toast   entity.Toast
}

const subscriberBuffer = 16

type subscriber struct {
	ch chan Event
}

// Subscribe streams coordinator events until ctx is done, then closes the
// channel. The current session is delivered first. A subscriber that falls
// behind misses events instead of blocking the coordinator.
func (c *Coordinator) Subscribe(ctx context.Context) <-chan Event {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	c.mu.Lock()
	sub.ch <- Event{Type: EventSession, Session: c.session}
	c.streamMu.Lock()
	c.subscribers[sub] = struct{}{}
	c.streamMu.Unlock()
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.streamMu.Lock()
		delete(c.subscribers, sub)
		close(sub.ch)
		c.streamMu.Unlock()
	}()

	return sub.ch
}

func (c *Coordinator) broadcast(evt Event) {
	c.streamMu.RLock()
	defer c.streamMu.RUnlock()

	for sub := range c.subscribers {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}
