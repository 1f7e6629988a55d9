package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when Publish is called without a topic/subject.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned when publishing through a closed publisher.
	ErrClosed = errors.New("messaging: publisher is closed")
)

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message.
type OutgoingMessage struct {
	Body []byte
	// Key is used by Kafka for partitioning and by Pub/Sub as ordering key.
	Key     []byte
	Headers []Header
}

// Header is a key/value pair carried with a message. Pub/Sub receives
// headers as string attributes.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported back, when anything.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

func headerMap(headers []Header) map[string]string {
	if len(headers) == 0 {
		return nil
	}

	out := make(map[string]string, len(headers))
	for _, h := range headers {
		if h.Key == "" {
			continue
		}
		out[h.Key] = string(h.Value)
	}
	return out
}
