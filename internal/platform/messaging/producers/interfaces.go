package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of kafka.Writer the producers rely on, extracted
// so tests can substitute an in-memory writer.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessagePublisher publishes transfer events to their primary topic. The key
// is the transfer reference number so events for one transfer stay ordered.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// DeadLetterPublisher routes events that repeatedly fail processing to a
// dead-letter topic along with the reason they were parked.
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}
