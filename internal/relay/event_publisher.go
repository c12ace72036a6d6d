// Package relay drains the transactional outbox: pending rows become messages on
// the transfer event topic, in commit order, with at-least-once delivery.
package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/securepay/ledger/internal/domain/outbox"
	"github.com/securepay/ledger/internal/platform/messaging/producers"
)

// EventPublisher publishes one outbox message to the event topic
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent writes the message payload to the event topic and marks the row
// processed. A payload that cannot be decoded is terminal and goes straight to
// FAILED_TO_PUBLISH; broker failures leave the row pending for the next tick.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		p.logger.Error("Failed to unmarshal transfer event from outbox payload",
			"outbox_id", message.ID, "reference_no", message.ReferenceNo, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	if err := p.producer.Publish(ctx, message.ReferenceNo, event); err != nil {
		return fmt.Errorf("failed to publish outbox %d to event topic: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Event published but failed to mark outbox message as PROCESSED",
			"outbox_id", message.ID, "reference_no", message.ReferenceNo, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.ReferenceNo, message.ID, err)
	}

	logger.Info("Outbox message published and marked as PROCESSED", "outbox_id", message.ID, "reference_no", message.ReferenceNo)
	return nil
}
