// Package consumer bridges the Kafka event topic to the archiving service.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/securepay/ledger/internal/archiver/service"
	"github.com/securepay/ledger/internal/domain/transfer"
	"github.com/securepay/ledger/internal/platform/messaging/producers"
)

// TransferEventHandler handles incoming transfer event messages from Kafka
type TransferEventHandler struct {
	archivingService service.ArchivingService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewTransferEventHandler creates a new handler
func NewTransferEventHandler(
	logger *slog.Logger,
	archivingService service.ArchivingService,
	producer producers.DeadLetterPublisher,
) *TransferEventHandler {
	return &TransferEventHandler{
		archivingService: archivingService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes Kafka messages. Undecodable payloads go to the DLQ so
// the partition is not blocked; archive failures leave the offset uncommitted
// for redelivery.
func (h *TransferEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event transfer.Event
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal transfer event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received transfer event for archiving",
		"reference_no", event.ReferenceNo,
		"status", event.Status,
	)

	if err := h.archivingService.ArchiveEvent(ctx, &event); err != nil {
		logger.Error("Failed to archive transfer event",
			"reference_no", event.ReferenceNo,
			"error", err,
		)
		return fmt.Errorf("archiving event %s failed: %w", event.ReferenceNo, err)
	}

	logger.Info("Successfully archived transfer event", "reference_no", event.ReferenceNo)
	return nil
}
