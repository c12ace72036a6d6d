// Package service implements the archiver's event processing: each consumed
// transfer event becomes one document in the history read model.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/securepay/ledger/internal/domain/transfer"
)

// ArchivingServiceImpl implements the ArchivingService interface
type ArchivingServiceImpl struct {
	historyRepo transfer.HistoryRepository
	logger      *slog.Logger
}

// NewArchivingService creates a new archiving service
func NewArchivingService(logger *slog.Logger, historyRepo transfer.HistoryRepository) ArchivingService {
	return &ArchivingServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// ArchiveEvent records one transfer event. Record is idempotent by reference
// number, so redelivered events are safe.
func (s *ArchivingServiceImpl) ArchiveEvent(ctx context.Context, event *transfer.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if err := s.historyRepo.Record(ctx, event); err != nil {
		logger.Error("Failed to record transfer event in history",
			"reference_no", event.ReferenceNo,
			"error", err,
		)
		return fmt.Errorf("failed to record event %s: %w", event.ReferenceNo, err)
	}

	logger.Debug("Archived transfer event", "reference_no", event.ReferenceNo, "status", event.Status)
	return nil
}
