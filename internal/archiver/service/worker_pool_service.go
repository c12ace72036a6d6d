package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/securepay/ledger/internal/domain/transfer"
)

// WorkerPoolArchivingService fans event archiving out over a bounded worker pool
// while keeping the caller's at-least-once semantics: the call returns only once
// the underlying archive attempt finished.
type WorkerPoolArchivingService struct {
	baseService ArchivingService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchivingService(
	baseService ArchivingService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchivingService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchivingService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ArchiveEvent submits the event to the worker pool and waits for the result.
func (s *WorkerPoolArchivingService) ArchiveEvent(ctx context.Context, event *transfer.Event) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Debug("Submitting transfer event to worker pool", "reference_no", event.ReferenceNo)

	resultChan := make(chan error, 1)

	// Copy the event to avoid data races with the caller
	eventCopy := *event

	err := s.pool.Submit(func() {
		resultChan <- s.baseService.ArchiveEvent(ctx, &eventCopy)
		close(resultChan)
	})
	if err != nil {
		close(resultChan)
		logger.Error("Failed to submit transfer event to worker pool",
			"reference_no", event.ReferenceNo,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchivingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchivingService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchivingService) Capacity() int {
	return s.pool.Cap()
}
