package service

import (
	"context"

	"github.com/securepay/ledger/internal/domain/fault"
	"github.com/securepay/ledger/internal/domain/transfer"
)

// HistoryServiceImpl implements the HistoryService interface
type HistoryServiceImpl struct {
	historyRepo transfer.HistoryRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(historyRepo transfer.HistoryRepository) HistoryService {
	return &HistoryServiceImpl{
		historyRepo: historyRepo,
	}
}

// GetHistoryByAccountID retrieves a page of archived transfer events for an account
func (s *HistoryServiceImpl) GetHistoryByAccountID(ctx context.Context, accountID int64, page, perPage int) ([]*transfer.Event, int64, error) {
	offset := (page - 1) * perPage

	events, err := s.historyRepo.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, fault.Classify(err)
	}

	total, err := s.historyRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, fault.Classify(err)
	}

	return events, total, nil
}
