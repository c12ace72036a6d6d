package service

import (
	"context"

	"github.com/securepay/ledger/internal/domain/fault"
	"github.com/securepay/ledger/internal/domain/transfer"
	"github.com/securepay/ledger/internal/engine"
)

// TransferServiceImpl implements the TransferService interface
type TransferServiceImpl struct {
	engine     *engine.Engine
	ledgerRepo transfer.Repository
}

// NewTransferService creates a new transfer service
func NewTransferService(eng *engine.Engine, ledgerRepo transfer.Repository) TransferService {
	return &TransferServiceImpl{
		engine:     eng,
		ledgerRepo: ledgerRepo,
	}
}

// Transfer delegates to the transfer engine
func (s *TransferServiceImpl) Transfer(ctx context.Context, req engine.Request) (*engine.Outcome, error) {
	return s.engine.Transfer(ctx, req)
}

// GetTransactionByReferenceNo retrieves a single ledger entry
func (s *TransferServiceImpl) GetTransactionByReferenceNo(ctx context.Context, referenceNo string) (*transfer.Transaction, error) {
	txn, err := s.ledgerRepo.GetByReferenceNo(ctx, referenceNo)
	if err != nil {
		return nil, fault.Classify(err)
	}
	return txn, nil
}

// GetTransactionsByAccountID retrieves a page of ledger entries for an account
func (s *TransferServiceImpl) GetTransactionsByAccountID(ctx context.Context, accountID int64, page, perPage int) ([]*transfer.Transaction, int64, error) {
	offset := (page - 1) * perPage

	txns, err := s.ledgerRepo.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		return nil, 0, fault.Classify(err)
	}

	total, err := s.ledgerRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, 0, fault.Classify(err)
	}

	return txns, total, nil
}
