package transfer

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository is the append-only transaction ledger. Entries are immutable once
// appended; there is deliberately no update operation.
type Repository interface {
	// Append stores a finalized entry and assigns its ID. The entry must already
	// carry a terminal status and a reference number.
	Append(ctx context.Context, txn *Transaction) error

	GetByID(ctx context.Context, id int64) (*Transaction, error)
	GetByReferenceNo(ctx context.Context, referenceNo string) (*Transaction, error)
	GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*Transaction, error)
	CountByAccountID(ctx context.Context, accountID int64) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing ledger entry
type ErrTransactionNotFound struct {
	ReferenceNo string
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ReferenceNo
}

// Is lets callers match any ErrTransactionNotFound with an empty target
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.ReferenceNo == "" || t.ReferenceNo == e.ReferenceNo
}

// ErrDuplicateReferenceNo indicates a reference number uniqueness violation
type ErrDuplicateReferenceNo struct {
	ReferenceNo string
}

func (e ErrDuplicateReferenceNo) Error() string {
	return "duplicate transaction reference number: " + e.ReferenceNo
}

// ErrNotFinalized indicates an attempt to append an entry without a terminal status
type ErrNotFinalized struct {
	Status Status
}

func (e ErrNotFinalized) Error() string {
	return "ledger entries must carry a terminal status, got: " + string(e.Status)
}
