package account

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations.
//
// SetBalance and LockForUpdate exist for the transfer engine and must only be used
// inside an atomic unit obtained through WithTx.
type Repository interface {
	Create(ctx context.Context, acc *Account) (int64, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*Account, error)
	GetAll(ctx context.Context) ([]*Account, error)
	Update(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id int64) error

	// LockForUpdate acquires a row lock on the account and returns its current
	// committed state. Values read before the lock are untrusted.
	LockForUpdate(ctx context.Context, id int64) (*Account, error)

	// SetBalance writes newBalance only if the stored balance still equals
	// expectedBalance, returning ErrConcurrentModification otherwise.
	SetBalance(ctx context.Context, id int64, newBalance, expectedBalance decimal.Decimal) error

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account
type ErrAccountNotFound struct {
	ID int64
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + strconv.FormatInt(e.ID, 10)
}

// ErrDuplicateAccountNumber indicates an account number uniqueness violation
type ErrDuplicateAccountNumber struct {
	AccountNumber string
}

func (e ErrDuplicateAccountNumber) Error() string {
	return "account with account number already exists: " + e.AccountNumber
}

// ErrConcurrentModification indicates the stored balance no longer matches the
// value read earlier in the same atomic unit
type ErrConcurrentModification struct {
	ID int64
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + strconv.FormatInt(e.ID, 10)
}

// ErrBalanceNotZero indicates a delete was attempted on an account still holding funds
type ErrBalanceNotZero struct {
	ID int64
}

func (e ErrBalanceNotZero) Error() string {
	return "account balance must be zero to delete: " + strconv.FormatInt(e.ID, 10)
}
