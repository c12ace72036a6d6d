package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/domain/transfer"
	"github.com/securepay/ledger/internal/engine"
)

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account with the given details
	// Returns a DuplicateKey fault if the account number is already taken
	CreateAccount(ctx context.Context, customerName, accountNumber string, initialBalance decimal.Decimal, currency string) (*account.Account, error)

	// GetAccountByID retrieves an account by its store-assigned ID
	GetAccountByID(ctx context.Context, id int64) (*account.Account, error)

	// GetAccountByNumber retrieves an account by its business account number
	GetAccountByNumber(ctx context.Context, accountNumber string) (*account.Account, error)

	// GetAllAccounts retrieves every account
	GetAllAccounts(ctx context.Context) ([]*account.Account, error)

	// UpdateAccount renames the account holder. Account number, currency and
	// balance are immutable through this path.
	UpdateAccount(ctx context.Context, id int64, customerName string) (*account.Account, error)

	// DeleteAccount removes an account whose balance is zero
	DeleteAccount(ctx context.Context, id int64) error
}

// TransferService defines the interface for funds-transfer operations
type TransferService interface {
	// Transfer moves funds between two accounts as one atomic unit. A Failed
	// outcome with a nil error is a recorded business rejection, not a fault.
	Transfer(ctx context.Context, req engine.Request) (*engine.Outcome, error)

	// GetTransactionByReferenceNo retrieves a single ledger entry
	GetTransactionByReferenceNo(ctx context.Context, referenceNo string) (*transfer.Transaction, error)

	// GetTransactionsByAccountID retrieves a page of ledger entries where the
	// account is sender or receiver, newest first, with the total count
	GetTransactionsByAccountID(ctx context.Context, accountID int64, page, perPage int) ([]*transfer.Transaction, int64, error)
}

// HistoryService exposes the asynchronously-built transfer history read model
type HistoryService interface {
	// GetHistoryByAccountID retrieves a page of archived transfer events for an
	// account, newest first, with the total count
	GetHistoryByAccountID(ctx context.Context, accountID int64, page, perPage int) ([]*transfer.Event, int64, error)
}
