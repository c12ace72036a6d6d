// Package postgres provides PostgreSQL implementations of the domain repositories.
// It handles all database operations while maintaining transaction safety and
// proper error handling for the ledger service.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/platform/persistence"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls. The returned repository will use the provided
// transaction for all database operations.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new account and returns its store-assigned ID. A unique
// constraint on account_number guards against duplicates.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) (int64, error) {
	query := `
		INSERT INTO accounts (customer_name, account_number, balance, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		acc.CustomerName,
		acc.AccountNumber,
		acc.Balance,
		acc.Currency,
		acc.CreatedAt,
	).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, account.ErrDuplicateAccountNumber{AccountNumber: acc.AccountNumber}
		}
		r.logger.Error("Failed to create account", "error", err)
		return 0, fmt.Errorf("failed to create account: %w", err)
	}

	return acc.ID, nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT id, customer_name, account_number, balance, currency, created_at
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.CustomerName,
		&acc.AccountNumber,
		&acc.Balance,
		&acc.Currency,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{ID: id}
		}
		r.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acc, nil
}

// GetByNumber retrieves an account by its externally visible account number
func (r *AccountRepository) GetByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	query := `
		SELECT id, customer_name, account_number, balance, currency, created_at
		FROM accounts
		WHERE account_number = $1
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, accountNumber).Scan(
		&acc.ID,
		&acc.CustomerName,
		&acc.AccountNumber,
		&acc.Balance,
		&acc.Currency,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{}
		}
		r.logger.Error("Failed to get account by number", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}

	return &acc, nil
}

// GetAll retrieves every account ordered by ID
func (r *AccountRepository) GetAll(ctx context.Context) ([]*account.Account, error) {
	query := `
		SELECT id, customer_name, account_number, balance, currency, created_at
		FROM accounts
		ORDER BY id ASC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list accounts", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var acc account.Account
		err := rows.Scan(
			&acc.ID,
			&acc.CustomerName,
			&acc.AccountNumber,
			&acc.Balance,
			&acc.Currency,
			&acc.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// Update writes the mutable fields of an account. Account number, currency and
// balance are deliberately not written: the first two are immutable and the balance
// changes only through SetBalance inside an atomic unit.
func (r *AccountRepository) Update(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET customer_name = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, acc.CustomerName, acc.ID)
	if err != nil {
		r.logger.Error("Failed to update account", "id", acc.ID, "error", err)
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{ID: acc.ID}
	}

	return nil
}

// Delete removes an account, but only when its balance is zero. A non-zero balance
// surfaces as ErrBalanceNotZero so callers can distinguish it from a missing account.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM accounts
		WHERE id = $1 AND balance = 0
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete account", "id", id, "error", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return account.ErrBalanceNotZero{ID: id}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its current
// state. This must be used within a transaction; the wait is bounded by the
// lock_timeout set on that transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT id, customer_name, account_number, balance, currency, created_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	var acc account.Account
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&acc.ID,
		&acc.CustomerName,
		&acc.AccountNumber,
		&acc.Balance,
		&acc.Currency,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{ID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return &acc, nil
}

// SetBalance writes the new balance only if the stored balance still equals the
// expected value read moments earlier in the same atomic unit. A mismatch means a
// concurrent writer bypassed the engine's lock and returns ErrConcurrentModification.
func (r *AccountRepository) SetBalance(ctx context.Context, id int64, newBalance, expectedBalance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1
		WHERE id = $2 AND balance = $3
	`

	result, err := r.querier.Exec(ctx, query, newBalance, id, expectedBalance)
	if err != nil {
		r.logger.Error("Failed to set account balance", "id", id, "error", err)
		return fmt.Errorf("failed to set account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{ID: id}
	}

	return nil
}
