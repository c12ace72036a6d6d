package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/securepay/ledger/internal/domain/transfer"
	"github.com/securepay/ledger/internal/platform/persistence"
)

// TransactionRepository implements the transfer.Repository interface for PostgreSQL.
// The transactions table is the authoritative, append-only ledger.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction ledger repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transfer.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the ledger entry commits in the
// same atomic unit as the balance updates it records.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transfer.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append stores a finalized ledger entry and assigns its ID. Entries are immutable
// once appended; callers must never attempt to rewrite one.
func (r *TransactionRepository) Append(ctx context.Context, txn *transfer.Transaction) error {
	if !txn.Status.IsTerminal() {
		return transfer.ErrNotFinalized{Status: txn.Status}
	}

	query := `
		INSERT INTO transactions (sender_account_id, receiver_account_id, amount, type, status, failure_reason, reference_no, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		txn.SenderAccountID,
		txn.ReceiverAccountID,
		txn.Amount,
		txn.Type,
		txn.Status,
		txn.FailureReason,
		txn.ReferenceNo,
		txn.TransactionDate,
	).Scan(&txn.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return transfer.ErrDuplicateReferenceNo{ReferenceNo: txn.ReferenceNo}
		}
		r.logger.Error("Failed to append ledger entry", "reference_no", txn.ReferenceNo, "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transfer.Transaction, error) {
	query := `
		SELECT id, sender_account_id, receiver_account_id, amount, type, status, failure_reason, reference_no, transaction_date
		FROM transactions
		WHERE id = $1
	`

	return r.scanOne(ctx, query, id)
}

// GetByReferenceNo retrieves a ledger entry by its reference number
func (r *TransactionRepository) GetByReferenceNo(ctx context.Context, referenceNo string) (*transfer.Transaction, error) {
	query := `
		SELECT id, sender_account_id, receiver_account_id, amount, type, status, failure_reason, reference_no, transaction_date
		FROM transactions
		WHERE reference_no = $1
	`

	txn, err := r.scanOne(ctx, query, referenceNo)
	if err != nil {
		var notFound transfer.ErrTransactionNotFound
		if errors.As(err, &notFound) {
			return nil, transfer.ErrTransactionNotFound{ReferenceNo: referenceNo}
		}
		return nil, err
	}
	return txn, nil
}

// GetByAccountID retrieves ledger entries touching an account, newest first
func (r *TransactionRepository) GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*transfer.Transaction, error) {
	query := `
		SELECT id, sender_account_id, receiver_account_id, amount, type, status, failure_reason, reference_no, transaction_date
		FROM transactions
		WHERE sender_account_id = $1 OR receiver_account_id = $1
		ORDER BY transaction_date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*transfer.Transaction
	for rows.Next() {
		var txn transfer.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.SenderAccountID,
			&txn.ReceiverAccountID,
			&txn.Amount,
			&txn.Type,
			&txn.Status,
			&txn.FailureReason,
			&txn.ReferenceNo,
			&txn.TransactionDate,
		)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger entries", "error", err)
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}

// CountByAccountID counts ledger entries touching an account
func (r *TransactionRepository) CountByAccountID(ctx context.Context, accountID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE sender_account_id = $1 OR receiver_account_id = $1
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

func (r *TransactionRepository) scanOne(ctx context.Context, query string, arg interface{}) (*transfer.Transaction, error) {
	var txn transfer.Transaction
	err := r.querier.QueryRow(ctx, query, arg).Scan(
		&txn.ID,
		&txn.SenderAccountID,
		&txn.ReceiverAccountID,
		&txn.Amount,
		&txn.Type,
		&txn.Status,
		&txn.FailureReason,
		&txn.ReferenceNo,
		&txn.TransactionDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transfer.ErrTransactionNotFound{}
		}
		r.logger.Error("Failed to get ledger entry", "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &txn, nil
}
