// Package engine implements the transactional funds-transfer engine: the one place
// that validates, debits, credits and records a money movement between two accounts.
// Each Transfer call is a single atomic unit against the store; either both balance
// updates and the ledger entry become visible together, or none do.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/securepay/ledger/internal/domain/account"
	"github.com/securepay/ledger/internal/domain/fault"
	"github.com/securepay/ledger/internal/domain/outbox"
	"github.com/securepay/ledger/internal/domain/transfer"
)

// TxBeginner starts the atomic unit a transfer runs in.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Request carries the inputs of one transfer call.
type Request struct {
	SenderID      int64
	ReceiverID    int64
	Amount        decimal.Decimal
	CorrelationID string
}

// Outcome is the terminal result of a transfer whose attempt was durably recorded.
// A Failed status is an ordinary, auditable business outcome, not an error.
type Outcome struct {
	Status        transfer.Status
	ReferenceNo   string
	FailureReason transfer.FailureReason
}

// Engine orchestrates transfers. It holds no state between calls; all state lives
// in the store, so one instance is safely shared across any number of goroutines.
type Engine struct {
	db          TxBeginner
	accounts    account.Repository
	ledger      transfer.Repository
	outbox      outbox.Repository
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New creates a transfer engine. lockTimeout bounds how long a call waits on the
// account row locks before surfacing a retryable conflict.
func New(
	db TxBeginner,
	accounts account.Repository,
	ledger transfer.Repository,
	outboxRepo outbox.Repository,
	lockTimeout time.Duration,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		db:          db,
		accounts:    accounts,
		ledger:      ledger,
		outbox:      outboxRepo,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Transfer moves req.Amount from the sender to the receiver.
//
// Business rejections (insufficient funds) commit a Failed ledger entry and return
// a nil error: the attempt itself succeeded and is auditable. Illegal input returns
// a Validation error without touching storage, and storage failures roll the unit
// back in full and return a classified error; in both error cases no ledger entry
// is written.
func (e *Engine) Transfer(ctx context.Context, req Request) (outcome *Outcome, err error) {
	logger := e.logger
	if req.CorrelationID != "" {
		logger = e.logger.With("correlation_id", req.CorrelationID)
	}

	// Fail fast before opening an atomic unit.
	if !req.Amount.IsPositive() {
		return nil, fault.New(fault.KindValidation, "amount must be positive")
	}
	// Digits finer than the store's scale would round independently on the debit
	// and credit writes, silently breaking conservation.
	if !account.FitsMoneyScale(req.Amount) {
		return nil, fault.New(fault.KindValidation, "amount cannot have more than 4 decimal places")
	}
	if req.SenderID == req.ReceiverID {
		return nil, fault.New(fault.KindValidation, "self-transfer not allowed")
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin atomic unit for transfer", "error", err)
		return nil, fault.Classify(fmt.Errorf("failed to begin transfer transaction: %w", err))
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back transfer", "panic", p)
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to roll back transfer", "rollback_error", rbErr, "original_error", err)
			}
		}
	}()

	// Bound the wait on row locks; exceeding it surfaces as a retryable conflict.
	if _, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", e.lockTimeout.Milliseconds())); err != nil {
		return nil, fault.Classify(fmt.Errorf("failed to set lock timeout: %w", err))
	}

	accounts := e.accounts.WithTx(tx)

	// Lock both rows in ascending-id order regardless of transfer direction. The
	// fixed global order makes circular wait between concurrent transfers
	// structurally impossible. Balances read before these locks are untrusted.
	firstID, secondID := req.SenderID, req.ReceiverID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	var first, second *account.Account
	if first, err = accounts.LockForUpdate(ctx, firstID); err != nil {
		return nil, fault.Classify(err)
	}
	if second, err = accounts.LockForUpdate(ctx, secondID); err != nil {
		return nil, fault.Classify(err)
	}

	sender, receiver := first, second
	if sender.ID != req.SenderID {
		sender, receiver = second, first
	}

	if sender.Currency != receiver.Currency {
		logger.Warn("Currency mismatch on transfer",
			"sender_id", sender.ID, "sender_currency", sender.Currency,
			"receiver_id", receiver.ID, "receiver_currency", receiver.Currency,
		)
		err = fault.New(fault.KindValidation, "currency mismatch")
		return nil, err
	}

	if !sender.CanDebit(req.Amount) {
		// A business rejection is a successful, recorded outcome: the Failed entry
		// commits so the attempt stays auditable.
		txn := e.newEntry(req, transfer.StatusFailed, transfer.FailureReasonInsufficientFunds)
		if err = e.finalize(ctx, tx, txn, sender.Currency, req.CorrelationID); err != nil {
			return nil, err
		}
		if err = tx.Commit(ctx); err != nil {
			logger.Error("Failed to commit rejected transfer", "reference_no", txn.ReferenceNo, "error", err)
			err = fault.Classify(fmt.Errorf("failed to commit transfer: %w", err))
			return nil, err
		}

		logger.Info("Transfer rejected for insufficient funds",
			"reference_no", txn.ReferenceNo,
			"sender_id", sender.ID,
			"receiver_id", receiver.ID,
		)
		return &Outcome{
			Status:        transfer.StatusFailed,
			ReferenceNo:   txn.ReferenceNo,
			FailureReason: transfer.FailureReasonInsufficientFunds,
		}, nil
	}

	// Debit and credit against the post-lock balances. The expected-value guard is
	// defense in depth on top of the row locks.
	if err = accounts.SetBalance(ctx, sender.ID, sender.Balance.Sub(req.Amount), sender.Balance); err != nil {
		return nil, fault.Classify(err)
	}
	if err = accounts.SetBalance(ctx, receiver.ID, receiver.Balance.Add(req.Amount), receiver.Balance); err != nil {
		return nil, fault.Classify(err)
	}

	txn := e.newEntry(req, transfer.StatusCompleted, "")
	if err = e.finalize(ctx, tx, txn, sender.Currency, req.CorrelationID); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit transfer", "reference_no", txn.ReferenceNo, "error", err)
		err = fault.Classify(fmt.Errorf("failed to commit transfer: %w", err))
		return nil, err
	}

	logger.Info("Transfer completed",
		"reference_no", txn.ReferenceNo,
		"sender_id", sender.ID,
		"receiver_id", receiver.ID,
	)
	return &Outcome{
		Status:      transfer.StatusCompleted,
		ReferenceNo: txn.ReferenceNo,
	}, nil
}

// newEntry builds a finalized ledger entry for the current attempt.
func (e *Engine) newEntry(req Request, status transfer.Status, reason transfer.FailureReason) *transfer.Transaction {
	return &transfer.Transaction{
		SenderAccountID:   req.SenderID,
		ReceiverAccountID: req.ReceiverID,
		Amount:            req.Amount,
		Type:              transfer.TypeTransfer,
		Status:            status,
		FailureReason:     reason,
		ReferenceNo:       transfer.NewReferenceNo(),
		TransactionDate:   time.Now().UTC(),
	}
}

// finalize appends the ledger entry and its outbox event inside the atomic unit.
func (e *Engine) finalize(ctx context.Context, tx pgx.Tx, txn *transfer.Transaction, currency, correlationID string) error {
	if err := e.ledger.WithTx(tx).Append(ctx, txn); err != nil {
		return fault.Classify(err)
	}

	message, err := outbox.NewMessage(transfer.NewEvent(txn, currency, correlationID))
	if err != nil {
		return fault.Classify(fmt.Errorf("failed to build transfer event: %w", err))
	}
	if err := e.outbox.WithTx(tx).Create(ctx, message); err != nil {
		return fault.Classify(err)
	}

	return nil
}
