package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Event is the message published for every finalized ledger entry. It feeds the
// transfer history read model and any downstream consumers of the event topic.
type Event struct {
	ReferenceNo       string          `json:"reference_no"`
	SenderAccountID   int64           `json:"sender_account_id"`
	ReceiverAccountID int64           `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            Status          `json:"status"`
	FailureReason     FailureReason   `json:"failure_reason,omitempty"`
	CorrelationID     string          `json:"correlation_id,omitempty"`
	OccurredAt        time.Time       `json:"occurred_at"`
}

// NewEvent builds the event for a finalized ledger entry.
func NewEvent(txn *Transaction, currency, correlationID string) *Event {
	return &Event{
		ReferenceNo:       txn.ReferenceNo,
		SenderAccountID:   txn.SenderAccountID,
		ReceiverAccountID: txn.ReceiverAccountID,
		Amount:            txn.Amount,
		Currency:          currency,
		Status:            txn.Status,
		FailureReason:     txn.FailureReason,
		CorrelationID:     correlationID,
		OccurredAt:        txn.TransactionDate,
	}
}

// HistoryRepository is the read model of published transfer events, keyed by
// reference number. It is populated asynchronously by the archiver and is not the
// authoritative ledger.
type HistoryRepository interface {
	// Record stores an event, ignoring duplicates by reference number.
	Record(ctx context.Context, event *Event) error

	GetByReferenceNo(ctx context.Context, referenceNo string) (*Event, error)
	GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*Event, error)
	CountByAccountID(ctx context.Context, accountID int64) (int64, error)
}
