// Package transfer holds the ledger entry model for funds transfers and the
// reference-number scheme used to make finalized entries traceable.
package transfer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type defines the transaction type. The core engine only moves funds between two
// accounts, so every entry it writes is a Transfer.
type Type string

const (
	TypeTransfer Type = "Transfer"
)

// Status defines the transaction lifecycle states. Pending exists only inside the
// engine's atomic unit; every persisted entry carries a terminal status.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// FailureReason categorizes business rejections recorded on Failed entries.
type FailureReason string

const (
	FailureReasonInsufficientFunds FailureReason = "InsufficientFunds"
)

// Transaction is one ledger entry: the immutable record of a transfer attempt and
// its terminal outcome. ID is assigned by the store; ReferenceNo is assigned when
// the entry is finalized.
type Transaction struct {
	ID                int64           `json:"id"`
	SenderAccountID   int64           `json:"senderAccountId"`
	ReceiverAccountID int64           `json:"receiverAccountId"`
	Amount            decimal.Decimal `json:"amount"`
	Type              Type            `json:"type"`
	Status            Status          `json:"status"`
	FailureReason     FailureReason   `json:"failureReason,omitempty"`
	ReferenceNo       string          `json:"referenceNo"`
	TransactionDate   time.Time       `json:"transactionDate"`
}

// IsTerminal reports whether the status is one of the two terminal states.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var referenceSeq atomic.Uint64

// NewReferenceNo produces a collision-resistant reference number: a process-local
// monotonic counter combined with a random suffix. The counter gives ordering within
// a process, the suffix keeps numbers unique across processes and restarts.
func NewReferenceNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("TRF-%d-%s", referenceSeq.Add(1), suffix)
}
