package transfer

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, Status("Unknown").IsTerminal())
}

func TestNewReferenceNo(t *testing.T) {
	t.Run("Format", func(t *testing.T) {
		refNo := NewReferenceNo()
		assert.Regexp(t, regexp.MustCompile(`^TRF-\d+-[0-9A-F]{12}$`), refNo)
	})

	t.Run("Unique", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 1000; i++ {
			refNo := NewReferenceNo()
			_, dup := seen[refNo]
			require.False(t, dup, "duplicate reference number: %s", refNo)
			seen[refNo] = struct{}{}
		}
	})
}

func TestNewEvent(t *testing.T) {
	txn := &Transaction{
		ID:                42,
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            decimal.NewFromFloat(25.75),
		Type:              TypeTransfer,
		Status:            StatusFailed,
		FailureReason:     FailureReasonInsufficientFunds,
		ReferenceNo:       "TRF-1-ABCDEF123456",
		TransactionDate:   time.Now().UTC(),
	}

	event := NewEvent(txn, "EUR", "corr-123")

	assert.Equal(t, txn.ReferenceNo, event.ReferenceNo)
	assert.Equal(t, txn.SenderAccountID, event.SenderAccountID)
	assert.Equal(t, txn.ReceiverAccountID, event.ReceiverAccountID)
	assert.True(t, txn.Amount.Equal(event.Amount))
	assert.Equal(t, "EUR", event.Currency)
	assert.Equal(t, StatusFailed, event.Status)
	assert.Equal(t, FailureReasonInsufficientFunds, event.FailureReason)
	assert.Equal(t, "corr-123", event.CorrelationID)
	assert.Equal(t, txn.TransactionDate, event.OccurredAt)
}

func TestErrTransactionNotFound_Is(t *testing.T) {
	err := error(ErrTransactionNotFound{ReferenceNo: "TRF-1-AAAA"})

	assert.True(t, errors.Is(err, ErrTransactionNotFound{}), "empty target matches any reference")
	assert.True(t, errors.Is(err, ErrTransactionNotFound{ReferenceNo: "TRF-1-AAAA"}))
	assert.False(t, errors.Is(err, ErrTransactionNotFound{ReferenceNo: "TRF-2-BBBB"}))
}
