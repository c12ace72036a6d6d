package mongo

import (
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securepay/ledger/internal/domain/transfer"
)

func TestNewHistoryRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewHistoryRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &HistoryRepository{}, repo)
}

func TestHistoryDoc_RoundTrip(t *testing.T) {
	event := &transfer.Event{
		ReferenceNo:       "TRF-1-AAAA",
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            decimal.RequireFromString("123.4500"),
		Currency:          "USD",
		Status:            transfer.StatusCompleted,
		CorrelationID:     "corr-1",
		OccurredAt:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	doc := docFromEvent(event)
	assert.Equal(t, "123.4500", doc.Amount, "fixed-point representation survives as a string")
	assert.Equal(t, "Completed", doc.Status)

	restored, err := eventFromDoc(doc)
	require.NoError(t, err)
	assert.Equal(t, event.ReferenceNo, restored.ReferenceNo)
	assert.True(t, event.Amount.Equal(restored.Amount))
	assert.Equal(t, event.Status, restored.Status)
	assert.Equal(t, event.CorrelationID, restored.CorrelationID)
	assert.Equal(t, event.OccurredAt, restored.OccurredAt)
}

func TestHistoryDoc_FailedTransfer(t *testing.T) {
	event := &transfer.Event{
		ReferenceNo:       "TRF-2-BBBB",
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            decimal.NewFromInt(500),
		Currency:          "USD",
		Status:            transfer.StatusFailed,
		FailureReason:     transfer.FailureReasonInsufficientFunds,
		OccurredAt:        time.Now().UTC(),
	}

	restored, err := eventFromDoc(docFromEvent(event))
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusFailed, restored.Status)
	assert.Equal(t, transfer.FailureReasonInsufficientFunds, restored.FailureReason)
}

func TestEventFromDoc_InvalidAmount(t *testing.T) {
	doc := &historyDoc{
		ReferenceNo: "TRF-3-CCCC",
		Amount:      "not-a-number",
	}

	event, err := eventFromDoc(doc)

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "TRF-3-CCCC")
}

func TestIsAlreadyRecorded(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, isAlreadyRecorded(duplicate), "a duplicate reference_no insert is a benign redelivery")

	bulkDuplicate := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: 11000}}},
	}
	assert.True(t, isAlreadyRecorded(bulkDuplicate))

	assert.False(t, isAlreadyRecorded(assert.AnError), "other write failures must surface")
	assert.False(t, isAlreadyRecorded(nil))
}

func TestAccountFilter(t *testing.T) {
	filter := accountFilter(42)

	clauses, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 2, "the account matches as sender or receiver")
	assert.Equal(t, bson.M{"sender_account_id": int64(42)}, clauses[0])
	assert.Equal(t, bson.M{"receiver_account_id": int64(42)}, clauses[1])
}
