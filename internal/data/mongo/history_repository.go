// Package mongo provides the MongoDB implementation of the transfer history read
// model. It stores the events published by the ledger service, keyed by reference
// number; the authoritative ledger lives in PostgreSQL.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/securepay/ledger/internal/domain/transfer"
)

const (
	// HistoryCollectionName is the name of the transfer history collection
	HistoryCollectionName = "transfer_history"
)

// historyDoc is the persisted shape of a transfer event. Amounts are stored as
// strings to keep their fixed-point representation exact in BSON.
type historyDoc struct {
	ReferenceNo       string    `bson:"reference_no"`
	SenderAccountID   int64     `bson:"sender_account_id"`
	ReceiverAccountID int64     `bson:"receiver_account_id"`
	Amount            string    `bson:"amount"`
	Currency          string    `bson:"currency"`
	Status            string    `bson:"status"`
	FailureReason     string    `bson:"failure_reason,omitempty"`
	CorrelationID     string    `bson:"correlation_id,omitempty"`
	OccurredAt        time.Time `bson:"occurred_at"`
}

// HistoryRepository implements the transfer.HistoryRepository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB transfer history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) transfer.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Record stores a transfer event. Events are delivered at least once; the unique
// index on reference_no makes a redelivered event a no-op, even when two
// consumers insert the same reference concurrently.
func (r *HistoryRepository) Record(ctx context.Context, event *transfer.Event) error {
	collection := r.db.Collection(HistoryCollectionName)

	if _, err := collection.InsertOne(ctx, docFromEvent(event)); err != nil {
		if isAlreadyRecorded(err) {
			r.logger.Debug("History record already exists, skipping", "reference_no", event.ReferenceNo)
			return nil
		}
		r.logger.Error("Failed to record transfer history",
			"reference_no", event.ReferenceNo,
			"error", err)
		return fmt.Errorf("failed to record transfer history: %w", err)
	}

	return nil
}

// isAlreadyRecorded reports whether an insert failed only because the event's
// reference number was recorded before.
func isAlreadyRecorded(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// EnsureHistoryIndexes creates the unique reference_no index Record's
// idempotency relies on. Index creation is idempotent, so this runs on every
// archiver startup.
func EnsureHistoryIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(HistoryCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference_no", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique reference_no index: %w", err)
	}
	return nil
}

// GetByReferenceNo retrieves a history record by its reference number.
// Returns ErrTransactionNotFound if no record exists.
func (r *HistoryRepository) GetByReferenceNo(ctx context.Context, referenceNo string) (*transfer.Event, error) {
	collection := r.db.Collection(HistoryCollectionName)

	var doc historyDoc
	err := collection.FindOne(ctx, bson.M{"reference_no": referenceNo}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, transfer.ErrTransactionNotFound{ReferenceNo: referenceNo}
		}
		r.logger.Error("Failed to get history record",
			"reference_no", referenceNo,
			"error", err)
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}

	return eventFromDoc(&doc)
}

// GetByAccountID retrieves history records touching an account, newest first
func (r *HistoryRepository) GetByAccountID(ctx context.Context, accountID int64, limit, offset int) ([]*transfer.Event, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := accountFilter(accountID)
	findOptions := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.logger.Error("Failed to list history records", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*transfer.Event
	for cursor.Next(ctx) {
		var doc historyDoc
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode history record", "error", err)
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		event, err := eventFromDoc(&doc)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := cursor.Err(); err != nil {
		r.logger.Error("Error iterating over history records", "error", err)
		return nil, fmt.Errorf("error iterating over history records: %w", err)
	}

	return events, nil
}

// CountByAccountID counts history records touching an account
func (r *HistoryRepository) CountByAccountID(ctx context.Context, accountID int64) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	count, err := collection.CountDocuments(ctx, accountFilter(accountID))
	if err != nil {
		r.logger.Error("Failed to count history records", "account_id", accountID, "error", err)
		return 0, fmt.Errorf("failed to count history records: %w", err)
	}

	return count, nil
}

func accountFilter(accountID int64) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{"sender_account_id": accountID},
			bson.M{"receiver_account_id": accountID},
		},
	}
}

func docFromEvent(event *transfer.Event) *historyDoc {
	return &historyDoc{
		ReferenceNo:       event.ReferenceNo,
		SenderAccountID:   event.SenderAccountID,
		ReceiverAccountID: event.ReceiverAccountID,
		Amount:            event.Amount.String(),
		Currency:          event.Currency,
		Status:            string(event.Status),
		FailureReason:     string(event.FailureReason),
		CorrelationID:     event.CorrelationID,
		OccurredAt:        event.OccurredAt,
	}
}

func eventFromDoc(doc *historyDoc) (*transfer.Event, error) {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount in history record %s: %w", doc.ReferenceNo, err)
	}

	return &transfer.Event{
		ReferenceNo:       doc.ReferenceNo,
		SenderAccountID:   doc.SenderAccountID,
		ReceiverAccountID: doc.ReceiverAccountID,
		Amount:            amount,
		Currency:          doc.Currency,
		Status:            transfer.Status(doc.Status),
		FailureReason:     transfer.FailureReason(doc.FailureReason),
		CorrelationID:     doc.CorrelationID,
		OccurredAt:        doc.OccurredAt,
	}, nil
}
