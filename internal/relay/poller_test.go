package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/securepay/ledger/internal/config"
	"github.com/securepay/ledger/internal/domain/outbox"
	"github.com/securepay/ledger/internal/domain/transfer"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func pendingMessage(t *testing.T, id int64, referenceNo string, attempts int) *outbox.Message {
	t.Helper()
	event := &transfer.Event{
		ReferenceNo:       referenceNo,
		SenderAccountID:   1,
		ReceiverAccountID: 2,
		Amount:            decimal.NewFromInt(100),
		Currency:          "USD",
		Status:            transfer.StatusCompleted,
		OccurredAt:        time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	return &outbox.Message{
		ID:          id,
		ReferenceNo: referenceNo,
		Payload:     payload,
		Status:      outbox.StatusPending,
		Attempts:    attempts,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestPoller_ProcessPendingMessages(t *testing.T) {
	logger := slog.Default()

	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	t.Run("SuccessfulProcessing", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		message1 := pendingMessage(t, 1, "TRF-1-AAAA", 0)
		message2 := pendingMessage(t, 2, "TRF-2-BBBB", 0)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, message1).Return(nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, message2).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("ErrorGettingPendingMessages", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()

		err := poller.processPendingMessages(context.Background())

		assert.ErrorContains(t, err, "failed to get pending outbox messages")
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("NoPendingMessages", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("PublishFailureIncrementsAttempts", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		message1 := pendingMessage(t, 1, "TRF-1-AAAA", 0)
		message2 := pendingMessage(t, 2, "TRF-2-BBBB", 0)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, message1).Return(errors.New("publish error")).Once()
		mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()

		// A failure on one message never blocks the rest of the batch
		mockPublisher.On("PublishEvent", mock.Anything, message2).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("MaxRetryAttemptsReached", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		// Attempts 2 plus this failure reaches the limit of 3
		exhausted := pendingMessage(t, 3, "TRF-3-CCCC", 2)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{exhausted}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, exhausted).Return(errors.New("publish error")).Once()
		mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
		mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(3), outbox.StatusFailedToPublish).Return(nil).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("IncrementAttemptsFailureSkipsStatusUpdate", func(t *testing.T) {
		mockOutboxRepo := new(MockOutboxRepo)
		mockPublisher := new(MockEventPublisher)
		poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, logger)

		exhausted := pendingMessage(t, 3, "TRF-3-CCCC", 2)

		mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{exhausted}, nil).Once()
		mockPublisher.On("PublishEvent", mock.Anything, exhausted).Return(errors.New("publish error")).Once()
		mockOutboxRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(errors.New("db error")).Once()

		err := poller.processPendingMessages(context.Background())

		assert.NoError(t, err)
		mockOutboxRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
		mockOutboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPoller_Start_StopsOnContextCancel(t *testing.T) {
	mockOutboxRepo := new(MockOutboxRepo)
	mockPublisher := new(MockEventPublisher)

	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	poller := NewPoller(cfg, mockOutboxRepo, mockPublisher, slog.Default())

	mockOutboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
