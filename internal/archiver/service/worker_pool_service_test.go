package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/securepay/ledger/internal/domain/transfer"
)

type MockArchivingService struct {
	mock.Mock
}

func (m *MockArchivingService) ArchiveEvent(ctx context.Context, event *transfer.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestWorkerPoolArchivingService_ArchiveEvent(t *testing.T) {
	logger := slog.Default()

	t.Run("DelegatesToBaseService", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, WorkerPoolConfig{Size: 2}, logger)
		require.NoError(t, err)
		defer svc.Shutdown()

		event := sampleEvent()
		mockBase.On("ArchiveEvent", mock.Anything, mock.MatchedBy(func(e *transfer.Event) bool {
			return e.ReferenceNo == event.ReferenceNo
		})).Return(nil).Once()

		assert.NoError(t, svc.ArchiveEvent(context.Background(), event))
		mockBase.AssertExpectations(t)
	})

	t.Run("PropagatesBaseServiceError", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, WorkerPoolConfig{Size: 2}, logger)
		require.NoError(t, err)
		defer svc.Shutdown()

		event := sampleEvent()
		archiveErr := errors.New("archive error")
		mockBase.On("ArchiveEvent", mock.Anything, mock.Anything).Return(archiveErr).Once()

		assert.ErrorIs(t, svc.ArchiveEvent(context.Background(), event), archiveErr)
		mockBase.AssertExpectations(t)
	})

	t.Run("ConcurrentSubmissionsAllComplete", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, WorkerPoolConfig{Size: 3}, logger)
		require.NoError(t, err)
		defer svc.Shutdown()

		const submissions = 20
		mockBase.On("ArchiveEvent", mock.Anything, mock.Anything).Return(nil).Times(submissions)

		var wg sync.WaitGroup
		errs := make(chan error, submissions)
		for i := 0; i < submissions; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- svc.ArchiveEvent(context.Background(), sampleEvent())
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		mockBase.AssertExpectations(t)
	})

	t.Run("SubmitAfterShutdownFails", func(t *testing.T) {
		mockBase := new(MockArchivingService)
		svc, err := NewWorkerPoolArchivingService(mockBase, WorkerPoolConfig{Size: 1}, logger)
		require.NoError(t, err)

		svc.Shutdown()

		assert.Error(t, svc.ArchiveEvent(context.Background(), sampleEvent()))
		mockBase.AssertNotCalled(t, "ArchiveEvent", mock.Anything, mock.Anything)
	})
}

func TestWorkerPoolArchivingService_Capacity(t *testing.T) {
	svc, err := NewWorkerPoolArchivingService(new(MockArchivingService), WorkerPoolConfig{Size: 4}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	assert.Equal(t, 4, svc.Capacity())
	assert.Equal(t, 0, svc.Running())
}
