package service

import (
	"context"

	"github.com/securepay/ledger/internal/domain/transfer"
)

// ArchivingService persists consumed transfer events into the history read model
type ArchivingService interface {
	// ArchiveEvent records one transfer event, ignoring duplicates by
	// reference number
	ArchiveEvent(ctx context.Context, event *transfer.Event) error
}
