// Package worker drains mirror sync work: queued messages from AMQP plus a
// periodic catch-up over rows still flagged pending in the database.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/gateway"
	"finanzas/internal/sheets"
)

// SyncStore is the slice of the gateway the worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListPendingSync(ctx context.Context, limit int) ([]gateway.SyncRow, error)
	MarkSynced(ctx context.Context, id string, version int64) error
	MarkSyncError(ctx context.Context, id string) error
}

type SyncWorker struct {
	store     SyncStore
	mirror    sheets.Mirror
	batchSize int
}

func NewSyncWorker(store SyncStore, mirror sheets.Mirror, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{store: store, mirror: mirror, batchSize: batchSize}
}

// HandleMessage dispatches one queued mirror message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.handleSync(ctx, msg.ID)
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg.ID)
	default:
		slog.WarnContext(ctx, "Dropping message with unknown op", "op", msg.Op, "id", msg.ID)
		return nil
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, id string) error {
	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// deleted between publish and consume; the delete message follows
		slog.InfoContext(ctx, "Transaction gone before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	if err := w.mirror.Upsert(ctx, t); err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to flag sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("mirror transaction %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction", "id", id)
	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, id string) error {
	if err := w.mirror.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove mirrored transaction %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Removed mirrored transaction", "id", id)
	return nil
}

// ProcessPending pushes one batch of rows still flagged pending, a few at a
// time. It returns how many rows synced cleanly.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	rows, err := w.store.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending sync rows", "count", len(rows))

	var g errgroup.Group
	g.SetLimit(4)
	synced := make(chan string, len(rows))

	for _, row := range rows {
		g.Go(func() error {
			if err := w.mirror.Upsert(ctx, row.Transaction); err != nil {
				slog.ErrorContext(ctx, "Failed to mirror pending row",
					"id", row.Transaction.ID, "error", err)
				if markErr := w.store.MarkSyncError(ctx, row.Transaction.ID); markErr != nil {
					slog.ErrorContext(ctx, "Failed to flag sync error",
						"id", row.Transaction.ID, "error", markErr)
				}
				return nil
			}
			if err := w.store.MarkSynced(ctx, row.Transaction.ID, row.Version); err != nil {
				return fmt.Errorf("mark %s synced: %w", row.Transaction.ID, err)
			}
			synced <- row.Transaction.ID
			return nil
		})
	}

	err = g.Wait()
	close(synced)
	count := len(synced)
	if err != nil {
		return count, err
	}
	return count, nil
}
