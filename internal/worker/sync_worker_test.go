package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/gateway"
	"finanzas/internal/sheets/memory"
)

type fakeSyncStore struct {
	mu     sync.Mutex
	rows   map[string]gateway.SyncRow
	synced map[string]int64
	errors map[string]bool
}

func newFakeSyncStore(rows ...gateway.SyncRow) *fakeSyncStore {
	s := &fakeSyncStore{
		rows:   make(map[string]gateway.SyncRow),
		synced: make(map[string]int64),
		errors: make(map[string]bool),
	}
	for _, r := range rows {
		s.rows[r.Transaction.ID] = r
	}
	return s
}

func (s *fakeSyncStore) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return r.Transaction, nil
}

func (s *fakeSyncStore) ListPendingSync(ctx context.Context, limit int) ([]gateway.SyncRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.SyncRow
	for _, r := range s.rows {
		if r.SyncStatus == gateway.SyncPending && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeSyncStore) MarkSynced(ctx context.Context, id string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced[id] = version
	if r, ok := s.rows[id]; ok && r.Version == version {
		r.SyncStatus = gateway.SyncSynced
		s.rows[id] = r
	}
	return nil
}

func (s *fakeSyncStore) MarkSyncError(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[id] = true
	return nil
}

func pendingRow(id string, cents int64) gateway.SyncRow {
	return gateway.SyncRow{
		Transaction: core.Transaction{
			ID:          id,
			Type:        core.Expense,
			Description: "entry " + id,
			Amount:      core.Money{Cents: -cents},
			Method:      "card",
			Date:        core.NewDate(2026, 8, 15),
			Status:      core.StatusCompleted,
		},
		SyncStatus: gateway.SyncPending,
		Version:    1,
	}
}

func TestHandleMessageSyncMirrorsRow(t *testing.T) {
	store := newFakeSyncStore(pendingRow("t1", 100))
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage("t1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, ok := mirror.Get("t1"); !ok {
		t.Error("row not mirrored")
	}
}

func TestHandleMessageSyncSkipsDeletedRow(t *testing.T) {
	store := newFakeSyncStore()
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage("gone")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if mirror.Len() != 0 {
		t.Error("deleted row mirrored")
	}
}

func TestHandleMessageSyncFlagsMirrorFailure(t *testing.T) {
	store := newFakeSyncStore(pendingRow("t1", 100))
	mirror := memory.New()
	mirror.Fail(errors.New("quota"))
	w := NewSyncWorker(store, mirror, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage("t1")); err == nil {
		t.Fatal("handle succeeded, want error")
	}
	if !store.errors["t1"] {
		t.Error("sync error not flagged")
	}
}

func TestHandleMessageDelete(t *testing.T) {
	store := newFakeSyncStore(pendingRow("t1", 100))
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage("t1")); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage("t1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mirror.Len() != 0 {
		t.Error("row still mirrored after delete")
	}

	// absent id still succeeds
	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage("t1")); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestProcessPendingSyncsBatch(t *testing.T) {
	store := newFakeSyncStore(pendingRow("t1", 100), pendingRow("t2", 200), pendingRow("t3", 300))
	mirror := memory.New()
	w := NewSyncWorker(store, mirror, 10)

	n, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if n != 3 {
		t.Errorf("synced %d rows, want 3", n)
	}
	if mirror.Len() != 3 {
		t.Errorf("mirror has %d rows, want 3", mirror.Len())
	}
	for _, id := range []string{"t1", "t2", "t3"} {
		if v, ok := store.synced[id]; !ok || v != 1 {
			t.Errorf("row %s not marked synced at version 1", id)
		}
	}

	// second run finds nothing left
	n, err = w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if n != 0 {
		t.Errorf("second run synced %d rows, want 0", n)
	}
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	store := newFakeSyncStore(pendingRow("t1", 100))
	mirror := memory.New()
	mirror.Fail(errors.New("quota"))
	w := NewSyncWorker(store, mirror, 10)

	n, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if n != 0 {
		t.Errorf("synced %d rows, want 0", n)
	}
	if !store.errors["t1"] {
		t.Error("failed row not flagged")
	}
}
