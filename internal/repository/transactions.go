// Package repository keeps in-memory mirrors of the persisted data. Handlers
// read the mirror; writes go to the store first and patch the mirror
// optimistically, with mirror sync messages published on the side.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"finanzas/internal/core"
)

// Store is the persistence surface the transaction mirror drives.
type Store interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListRecent(ctx context.Context, limit int) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// Publisher emits mirror sync messages. A nil publisher disables syncing
// without affecting local writes.
type Publisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

type Transactions struct {
	store Store
	pub   Publisher

	mu       sync.RWMutex
	items    []core.Transaction
	loading  bool
	lastErr  string
	fetchSeq uint64
}

func NewTransactions(store Store, pub Publisher) *Transactions {
	return &Transactions{store: store, pub: pub}
}

// Refresh reloads the mirror from the store. Concurrent refreshes race on a
// sequence number: only the latest request's response lands, earlier ones are
// discarded even when they arrive later.
func (r *Transactions) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.fetchSeq++
	seq := r.fetchSeq
	r.loading = true
	r.mu.Unlock()

	items, err := r.store.ListTransactions(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.fetchSeq {
		return nil
	}
	r.loading = false
	if err != nil {
		r.lastErr = err.Error()
		return fmt.Errorf("refresh transactions: %w", err)
	}
	r.items = items
	r.lastErr = ""
	return nil
}

// FetchRecent queries the store for the limit most recently created rows.
// The mirror is shared across requests, so it is left alone; on failure the
// freshest slice of the mirror is returned with the error recorded.
func (r *Transactions) FetchRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	items, err := r.store.ListRecent(ctx, limit)
	if err != nil {
		r.mu.Lock()
		r.lastErr = err.Error()
		fallback := r.recentLocked(limit)
		r.mu.Unlock()
		return fallback, fmt.Errorf("fetch recent transactions: %w", err)
	}

	r.mu.Lock()
	r.lastErr = ""
	r.mu.Unlock()
	return items, nil
}

// recentLocked returns up to limit mirrored rows, newest creation first.
// Callers hold r.mu.
func (r *Transactions) recentLocked(limit int) []core.Transaction {
	out := make([]core.Transaction, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// All returns a snapshot of the mirror.
func (r *Transactions) All() []core.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Transaction, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Transactions) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Err returns the message from the last failed refresh, empty after a
// successful one.
func (r *Transactions) Err() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Create persists a new transaction and prepends it to the mirror.
func (r *Transactions) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	created, err := r.store.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	r.items = append([]core.Transaction{created}, r.items...)
	r.mu.Unlock()

	r.publishSync(ctx, created.ID)
	return created, nil
}

// Update patches the mirror optimistically, then persists. A store failure
// rolls the mirrored row back.
func (r *Transactions) Update(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}

	r.mu.Lock()
	idx := -1
	for i := range r.items {
		if r.items[i].ID == id {
			idx = i
			break
		}
	}
	var previous core.Transaction
	if idx >= 0 {
		previous = r.items[idx]
		r.items[idx] = p.Apply(previous)
	}
	r.mu.Unlock()

	updated, err := r.store.UpdateTransaction(ctx, id, p)
	if err != nil {
		if idx >= 0 {
			r.mu.Lock()
			if idx < len(r.items) && r.items[idx].ID == id {
				r.items[idx] = previous
			}
			r.mu.Unlock()
		}
		return core.Transaction{}, err
	}

	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i] = updated
			break
		}
	}
	r.mu.Unlock()

	r.publishSync(ctx, id)
	return updated, nil
}

// Delete removes the row at the store, then locally. A store failure leaves
// the mirror untouched; deleting an id that is already gone succeeds.
func (r *Transactions) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.publishDelete(ctx, id)
	return nil
}

func (r *Transactions) publishSync(ctx context.Context, id string) {
	if r.pub == nil {
		return
	}
	if err := r.pub.PublishTransactionSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message", "id", id, "error", err)
	}
}

func (r *Transactions) publishDelete(ctx context.Context, id string) {
	if r.pub == nil {
		return
	}
	if err := r.pub.PublishTransactionDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message", "id", id, "error", err)
	}
}
