package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"finanzas/internal/core"
)

type fakeStore struct {
	mu      sync.Mutex
	items   []core.Transaction
	listErr error
	updErr  error
	delErr  error

	nextID int
}

func (f *fakeStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Transaction, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeStore) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	// newest insertion last, so walk backwards
	out := make([]core.Transaction, 0, limit)
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.items[i])
	}
	return out, nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	in = in.Normalize()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := core.Transaction{
		ID:          string(rune('a' + f.nextID)),
		Type:        in.Type,
		Description: in.Description,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		Method:      in.Method,
		Date:        in.Date,
		Status:      in.Status,
	}
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeStore) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updErr != nil {
		return core.Transaction{}, f.updErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i] = p.Apply(f.items[i])
			return f.items[i], nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeStore) DeleteTransaction(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	syncs   []string
	deletes []string
}

func (p *recordingPublisher) PublishTransactionSync(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncs = append(p.syncs, id)
	return nil
}

func (p *recordingPublisher) PublishTransactionDelete(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletes = append(p.deletes, id)
	return nil
}

func expense(id string, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        core.Expense,
		Description: "entry " + id,
		Amount:      core.Money{Cents: -cents},
		Method:      "card",
		Date:        core.NewDate(2026, 8, 15),
		Status:      core.StatusCompleted,
	}
}

func TestRefreshMirrorsStore(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100), expense("t2", 200)}}
	r := NewTransactions(store, nil)

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := len(r.All()); got != 2 {
		t.Errorf("mirrored %d transactions, want 2", got)
	}
	if r.Loading() {
		t.Error("loading still set after refresh")
	}
	if r.Err() != "" {
		t.Errorf("err = %q, want empty", r.Err())
	}
}

func TestRefreshErrorKeepsPreviousMirror(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100)}}
	r := NewTransactions(store, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.mu.Lock()
	store.listErr = errors.New("disk gone")
	store.mu.Unlock()

	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("refresh succeeded, want error")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("mirror lost after failed refresh: %d rows, want 1", got)
	}
	if r.Err() == "" {
		t.Error("err not recorded")
	}

	store.mu.Lock()
	store.listErr = nil
	store.mu.Unlock()
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if r.Err() != "" {
		t.Errorf("err = %q after successful refresh, want empty", r.Err())
	}
}

// overtakingStore answers the first list with stale data, but only after a
// second refresh has already completed with fresh data.
type overtakingStore struct {
	r     *Transactions
	calls int
	stale []core.Transaction
	fresh []core.Transaction
}

func (s *overtakingStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	s.calls++
	if s.calls == 1 {
		if err := s.r.Refresh(ctx); err != nil {
			return nil, err
		}
		return s.stale, nil
	}
	return s.fresh, nil
}

func (s *overtakingStore) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (s *overtakingStore) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	return core.Transaction{}, errors.New("not implemented")
}

func (s *overtakingStore) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	return core.Transaction{}, errors.New("not implemented")
}

func (s *overtakingStore) DeleteTransaction(ctx context.Context, id string) error {
	return errors.New("not implemented")
}

func TestStaleRefreshDiscarded(t *testing.T) {
	store := &overtakingStore{
		stale: []core.Transaction{expense("stale", 100)},
		fresh: []core.Transaction{expense("fresh", 200), expense("fresh2", 300)},
	}
	r := NewTransactions(store, nil)
	store.r = r

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("mirror has %d rows, want the 2 from the winning refresh", len(all))
	}
	for _, tx := range all {
		if tx.ID == "stale" {
			t.Error("stale response overwrote the newer one")
		}
	}
}

func TestCreatePublishesSync(t *testing.T) {
	store := &fakeStore{}
	pub := &recordingPublisher{}
	r := NewTransactions(store, pub)

	created, err := r.Create(context.Background(), core.TransactionInput{
		Type:        core.Expense,
		Description: "coffee",
		Amount:      core.Money{Cents: 350},
		Method:      "cash",
		Date:        core.NewDate(2026, 8, 20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Amount.Cents != -350 {
		t.Errorf("cents = %d, want -350", created.Amount.Cents)
	}
	if got := r.All(); len(got) != 1 || got[0].ID != created.ID {
		t.Errorf("mirror = %v, want the created row first", got)
	}
	if len(pub.syncs) != 1 || pub.syncs[0] != created.ID {
		t.Errorf("published syncs = %v, want [%s]", pub.syncs, created.ID)
	}
}

func TestUpdateRollsBackOnStoreError(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100)}}
	r := NewTransactions(store, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.mu.Lock()
	store.updErr = errors.New("locked")
	store.mu.Unlock()

	desc := "changed"
	if _, err := r.Update(context.Background(), "t1", core.TransactionPatch{Description: &desc}); err == nil {
		t.Fatal("update succeeded, want error")
	}
	if got := r.All()[0].Description; got != "entry t1" {
		t.Errorf("description = %q, optimistic patch not rolled back", got)
	}
}

func TestDeleteLeavesMirrorOnStoreError(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100)}}
	pub := &recordingPublisher{}
	r := NewTransactions(store, pub)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.mu.Lock()
	store.delErr = errors.New("locked")
	store.mu.Unlock()

	if err := r.Delete(context.Background(), "t1"); err == nil {
		t.Fatal("delete succeeded, want error")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("mirror has %d rows after failed delete, want 1", got)
	}
	if len(pub.deletes) != 0 {
		t.Errorf("published deletes = %v, want none for a failed delete", pub.deletes)
	}

	store.mu.Lock()
	store.delErr = nil
	store.mu.Unlock()
	if err := r.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("retry delete: %v", err)
	}
	if got := len(r.All()); got != 0 {
		t.Errorf("mirror has %d rows after retried delete, want 0", got)
	}
}

func TestFetchRecentQueriesStore(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{
		expense("t1", 100), expense("t2", 200), expense("t3", 300),
	}}
	r := NewTransactions(store, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	recent, err := r.FetchRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "t3" || recent[1].ID != "t2" {
		t.Errorf("recent = %v, want the newest two", recent)
	}
	if got := len(r.All()); got != 3 {
		t.Errorf("mirror has %d rows after recent fetch, want all 3 untouched", got)
	}
}

func TestFetchRecentDegradesToMirror(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100), expense("t2", 200)}}
	r := NewTransactions(store, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	store.mu.Lock()
	store.listErr = errors.New("disk gone")
	store.mu.Unlock()

	recent, err := r.FetchRecent(context.Background(), 1)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if len(recent) != 1 {
		t.Errorf("fallback returned %d rows, want 1 from the mirror", len(recent))
	}
	if r.Err() == "" {
		t.Error("error string not recorded")
	}
}

func TestDeleteIdempotentAndPublishes(t *testing.T) {
	store := &fakeStore{items: []core.Transaction{expense("t1", 100)}}
	pub := &recordingPublisher{}
	r := NewTransactions(store, pub)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := r.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := r.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if got := len(r.All()); got != 0 {
		t.Errorf("mirror has %d rows after delete, want 0", got)
	}
	if len(pub.deletes) != 2 {
		t.Errorf("published deletes = %v, want two (idempotent retries still notify)", pub.deletes)
	}
}
