package memory

import (
	"context"
	"errors"
	"testing"

	"finanzas/internal/core"
)

func TestUpsertAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:          "t1",
		Type:        core.Expense,
		Description: "coffee",
		Amount:      core.Money{Cents: -350},
		Date:        core.NewDate(2026, 8, 20),
	}
	if err := s.Upsert(ctx, tx); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got, ok := s.Get("t1"); !ok || got.Description != "coffee" {
		t.Errorf("Get = %+v, %v", got, ok)
	}

	tx.Description = "espresso"
	if err := s.Upsert(ctx, tx); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d after upserting the same id twice, want 1", s.Len())
	}
	if got, _ := s.Get("t1"); got.Description != "espresso" {
		t.Errorf("upsert did not replace the row: %q", got.Description)
	}

	if err := s.Remove(ctx, "t1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := s.Get("t1"); ok {
		t.Error("row survived removal")
	}
	// removing an id never mirrored succeeds
	if err := s.Remove(ctx, "t1"); err != nil {
		t.Errorf("repeat remove: %v", err)
	}
}

func TestFailInjection(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	s.Fail(boom)
	if err := s.Upsert(ctx, core.Transaction{ID: "t1"}); !errors.Is(err, boom) {
		t.Errorf("upsert err = %v, want injected failure", err)
	}
	if err := s.Remove(ctx, "t1"); !errors.Is(err, boom) {
		t.Errorf("remove err = %v, want injected failure", err)
	}
	if s.Len() != 0 {
		t.Errorf("failed upsert stored a row")
	}

	s.Fail(nil)
	if err := s.Upsert(ctx, core.Transaction{ID: "t1"}); err != nil {
		t.Errorf("upsert after clearing failure: %v", err)
	}
}
