// Package sheets defines the outbound mirror port the sync worker writes
// through.
package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Mirror is a remote copy of the transaction table, keyed by transaction id.
type Mirror interface {
	// Upsert writes the transaction's current state, replacing any earlier
	// row with the same id.
	Upsert(ctx context.Context, t core.Transaction) error
	// Remove deletes the row for id. Removing an absent id succeeds.
	Remove(ctx context.Context, id string) error
}
