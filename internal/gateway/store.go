// Package gateway is the SQLite persistence layer: transaction and category
// tables plus the sync bookkeeping the mirror worker drains.
package gateway

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"

	_ "modernc.org/sqlite"
)

// SyncStatus tracks whether a row has been pushed to the external mirror.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// SyncRow pairs a transaction with its mirror bookkeeping.
type SyncRow struct {
	Transaction core.Transaction
	SyncStatus  SyncStatus
	Version     int64
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and runs migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// Foreign keys back the ON DELETE SET NULL on transactions.category_id.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const transactionColumns = `id, type, description, amount_cents, category_id, method, date, status, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t          core.Transaction
		categoryID sql.NullString
		date       string
	)
	err := row.Scan(&t.ID, &t.Type, &t.Description, &t.Amount.Cents, &categoryID,
		&t.Method, &date, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.CategoryID = categoryID.String
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	t.Date = d
	return t, nil
}

// ListTransactions returns every transaction, newest date first. Filtering,
// pagination and statistics run in memory over this snapshot.
func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date DESC, created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListRecent returns the limit most recently created transactions.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`
	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// CreateTransaction validates and persists a new transaction. The sign
// convention is applied here so callers pass the magnitude as entered.
func (s *Store) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	in = in.Normalize()

	now := time.Now().UTC()
	t := core.Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Description: in.Description,
		Amount:      in.Amount,
		CategoryID:  in.CategoryID,
		Method:      in.Method,
		Date:        in.Date,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `INSERT INTO transactions (id, type, description, amount_cents, category_id, method, date, status, sync_status, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending', 1, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.Type, t.Description, t.Amount.Cents, nullable(t.CategoryID),
		t.Method, t.Date.String(), t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction applies a partial update. The row's version is bumped and
// its sync status reset so the mirror worker picks the change up.
func (s *Store) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if p.Empty() {
		return s.GetTransaction(ctx, id)
	}

	current, err := s.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	updated := p.Apply(current)
	updated.UpdatedAt = time.Now().UTC()

	query := `UPDATE transactions
		SET type = ?, description = ?, amount_cents = ?, category_id = ?, method = ?,
			date = ?, status = ?, sync_status = 'pending', version = version + 1, updated_at = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query,
		updated.Type, updated.Description, updated.Amount.Cents, nullable(updated.CategoryID),
		updated.Method, updated.Date.String(), updated.Status, updated.UpdatedAt, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return updated, nil
}

// DeleteTransaction removes a transaction. Deleting a missing id is not an
// error so retried deletes stay idempotent.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// ListPendingSync returns up to limit transactions awaiting a mirror push,
// oldest change first.
func (s *Store) ListPendingSync(ctx context.Context, limit int) ([]SyncRow, error) {
	query := `SELECT ` + transactionColumns + `, sync_status, version FROM transactions
		WHERE sync_status = 'pending' ORDER BY updated_at ASC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync: %w", err)
	}
	defer rows.Close()

	var out []SyncRow
	for rows.Next() {
		var (
			r          SyncRow
			categoryID sql.NullString
			date       string
		)
		t := &r.Transaction
		err := rows.Scan(&t.ID, &t.Type, &t.Description, &t.Amount.Cents, &categoryID,
			&t.Method, &date, &t.Status, &t.CreatedAt, &t.UpdatedAt, &r.SyncStatus, &r.Version)
		if err != nil {
			return nil, fmt.Errorf("scan sync row: %w", err)
		}
		t.CategoryID = categoryID.String
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		t.Date = d
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync rows: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful mirror push for the given version. A row
// modified since version keeps its pending status.
func (s *Store) MarkSynced(ctx context.Context, id string, version int64) error {
	query := `UPDATE transactions SET sync_status = 'synced' WHERE id = ? AND version = ?`
	_, err := s.db.ExecContext(ctx, query, id, version)
	if err != nil {
		return fmt.Errorf("mark transaction %s synced: %w", id, err)
	}
	return nil
}

// MarkSyncError flags a failed mirror push so the next catch-up run retries it.
func (s *Store) MarkSyncError(ctx context.Context, id string) error {
	query := `UPDATE transactions SET sync_status = 'error' WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark transaction %s sync error: %w", id, err)
	}
	return nil
}

// RetryErrored requeues rows stuck in the error state.
func (s *Store) RetryErrored(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET sync_status = 'pending' WHERE sync_status = 'error'`)
	if err != nil {
		return 0, fmt.Errorf("retry errored rows: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

const categoryColumns = `id, name, type, color, icon, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Color, &c.Icon, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// ListCategoriesByType returns categories usable by transactions of type t:
// the matching scope plus categories scoped to both.
func (s *Store) ListCategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE type = ? OR type = 'both' ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, string(t))
	if err != nil {
		return nil, fmt.Errorf("list categories by type: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, in core.CategoryInput) (core.Category, error) {
	if err := in.Validate(); err != nil {
		return core.Category{}, err
	}
	in = in.Normalize()

	now := time.Now().UTC()
	c := core.Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Color:     in.Color,
		Icon:      in.Icon,
		Type:      in.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO categories (id, name, type, color, icon, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.Type, c.Color, c.Icon, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, p core.CategoryPatch) (core.Category, error) {
	if err := p.Validate(); err != nil {
		return core.Category{}, err
	}
	if p.Empty() {
		return s.GetCategory(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *p.Color)
	}
	if p.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *p.Icon)
	}
	if p.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*p.Type))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := `UPDATE categories SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory removes a category. Transactions referencing it fall back to
// uncategorized through the schema's ON DELETE SET NULL.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
