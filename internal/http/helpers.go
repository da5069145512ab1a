package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyMethod),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidColor),
		errors.Is(err, core.ErrInvalidIcon),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// errBadRequest wraps parse failures that have no dedicated domain error.
var errBadRequest = errors.New("bad request")

type transactionJSON struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	CategoryID  string `json:"category_id,omitempty"`
	Method      string `json:"method"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Type:        string(t.Type),
		Description: t.Description,
		Amount:      t.Amount.Decimal(),
		AmountCents: t.Amount.Cents,
		CategoryID:  t.CategoryID,
		Method:      t.Method,
		Date:        t.Date.String(),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTransactionList(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionJSON(t))
	}
	return out
}

type categoryJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

type paginationJSON struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func toPaginationJSON(p pipeline.Pagination) paginationJSON {
	return paginationJSON{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages()}
}

type statsJSON struct {
	TotalIncome         string `json:"total_income"`
	TotalExpenses       string `json:"total_expenses"`
	Balance             string `json:"balance"`
	TransactionCount    int    `json:"transaction_count"`
	AverageTransaction  string `json:"average_transaction"`
	PendingTransactions int    `json:"pending_transactions"`
}

func toStatsJSON(s pipeline.Stats) statsJSON {
	return statsJSON{
		TotalIncome:         s.TotalIncome.Decimal(),
		TotalExpenses:       s.TotalExpenses.Decimal(),
		Balance:             s.Balance.Decimal(),
		TransactionCount:    s.TransactionCount,
		AverageTransaction:  s.AverageTransaction.Decimal(),
		PendingTransactions: s.PendingTransactions,
	}
}
