package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"finanzas/internal/pipeline"
)

type transactionListResponse struct {
	Transactions []transactionJSON `json:"transactions"`
	Pagination   paginationJSON    `json:"pagination"`
	Loading      bool              `json:"loading"`
	Error        string            `json:"error,omitempty"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filtered := pipeline.Apply(s.transactions.All(), f, pipeline.CategoryNamer(s.categories.Namer()))

	p := pipeline.NewPagination(limit)
	p.SetTotal(len(filtered))
	p.SetPage(page)

	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: toTransactionList(pipeline.Paginate(filtered, p)),
		Pagination:   toPaginationJSON(p),
		Loading:      s.transactions.Loading(),
		Error:        s.transactions.Err(),
	})
}

// defaultRecentLimit sizes the dashboard's initial load.
const defaultRecentLimit = 5

type recentTransactionsResponse struct {
	Transactions []transactionJSON `json:"transactions"`
	Error        string            `json:"error,omitempty"`
}

func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, fmt.Errorf("%w: limit must be between 1 and 100", errBadRequest))
			return
		}
		limit = n
	}

	recent, err := s.transactions.FetchRecent(r.Context(), limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "Recent fetch degraded to mirror", "error", err)
	}

	writeJSON(w, http.StatusOK, recentTransactionsResponse{
		Transactions: toTransactionList(recent),
		Error:        s.transactions.Err(),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateStats()
	slog.InfoContext(r.Context(), "Transaction created", "id", created.ID, "type", created.Type)
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, err)
		return
	}

	in = in.Normalize()
	patch := fullPatch(in)
	updated, err := s.transactions.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateStats()
	writeJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req fieldEditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.transactions.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateStats()
	slog.InfoContext(r.Context(), "Transaction field edited", "id", id, "field", req.Field)
	writeJSON(w, http.StatusOK, toTransactionJSON(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	s.invalidateStats()
	slog.InfoContext(r.Context(), "Transaction deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
