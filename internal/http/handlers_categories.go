package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"finanzas/internal/core"
)

type categoryListResponse struct {
	Categories []categoryJSON `json:"categories"`
	Loading    bool           `json:"loading"`
	Error      string         `json:"error,omitempty"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	var cats []core.Category
	if v := r.URL.Query().Get("for_type"); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			writeError(w, fmt.Errorf("%w: unknown type %q", errBadRequest, v))
			return
		}
		scoped, err := s.categories.FetchForType(r.Context(), t)
		if err != nil {
			slog.ErrorContext(r.Context(), "Scoped fetch degraded to mirror", "type", t, "error", err)
		}
		cats = scoped
	} else {
		cats = s.categories.All()
	}

	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, categoryListResponse{
		Categories: out,
		Loading:    s.categories.Loading(),
		Error:      s.categories.Err(),
	})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.categories.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Category created", "id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, toCategoryJSON(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.categories.Update(r.Context(), id, req.toPatch())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryJSON(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	// transactions referencing the category are detached in the store;
	// refresh the mirror so the table reflects that
	if err := s.transactions.Refresh(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Failed to refresh transactions after category delete",
			"category_id", id, "error", err)
	}

	s.invalidateStats()
	slog.InfoContext(r.Context(), "Category deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
