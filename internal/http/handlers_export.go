package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finanzas/internal/export"
	"finanzas/internal/pipeline"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	opts, err := parseExportOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Locale = s.locale

	rows := pipeline.DateRange(s.transactions.All(), opts.From, opts.To)

	filename := export.Filename(opts.Format, time.Now())
	switch opts.Format {
	case export.CSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.XLSX:
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.Write(w, rows, opts, export.CategoryNamer(s.categories.Namer())); err != nil {
		// headers are out; log instead of rewriting the response
		slog.ErrorContext(r.Context(), "Export failed", "format", opts.Format, "error", err)
		return
	}

	slog.InfoContext(r.Context(), "Export completed",
		"format", opts.Format,
		"rows", len(rows),
		"filename", filename)
}
