package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/export"
	"finanzas/internal/pipeline"
)

// parseFilter builds the transaction filter from query parameters. Unknown
// type/status values and malformed dates or amounts are rejected rather than
// silently ignored.
func parseFilter(r *http.Request) (pipeline.Filter, error) {
	q := r.URL.Query()
	f := pipeline.Filter{
		Search:     strings.TrimSpace(q.Get("search")),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		CategoryID: q.Get("category_id"),
	}

	if f.Type != "" && f.Type != pipeline.All && !core.TransactionType(f.Type).Valid() {
		return f, fmt.Errorf("%w: unknown type %q", errBadRequest, f.Type)
	}
	if f.Status != "" && f.Status != pipeline.All && !core.TransactionStatus(f.Status).Valid() {
		return f, fmt.Errorf("%w: unknown status %q", errBadRequest, f.Status)
	}

	if v := q.Get("date_from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("%w: date_from: %v", errBadRequest, err)
		}
		f.DateFrom = d
	}
	if v := q.Get("date_to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("%w: date_to: %v", errBadRequest, err)
		}
		f.DateTo = d
	}

	if v := q.Get("min_amount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return f, fmt.Errorf("%w: min_amount: %v", errBadRequest, err)
		}
		f.MinAmount = &core.Money{Cents: cents}
	}
	if v := q.Get("max_amount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return f, fmt.Errorf("%w: max_amount: %v", errBadRequest, err)
		}
		f.MaxAmount = &core.Money{Cents: cents}
	}

	return f, nil
}

// parsePagination reads page and limit, falling back to page 1 and the
// default page size.
func parsePagination(r *http.Request) (page, limit int, err error) {
	q := r.URL.Query()
	page, limit = 1, 10

	if v := q.Get("page"); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("%w: page must be a positive integer", errBadRequest)
		}
	}
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, fmt.Errorf("%w: limit must be between 1 and 100", errBadRequest)
		}
	}
	return page, limit, nil
}

// transactionRequest is the JSON body for create and full update. Amount is
// the positive magnitude as entered; a number or a decimal string both work.
type transactionRequest struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	CategoryID  string      `json:"category_id"`
	Method      string      `json:"method"`
	Date        string      `json:"date"`
	Status      string      `json:"status"`
}

func (req transactionRequest) toInput() (core.TransactionInput, error) {
	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		return core.TransactionInput{}, fmt.Errorf("%w: amount: %v", errBadRequest, err)
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.TransactionInput{}, fmt.Errorf("%w: date: %v", errBadRequest, err)
	}
	return core.TransactionInput{
		Type:        core.TransactionType(req.Type),
		Description: strings.TrimSpace(req.Description),
		Amount:      core.Money{Cents: cents},
		CategoryID:  req.CategoryID,
		Method:      strings.TrimSpace(req.Method),
		Date:        date,
		Status:      core.TransactionStatus(req.Status),
	}, nil
}

// fullPatch turns a complete input into a patch touching every field; the
// full-update route reuses the partial-update path this way.
func fullPatch(in core.TransactionInput) core.TransactionPatch {
	return core.TransactionPatch{
		Type:        &in.Type,
		Description: &in.Description,
		Amount:      &in.Amount,
		CategoryID:  &in.CategoryID,
		Method:      &in.Method,
		Date:        &in.Date,
		Status:      &in.Status,
	}
}

// fieldEditRequest is the body of the single-field editor: one field name
// from the static schema plus its new value as a string.
type fieldEditRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// editableFields maps a field name to a parser producing the matching patch.
var editableFields = map[string]func(value string) (core.TransactionPatch, error){
	"description": func(v string) (core.TransactionPatch, error) {
		return core.TransactionPatch{Description: &v}, nil
	},
	"method": func(v string) (core.TransactionPatch, error) {
		return core.TransactionPatch{Method: &v}, nil
	},
	"type": func(v string) (core.TransactionPatch, error) {
		t := core.TransactionType(v)
		return core.TransactionPatch{Type: &t}, nil
	},
	"status": func(v string) (core.TransactionPatch, error) {
		st := core.TransactionStatus(v)
		return core.TransactionPatch{Status: &st}, nil
	},
	"category_id": func(v string) (core.TransactionPatch, error) {
		return core.TransactionPatch{CategoryID: &v}, nil
	},
	"amount": func(v string) (core.TransactionPatch, error) {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return core.TransactionPatch{}, fmt.Errorf("%w: amount: %v", errBadRequest, err)
		}
		m := core.Money{Cents: cents}
		return core.TransactionPatch{Amount: &m}, nil
	},
	"date": func(v string) (core.TransactionPatch, error) {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.TransactionPatch{}, fmt.Errorf("%w: date: %v", errBadRequest, err)
		}
		return core.TransactionPatch{Date: &d}, nil
	},
}

func (req fieldEditRequest) toPatch() (core.TransactionPatch, error) {
	parse, ok := editableFields[req.Field]
	if !ok {
		return core.TransactionPatch{}, fmt.Errorf("%w: field %q is not editable", errBadRequest, req.Field)
	}
	p, err := parse(req.Value)
	if err != nil {
		return core.TransactionPatch{}, err
	}
	if err := p.Validate(); err != nil {
		return core.TransactionPatch{}, err
	}
	return p, nil
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Type  string `json:"type"`
}

func (req categoryRequest) toInput() core.CategoryInput {
	return core.CategoryInput{
		Name:  strings.TrimSpace(req.Name),
		Color: req.Color,
		Icon:  req.Icon,
		Type:  core.CategoryType(req.Type),
	}
}

func (req categoryRequest) toPatch() core.CategoryPatch {
	var p core.CategoryPatch
	if req.Name != "" {
		name := strings.TrimSpace(req.Name)
		p.Name = &name
	}
	if req.Color != "" {
		p.Color = &req.Color
	}
	if req.Icon != "" {
		p.Icon = &req.Icon
	}
	if req.Type != "" {
		t := core.CategoryType(req.Type)
		p.Type = &t
	}
	return p
}

// parseExportOptions reads format plus the optional export date range.
func parseExportOptions(r *http.Request) (export.Options, error) {
	q := r.URL.Query()

	format := export.Format(q.Get("format"))
	if format == "" {
		format = export.CSV
	}
	if !format.Valid() {
		return export.Options{}, fmt.Errorf("%w: unknown format %q", errBadRequest, format)
	}

	opts := export.Options{Format: format}
	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return export.Options{}, fmt.Errorf("%w: from: %v", errBadRequest, err)
		}
		opts.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return export.Options{}, fmt.Errorf("%w: to: %v", errBadRequest, err)
		}
		opts.To = d
	}
	return opts, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
