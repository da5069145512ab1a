// Package export shapes transactions into flat, field-labeled records and
// serializes them as CSV or as an XLSX workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"finanzas/internal/core"
	"finanzas/internal/i18n"
)

// Format selects the serialization target.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

func (f Format) Valid() bool {
	return f == CSV || f == XLSX
}

// Options control one export run. From/To restrict the exported date range
// independently of any table filters; zero bounds are open.
type Options struct {
	Format Format
	From   core.Date
	To     core.Date
	Locale *i18n.Locale
}

// CategoryNamer resolves a category id for display; nil leaves ids as-is.
type CategoryNamer func(id string) string

// Filename returns the download name for an export taken at now:
// transactions_<YYYY-MM-DD>.<ext>.
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("transactions_%s.%s", now.Format("2006-01-02"), f)
}

// Headers returns the localized column labels, in export order.
func Headers(loc *i18n.Locale) []string {
	if loc == nil {
		loc = i18n.Default
	}
	return []string{
		loc.T("id"),
		loc.T("date"),
		loc.T("description"),
		loc.T("type"),
		loc.T("category"),
		loc.T("amount"),
		loc.T("method"),
		loc.T("status"),
		loc.T("created_at"),
	}
}

// Rows maps transactions to export records: localized type/status names,
// calendar-formatted dates, signed decimal amounts, category names resolved
// through names.
func Rows(ts []core.Transaction, loc *i18n.Locale, names CategoryNamer) [][]string {
	if loc == nil {
		loc = i18n.Default
	}
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		cat := "-"
		if t.CategoryID != "" {
			cat = t.CategoryID
			if names != nil {
				if name := names(t.CategoryID); name != "" {
					cat = name
				}
			}
		}
		rows = append(rows, []string{
			t.ID,
			t.Date.String(),
			t.Description,
			loc.T("type." + string(t.Type)),
			cat,
			t.Amount.Decimal(),
			t.Method,
			loc.T("status." + string(t.Status)),
			t.CreatedAt.Format("2006-01-02"),
		})
	}
	return rows
}

// WriteCSV writes a header row plus one row per transaction. encoding/csv
// double-quotes fields containing commas or quotes.
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// colWidths mirrors the table layout: wide description, narrow status.
var colWidths = []float64{20, 12, 30, 12, 16, 12, 14, 12, 14}

// BuildWorkbook builds an XLSX workbook with one sheet named after the
// localized "transactions" label: bold header on a light-gray fill, one row
// per transaction.
func BuildWorkbook(headers []string, rows [][]string, loc *i18n.Locale) (*excelize.File, error) {
	if loc == nil {
		loc = i18n.Default
	}
	sheet := loc.T("transactions")

	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EEEEEE"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set header cell: %w", err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, fmt.Errorf("last column name: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header row: %w", err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set cell: %w", err)
			}
		}
	}

	for i, w := range colWidths {
		if i >= len(headers) {
			break
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	return f, nil
}

// Write serializes the transactions in the requested format. XLSX workbooks
// are streamed directly into w.
func Write(w io.Writer, ts []core.Transaction, opts Options, names CategoryNamer) error {
	headers := Headers(opts.Locale)
	rows := Rows(ts, opts.Locale, names)

	switch opts.Format {
	case CSV:
		return WriteCSV(w, headers, rows)
	case XLSX:
		f, err := BuildWorkbook(headers, rows, opts.Locale)
		if err != nil {
			return err
		}
		if err := f.Write(w); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return f.Close()
	default:
		return fmt.Errorf("unsupported export format %q", opts.Format)
	}
}
