// Package i18n holds the locale tables for user-visible strings in exports
// and API payloads. The UI carries its own, much larger, string catalog;
// only the keys the backend renders live here.
package i18n

import "strings"

// Locale resolves translation keys for one language. Missing keys fall back
// to English, then to the key itself.
type Locale struct {
	code    string
	strings map[string]string
}

var english = map[string]string{
	"id":           "ID",
	"date":         "Date",
	"description":  "Description",
	"type":         "Type",
	"category":     "Category",
	"amount":       "Amount",
	"method":       "Method",
	"status":       "Status",
	"created_at":   "Created At",
	"transactions": "Transactions",

	"type.income":   "Income",
	"type.expense":  "Expense",
	"type.transfer": "Transfer",

	"status.pending":   "Pending",
	"status.completed": "Completed",
	"status.cancelled": "Cancelled",
}

var spanish = map[string]string{
	"id":           "ID",
	"date":         "Fecha",
	"description":  "Descripción",
	"type":         "Tipo",
	"category":     "Categoría",
	"amount":       "Monto",
	"method":       "Método",
	"status":       "Estado",
	"created_at":   "Fecha de creación",
	"transactions": "Transacciones",

	"type.income":   "Ingreso",
	"type.expense":  "Gasto",
	"type.transfer": "Transferencia",

	"status.pending":   "Pendiente",
	"status.completed": "Completada",
	"status.cancelled": "Cancelada",
}

var locales = map[string]map[string]string{
	"en": english,
	"es": spanish,
}

// Default is the locale used when no language is requested.
var Default = Get("en")

// Get returns the locale for a language code ("en", "es"); unknown codes
// fall back to English.
func Get(code string) *Locale {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexByte(code, '-'); i > 0 {
		code = code[:i]
	}
	table, ok := locales[code]
	if !ok {
		code, table = "en", english
	}
	return &Locale{code: code, strings: table}
}

// Code returns the locale's language code.
func (l *Locale) Code() string {
	return l.code
}

// T translates a key.
func (l *Locale) T(key string) string {
	if v, ok := l.strings[key]; ok {
		return v
	}
	if v, ok := english[key]; ok {
		return v
	}
	return key
}
