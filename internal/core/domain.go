package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	CategoryBoth    CategoryType = "both"
)

type (
	TransactionType   string
	TransactionStatus string
	CategoryType      string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single financial event. Amount is stored signed:
	// expenses carry negative cents, income and transfers positive.
	// CategoryID is empty for uncategorized transactions.
	Transaction struct {
		ID          string
		Type        TransactionType
		Description string
		Amount      Money
		CategoryID  string
		Method      string
		Date        Date
		Status      TransactionStatus
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// TransactionInput carries user-supplied fields for creation. Amount is
	// the positive magnitude as entered in the form; the sign convention is
	// applied by Normalize before persistence.
	TransactionInput struct {
		Type        TransactionType
		Description string
		Amount      Money
		CategoryID  string
		Method      string
		Date        Date
		Status      TransactionStatus
	}

	// TransactionPatch is a partial update; nil fields are left untouched.
	TransactionPatch struct {
		Type        *TransactionType
		Description *string
		Amount      *Money
		CategoryID  *string
		Method      *string
		Date        *Date
		Status      *TransactionStatus
	}

	// Category is a user-defined tag with display color and icon, scoped to
	// income, expense or both transaction types.
	Category struct {
		ID        string
		Name      string
		Color     string
		Icon      string
		Type      CategoryType
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	CategoryInput struct {
		Name  string
		Color string
		Icon  string
		Type  CategoryType
	}

	CategoryPatch struct {
		Name  *string
		Color *string
		Icon  *string
		Type  *CategoryType
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidStatus    = errors.New("invalid transaction status")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyMethod      = errors.New("empty payment method")
	ErrEmptyName        = errors.New("empty category name")
	ErrInvalidColor     = errors.New("invalid color")
	ErrInvalidIcon      = errors.New("invalid icon")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNotFound         = errors.New("not found")
)

// IconKeys is the fixed icon set categories may reference.
var IconKeys = []string{
	"groceries", "credit-card", "transportation", "shopping", "house",
	"entertainment", "health", "education", "travel", "salary",
	"investment", "gift", "other",
}

// ColorPalette is the default hex palette offered for categories; custom hex
// values are also accepted.
var ColorPalette = []string{
	"#17B26A", "#F04438", "#0BA5EC", "#4E5BA6", "#9E77ED",
	"#F79009", "#6172F3", "#DD2590", "#667085",
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (c CategoryType) Valid() bool {
	switch c {
	case CategoryIncome, CategoryExpense, CategoryBoth:
		return true
	}
	return false
}

// Allows reports whether a category of this type may be referenced by a
// transaction of type t. Advisory only; the gateway does not enforce it.
func (c CategoryType) Allows(t TransactionType) bool {
	switch t {
	case Income:
		return c == CategoryIncome || c == CategoryBoth
	case Expense:
		return c == CategoryExpense || c == CategoryBoth
	default:
		return true
	}
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Within reports whether d falls inside [from, to], both bounds inclusive.
// A zero bound is open.
func (d Date) Within(from, to Date) bool {
	if !from.IsZero() && d.Before(from.Time) {
		return false
	}
	if !to.IsZero() && d.After(to.Time) {
		return false
	}
	return true
}

// SameDay reports whether both dates name the same calendar day.
func (d Date) SameDay(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

// SameMonth reports whether both dates fall in the same month and year.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

func (in TransactionInput) Validate() error {
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(in.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if in.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(in.Method) == "" {
		return ErrEmptyMethod
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Normalize applies the canonical sign convention and status default:
// expense amounts become negative, income and transfer stay positive,
// status defaults to completed.
func (in TransactionInput) Normalize() TransactionInput {
	out := in
	out.Amount = in.Amount.Abs()
	if in.Type == Expense {
		out.Amount = out.Amount.Neg()
	}
	if out.Status == "" {
		out.Status = StatusCompleted
	}
	return out
}

func (p TransactionPatch) Validate() error {
	if p.Type != nil && !p.Type.Valid() {
		return ErrInvalidType
	}
	if p.Description != nil {
		if strings.TrimSpace(*p.Description) == "" {
			return ErrEmptyDescription
		}
		if len(*p.Description) > 200 {
			return errors.New("description too long (max 200 characters)")
		}
	}
	if p.Amount != nil && p.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	if p.Method != nil && strings.TrimSpace(*p.Method) == "" {
		return ErrEmptyMethod
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Type == nil && p.Description == nil && p.Amount == nil &&
		p.CategoryID == nil && p.Method == nil && p.Date == nil && p.Status == nil
}

// Apply returns a copy of t with the patch applied and the amount sign
// re-normalized against the resulting type.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	out := t
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.Method != nil {
		out.Method = *p.Method
	}
	if p.Date != nil {
		out.Date = *p.Date
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	out.Amount = out.Amount.Abs()
	if out.Type == Expense {
		out.Amount = out.Amount.Neg()
	}
	return out
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if len(in.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if !validHexColor(in.Color) {
		return ErrInvalidColor
	}
	if in.Icon != "" && !validIcon(in.Icon) {
		return ErrInvalidIcon
	}
	if in.Type != "" && !in.Type.Valid() {
		return errors.New("invalid category type")
	}
	return nil
}

// Normalize fills the icon and type defaults.
func (in CategoryInput) Normalize() CategoryInput {
	out := in
	if out.Icon == "" {
		out.Icon = "other"
	}
	if out.Type == "" {
		out.Type = CategoryBoth
	}
	return out
}

func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrEmptyName
	}
	if p.Color != nil && !validHexColor(*p.Color) {
		return ErrInvalidColor
	}
	if p.Icon != nil && !validIcon(*p.Icon) {
		return ErrInvalidIcon
	}
	if p.Type != nil && !p.Type.Valid() {
		return errors.New("invalid category type")
	}
	return nil
}

func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Color == nil && p.Icon == nil && p.Type == nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func validIcon(s string) bool {
	for _, k := range IconKeys {
		if s == k {
			return true
		}
	}
	return false
}
