package core

import (
	"errors"
	"testing"
)

func validInput() TransactionInput {
	return TransactionInput{
		Type:        Expense,
		Description: "groceries",
		Amount:      Money{Cents: 4200},
		Method:      "card",
		Date:        NewDate(2026, 8, 15),
	}
}

func TestTransactionInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TransactionInput)
		wantErr error
	}{
		{"valid", func(in *TransactionInput) {}, nil},
		{"bad type", func(in *TransactionInput) { in.Type = "loan" }, ErrInvalidType},
		{"zero amount", func(in *TransactionInput) { in.Amount = Money{} }, ErrInvalidAmount},
		{"blank description", func(in *TransactionInput) { in.Description = "   " }, ErrEmptyDescription},
		{"blank method", func(in *TransactionInput) { in.Method = "" }, ErrEmptyMethod},
		{"zero date", func(in *TransactionInput) { in.Date = Date{} }, ErrInvalidDate},
		{"bad status", func(in *TransactionInput) { in.Status = "done" }, ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeSignConvention(t *testing.T) {
	tests := []struct {
		typ   TransactionType
		cents int64
		want  int64
	}{
		{Expense, 4200, -4200},
		{Expense, -4200, -4200},
		{Income, 4200, 4200},
		{Income, -4200, 4200},
		{Transfer, 4200, 4200},
	}
	for _, tt := range tests {
		in := validInput()
		in.Type = tt.typ
		in.Amount = Money{Cents: tt.cents}
		out := in.Normalize()
		if out.Amount.Cents != tt.want {
			t.Errorf("%s %d normalized to %d, want %d", tt.typ, tt.cents, out.Amount.Cents, tt.want)
		}
	}
}

func TestNormalizeDefaultsStatus(t *testing.T) {
	in := validInput()
	if got := in.Normalize().Status; got != StatusCompleted {
		t.Errorf("status = %s, want completed", got)
	}

	in.Status = StatusPending
	if got := in.Normalize().Status; got != StatusPending {
		t.Errorf("status = %s, explicit value overridden", got)
	}
}

func TestPatchApplyRenormalizesSign(t *testing.T) {
	tr := Transaction{
		Type:   Income,
		Amount: Money{Cents: 5000},
	}

	newType := Expense
	out := (TransactionPatch{Type: &newType}).Apply(tr)
	if out.Amount.Cents != -5000 {
		t.Errorf("amount after type flip = %d, want -5000", out.Amount.Cents)
	}

	// amount patches carry the magnitude as entered
	m := Money{Cents: 700}
	out = (TransactionPatch{Amount: &m}).Apply(out)
	if out.Amount.Cents != -700 {
		t.Errorf("amount after patch = %d, want -700", out.Amount.Cents)
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(TransactionPatch{}).Empty() {
		t.Error("zero patch not empty")
	}
	d := "x"
	if (TransactionPatch{Description: &d}).Empty() {
		t.Error("non-zero patch reported empty")
	}
}

func TestDateWithin(t *testing.T) {
	d := NewDate(2024, 6, 15)
	tests := []struct {
		name     string
		from, to Date
		want     bool
	}{
		{"open both", Date{}, Date{}, true},
		{"inside", NewDate(2024, 6, 1), NewDate(2024, 6, 30), true},
		{"on lower bound", NewDate(2024, 6, 15), NewDate(2024, 6, 30), true},
		{"on upper bound", NewDate(2024, 6, 1), NewDate(2024, 6, 15), true},
		{"before", NewDate(2024, 6, 16), Date{}, false},
		{"after", Date{}, NewDate(2024, 6, 14), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Within(tt.from, tt.to); got != tt.want {
				t.Errorf("Within(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !d.SameDay(NewDate(2024, 2, 29)) {
		t.Errorf("parsed %s, want 2024-02-29", d)
	}

	for _, bad := range []string{"", "29/02/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) accepted", bad)
		}
	}
}

func TestCategoryTypeAllows(t *testing.T) {
	tests := []struct {
		cat  CategoryType
		tx   TransactionType
		want bool
	}{
		{CategoryIncome, Income, true},
		{CategoryIncome, Expense, false},
		{CategoryExpense, Expense, true},
		{CategoryExpense, Income, false},
		{CategoryBoth, Income, true},
		{CategoryBoth, Expense, true},
	}
	for _, tt := range tests {
		if got := tt.cat.Allows(tt.tx); got != tt.want {
			t.Errorf("%s.Allows(%s) = %v, want %v", tt.cat, tt.tx, got, tt.want)
		}
	}
}

func TestCategoryInputValidate(t *testing.T) {
	in := CategoryInput{Name: "Groceries", Color: "#17B26A", Icon: "groceries", Type: CategoryExpense}
	if err := in.Validate(); err != nil {
		t.Errorf("valid input rejected: %v", err)
	}

	bad := in
	bad.Color = "green"
	if !errors.Is(bad.Validate(), ErrInvalidColor) {
		t.Error("non-hex color accepted")
	}

	bad = in
	bad.Icon = "rocket"
	if !errors.Is(bad.Validate(), ErrInvalidIcon) {
		t.Error("unknown icon accepted")
	}

	bad = in
	bad.Name = ""
	if !errors.Is(bad.Validate(), ErrEmptyName) {
		t.Error("empty name accepted")
	}
}
