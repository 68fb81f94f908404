package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Overview struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Balance          decimal.Decimal `json:"balance"`
	SavingsRate      int64           `json:"savings_rate"`
	TransactionCount int             `json:"transaction_count"`
}

// NewOverview totals income and expenses over entries. The savings rate is the
// balance as a percentage of income.
func NewOverview(entries []Entry) Overview {
	o := Overview{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Type {
		case TypeIncome:
			o.TotalIncome = o.TotalIncome.Add(e.Amount)
		case TypeExpense:
			o.TotalExpenses = o.TotalExpenses.Add(e.Amount)
		}
		o.TransactionCount++
	}
	o.Balance = o.TotalIncome.Sub(o.TotalExpenses)
	o.SavingsRate = Percentage(o.Balance, o.TotalIncome)
	return o
}

type MonthTotals struct {
	Month    int             `json:"month"`
	Period   string          `json:"period"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// MonthlyTotals returns twelve rows for year, January first. Entries outside
// the year are ignored.
func MonthlyTotals(year int, entries []Entry) []MonthTotals {
	months := make([]MonthTotals, 12)
	for i := range months {
		p := Period{Year: year, Month: time.Month(i + 1)}
		months[i] = MonthTotals{
			Month:    i + 1,
			Period:   p.String(),
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
	}
	for _, e := range entries {
		if e.Date.Year() != year {
			continue
		}
		m := &months[e.Date.Month()-1]
		switch e.Type {
		case TypeIncome:
			m.Income = m.Income.Add(e.Amount)
		case TypeExpense:
			m.Expenses = m.Expenses.Add(e.Amount)
		}
	}
	for i := range months {
		months[i].Savings = months[i].Income.Sub(months[i].Expenses)
	}
	return months
}

type CategoryTotal struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Percentage int64           `json:"percentage"`
}

// CategoryBreakdown groups entries of type txnType by category, largest total
// first. Percentages are relative to the sum over all returned categories.
func CategoryBreakdown(entries []Entry, txnType string) []CategoryTotal {
	byCategory := make(map[uuid.UUID]*CategoryTotal)
	grand := decimal.Zero
	for _, e := range entries {
		if e.Type != txnType {
			continue
		}
		ct, ok := byCategory[e.CategoryID]
		if !ok {
			ct = &CategoryTotal{
				CategoryID: e.CategoryID,
				Name:       e.CategoryName,
				Type:       e.Type,
				Total:      decimal.Zero,
			}
			byCategory[e.CategoryID] = ct
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
		grand = grand.Add(e.Amount)
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		ct.Percentage = Percentage(ct.Total, grand)
		totals = append(totals, *ct)
	}
	slices.SortFunc(totals, func(a, b CategoryTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return totals
}
