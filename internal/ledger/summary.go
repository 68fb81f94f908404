package ledger

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// BudgetLine is one budgeted amount for a category.
type BudgetLine struct {
	BudgetID     uuid.UUID
	CategoryID   uuid.UUID
	CategoryName string
	CategoryType string
	Amount       decimal.Decimal
}

// Entry is the slice of a transaction the aggregations need.
type Entry struct {
	CategoryID   uuid.UUID
	CategoryName string
	Type         string
	Amount       decimal.Decimal
	Date         time.Time
}

type CategorySummary struct {
	BudgetID   uuid.UUID       `json:"budget_id"`
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage int64           `json:"percentage"`
	OverBudget bool            `json:"over_budget"`
}

type Summary struct {
	Period      string            `json:"period"`
	TotalBudget decimal.Decimal   `json:"total_budget"`
	TotalSpent  decimal.Decimal   `json:"total_spent"`
	Percentage  int64             `json:"percentage"`
	Categories  []CategorySummary `json:"categories"`
}

// Summarize compares each budget with what was spent in its category during
// the period. Totals cover expense categories only.
func Summarize(period Period, budgets []BudgetLine, entries []Entry) Summary {
	spent := make(map[uuid.UUID]decimal.Decimal)
	for _, e := range entries {
		if !period.Contains(e.Date) {
			continue
		}
		spent[e.CategoryID] = spent[e.CategoryID].Add(e.Amount)
	}

	summary := Summary{
		Period:      period.String(),
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
		Categories:  make([]CategorySummary, 0, len(budgets)),
	}
	for _, b := range budgets {
		s := spent[b.CategoryID]
		summary.Categories = append(summary.Categories, CategorySummary{
			BudgetID:   b.BudgetID,
			CategoryID: b.CategoryID,
			Name:       b.CategoryName,
			Type:       b.CategoryType,
			Budget:     b.Amount,
			Spent:      s,
			Remaining:  b.Amount.Sub(s),
			Percentage: Percentage(s, b.Amount),
			OverBudget: s.GreaterThan(b.Amount),
		})
		if b.CategoryType == TypeExpense {
			summary.TotalBudget = summary.TotalBudget.Add(b.Amount)
			summary.TotalSpent = summary.TotalSpent.Add(s)
		}
	}
	summary.Percentage = Percentage(summary.TotalSpent, summary.TotalBudget)

	slices.SortStableFunc(summary.Categories, func(a, b CategorySummary) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryID.String(), b.CategoryID.String())
	})
	return summary
}

var hundred = decimal.NewFromInt(100)

// Percentage is part/whole*100 rounded half away from zero, or 0 when whole
// is not positive.
func Percentage(part, whole decimal.Decimal) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Mul(hundred).Div(whole).Round(0).IntPart()
}
