package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userFromDB(u database.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func categoryFromDB(c database.Category) Category {
	return Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	Type         string          `json:"type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func transactionFromDB(t database.Transaction, categoryName string) Transaction {
	return Transaction{
		ID:           t.ID,
		CategoryID:   t.CategoryID,
		CategoryName: categoryName,
		Amount:       t.Amount,
		Description:  t.Description,
		Date:         t.TransactionDate.Format(dateLayout),
		Type:         t.Type,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func transactionsFromDB(rows []database.TransactionRow) []Transaction {
	txns := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, transactionFromDB(row.Transaction, row.CategoryName))
	}
	return txns
}

func entriesFromDB(rows []database.TransactionRow) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, ledger.Entry{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Type:         row.Type,
			Amount:       row.Amount,
			Date:         row.TransactionDate,
		})
	}
	return entries
}

type Budget struct {
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CategoryType string          `json:"category_type"`
	Amount       decimal.Decimal `json:"amount"`
	Month        int32           `json:"month"`
	Year         int32           `json:"year"`
	Period       string          `json:"period"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func budgetFromDB(b database.Budget, category database.Category) Budget {
	return Budget{
		ID:           b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: category.Name,
		CategoryType: category.Type,
		Amount:       b.Amount,
		Month:        b.PeriodMonth,
		Year:         b.PeriodYear,
		Period:       budgetPeriod(b).String(),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func budgetRowFromDB(row database.BudgetRow) Budget {
	return budgetFromDB(row.Budget, database.Category{
		ID:   row.CategoryID,
		Name: row.CategoryName,
		Type: row.CategoryType,
	})
}

func budgetPeriod(b database.Budget) ledger.Period {
	return ledger.Period{Year: int(b.PeriodYear), Month: time.Month(b.PeriodMonth)}
}

func budgetLinesFromDB(rows []database.BudgetRow) []ledger.BudgetLine {
	lines := make([]ledger.BudgetLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, ledger.BudgetLine{
			BudgetID:     row.ID,
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			CategoryType: row.CategoryType,
			Amount:       row.Amount,
		})
	}
	return lines
}
