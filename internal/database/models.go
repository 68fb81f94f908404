package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Email          string
	HashedPassword string
}

type Category struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uuid.UUID
	Name      string
	Type      string
}

type Transaction struct {
	ID              uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserID          uuid.UUID
	CategoryID      uuid.UUID
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	Type            string
}

// TransactionRow is a transaction joined with the name of its category.
type TransactionRow struct {
	Transaction
	CategoryName string
}

type Budget struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uuid.UUID
	CategoryID  uuid.UUID
	Amount      decimal.Decimal
	PeriodYear  int32
	PeriodMonth int32
}

// BudgetRow is a budget joined with its category's name and type.
type BudgetRow struct {
	Budget
	CategoryName string
	CategoryType string
}
