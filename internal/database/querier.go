package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Querier interface {
	CountCategoryTransactions(ctx context.Context, arg GetCategoryByIDParams) (int64, error)
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	DeleteBudget(ctx context.Context, arg GetBudgetByIDParams) (int64, error)
	DeleteCategory(ctx context.Context, arg GetCategoryByIDParams) (int64, error)
	DeleteTransaction(ctx context.Context, arg GetTransactionByIDParams) (int64, error)
	DeleteUsers(ctx context.Context) error
	GetBudgetByID(ctx context.Context, arg GetBudgetByIDParams) (BudgetRow, error)
	GetBudgetForCategoryPeriod(ctx context.Context, arg GetBudgetForCategoryPeriodParams) (BudgetRow, error)
	GetBudgets(ctx context.Context, arg GetBudgetsParams) ([]BudgetRow, error)
	GetCategories(ctx context.Context, arg GetCategoriesParams) ([]Category, error)
	GetCategoriesByName(ctx context.Context, arg GetCategoriesByNameParams) ([]Category, error)
	GetCategoryByID(ctx context.Context, arg GetCategoryByIDParams) (Category, error)
	GetCategoryForUpdate(ctx context.Context, arg GetCategoryByIDParams) (Category, error)
	GetTransactionByID(ctx context.Context, arg GetTransactionByIDParams) (TransactionRow, error)
	GetTransactions(ctx context.Context, arg GetTransactionsParams) ([]TransactionRow, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByName(ctx context.Context, name string) (User, error)
	GetUserCount(ctx context.Context) (int64, error)
	SumCategorySpending(ctx context.Context, arg SumCategorySpendingParams) (decimal.Decimal, error)
	UpdateBudget(ctx context.Context, arg UpdateBudgetParams) (Budget, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error)
	UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error)
	UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error
	UpdateUserProfile(ctx context.Context, arg UpdateUserProfileParams) (User, error)
	UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (UpsertBudgetRow, error)
	UserExists(ctx context.Context, arg UserExistsParams) (bool, error)
}

var _ Querier = (*Queries)(nil)
