// Package memstore is an in-memory database.Store. It mirrors the constraints
// of the Postgres schema closely enough for handler tests: unique keys,
// owner-scoped foreign keys, restrict/cascade deletes and check constraints
// fail with the same SQLSTATE codes the real drivers report.
package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

type state struct {
	users        map[uuid.UUID]database.User
	categories   map[uuid.UUID]database.Category
	transactions map[uuid.UUID]database.Transaction
	budgets      map[uuid.UUID]database.Budget
	clock        time.Time
}

func (s *state) clone() *state {
	return &state{
		users:        maps.Clone(s.users),
		categories:   maps.Clone(s.categories),
		transactions: maps.Clone(s.transactions),
		budgets:      maps.Clone(s.budgets),
		clock:        s.clock,
	}
}

// now returns strictly increasing timestamps so created_at ordering is stable.
func (s *state) now() time.Time {
	t := time.Now().UTC().Truncate(time.Microsecond)
	if !t.After(s.clock) {
		t = s.clock.Add(time.Microsecond)
	}
	s.clock = t
	return t
}

type Store struct {
	mu   sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: &state{
		users:        map[uuid.UUID]database.User{},
		categories:   map[uuid.UUID]database.Category{},
		transactions: map[uuid.UUID]database.Transaction{},
		budgets:      map[uuid.UUID]database.Budget{},
	}}
}

var _ database.Store = (*Store)(nil)

// ExecTx runs fn against a private copy and publishes it only when fn succeeds.
// Other callers wait until the transaction finishes.
func (s *Store) ExecTx(ctx context.Context, fn func(database.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &Store{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func violation(code, constraint string) error {
	return &pq.Error{Code: pq.ErrorCode(code), Constraint: constraint}
}

func uniqueViolation(constraint string) error {
	return violation("23505", constraint)
}

func foreignKeyViolation(constraint string) error {
	return violation("23503", constraint)
}

func checkViolation(constraint string) error {
	return violation("23514", constraint)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// USERS

func (s *Store) CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(arg.Email)
	for _, u := range s.data.users {
		if u.Name == arg.Name {
			return database.User{}, uniqueViolation("users_name_key")
		}
		if u.Email == email {
			return database.User{}, uniqueViolation("users_email_key")
		}
	}
	now := s.data.now()
	u := database.User{
		ID:             uuid.New(),
		CreatedAt:      now,
		UpdatedAt:      now,
		Name:           arg.Name,
		Email:          email,
		HashedPassword: arg.HashedPassword,
	}
	s.data.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[id]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range s.data.users {
		if u.Email == email {
			return u, nil
		}
	}
	return database.User{}, database.ErrNotFound
}

func (s *Store) GetUserByName(ctx context.Context, name string) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.data.users {
		if u.Name == name {
			return u, nil
		}
	}
	return database.User{}, database.ErrNotFound
}

func (s *Store) UserExists(ctx context.Context, arg database.UserExistsParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(arg.Email)
	for _, u := range s.data.users {
		if u.ID == arg.ExcludeID {
			continue
		}
		if u.Email == email || u.Name == arg.Name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[arg.ID]
	if !ok {
		return database.User{}, database.ErrNotFound
	}
	email := strings.ToLower(arg.Email)
	for _, other := range s.data.users {
		if other.ID == arg.ID {
			continue
		}
		if other.Name == arg.Name {
			return database.User{}, uniqueViolation("users_name_key")
		}
		if other.Email == email {
			return database.User{}, uniqueViolation("users_email_key")
		}
	}
	u.Name = arg.Name
	u.Email = email
	u.UpdatedAt = s.data.now()
	s.data.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, arg database.UpdateUserPasswordParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.data.users[arg.ID]; ok {
		u.HashedPassword = arg.HashedPassword
		u.UpdatedAt = s.data.now()
		s.data.users[u.ID] = u
	}
	return nil
}

func (s *Store) GetUserCount(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.data.users)), nil
}

func (s *Store) DeleteUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.data.users)
	clear(s.data.categories)
	clear(s.data.transactions)
	clear(s.data.budgets)
	return nil
}

// CATEGORIES

func (s *Store) CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[arg.UserID]; !ok {
		return database.Category{}, foreignKeyViolation("categories_user_id_fkey")
	}
	if !validType(arg.Type) {
		return database.Category{}, checkViolation("categories_type_check")
	}
	if s.data.categoryTaken(uuid.Nil, arg.UserID, arg.Name, arg.Type) {
		return database.Category{}, uniqueViolation("categories_owner_name_type_key")
	}
	now := s.data.now()
	c := database.Category{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    arg.UserID,
		Name:      arg.Name,
		Type:      arg.Type,
	}
	s.data.categories[c.ID] = c
	return c, nil
}

func (st *state) categoryTaken(self, userID uuid.UUID, name, categoryType string) bool {
	for _, c := range st.categories {
		if c.ID != self && c.UserID == userID && c.Name == name && c.Type == categoryType {
			return true
		}
	}
	return false
}

func (st *state) ownedCategory(id, userID uuid.UUID) (database.Category, bool) {
	c, ok := st.categories[id]
	if !ok || c.UserID != userID {
		return database.Category{}, false
	}
	return c, true
}

func (s *Store) GetCategoryByID(ctx context.Context, arg database.GetCategoryByIDParams) (database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data.ownedCategory(arg.ID, arg.UserID)
	if !ok {
		return database.Category{}, database.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCategoryForUpdate(ctx context.Context, arg database.GetCategoryByIDParams) (database.Category, error) {
	return s.GetCategoryByID(ctx, arg)
}

func (s *Store) GetCategoriesByName(ctx context.Context, arg database.GetCategoriesByNameParams) ([]database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []database.Category{}
	for _, c := range s.data.categories {
		if c.UserID == arg.UserID && c.Name == arg.Name {
			items = append(items, c)
		}
	}
	slices.SortFunc(items, func(a, b database.Category) int { return cmp.Compare(a.Type, b.Type) })
	return items, nil
}

func (s *Store) GetCategories(ctx context.Context, arg database.GetCategoriesParams) ([]database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []database.Category{}
	for _, c := range s.data.categories {
		if c.UserID != arg.UserID {
			continue
		}
		if arg.Type != "" && c.Type != arg.Type {
			continue
		}
		items = append(items, c)
	}
	slices.SortFunc(items, func(a, b database.Category) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return items, nil
}

func (s *Store) UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.data.ownedCategory(arg.ID, arg.UserID)
	if !ok {
		return database.Category{}, database.ErrNotFound
	}
	if !validType(arg.Type) {
		return database.Category{}, checkViolation("categories_type_check")
	}
	if s.data.categoryTaken(c.ID, arg.UserID, arg.Name, arg.Type) {
		return database.Category{}, uniqueViolation("categories_owner_name_type_key")
	}
	c.Name = arg.Name
	c.Type = arg.Type
	c.UpdatedAt = s.data.now()
	s.data.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, arg database.GetCategoryByIDParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.ownedCategory(arg.ID, arg.UserID); !ok {
		return 0, nil
	}
	for _, t := range s.data.transactions {
		if t.CategoryID == arg.ID {
			return 0, foreignKeyViolation("transactions_category_owner_fkey")
		}
	}
	for id, b := range s.data.budgets {
		if b.CategoryID == arg.ID {
			delete(s.data.budgets, id)
		}
	}
	delete(s.data.categories, arg.ID)
	return 1, nil
}

func (s *Store) CountCategoryTransactions(ctx context.Context, arg database.GetCategoryByIDParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, t := range s.data.transactions {
		if t.CategoryID == arg.ID && t.UserID == arg.UserID {
			count++
		}
	}
	return count, nil
}

// TRANSACTIONS

func (s *Store) CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.data.checkTransaction(arg.CategoryID, arg.UserID, arg.Amount, arg.Type); err != nil {
		return database.Transaction{}, err
	}
	now := s.data.now()
	t := database.Transaction{
		ID:              uuid.New(),
		CreatedAt:       now,
		UpdatedAt:       now,
		UserID:          arg.UserID,
		CategoryID:      arg.CategoryID,
		Amount:          arg.Amount,
		Description:     arg.Description,
		TransactionDate: dateOnly(arg.TransactionDate),
		Type:            arg.Type,
	}
	s.data.transactions[t.ID] = t
	return t, nil
}

func (st *state) checkTransaction(categoryID, userID uuid.UUID, amount decimal.Decimal, txnType string) error {
	if _, ok := st.ownedCategory(categoryID, userID); !ok {
		return foreignKeyViolation("transactions_category_owner_fkey")
	}
	if !amount.IsPositive() {
		return checkViolation("transactions_amount_check")
	}
	if !validType(txnType) {
		return checkViolation("transactions_type_check")
	}
	return nil
}

func (st *state) transactionRow(t database.Transaction) database.TransactionRow {
	return database.TransactionRow{
		Transaction:  t,
		CategoryName: st.categories[t.CategoryID].Name,
	}
}

func (s *Store) GetTransactionByID(ctx context.Context, arg database.GetTransactionByIDParams) (database.TransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.transactions[arg.ID]
	if !ok || t.UserID != arg.UserID {
		return database.TransactionRow{}, database.ErrNotFound
	}
	return s.data.transactionRow(t), nil
}

func (s *Store) GetTransactions(ctx context.Context, arg database.GetTransactionsParams) ([]database.TransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []database.TransactionRow{}
	for _, t := range s.data.transactions {
		if t.UserID != arg.UserID {
			continue
		}
		if arg.StartDate.Valid && t.TransactionDate.Before(dateOnly(arg.StartDate.Time)) {
			continue
		}
		if arg.EndDate.Valid && t.TransactionDate.After(dateOnly(arg.EndDate.Time)) {
			continue
		}
		if arg.CategoryID.Valid && t.CategoryID != arg.CategoryID.UUID {
			continue
		}
		if arg.Type != "" && t.Type != arg.Type {
			continue
		}
		items = append(items, s.data.transactionRow(t))
	}
	slices.SortFunc(items, func(a, b database.TransactionRow) int {
		if c := b.TransactionDate.Compare(a.TransactionDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if arg.Limit > 0 && len(items) > int(arg.Limit) {
		items = items[:arg.Limit]
	}
	return items, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, arg database.UpdateTransactionParams) (database.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.transactions[arg.ID]
	if !ok || t.UserID != arg.UserID {
		return database.Transaction{}, database.ErrNotFound
	}
	if err := s.data.checkTransaction(arg.CategoryID, arg.UserID, arg.Amount, arg.Type); err != nil {
		return database.Transaction{}, err
	}
	t.CategoryID = arg.CategoryID
	t.Amount = arg.Amount
	t.Description = arg.Description
	t.TransactionDate = dateOnly(arg.TransactionDate)
	t.Type = arg.Type
	t.UpdatedAt = s.data.now()
	s.data.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, arg database.GetTransactionByIDParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.data.transactions[arg.ID]
	if !ok || t.UserID != arg.UserID {
		return 0, nil
	}
	delete(s.data.transactions, arg.ID)
	return 1, nil
}

func (s *Store) SumCategorySpending(ctx context.Context, arg database.SumCategorySpendingParams) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := dateOnly(arg.StartDate), dateOnly(arg.EndDate)
	total := decimal.Zero
	for _, t := range s.data.transactions {
		if t.UserID != arg.UserID || t.CategoryID != arg.CategoryID {
			continue
		}
		if t.TransactionDate.Before(start) || t.TransactionDate.After(end) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

// BUDGETS

func (st *state) budgetRow(b database.Budget) database.BudgetRow {
	c := st.categories[b.CategoryID]
	return database.BudgetRow{Budget: b, CategoryName: c.Name, CategoryType: c.Type}
}

func (st *state) findBudget(self, userID, categoryID uuid.UUID, year, month int32) (database.Budget, bool) {
	for _, b := range st.budgets {
		if b.ID != self && b.UserID == userID && b.CategoryID == categoryID &&
			b.PeriodYear == year && b.PeriodMonth == month {
			return b, true
		}
	}
	return database.Budget{}, false
}

// maxNumeric is the first value a NUMERIC(12, 2) column cannot hold.
var maxNumeric = decimal.New(1, 10)

func numericOutOfRange() error {
	return violation("22003", "")
}

func checkBudget(amount decimal.Decimal, year, month int32) error {
	if amount.GreaterThanOrEqual(maxNumeric) {
		return numericOutOfRange()
	}
	if amount.IsNegative() {
		return checkViolation("budgets_amount_check")
	}
	if year < 1900 || year > 9999 {
		return checkViolation("budgets_period_year_check")
	}
	if month < 1 || month > 12 {
		return checkViolation("budgets_period_month_check")
	}
	return nil
}

func (s *Store) UpsertBudget(ctx context.Context, arg database.UpsertBudgetParams) (database.UpsertBudgetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.ownedCategory(arg.CategoryID, arg.UserID); !ok {
		return database.UpsertBudgetRow{}, foreignKeyViolation("budgets_category_owner_fkey")
	}
	if err := checkBudget(arg.Amount, arg.PeriodYear, arg.PeriodMonth); err != nil {
		return database.UpsertBudgetRow{}, err
	}
	now := s.data.now()
	if b, ok := s.data.findBudget(uuid.Nil, arg.UserID, arg.CategoryID, arg.PeriodYear, arg.PeriodMonth); ok {
		sum := b.Amount.Add(arg.Amount)
		if sum.GreaterThanOrEqual(maxNumeric) {
			return database.UpsertBudgetRow{}, numericOutOfRange()
		}
		b.Amount = sum
		b.UpdatedAt = now
		s.data.budgets[b.ID] = b
		return database.UpsertBudgetRow{Budget: b, Inserted: false}, nil
	}
	b := database.Budget{
		ID:          uuid.New(),
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      arg.UserID,
		CategoryID:  arg.CategoryID,
		Amount:      arg.Amount,
		PeriodYear:  arg.PeriodYear,
		PeriodMonth: arg.PeriodMonth,
	}
	s.data.budgets[b.ID] = b
	return database.UpsertBudgetRow{Budget: b, Inserted: true}, nil
}

func (s *Store) GetBudgetByID(ctx context.Context, arg database.GetBudgetByIDParams) (database.BudgetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.budgets[arg.ID]
	if !ok || b.UserID != arg.UserID {
		return database.BudgetRow{}, database.ErrNotFound
	}
	return s.data.budgetRow(b), nil
}

func (s *Store) GetBudgetForCategoryPeriod(ctx context.Context, arg database.GetBudgetForCategoryPeriodParams) (database.BudgetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.findBudget(uuid.Nil, arg.UserID, arg.CategoryID, arg.PeriodYear, arg.PeriodMonth)
	if !ok {
		return database.BudgetRow{}, database.ErrNotFound
	}
	return s.data.budgetRow(b), nil
}

func (s *Store) GetBudgets(ctx context.Context, arg database.GetBudgetsParams) ([]database.BudgetRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []database.BudgetRow{}
	for _, b := range s.data.budgets {
		if b.UserID != arg.UserID {
			continue
		}
		if arg.PeriodYear.Valid && b.PeriodYear != arg.PeriodYear.Int32 {
			continue
		}
		if arg.PeriodMonth.Valid && b.PeriodMonth != arg.PeriodMonth.Int32 {
			continue
		}
		items = append(items, s.data.budgetRow(b))
	}
	slices.SortFunc(items, func(a, b database.BudgetRow) int {
		if c := cmp.Compare(b.PeriodYear, a.PeriodYear); c != 0 {
			return c
		}
		if c := cmp.Compare(b.PeriodMonth, a.PeriodMonth); c != 0 {
			return c
		}
		return cmp.Compare(a.CategoryName, b.CategoryName)
	})
	return items, nil
}

func (s *Store) UpdateBudget(ctx context.Context, arg database.UpdateBudgetParams) (database.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.budgets[arg.ID]
	if !ok || b.UserID != arg.UserID {
		return database.Budget{}, database.ErrNotFound
	}
	if err := checkBudget(arg.Amount, arg.PeriodYear, arg.PeriodMonth); err != nil {
		return database.Budget{}, err
	}
	if _, taken := s.data.findBudget(b.ID, b.UserID, b.CategoryID, arg.PeriodYear, arg.PeriodMonth); taken {
		return database.Budget{}, uniqueViolation("budgets_owner_category_period_key")
	}
	b.Amount = arg.Amount
	b.PeriodYear = arg.PeriodYear
	b.PeriodMonth = arg.PeriodMonth
	b.UpdatedAt = s.data.now()
	s.data.budgets[b.ID] = b
	return b, nil
}

func (s *Store) DeleteBudget(ctx context.Context, arg database.GetBudgetByIDParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.budgets[arg.ID]
	if !ok || b.UserID != arg.UserID {
		return 0, nil
	}
	delete(s.data.budgets, arg.ID)
	return 1, nil
}

func validType(t string) bool {
	return t == database.TypeIncome || t == database.TypeExpense
}
