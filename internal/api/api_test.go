package api

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/events"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
	"github.com/YouWantToPinch/pocketwise-api/internal/memstore"
	pt "github.com/YouWantToPinch/pocketwise-api/internal/pwtest"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type httpTestCase struct {
	Name        string
	RequestFunc func() *http.Request
	Expected    int
	Kind        string
}

func (tc *httpTestCase) Handle(t *testing.T, client *APITestClient) {
	t.Helper()
	client.testState = t
	client.Request(tc.RequestFunc(), tc.Expected)
	if tc.Kind != "" {
		assert.Equal(t, tc.Kind, client.ErrorKind())
	}
}

func Test_HealthAndAdmin(t *testing.T) {
	c, _ := newTestClient(t)

	c.Request(pt.MakeRequest(http.MethodGet, "/health", "", nil), http.StatusOK)
	assert.Equal(t, "ok", c.MustString("status"))
	c.Request(pt.MakeRequest(http.MethodGet, "/api/healthz", "", nil), http.StatusOK)

	c.Request(pt.Register("user1", "user1@example.com", testPassword), http.StatusCreated)
	c.Request(pt.Register("user2", "user2@example.com", testPassword), http.StatusCreated)

	c.Request(pt.GetUserCount(), http.StatusOK)
	count, err := c.GetJSONFieldAsInt64("count")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	c.Request(pt.DeleteAllUsers(), http.StatusOK)
	c.Request(pt.GetUserCount(), http.StatusOK)
	count, err = c.GetJSONFieldAsInt64("count")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func Test_AdminRoutesAreDevOnly(t *testing.T) {
	cfg, _ := newTestConfig()
	cfg.platform = "prod"
	c := &APITestClient{Mux: SetupMux(cfg), testState: t}

	c.Request(pt.DeleteAllUsers(), http.StatusForbidden)
	assert.Equal(t, "forbidden", c.ErrorKind())
	c.Request(pt.GetUserCount(), http.StatusForbidden)
}

func Test_AdminRoutesOffWithoutPlatform(t *testing.T) {
	for _, key := range []string{"PLATFORM", "CONFIG_FILE", "JWT_SECRET", "DB_DRIVER", "AMQP_URL", "PORT", "TOKEN_TTL"} {
		t.Setenv(key, "")
	}
	t.Setenv("SECRET", "a-real-production-secret-value")

	cfg := &APIConfig{}
	require.NoError(t, cfg.Init("", "postgres://unused"))
	assert.Equal(t, "prod", cfg.platform)
	cfg.db = memstore.New()

	c := &APITestClient{Mux: SetupMux(cfg), testState: t}
	c.Request(pt.Register("alice", "a@x.com", testPassword), http.StatusCreated)
	c.Request(pt.DeleteAllUsers(), http.StatusForbidden)
	assert.Equal(t, "forbidden", c.ErrorKind())

	c.Request(pt.Login("a@x.com", testPassword), http.StatusOK)
}

func Test_RegisterAndLogin(t *testing.T) {
	c, _ := newTestClient(t)

	c.Request(pt.Register("alice", "a@x.com", testPassword), http.StatusCreated)
	registered, err := pt.DecodeJSON[authResponse](c.W)
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Name)
	assert.Equal(t, "a@x.com", registered.User.Email)
	assert.NotContains(t, c.W.Body.String(), "password")

	cases := []httpTestCase{
		{
			Name:        "same email is rejected",
			RequestFunc: func() *http.Request { return pt.Register("bob", "a@x.com", testPassword) },
			Expected:    http.StatusBadRequest,
			Kind:        "conflict",
		},
		{
			Name:        "email comparison ignores case",
			RequestFunc: func() *http.Request { return pt.Register("bob", "A@X.com", testPassword) },
			Expected:    http.StatusBadRequest,
			Kind:        "conflict",
		},
		{
			Name:        "same name is rejected",
			RequestFunc: func() *http.Request { return pt.Register("alice", "other@x.com", testPassword) },
			Expected:    http.StatusBadRequest,
			Kind:        "conflict",
		},
		{
			Name:        "malformed email",
			RequestFunc: func() *http.Request { return pt.Register("carol", "not-an-email", testPassword) },
			Expected:    http.StatusBadRequest,
			Kind:        "validation",
		},
		{
			Name:        "short password",
			RequestFunc: func() *http.Request { return pt.Register("carol", "c@x.com", "short") },
			Expected:    http.StatusBadRequest,
			Kind:        "validation",
		},
		{
			Name:        "missing name",
			RequestFunc: func() *http.Request { return pt.Register("", "c@x.com", testPassword) },
			Expected:    http.StatusBadRequest,
			Kind:        "validation",
		},
		{
			Name:        "login by email",
			RequestFunc: func() *http.Request { return pt.Login("a@x.com", testPassword) },
			Expected:    http.StatusOK,
		},
		{
			Name:        "login by email in another case",
			RequestFunc: func() *http.Request { return pt.Login("A@x.COM", testPassword) },
			Expected:    http.StatusOK,
		},
		{
			Name:        "login by username",
			RequestFunc: func() *http.Request { return pt.LoginByName("alice", testPassword) },
			Expected:    http.StatusOK,
		},
		{
			Name:        "missing password",
			RequestFunc: func() *http.Request { return pt.Login("a@x.com", "") },
			Expected:    http.StatusBadRequest,
			Kind:        "validation",
		},
	}
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			tc.Handle(t, c)
		})
	}
}

func Test_LoginFailuresAreIndistinguishable(t *testing.T) {
	c, _ := newTestClient(t)
	c.Request(pt.Register("alice", "a@x.com", testPassword), http.StatusCreated)

	wrongPassword := c.Request(pt.Login("a@x.com", "wrong-password"), http.StatusUnauthorized)
	unknownEmail := c.Request(pt.Login("nobody@x.com", testPassword), http.StatusUnauthorized)
	unknownName := c.Request(pt.LoginByName("nobody", testPassword), http.StatusUnauthorized)

	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.JSONEq(t, wrongPassword.Body.String(), unknownName.Body.String())
	assert.Equal(t, "unauthenticated", c.ErrorKind())
}

func Test_TokenValidation(t *testing.T) {
	c, _ := newTestClient(t)
	c.Request(pt.Register("alice", "a@x.com", testPassword), http.StatusCreated)
	registered, err := pt.DecodeJSON[authResponse](c.W)
	require.NoError(t, err)

	c.Request(pt.Me(registered.Token), http.StatusOK)
	me, err := pt.DecodeJSON[User](c.W)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, me.ID)

	expired, err := auth.MakeJWT(registered.User.ID, jwt.SigningMethodHS256, testSecret, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.MakeJWT(registered.User.ID, jwt.SigningMethodHS256, "some-other-secret", time.Hour)
	require.NoError(t, err)

	c.Request(pt.CreateCategory(registered.Token, "Food", "expense"), http.StatusCreated)

	for name, token := range map[string]string{
		"no token":       "",
		"garbage token":  "not.a.jwt",
		"expired token":  expired,
		"foreign secret": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			c.testState = t
			c.Request(pt.Me(token), http.StatusUnauthorized)
			assert.Equal(t, "unauthenticated", c.ErrorKind())
			c.Request(pt.GetCategories(token, ""), http.StatusUnauthorized)

			c.Request(pt.CreateCategory(token, "Rent", "expense"), http.StatusUnauthorized)
			c.Request(pt.CreateTransaction(token, pt.Txn{
				Category: "Food", Amount: "12.50", Date: "2024-05-01", Type: "expense",
			}), http.StatusUnauthorized)
			c.Request(pt.SetBudget(token, "Food", "100", 5, 2024), http.StatusUnauthorized)
		})
	}

	// rejected writes leave nothing behind
	c.testState = t
	c.Request(pt.GetCategories(registered.Token, ""), http.StatusOK)
	categories, err := pt.DecodeJSON[[]Category](c.W)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Food", categories[0].Name)

	c.Request(pt.GetTransactions(registered.Token, nil), http.StatusOK)
	txns, err := pt.DecodeJSON[[]Transaction](c.W)
	require.NoError(t, err)
	assert.Empty(t, txns)

	c.Request(pt.GetBudgets(registered.Token, ""), http.StatusOK)
	budgets, err := pt.DecodeJSON[[]Budget](c.W)
	require.NoError(t, err)
	assert.Empty(t, budgets)

	// a valid token for a user that no longer exists
	c.testState = t
	c.Request(pt.DeleteAllUsers(), http.StatusOK)
	c.Request(pt.Me(registered.Token), http.StatusNotFound)
}

func Test_ProfileAndPassword(t *testing.T) {
	c, _ := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")
	c.Request(pt.Register("bob", "b@x.com", testPassword), http.StatusCreated)

	c.Request(pt.UpdateProfile(jwt1, "alice2", ""), http.StatusOK)
	assert.Equal(t, "alice2", c.MustString("name"))
	assert.Equal(t, "a@x.com", c.MustString("email"))

	c.Request(pt.UpdateProfile(jwt1, "", "b@x.com"), http.StatusBadRequest)
	assert.Equal(t, "conflict", c.ErrorKind())
	c.Request(pt.UpdateProfile(jwt1, "", "bad email"), http.StatusBadRequest)
	assert.Equal(t, "validation", c.ErrorKind())

	c.Request(pt.ChangePassword(jwt1, "wrong-password", "newsecret123"), http.StatusUnauthorized)
	c.Request(pt.ChangePassword(jwt1, testPassword, "short"), http.StatusBadRequest)
	c.Request(pt.ChangePassword(jwt1, testPassword, "newsecret123"), http.StatusOK)

	c.Request(pt.Login("a@x.com", testPassword), http.StatusUnauthorized)
	c.Request(pt.Login("a@x.com", "newsecret123"), http.StatusOK)
}

// user A's scenario: register, add Food, spend 50, budget 200, summarize May.
func Test_BudgetSummaryScenario(t *testing.T) {
	c, _ := newTestClient(t)

	c.Request(pt.Register("a", "a@x.com", "secret123"), http.StatusCreated)
	jwtA := c.MustString("token")
	c.Request(pt.Register("b", "a@x.com", "secret123"), http.StatusBadRequest)

	c.Request(pt.CreateCategory(jwtA, "Food", "expense"), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwtA, pt.Txn{
		Category: "Food",
		Amount:   50,
		Type:     "expense",
		Date:     "2024-05-01",
	}), http.StatusCreated)
	c.Request(pt.SetBudget(jwtA, "Food", 200, 5, 2024), http.StatusCreated)

	c.Request(pt.GetBudgetSummary(jwtA, "2024-05"), http.StatusOK)
	summary, err := pt.DecodeJSON[ledger.Summary](c.W)
	require.NoError(t, err)

	assert.Equal(t, "2024-05", summary.Period)
	assertDecimal(t, "200", summary.TotalBudget)
	assertDecimal(t, "50", summary.TotalSpent)
	assert.Equal(t, int64(25), summary.Percentage)
	require.Len(t, summary.Categories, 1)
	food := summary.Categories[0]
	assert.Equal(t, "Food", food.Name)
	assertDecimal(t, "200", food.Budget)
	assertDecimal(t, "50", food.Spent)
	assertDecimal(t, "150", food.Remaining)
	assert.Equal(t, int64(25), food.Percentage)
	assert.False(t, food.OverBudget)

	// month and year as separate parameters give the same answer
	c.Request(pt.MakeRequest(http.MethodGet, "/api/budgets/summary?month=5&year=2024", jwtA, nil), http.StatusOK)
	again, err := pt.DecodeJSON[ledger.Summary](c.W)
	require.NoError(t, err)
	assert.Equal(t, summary.Percentage, again.Percentage)

	c.Request(pt.GetBudgetSummary(jwtA, ""), http.StatusBadRequest)
	c.Request(pt.GetBudgetSummary(jwtA, "2024-13"), http.StatusBadRequest)
}

func Test_CategoryLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")

	c.Request(pt.CreateCategory(jwt1, "Salary", "income"), http.StatusCreated)
	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusCreated)
	foodID := c.MustString("id")
	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusBadRequest)
	assert.Equal(t, "conflict", c.ErrorKind())
	c.Request(pt.CreateCategory(jwt1, "Food", "income"), http.StatusCreated)
	c.Request(pt.CreateCategory(jwt1, "Rent", "bills"), http.StatusBadRequest)
	c.Request(pt.CreateCategory(jwt1, "", "expense"), http.StatusBadRequest)

	c.Request(pt.GetCategories(jwt1, ""), http.StatusOK)
	all, err := pt.DecodeJSON[[]Category](c.W)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Food", all[0].Name)
	assert.Equal(t, "Salary", all[2].Name)

	c.Request(pt.GetCategories(jwt1, "expense"), http.StatusOK)
	expenses, err := pt.DecodeJSON[[]Category](c.W)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, foodID, expenses[0].ID.String())

	// renaming onto an existing name and type collides
	c.Request(pt.CreateCategory(jwt1, "Groceries", "expense"), http.StatusCreated)
	groceriesID := c.MustString("id")
	c.Request(pt.UpdateCategory(jwt1, groceriesID, "Food", "expense"), http.StatusBadRequest)
	assert.Equal(t, "conflict", c.ErrorKind())
	c.Request(pt.UpdateCategory(jwt1, groceriesID, "Supermarket", ""), http.StatusOK)
	assert.Equal(t, "Supermarket", c.MustString("name"))
	assert.Equal(t, "expense", c.MustString("type"))

	// a category with transactions cannot be deleted or change type
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: "12.50", Date: "2024-05-02"}), http.StatusCreated)
	txnID := c.MustString("id")
	c.Request(pt.DeleteCategory(jwt1, foodID), http.StatusBadRequest)
	assert.Equal(t, "conflict", c.ErrorKind())
	c.Request(pt.UpdateCategory(jwt1, foodID, "", "income"), http.StatusBadRequest)
	c.Request(pt.GetCategory(jwt1, foodID), http.StatusOK)
	c.Request(pt.GetTransaction(jwt1, txnID), http.StatusOK)

	c.Request(pt.DeleteTransaction(jwt1, txnID), http.StatusOK)
	c.Request(pt.DeleteCategory(jwt1, foodID), http.StatusOK)
	c.Request(pt.GetCategory(jwt1, foodID), http.StatusNotFound)
	c.Request(pt.DeleteCategory(jwt1, foodID), http.StatusNotFound)
	c.Request(pt.GetCategory(jwt1, "not-a-uuid"), http.StatusBadRequest)
}

func Test_OwnershipIsolation(t *testing.T) {
	c, _ := newTestClient(t)
	jwtA := c.registerAndLogin("alice", "a@x.com")
	jwtB := c.registerAndLogin("bob", "b@x.com")

	c.Request(pt.CreateCategory(jwtA, "Food", "expense"), http.StatusCreated)
	categoryID := c.MustString("id")
	c.Request(pt.CreateTransaction(jwtA, pt.Txn{CategoryID: categoryID, Amount: 20, Date: "2024-05-03"}), http.StatusCreated)
	txnID := c.MustString("id")
	c.Request(pt.SetBudget(jwtA, "Food", 100, 5, 2024), http.StatusCreated)
	budgetID := c.MustString("id")

	cases := []httpTestCase{
		{Name: "get category", RequestFunc: func() *http.Request { return pt.GetCategory(jwtB, categoryID) }},
		{Name: "update category", RequestFunc: func() *http.Request { return pt.UpdateCategory(jwtB, categoryID, "Mine", "expense") }},
		{Name: "delete category", RequestFunc: func() *http.Request { return pt.DeleteCategory(jwtB, categoryID) }},
		{Name: "get transaction", RequestFunc: func() *http.Request { return pt.GetTransaction(jwtB, txnID) }},
		{Name: "update transaction", RequestFunc: func() *http.Request { return pt.UpdateTransaction(jwtB, txnID, pt.Txn{Amount: 1}) }},
		{Name: "delete transaction", RequestFunc: func() *http.Request { return pt.DeleteTransaction(jwtB, txnID) }},
		{Name: "get budget", RequestFunc: func() *http.Request { return pt.GetBudget(jwtB, budgetID) }},
		{Name: "update budget", RequestFunc: func() *http.Request { return pt.UpdateBudget(jwtB, budgetID, 1, "") }},
		{Name: "delete budget", RequestFunc: func() *http.Request { return pt.DeleteBudget(jwtB, budgetID) }},
		{Name: "transaction on foreign category", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwtB, pt.Txn{CategoryID: categoryID, Amount: 5, Date: "2024-05-03"})
		}},
		{Name: "budget on foreign category name", RequestFunc: func() *http.Request { return pt.SetBudget(jwtB, "Food", 5, 5, 2024) }},
	}
	for _, tc := range cases {
		tc.Expected = http.StatusNotFound
		tc.Kind = "not_found"
		t.Run(tc.Name, func(t *testing.T) {
			tc.Handle(t, c)
		})
	}

	c.testState = t
	c.Request(pt.GetCategories(jwtB, ""), http.StatusOK)
	assert.JSONEq(t, "[]", c.W.Body.String())
	c.Request(pt.GetTransactions(jwtB, nil), http.StatusOK)
	assert.JSONEq(t, "[]", c.W.Body.String())
	c.Request(pt.GetBudgets(jwtB, ""), http.StatusOK)
	assert.JSONEq(t, "[]", c.W.Body.String())

	// A's rows survived B's attempts
	c.Request(pt.GetTransaction(jwtA, txnID), http.StatusOK)
	assertAmount(t, c, "20")
	c.Request(pt.GetBudget(jwtA, budgetID), http.StatusOK)
	assertAmount(t, c, "100")
}

func assertAmount(t *testing.T, c *APITestClient, want string) {
	t.Helper()
	body, err := pt.DecodeJSON[struct {
		Amount decimal.Decimal `json:"amount"`
	}](c.W)
	require.NoError(t, err)
	assertDecimal(t, want, body.Amount)
}

func Test_TransactionLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")

	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusCreated)
	foodID := c.MustString("id")
	c.Request(pt.CreateCategory(jwt1, "Salary", "income"), http.StatusCreated)

	invalid := []httpTestCase{
		{Name: "negative amount", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: -5, Date: "2024-05-01"})
		}},
		{Name: "zero amount", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: "0", Date: "2024-05-01"})
		}},
		{Name: "missing amount", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Date: "2024-05-01"})
		}},
		{Name: "sub-cent amount", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: "1.234", Date: "2024-05-01"})
		}},
		{Name: "impossible date", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: 5, Date: "2024-02-30"})
		}},
		{Name: "missing date", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: 5})
		}},
		{Name: "unknown type", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: 5, Date: "2024-05-01", Type: "transfer"})
		}},
		{Name: "type disagrees with category", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: foodID, Amount: 5, Date: "2024-05-01", Type: "income"})
		}},
		{Name: "no category", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{Amount: 5, Date: "2024-05-01"})
		}},
		{Name: "bad category id", RequestFunc: func() *http.Request {
			return pt.CreateTransaction(jwt1, pt.Txn{CategoryID: "nope", Amount: 5, Date: "2024-05-01"})
		}},
	}
	for _, tc := range invalid {
		tc.Expected = http.StatusBadRequest
		tc.Kind = "validation"
		t.Run(tc.Name, func(t *testing.T) {
			tc.Handle(t, c)
		})
	}
	c.testState = t

	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 10, Date: "2024-04-30"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 20, Date: "2024-05-01", Description: "  lunch  "}), http.StatusCreated)
	lunchID := c.MustString("id")
	assert.Equal(t, "lunch", c.MustString("description"))
	assert.Equal(t, "expense", c.MustString("type"))
	assert.Equal(t, "Food", c.MustString("category_name"))
	assert.Equal(t, "2024-05-01", c.MustString("date"))
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 30, Date: "2024-05-31"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Salary", Amount: 1000, Date: "2024-05-15", Type: "income"}), http.StatusCreated)

	list := func(query url.Values) []Transaction {
		t.Helper()
		c.Request(pt.GetTransactions(jwt1, query), http.StatusOK)
		txns, err := pt.DecodeJSON[[]Transaction](c.W)
		require.NoError(t, err)
		return txns
	}
	dates := func(txns []Transaction) []string {
		out := make([]string, 0, len(txns))
		for _, txn := range txns {
			out = append(out, txn.Date)
		}
		return out
	}

	assert.Equal(t, []string{"2024-05-31", "2024-05-15", "2024-05-01", "2024-04-30"}, dates(list(nil)))
	assert.Equal(t, []string{"2024-05-31", "2024-05-15", "2024-05-01"}, dates(list(url.Values{"month": {"2024-05"}})))
	assert.Equal(t, []string{"2024-05-01", "2024-04-30"},
		dates(list(url.Values{"startDate": {"2024-04-30"}, "endDate": {"2024-05-01"}})))
	assert.Equal(t, []string{"2024-05-15"}, dates(list(url.Values{"type": {"income"}})))
	assert.Equal(t, []string{"2024-05-31", "2024-05-01"},
		dates(list(url.Values{"category_id": {foodID}, "limit": {"2"}})))

	c.Request(pt.GetTransactions(jwt1, url.Values{"month": {"2024-05"}, "start_date": {"2024-05-01"}}), http.StatusBadRequest)
	c.Request(pt.GetTransactions(jwt1, url.Values{"start_date": {"yesterday"}}), http.StatusBadRequest)
	c.Request(pt.GetTransactions(jwt1, url.Values{"limit": {"0"}}), http.StatusBadRequest)
	c.Request(pt.GetTransactions(jwt1, url.Values{"startDate": {"2024-06-01"}, "end_date": {"2024-05-01"}}), http.StatusBadRequest)

	// partial update keeps what the body leaves out
	c.Request(pt.UpdateTransaction(jwt1, lunchID, pt.Txn{Amount: "25.5"}), http.StatusOK)
	updated, err := pt.DecodeJSON[Transaction](c.W)
	require.NoError(t, err)
	assertDecimal(t, "25.5", updated.Amount)
	assert.Equal(t, "2024-05-01", updated.Date)
	assert.Equal(t, "lunch", updated.Description)
	assert.Equal(t, "Food", updated.CategoryName)

	c.Request(pt.UpdateTransaction(jwt1, lunchID, pt.Txn{Type: "income"}), http.StatusBadRequest)
	c.Request(pt.UpdateTransaction(jwt1, lunchID, pt.Txn{Amount: -1}), http.StatusBadRequest)

	// moving to an income category takes its type
	c.Request(pt.UpdateTransaction(jwt1, lunchID, pt.Txn{Category: "Salary", Date: "2024-05-02"}), http.StatusOK)
	assert.Equal(t, "income", c.MustString("type"))
	assert.Equal(t, "Salary", c.MustString("category_name"))

	c.Request(pt.DeleteTransaction(jwt1, lunchID), http.StatusOK)
	assert.Equal(t, lunchID, c.MustString("id"))
	c.Request(pt.DeleteTransaction(jwt1, lunchID), http.StatusNotFound)
	c.Request(pt.GetTransaction(jwt1, uuid.NewString()), http.StatusNotFound)
}

func Test_BudgetLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")

	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusCreated)

	// posting twice for the same category and period adds up
	c.Request(pt.SetBudget(jwt1, "Food", 200, 5, 2024), http.StatusCreated)
	mayID := c.MustString("id")
	assert.Equal(t, "2024-05", c.MustString("period"))
	c.Request(pt.SetBudget(jwt1, "Food", "100.50", 5, 2024), http.StatusOK)
	assert.Equal(t, mayID, c.MustString("id"))
	assertAmount(t, c, "300.50")

	c.Request(pt.SetBudget(jwt1, "Food", -1, 5, 2024), http.StatusBadRequest)
	c.Request(pt.SetBudget(jwt1, "Food", 10, 13, 2024), http.StatusBadRequest)
	c.Request(pt.SetBudget(jwt1, "Food", 10, 5, 0), http.StatusBadRequest)
	c.Request(pt.MakeRequest(http.MethodPost, "/api/budgets", jwt1, map[string]any{
		"category": "Food",
		"amount":   10,
		"period":   "2024-06",
		"month":    6,
	}), http.StatusBadRequest)

	c.Request(pt.MakeRequest(http.MethodPost, "/api/budgets", jwt1, map[string]any{
		"category": "Food",
		"amount":   80,
		"period":   "2024-06",
	}), http.StatusCreated)
	juneID := c.MustString("id")

	c.Request(pt.GetBudgets(jwt1, ""), http.StatusOK)
	all, err := pt.DecodeJSON[[]Budget](c.W)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-06", all[0].Period)
	assert.Equal(t, "2024-05", all[1].Period)
	assert.Equal(t, "Food", all[1].CategoryName)

	c.Request(pt.GetBudgets(jwt1, "2024-05"), http.StatusOK)
	may, err := pt.DecodeJSON[[]Budget](c.W)
	require.NoError(t, err)
	require.Len(t, may, 1)
	assert.Equal(t, mayID, may[0].ID.String())

	c.Request(pt.UpdateBudget(jwt1, mayID, 250, ""), http.StatusOK)
	assertAmount(t, c, "250")
	c.Request(pt.UpdateBudget(jwt1, mayID, 250, "2024-06"), http.StatusBadRequest)
	assert.Equal(t, "conflict", c.ErrorKind())
	c.Request(pt.UpdateBudget(jwt1, juneID, 90, "2024-07"), http.StatusOK)
	assert.Equal(t, "2024-07", c.MustString("period"))

	c.Request(pt.DeleteBudget(jwt1, juneID), http.StatusOK)
	c.Request(pt.GetBudget(jwt1, juneID), http.StatusNotFound)

	// deleting a category takes its budgets with it
	c.Request(pt.CreateCategory(jwt1, "Travel", "expense"), http.StatusCreated)
	travelID := c.MustString("id")
	c.Request(pt.SetBudget(jwt1, "Travel", 500, 5, 2024), http.StatusCreated)
	travelBudgetID := c.MustString("id")
	c.Request(pt.DeleteCategory(jwt1, travelID), http.StatusOK)
	c.Request(pt.GetBudget(jwt1, travelBudgetID), http.StatusNotFound)

	// adding to a budget cannot overflow the stored amount
	c.Request(pt.CreateCategory(jwt1, "Savings", "expense"), http.StatusCreated)
	c.Request(pt.SetBudget(jwt1, "Savings", "9999999999", 5, 2024), http.StatusCreated)
	savingsID := c.MustString("id")
	c.Request(pt.SetBudget(jwt1, "Savings", 1, 5, 2024), http.StatusBadRequest)
	assert.Equal(t, "validation", c.ErrorKind())
	c.Request(pt.GetBudget(jwt1, savingsID), http.StatusOK)
	assertAmount(t, c, "9999999999")
}

func Test_BudgetExceededEvent(t *testing.T) {
	c, publisher := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")

	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusCreated)
	c.Request(pt.CreateCategory(jwt1, "Salary", "income"), http.StatusCreated)
	c.Request(pt.SetBudget(jwt1, "Food", 100, 5, 2024), http.StatusCreated)
	budgetID := c.MustString("id")

	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 60, Date: "2024-05-10"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 500, Date: "2024-06-10"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Salary", Amount: 5000, Date: "2024-05-10"}), http.StatusCreated)
	assert.Empty(t, publisher.Events())

	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 50, Date: "2024-05-12"}), http.StatusCreated)
	published := publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.TypeBudgetExceeded, published[0].Type)

	payload, ok := published[0].Payload.(events.BudgetExceeded)
	require.True(t, ok)
	assert.Equal(t, budgetID, payload.BudgetID.String())
	assert.Equal(t, "Food", payload.CategoryName)
	assert.Equal(t, "2024-05", payload.Period)
	assertDecimal(t, "100", payload.Budget)
	assertDecimal(t, "110", payload.Spent)
}

func Test_Reports(t *testing.T) {
	c, _ := newTestClient(t)
	jwt1 := c.registerAndLogin("alice", "a@x.com")

	c.Request(pt.CreateCategory(jwt1, "Salary", "income"), http.StatusCreated)
	c.Request(pt.CreateCategory(jwt1, "Food", "expense"), http.StatusCreated)
	c.Request(pt.CreateCategory(jwt1, "Rent", "expense"), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Salary", Amount: 3000, Date: "2024-05-01"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 500, Date: "2024-05-03"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Rent", Amount: 1000, Date: "2024-05-05"}), http.StatusCreated)
	c.Request(pt.CreateTransaction(jwt1, pt.Txn{Category: "Food", Amount: 100, Date: "2024-04-10"}), http.StatusCreated)
	c.Request(pt.SetBudget(jwt1, "Food", 400, 5, 2024), http.StatusCreated)

	t.Run("overview", func(t *testing.T) {
		c.testState = t
		c.Request(pt.GetOverview(jwt1, "2024-05"), http.StatusOK)
		overview, err := pt.DecodeJSON[ledger.Overview](c.W)
		require.NoError(t, err)
		assertDecimal(t, "3000", overview.TotalIncome)
		assertDecimal(t, "1500", overview.TotalExpenses)
		assertDecimal(t, "1500", overview.Balance)
		assert.Equal(t, int64(50), overview.SavingsRate)
		assert.Equal(t, 3, overview.TransactionCount)
	})

	t.Run("monthly", func(t *testing.T) {
		c.testState = t
		c.Request(pt.GetMonthlyReport(jwt1, "2024"), http.StatusOK)
		report, err := pt.DecodeJSON[struct {
			Year   int                  `json:"year"`
			Months []ledger.MonthTotals `json:"months"`
		}](c.W)
		require.NoError(t, err)
		assert.Equal(t, 2024, report.Year)
		require.Len(t, report.Months, 12)
		assertDecimal(t, "100", report.Months[3].Expenses)
		assertDecimal(t, "3000", report.Months[4].Income)
		assertDecimal(t, "1500", report.Months[4].Expenses)
		assertDecimal(t, "0", report.Months[11].Savings)

		c.Request(pt.GetMonthlyReport(jwt1, "twenty"), http.StatusBadRequest)
	})

	t.Run("categories", func(t *testing.T) {
		c.testState = t
		c.Request(pt.GetCategoryReport(jwt1, "2024-05", ""), http.StatusOK)
		report, err := pt.DecodeJSON[struct {
			Type       string                 `json:"type"`
			Categories []ledger.CategoryTotal `json:"categories"`
		}](c.W)
		require.NoError(t, err)
		assert.Equal(t, "expense", report.Type)
		require.Len(t, report.Categories, 2)
		assert.Equal(t, "Rent", report.Categories[0].Name)
		assert.Equal(t, int64(67), report.Categories[0].Percentage)
		assert.Equal(t, "Food", report.Categories[1].Name)
		assert.Equal(t, int64(33), report.Categories[1].Percentage)

		c.Request(pt.GetCategoryReport(jwt1, "2024-05", "savings"), http.StatusBadRequest)
	})

	t.Run("dashboard", func(t *testing.T) {
		c.testState = t
		c.Request(pt.GetDashboard(jwt1, "2024-05"), http.StatusOK)
		dashboard, err := pt.DecodeJSON[struct {
			Period             string          `json:"period"`
			Overview           ledger.Overview `json:"overview"`
			Budget             ledger.Summary  `json:"budget"`
			RecentTransactions []Transaction   `json:"recent_transactions"`
		}](c.W)
		require.NoError(t, err)
		assert.Equal(t, "2024-05", dashboard.Period)
		assertDecimal(t, "1500", dashboard.Overview.Balance)
		assertDecimal(t, "400", dashboard.Budget.TotalBudget)
		assertDecimal(t, "500", dashboard.Budget.TotalSpent)
		assert.Equal(t, int64(125), dashboard.Budget.Percentage)
		require.Len(t, dashboard.Budget.Categories, 1)
		assert.True(t, dashboard.Budget.Categories[0].OverBudget)
		require.Len(t, dashboard.RecentTransactions, 4)
		assert.Equal(t, "Rent", dashboard.RecentTransactions[0].CategoryName)
	})
}
