// Package pwtest builds requests against the HTTP API for tests.
package pwtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// MakeRequest builds a JSON request. A non-empty token is sent as a bearer
// token.
func MakeRequest(method, path, token string, body any) *http.Request {
	var buffer io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		buffer = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buffer)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

func withQuery(path string, query url.Values) string {
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// ADMIN

func DeleteAllUsers() *http.Request {
	return MakeRequest(http.MethodPost, "/admin/reset", "", nil)
}

func GetUserCount() *http.Request {
	return MakeRequest(http.MethodGet, "/admin/users/count", "", nil)
}

// AUTH

func Register(name, email, password string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func Login(email, password string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
}

func LoginByName(name, password string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": name,
		"password": password,
	})
}

func Me(token string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/auth/me", token, nil)
}

// USERS

func UpdateProfile(token, name, email string) *http.Request {
	return MakeRequest(http.MethodPut, "/api/users/profile", token, map[string]any{
		"name":  name,
		"email": email,
	})
}

func ChangePassword(token, current, next string) *http.Request {
	return MakeRequest(http.MethodPut, "/api/users/password", token, map[string]any{
		"current_password": current,
		"new_password":     next,
	})
}

// CATEGORIES

func CreateCategory(token, name, categoryType string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/categories", token, map[string]any{
		"name": name,
		"type": categoryType,
	})
}

func GetCategories(token, categoryType string) *http.Request {
	query := url.Values{}
	if categoryType != "" {
		query.Set("type", categoryType)
	}
	return MakeRequest(http.MethodGet, withQuery("/api/categories", query), token, nil)
}

func GetCategory(token, categoryID string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/categories/"+categoryID, token, nil)
}

func UpdateCategory(token, categoryID, name, categoryType string) *http.Request {
	return MakeRequest(http.MethodPut, "/api/categories/"+categoryID, token, map[string]any{
		"name": name,
		"type": categoryType,
	})
}

func DeleteCategory(token, categoryID string) *http.Request {
	return MakeRequest(http.MethodDelete, "/api/categories/"+categoryID, token, nil)
}

// TRANSACTIONS

// Txn is a transaction body. Category may hold a name; CategoryID an id.
type Txn struct {
	CategoryID  string `json:"category_id,omitempty"`
	Category    string `json:"category,omitempty"`
	Amount      any    `json:"amount,omitempty"`
	Date        string `json:"date,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

func CreateTransaction(token string, txn Txn) *http.Request {
	return MakeRequest(http.MethodPost, "/api/transactions", token, txn)
}

func GetTransactions(token string, query url.Values) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/transactions", query), token, nil)
}

func GetTransaction(token, transactionID string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/transactions/"+transactionID, token, nil)
}

func UpdateTransaction(token, transactionID string, txn Txn) *http.Request {
	return MakeRequest(http.MethodPut, "/api/transactions/"+transactionID, token, txn)
}

func DeleteTransaction(token, transactionID string) *http.Request {
	return MakeRequest(http.MethodDelete, "/api/transactions/"+transactionID, token, nil)
}

// BUDGETS

func SetBudget(token, category string, amount any, month, year int) *http.Request {
	return MakeRequest(http.MethodPost, "/api/budgets", token, map[string]any{
		"category": category,
		"amount":   amount,
		"month":    month,
		"year":     year,
	})
}

func GetBudgets(token, month string) *http.Request {
	query := url.Values{}
	if month != "" {
		query.Set("month", month)
	}
	return MakeRequest(http.MethodGet, withQuery("/api/budgets", query), token, nil)
}

func GetBudget(token, budgetID string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/budgets/"+budgetID, token, nil)
}

func UpdateBudget(token, budgetID string, amount any, period string) *http.Request {
	body := map[string]any{"amount": amount}
	if period != "" {
		body["period"] = period
	}
	return MakeRequest(http.MethodPut, "/api/budgets/"+budgetID, token, body)
}

func DeleteBudget(token, budgetID string) *http.Request {
	return MakeRequest(http.MethodDelete, "/api/budgets/"+budgetID, token, nil)
}

func GetBudgetSummary(token, month string) *http.Request {
	query := url.Values{}
	if month != "" {
		query.Set("month", month)
	}
	return MakeRequest(http.MethodGet, withQuery("/api/budgets/summary", query), token, nil)
}

// REPORTS

func GetOverview(token, month string) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/reports/overview", url.Values{"month": {month}}), token, nil)
}

func GetMonthlyReport(token, year string) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/reports/monthly", url.Values{"year": {year}}), token, nil)
}

func GetCategoryReport(token, month, txnType string) *http.Request {
	query := url.Values{"month": {month}}
	if txnType != "" {
		query.Set("type", txnType)
	}
	return MakeRequest(http.MethodGet, withQuery("/api/reports/categories", query), token, nil)
}

func GetDashboard(token, month string) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/dashboard", url.Values{"month": {month}}), token, nil)
}
