// Package api handles routes and their associated handlers
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupMux(cfg *APIConfig) http.Handler {
	mux := http.NewServeMux()

	// middleware
	mdAuth := cfg.middlewareAuthenticate
	mdOwn := func(res ownedResource, next http.HandlerFunc) http.HandlerFunc {
		return mdAuth(cfg.middlewareRequireOwnership(res, next))
	}
	mdDev := cfg.middlewareDevOnly

	// REGISTER API HANDLERS
	// ======================

	// Admin & State
	mux.HandleFunc("GET /health", cfg.handleHealth)
	mux.HandleFunc("GET /api/healthz", cfg.handleReadiness)
	mux.HandleFunc("POST /admin/reset", mdDev(cfg.handleDeleteAllUsers))
	mux.HandleFunc("GET /admin/users/count", mdDev(cfg.handleGetTotalUserCount))
	// Authentication
	mux.HandleFunc("POST /api/auth/register", cfg.handleRegister)
	mux.HandleFunc("POST /api/auth/login", cfg.handleLogin)
	mux.HandleFunc("GET /api/auth/me", mdAuth(cfg.handleGetCurrentUser))
	// Users
	mux.HandleFunc("PUT /api/users/profile", mdAuth(cfg.handleUpdateProfile))
	mux.HandleFunc("PUT /api/users/password", mdAuth(cfg.handleChangePassword))
	// Categories
	mux.HandleFunc("GET /api/categories", mdAuth(cfg.handleGetCategories))
	mux.HandleFunc("POST /api/categories", mdAuth(cfg.handleCreateCategory))
	mux.HandleFunc("GET /api/categories/{id}", mdOwn(ownedCategory, cfg.handleGetCategory))
	mux.HandleFunc("PUT /api/categories/{id}", mdOwn(ownedCategory, cfg.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", mdOwn(ownedCategory, cfg.handleDeleteCategory))
	// Transactions
	mux.HandleFunc("GET /api/transactions", mdAuth(cfg.handleGetTransactions))
	mux.HandleFunc("POST /api/transactions", mdAuth(cfg.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", mdOwn(ownedTransaction, cfg.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", mdOwn(ownedTransaction, cfg.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", mdOwn(ownedTransaction, cfg.handleDeleteTransaction))
	// Budgets
	mux.HandleFunc("GET /api/budgets", mdAuth(cfg.handleGetBudgets))
	mux.HandleFunc("POST /api/budgets", mdAuth(cfg.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/summary", mdAuth(cfg.handleGetBudgetSummary))
	mux.HandleFunc("GET /api/budgets/{id}", mdOwn(ownedBudget, cfg.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", mdOwn(ownedBudget, cfg.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", mdOwn(ownedBudget, cfg.handleDeleteBudget))
	// Reports
	mux.HandleFunc("GET /api/reports/overview", mdAuth(cfg.handleGetOverviewReport))
	mux.HandleFunc("GET /api/reports/monthly", mdAuth(cfg.handleGetMonthlyReport))
	mux.HandleFunc("GET /api/reports/categories", mdAuth(cfg.handleGetCategoryReport))
	mux.HandleFunc("GET /api/dashboard", mdAuth(cfg.handleGetDashboard))

	var handler http.Handler = mux
	handler = cors.Handler(cors.Options{
		AllowedOrigins:   cfg.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(handler)
	handler = middleware.Recoverer(handler)
	handler = cfg.middlewareLogRequests(handler)
	handler = middleware.RealIP(handler)
	handler = middleware.RequestID(handler)
	return handler
}
