package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

const recentTransactionCount = 5

// periodOrCurrent reads the month query parameters, defaulting to the
// current month.
func periodOrCurrent(r *http.Request) (ledger.Period, error) {
	period, err := parsePeriodFromQuery(r)
	if errors.Is(err, errNoPeriod) {
		return ledger.PeriodOf(time.Now().UTC()), nil
	}
	return period, err
}

func (cfg *APIConfig) entriesBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]ledger.Entry, error) {
	rows, err := cfg.db.GetTransactions(ctx, database.GetTransactionsParams{
		UserID:    userID,
		StartDate: sql.NullTime{Time: start, Valid: true},
		EndDate:   sql.NullTime{Time: end, Valid: true},
	})
	if err != nil {
		return nil, err
	}
	return entriesFromDB(rows), nil
}

func (cfg *APIConfig) budgetLinesFor(ctx context.Context, userID uuid.UUID, period ledger.Period) ([]ledger.BudgetLine, error) {
	rows, err := cfg.db.GetBudgets(ctx, database.GetBudgetsParams{
		UserID:      userID,
		PeriodYear:  sql.NullInt32{Int32: int32(period.Year), Valid: true},
		PeriodMonth: sql.NullInt32{Int32: int32(period.Month), Valid: true},
	})
	if err != nil {
		return nil, err
	}
	return budgetLinesFromDB(rows), nil
}

func (cfg *APIConfig) summarizePeriod(ctx context.Context, userID uuid.UUID, period ledger.Period) (ledger.Summary, error) {
	lines, err := cfg.budgetLinesFor(ctx, userID, period)
	if err != nil {
		return ledger.Summary{}, err
	}
	entries, err := cfg.entriesBetween(ctx, userID, period.First(), period.Last())
	if err != nil {
		return ledger.Summary{}, err
	}
	return ledger.Summarize(period, lines, entries), nil
}

func (cfg *APIConfig) handleGetOverviewReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodOrCurrent(r)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	entries, err := cfg.entriesBetween(r.Context(), validatedUserID, period.First(), period.Last())
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not build overview", err)
		return
	}

	type rspSchema struct {
		Period string `json:"period"`
		ledger.Overview
	}

	respondWithJSON(w, http.StatusOK, rspSchema{
		Period:   period.String(),
		Overview: ledger.NewOverview(entries),
	})
}

func (cfg *APIConfig) handleGetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, r, kindValidation, "invalid query parameter value 'year'", err)
			return
		}
		year = parsed
	}
	first, err := ledger.NewPeriod(year, 1)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	last := ledger.Period{Year: year, Month: time.December}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	entries, err := cfg.entriesBetween(r.Context(), validatedUserID, first.First(), last.Last())
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not build monthly report", err)
		return
	}

	type rspSchema struct {
		Year   int                  `json:"year"`
		Months []ledger.MonthTotals `json:"months"`
	}

	respondWithJSON(w, http.StatusOK, rspSchema{
		Year:   year,
		Months: ledger.MonthlyTotals(year, entries),
	})
}

func (cfg *APIConfig) handleGetCategoryReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodOrCurrent(r)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	txnType := r.URL.Query().Get("type")
	if txnType == "" {
		txnType = ledger.TypeExpense
	}
	if !ledger.ValidType(txnType) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	entries, err := cfg.entriesBetween(r.Context(), validatedUserID, period.First(), period.Last())
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not build category report", err)
		return
	}

	type rspSchema struct {
		Period     string                 `json:"period"`
		Type       string                 `json:"type"`
		Categories []ledger.CategoryTotal `json:"categories"`
	}

	respondWithJSON(w, http.StatusOK, rspSchema{
		Period:     period.String(),
		Type:       txnType,
		Categories: ledger.CategoryBreakdown(entries, txnType),
	})
}

// handleGetDashboard gathers the month's overview, budget summary and the
// latest transactions in one response.
func (cfg *APIConfig) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := periodOrCurrent(r)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	var (
		lines   []ledger.BudgetLine
		entries []ledger.Entry
		recent  []database.TransactionRow
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		lines, err = cfg.budgetLinesFor(ctx, validatedUserID, period)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = cfg.entriesBetween(ctx, validatedUserID, period.First(), period.Last())
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = cfg.db.GetTransactions(ctx, database.GetTransactionsParams{
			UserID: validatedUserID,
			Limit:  recentTransactionCount,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		respondWithError(w, r, kindUnexpected, "could not build dashboard", err)
		return
	}

	type rspSchema struct {
		Period             string          `json:"period"`
		Overview           ledger.Overview `json:"overview"`
		Budget             ledger.Summary  `json:"budget"`
		RecentTransactions []Transaction   `json:"recent_transactions"`
	}

	respondWithJSON(w, http.StatusOK, rspSchema{
		Period:             period.String(),
		Overview:           ledger.NewOverview(entries),
		Budget:             ledger.Summarize(period, lines, entries),
		RecentTransactions: transactionsFromDB(recent),
	})
}
