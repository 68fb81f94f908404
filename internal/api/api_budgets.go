package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

const errBudgetExists = "a budget for this category and period already exists"

func validateBudgetAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errors.New("amount must not be negative")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return errors.New("amount is too large")
	}
	return nil
}

// handleCreateBudget sets the budget for a category and period. Posting to
// a category and period that already has one adds to its amount.
func (cfg *APIConfig) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		categoryRef
		periodInput
		Type   string           `json:"type"`
		Amount *decimal.Decimal `json:"amount"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	if rqPayload.Amount == nil {
		respondWithError(w, r, kindValidation, "amount not provided", nil)
		return
	}
	if err := validateBudgetAmount(*rqPayload.Amount); err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	period, err := rqPayload.periodInput.resolve()
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	if rqPayload.empty() {
		respondWithError(w, r, kindValidation, "category or category_id is required", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	category, err := resolveCategory(r.Context(), cfg.db, validatedUserID, rqPayload.categoryRef, rqPayload.Type)
	if err != nil {
		respondWithFailure(w, r, "could not resolve category", err)
		return
	}

	upserted, err := cfg.db.UpsertBudget(r.Context(), database.UpsertBudgetParams{
		UserID:      validatedUserID,
		CategoryID:  category.ID,
		Amount:      rqPayload.Amount.Round(2),
		PeriodYear:  int32(period.Year),
		PeriodMonth: int32(period.Month),
	})
	if database.IsCheckViolation(err) {
		respondWithError(w, r, kindValidation, "budget amount is out of range", err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not set budget", err)
		return
	}

	code := http.StatusOK
	if upserted.Inserted {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, budgetFromDB(upserted.Budget, category))
}

func (cfg *APIConfig) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	params := database.GetBudgetsParams{UserID: validatedUserID}
	period, err := parsePeriodFromQuery(r)
	switch {
	case errors.Is(err, errNoPeriod):
	case err != nil:
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	default:
		params.PeriodYear = sql.NullInt32{Int32: int32(period.Year), Valid: true}
		params.PeriodMonth = sql.NullInt32{Int32: int32(period.Month), Valid: true}
	}

	dbBudgets, err := cfg.db.GetBudgets(r.Context(), params)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not get budgets", err)
		return
	}

	budgets := make([]Budget, 0, len(dbBudgets))
	for _, b := range dbBudgets {
		budgets = append(budgets, budgetRowFromDB(b))
	}

	respondWithJSON(w, http.StatusOK, budgets)
}

func (cfg *APIConfig) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathBudgetID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	dbBudget, err := cfg.db.GetBudgetByID(r.Context(), database.GetBudgetByIDParams{
		ID:     pathBudgetID,
		UserID: validatedUserID,
	})
	if err != nil {
		respondWithFailure(w, r, "could not get budget", err)
		return
	}

	respondWithJSON(w, http.StatusOK, budgetRowFromDB(dbBudget))
}

// handleUpdateBudget replaces the amount and moves the budget to another
// period. Fields left out of the body keep their stored value.
func (cfg *APIConfig) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		periodInput
		Amount *decimal.Decimal `json:"amount"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}
	if rqPayload.Amount != nil {
		if err := validateBudgetAmount(*rqPayload.Amount); err != nil {
			respondWithError(w, r, kindValidation, err.Error(), nil)
			return
		}
	}
	var period ledger.Period
	if rqPayload.periodInput != (periodInput{}) {
		period, err = rqPayload.periodInput.resolve()
		if err != nil {
			respondWithError(w, r, kindValidation, err.Error(), nil)
			return
		}
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathBudgetID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	var dbBudget database.BudgetRow
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		key := database.GetBudgetByIDParams{ID: pathBudgetID, UserID: validatedUserID}
		current, err := q.GetBudgetByID(r.Context(), key)
		if err != nil {
			return err
		}

		params := database.UpdateBudgetParams{
			ID:          pathBudgetID,
			UserID:      validatedUserID,
			Amount:      current.Amount,
			PeriodYear:  current.PeriodYear,
			PeriodMonth: current.PeriodMonth,
		}
		if rqPayload.Amount != nil {
			params.Amount = rqPayload.Amount.Round(2)
		}
		if !period.IsZero() {
			params.PeriodYear = int32(period.Year)
			params.PeriodMonth = int32(period.Month)
		}

		updated, err := q.UpdateBudget(r.Context(), params)
		if err != nil {
			return err
		}
		dbBudget = database.BudgetRow{
			Budget:       updated,
			CategoryName: current.CategoryName,
			CategoryType: current.CategoryType,
		}
		return nil
	})
	if database.IsUniqueViolation(err) {
		respondWithError(w, r, kindConflict, errBudgetExists, err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not update budget", err)
		return
	}

	respondWithJSON(w, http.StatusOK, budgetRowFromDB(dbBudget))
}

func (cfg *APIConfig) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathBudgetID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	deleted, err := cfg.db.DeleteBudget(r.Context(), database.GetBudgetByIDParams{
		ID:     pathBudgetID,
		UserID: validatedUserID,
	})
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not delete budget", err)
		return
	}
	if deleted == 0 {
		respondWithError(w, r, kindNotFound, "budget not found", nil)
		return
	}

	respondWithMessage(w, http.StatusOK, "budget deleted")
}

// handleGetBudgetSummary compares the period's budgets with actual spending.
func (cfg *APIConfig) handleGetBudgetSummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriodFromQuery(r)
	if errors.Is(err, errNoPeriod) {
		respondWithError(w, r, kindValidation, "month is required (YYYY-MM, or month with year)", nil)
		return
	}
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	summary, err := cfg.summarizePeriod(r.Context(), validatedUserID, period)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not summarize budgets", err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
