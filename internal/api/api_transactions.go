package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

// maxAmount is the first value that does not fit NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

type transactionInput struct {
	categoryRef
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	Date        string           `json:"date"`
	Type        string           `json:"type"`
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.New("amount must be a positive number")
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return errors.New("amount may have at most two decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return errors.New("amount is too large")
	}
	return nil
}

// checkTypeAgreement settles the transaction type against its category.
// An empty type takes the category's.
func checkTypeAgreement(txnType string, category database.Category) (string, error) {
	if txnType == "" {
		return category.Type, nil
	}
	if !ledger.ValidType(txnType) {
		return "", errors.New("type must be income or expense")
	}
	if txnType != category.Type {
		return "", errors.New("transaction type must match the category type (" + category.Type + ")")
	}
	return txnType, nil
}

func (cfg *APIConfig) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[transactionInput](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	if rqPayload.Amount == nil {
		respondWithError(w, r, kindValidation, "amount not provided", nil)
		return
	}
	if err := validateAmount(*rqPayload.Amount); err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	if rqPayload.Date == "" {
		respondWithError(w, r, kindValidation, "date not provided", nil)
		return
	}
	txnDate, err := parseDate(rqPayload.Date)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	if rqPayload.Type != "" && !ledger.ValidType(rqPayload.Type) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}
	if rqPayload.empty() {
		respondWithError(w, r, kindValidation, "category or category_id is required", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	var description string
	if rqPayload.Description != nil {
		description = strings.TrimSpace(*rqPayload.Description)
	}

	var (
		dbTxn    database.Transaction
		category database.Category
	)
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		var err error
		category, err = resolveCategory(r.Context(), q, validatedUserID, rqPayload.categoryRef, rqPayload.Type)
		if err != nil {
			return err
		}
		txnType, err := checkTypeAgreement(rqPayload.Type, category)
		if err != nil {
			return newAPIError(kindValidation, err.Error(), nil)
		}
		dbTxn, err = q.CreateTransaction(r.Context(), database.CreateTransactionParams{
			UserID:          validatedUserID,
			CategoryID:      category.ID,
			Amount:          rqPayload.Amount.Round(2),
			Description:     description,
			TransactionDate: txnDate,
			Type:            txnType,
		})
		return err
	})
	if err != nil {
		respondWithFailure(w, r, "could not create transaction", err)
		return
	}

	if dbTxn.Type == ledger.TypeExpense {
		cfg.checkBudgetExceeded(r.Context(), validatedUserID, category, ledger.PeriodOf(txnDate))
	}

	respondWithJSON(w, http.StatusCreated, transactionFromDB(dbTxn, category.Name))
}

func (cfg *APIConfig) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	params, err := transactionFilterFromQuery(r)
	if err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	params.UserID = validatedUserID

	dbTxns, err := cfg.db.GetTransactions(r.Context(), params)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not get transactions", err)
		return
	}

	respondWithJSON(w, http.StatusOK, transactionsFromDB(dbTxns))
}

// transactionFilterFromQuery reads startDate, endDate, month, category_id,
// type and limit. month cannot be combined with an explicit date range.
// start_date and end_date are accepted as aliases.
func transactionFilterFromQuery(r *http.Request) (database.GetTransactionsParams, error) {
	var params database.GetTransactionsParams

	startDate, err := parseDateFromQuery(queryAlias(r, "startDate", "start_date"), r)
	if err != nil {
		return params, err
	}
	endDate, err := parseDateFromQuery(queryAlias(r, "endDate", "end_date"), r)
	if err != nil {
		return params, err
	}

	period, err := parsePeriodFromQuery(r)
	switch {
	case errors.Is(err, errNoPeriod):
	case err != nil:
		return params, err
	default:
		if !startDate.IsZero() || !endDate.IsZero() {
			return params, errors.New("give either month or startDate/endDate, not both")
		}
		startDate, endDate = period.First(), period.Last()
	}

	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		return params, errors.New("endDate is before startDate")
	}
	params.StartDate = sql.NullTime{Time: startDate, Valid: !startDate.IsZero()}
	params.EndDate = sql.NullTime{Time: endDate, Valid: !endDate.IsZero()}

	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return params, errors.New("invalid query parameter value 'category_id'")
		}
		params.CategoryID = uuid.NullUUID{UUID: categoryID, Valid: true}
	}

	params.Type = r.URL.Query().Get("type")
	if params.Type != "" && !ledger.ValidType(params.Type) {
		return params, errors.New("type must be income or expense")
	}

	params.Limit, err = parseLimitFromQuery(r)
	return params, err
}

func (cfg *APIConfig) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathTxnID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	dbTxn, err := cfg.db.GetTransactionByID(r.Context(), database.GetTransactionByIDParams{
		ID:     pathTxnID,
		UserID: validatedUserID,
	})
	if err != nil {
		respondWithFailure(w, r, "could not get transaction", err)
		return
	}

	respondWithJSON(w, http.StatusOK, transactionFromDB(dbTxn.Transaction, dbTxn.CategoryName))
}

// handleUpdateTransaction applies the fields present in the body over the
// stored transaction.
func (cfg *APIConfig) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[transactionInput](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}
	if rqPayload.Amount != nil {
		if err := validateAmount(*rqPayload.Amount); err != nil {
			respondWithError(w, r, kindValidation, err.Error(), nil)
			return
		}
	}
	var txnDate time.Time
	if rqPayload.Date != "" {
		txnDate, err = parseDate(rqPayload.Date)
		if err != nil {
			respondWithError(w, r, kindValidation, err.Error(), nil)
			return
		}
	}
	if rqPayload.Type != "" && !ledger.ValidType(rqPayload.Type) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathTxnID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	var (
		dbTxn    database.Transaction
		category database.Category
		previous database.TransactionRow
	)
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		var err error
		previous, err = q.GetTransactionByID(r.Context(), database.GetTransactionByIDParams{
			ID:     pathTxnID,
			UserID: validatedUserID,
		})
		if err != nil {
			return err
		}

		if rqPayload.empty() {
			category, err = q.GetCategoryByID(r.Context(), database.GetCategoryByIDParams{
				ID:     previous.CategoryID,
				UserID: validatedUserID,
			})
		} else {
			category, err = resolveCategory(r.Context(), q, validatedUserID, rqPayload.categoryRef, rqPayload.Type)
		}
		if err != nil {
			return err
		}

		txnType, err := checkTypeAgreement(rqPayload.Type, category)
		if err != nil {
			return newAPIError(kindValidation, err.Error(), nil)
		}

		params := database.UpdateTransactionParams{
			ID:              pathTxnID,
			UserID:          validatedUserID,
			CategoryID:      category.ID,
			Amount:          previous.Amount,
			Description:     previous.Description,
			TransactionDate: previous.TransactionDate,
			Type:            txnType,
		}
		if rqPayload.Amount != nil {
			params.Amount = rqPayload.Amount.Round(2)
		}
		if rqPayload.Description != nil {
			params.Description = strings.TrimSpace(*rqPayload.Description)
		}
		if !txnDate.IsZero() {
			params.TransactionDate = txnDate
		}

		dbTxn, err = q.UpdateTransaction(r.Context(), params)
		return err
	})
	if err != nil {
		respondWithFailure(w, r, "could not update transaction", err)
		return
	}

	if dbTxn.Type == ledger.TypeExpense {
		cfg.checkBudgetExceeded(r.Context(), validatedUserID, category, ledger.PeriodOf(dbTxn.TransactionDate))
	}

	respondWithJSON(w, http.StatusOK, transactionFromDB(dbTxn, category.Name))
}

func (cfg *APIConfig) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathTxnID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	deleted, err := cfg.db.DeleteTransaction(r.Context(), database.GetTransactionByIDParams{
		ID:     pathTxnID,
		UserID: validatedUserID,
	})
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not delete transaction", err)
		return
	}
	if deleted == 0 {
		respondWithError(w, r, kindNotFound, "transaction not found", nil)
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{Message: "transaction deleted", ID: &pathTxnID})
}
