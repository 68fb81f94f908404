package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

const errCategoryExists = "a category with this name and type already exists"

func (cfg *APIConfig) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	name := strings.TrimSpace(rqPayload.Name)
	if name == "" {
		respondWithError(w, r, kindValidation, "name not provided", nil)
		return
	}
	if !ledger.ValidType(rqPayload.Type) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	dbCategory, err := cfg.db.CreateCategory(r.Context(), database.CreateCategoryParams{
		UserID: validatedUserID,
		Name:   name,
		Type:   rqPayload.Type,
	})
	if database.IsUniqueViolation(err) {
		respondWithError(w, r, kindConflict, errCategoryExists, err)
		return
	}
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not create category", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, categoryFromDB(dbCategory))
}

func (cfg *APIConfig) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	queryType := r.URL.Query().Get("type")
	if queryType != "" && !ledger.ValidType(queryType) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	dbCategories, err := cfg.db.GetCategories(r.Context(), database.GetCategoriesParams{
		UserID: validatedUserID,
		Type:   queryType,
	})
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not get categories", err)
		return
	}

	categories := make([]Category, 0, len(dbCategories))
	for _, c := range dbCategories {
		categories = append(categories, categoryFromDB(c))
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (cfg *APIConfig) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathCategoryID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	dbCategory, err := cfg.db.GetCategoryByID(r.Context(), database.GetCategoryByIDParams{
		ID:     pathCategoryID,
		UserID: validatedUserID,
	})
	if err != nil {
		respondWithFailure(w, r, "could not get category", err)
		return
	}

	respondWithJSON(w, http.StatusOK, categoryFromDB(dbCategory))
}

func (cfg *APIConfig) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}
	if rqPayload.Type != "" && !ledger.ValidType(rqPayload.Type) {
		respondWithError(w, r, kindValidation, "type must be income or expense", nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathCategoryID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	var dbCategory database.Category
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		key := database.GetCategoryByIDParams{ID: pathCategoryID, UserID: validatedUserID}
		current, err := q.GetCategoryForUpdate(r.Context(), key)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(rqPayload.Name)
		if name == "" {
			name = current.Name
		}
		newType := rqPayload.Type
		if newType == "" {
			newType = current.Type
		}

		if newType != current.Type {
			count, err := q.CountCategoryTransactions(r.Context(), key)
			if err != nil {
				return err
			}
			if count > 0 {
				return newAPIError(kindConflict, "cannot change the type of a category that has transactions", nil)
			}
		}

		dbCategory, err = q.UpdateCategory(r.Context(), database.UpdateCategoryParams{
			ID:     pathCategoryID,
			UserID: validatedUserID,
			Name:   name,
			Type:   newType,
		})
		return err
	})
	if database.IsUniqueViolation(err) {
		respondWithError(w, r, kindConflict, errCategoryExists, err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not update category", err)
		return
	}

	respondWithJSON(w, http.StatusOK, categoryFromDB(dbCategory))
}

func (cfg *APIConfig) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")
	pathCategoryID := getContextKeyValueAsUUID(r.Context(), "resource_id")

	err := cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		key := database.GetCategoryByIDParams{ID: pathCategoryID, UserID: validatedUserID}
		if _, err := q.GetCategoryForUpdate(r.Context(), key); err != nil {
			return err
		}
		count, err := q.CountCategoryTransactions(r.Context(), key)
		if err != nil {
			return err
		}
		if count > 0 {
			return newAPIError(kindConflict, "cannot delete a category that has transactions", nil)
		}
		deleted, err := q.DeleteCategory(r.Context(), key)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return database.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(w, r, kindNotFound, "category not found", nil)
		return
	}
	if database.IsForeignKeyViolation(err) {
		respondWithError(w, r, kindConflict, "cannot delete a category that has transactions", err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not delete category", err)
		return
	}

	respondWithMessage(w, http.StatusOK, "category deleted")
}
