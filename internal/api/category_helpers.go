package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

// categoryRef names a category in a request body, either by id or by name.
type categoryRef struct {
	ID   string `json:"category_id"`
	Name string `json:"category"`
}

func (c categoryRef) empty() bool {
	return strings.TrimSpace(c.ID) == "" && strings.TrimSpace(c.Name) == ""
}

// resolveCategory finds the caller's category named by ref. When ref holds a
// name shared by an income and an expense category, wantType picks one.
// Categories the caller does not own are reported as not found.
func resolveCategory(ctx context.Context, q database.Querier, userID uuid.UUID, ref categoryRef, wantType string) (database.Category, error) {
	if id := strings.TrimSpace(ref.ID); id != "" {
		categoryID, err := uuid.Parse(id)
		if err != nil {
			return database.Category{}, newAPIError(kindValidation, "invalid category_id", err)
		}
		category, err := q.GetCategoryByID(ctx, database.GetCategoryByIDParams{ID: categoryID, UserID: userID})
		if errors.Is(err, database.ErrNotFound) {
			return database.Category{}, newAPIError(kindNotFound, "category not found", nil)
		}
		return category, err
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return database.Category{}, newAPIError(kindValidation, "category or category_id is required", nil)
	}
	matches, err := q.GetCategoriesByName(ctx, database.GetCategoriesByNameParams{UserID: userID, Name: name})
	if err != nil {
		return database.Category{}, err
	}
	if wantType != "" {
		filtered := matches[:0:0]
		for _, c := range matches {
			if c.Type == wantType {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			matches = filtered
		}
	}
	switch len(matches) {
	case 0:
		return database.Category{}, newAPIError(kindNotFound, "category not found", nil)
	case 1:
		return matches[0], nil
	default:
		return database.Category{}, newAPIError(kindValidation,
			fmt.Sprintf("category name %q is ambiguous; give a type or category_id", name), nil)
	}
}
