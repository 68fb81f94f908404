package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

func (cfg *APIConfig) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	name := strings.TrimSpace(rqPayload.Name)
	if name == "" {
		name = strings.TrimSpace(rqPayload.Username)
	}
	email := normalizeEmail(rqPayload.Email)
	if email != "" {
		if err := validateEmail(email); err != nil {
			respondWithError(w, r, kindValidation, err.Error(), nil)
			return
		}
	}
	if name == "" && email == "" {
		respondWithError(w, r, kindValidation, "nothing to update; give a name or an email", nil)
		return
	}

	var dbUser database.User
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		current, err := q.GetUserByID(r.Context(), validatedUserID)
		if err != nil {
			return err
		}
		if name == "" {
			name = current.Name
		}
		if email == "" {
			email = current.Email
		}
		taken, err := q.UserExists(r.Context(), database.UserExistsParams{
			Email:     email,
			Name:      name,
			ExcludeID: validatedUserID,
		})
		if err != nil {
			return err
		}
		if taken {
			return newAPIError(kindConflict, "name or email already in use", nil)
		}
		dbUser, err = q.UpdateUserProfile(r.Context(), database.UpdateUserProfileParams{
			ID:    validatedUserID,
			Name:  name,
			Email: email,
		})
		return err
	})
	if database.IsUniqueViolation(err) {
		respondWithError(w, r, kindConflict, "name or email already in use", err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not update profile", err)
		return
	}

	respondWithJSON(w, http.StatusOK, userFromDB(dbUser))
}

func (cfg *APIConfig) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}
	if rqPayload.CurrentPassword == "" || rqPayload.NewPassword == "" {
		respondWithError(w, r, kindValidation, "current_password and new_password are required", nil)
		return
	}
	if err := auth.CheckPasswordStrength(rqPayload.NewPassword); err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}

	validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

	dbUser, err := cfg.db.GetUserByID(r.Context(), validatedUserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondWithError(w, r, kindNotFound, "user not found", err)
			return
		}
		respondWithError(w, r, kindUnexpected, "could not get user", err)
		return
	}

	match, err := auth.CheckPasswordHash(rqPayload.CurrentPassword, dbUser.HashedPassword)
	if err != nil || !match {
		respondWithError(w, r, kindUnauthenticated, "current password is incorrect", err)
		return
	}

	hashedPassword, err := auth.HashPasswordWithParams(rqPayload.NewPassword, cfg.hashParams)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not change password", err)
		return
	}
	err = cfg.db.UpdateUserPassword(r.Context(), database.UpdateUserPasswordParams{
		ID:             validatedUserID,
		HashedPassword: hashedPassword,
	})
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not change password", err)
		return
	}

	respondWithMessage(w, http.StatusOK, "password updated")
}
