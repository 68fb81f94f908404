package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

func (cfg *APIConfig) issueToken(userID uuid.UUID) (string, time.Time, error) {
	expiresAt := time.Now().UTC().Add(cfg.tokenTTL).Truncate(time.Second)
	token, err := auth.MakeJWT(userID, jwt.SigningMethodHS256, cfg.secret, cfg.tokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return errors.New("email must look like name@example.com")
	}
	return nil
}

func (cfg *APIConfig) handleRegister(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	name := strings.TrimSpace(rqPayload.Name)
	if name == "" {
		name = strings.TrimSpace(rqPayload.Username)
	}
	email := normalizeEmail(rqPayload.Email)

	if name == "" || email == "" || rqPayload.Password == "" {
		respondWithError(w, r, kindValidation, "name, email and password are required", nil)
		return
	}
	if err := validateEmail(email); err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}
	if err := auth.CheckPasswordStrength(rqPayload.Password); err != nil {
		respondWithError(w, r, kindValidation, err.Error(), nil)
		return
	}

	hashedPassword, err := auth.HashPasswordWithParams(rqPayload.Password, cfg.hashParams)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not register user", err)
		return
	}

	var dbUser database.User
	err = cfg.db.ExecTx(r.Context(), func(q database.Querier) error {
		exists, err := q.UserExists(r.Context(), database.UserExistsParams{Email: email, Name: name})
		if err != nil {
			return err
		}
		if exists {
			return newAPIError(kindConflict, "user already exists", nil)
		}
		dbUser, err = q.CreateUser(r.Context(), database.CreateUserParams{
			Name:           name,
			Email:          email,
			HashedPassword: hashedPassword,
		})
		return err
	})
	if database.IsUniqueViolation(err) {
		respondWithError(w, r, kindConflict, "user already exists", err)
		return
	}
	if err != nil {
		respondWithFailure(w, r, "could not register user", err)
		return
	}

	token, expiresAt, err := cfg.issueToken(dbUser.ID)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not issue token", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userFromDB(dbUser),
	})
}

func (cfg *APIConfig) handleLogin(w http.ResponseWriter, r *http.Request) {
	type rqSchema struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	rqPayload, err := decodePayload[rqSchema](r)
	if err != nil {
		respondWithError(w, r, kindValidation, "malformed request body", err)
		return
	}

	if (rqPayload.Email == "" && rqPayload.Username == "") || rqPayload.Password == "" {
		respondWithError(w, r, kindValidation, "missing credential(s)", nil)
		return
	}

	var dbUser database.User
	if rqPayload.Email != "" {
		dbUser, err = cfg.db.GetUserByEmail(r.Context(), normalizeEmail(rqPayload.Email))
	} else {
		dbUser, err = cfg.db.GetUserByName(r.Context(), strings.TrimSpace(rqPayload.Username))
	}
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		respondWithError(w, r, kindUnexpected, "could not log in user", err)
		return
	}
	if err != nil {
		respondWithError(w, r, kindUnauthenticated, "invalid credentials", err)
		return
	}

	match, err := auth.CheckPasswordHash(rqPayload.Password, dbUser.HashedPassword)
	if err != nil || !match {
		respondWithError(w, r, kindUnauthenticated, "invalid credentials", err)
		return
	}

	if auth.NeedsRehash(dbUser.HashedPassword) {
		cfg.rehashPassword(r.Context(), dbUser.ID, rqPayload.Password)
	}

	token, expiresAt, err := cfg.issueToken(dbUser.ID)
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not issue token", err)
		return
	}

	respondWithJSON(w, http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userFromDB(dbUser),
	})
}

// rehashPassword upgrades a legacy hash after a successful login. Failure
// only costs another attempt at the next login.
func (cfg *APIConfig) rehashPassword(ctx context.Context, userID uuid.UUID, password string) {
	hashed, err := auth.HashPasswordWithParams(password, cfg.hashParams)
	if err == nil {
		err = cfg.db.UpdateUserPassword(ctx, database.UpdateUserPasswordParams{ID: userID, HashedPassword: hashed})
	}
	if err != nil {
		slog.Warn("could not upgrade legacy password hash", slog.String("user_id", userID.String()), slog.String("error", err.Error()))
		return
	}
	slog.Info("upgraded legacy password hash", slog.String("user_id", userID.String()))
}

func (cfg *APIConfig) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, userFromDB(dbUser))
}
