package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/YouWantToPinch/pocketwise-api/internal/auth"
	"github.com/YouWantToPinch/pocketwise-api/internal/database"
)

// ================= MIDDLEWARE ================= //

type ctxKey string

// middlewareAuthenticate authenticates JSON Web Tokens
// before passing off requests to another handler.
func (cfg *APIConfig) middlewareAuthenticate(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := auth.GetBearerToken(r.Header)
		if err != nil {
			respondWithError(w, r, kindUnauthenticated, "no token found", err)
			return
		}
		validatedUserID, err := auth.ValidateJWT(tokenString, cfg.secret, "HS256")
		if err != nil {
			respondWithError(w, r, kindUnauthenticated, "invalid token provided", err)
			return
		}
		ctxUserID := ctxKey("user_id")
		ctx := context.WithValue(r.Context(), ctxUserID, validatedUserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type ownedResource string

const (
	ownedCategory    ownedResource = "category"
	ownedTransaction ownedResource = "transaction"
	ownedBudget      ownedResource = "budget"
)

func (cfg *APIConfig) lookupOwned(ctx context.Context, res ownedResource, id, userID uuid.UUID) error {
	var err error
	switch res {
	case ownedCategory:
		_, err = cfg.db.GetCategoryByID(ctx, database.GetCategoryByIDParams{ID: id, UserID: userID})
	case ownedTransaction:
		_, err = cfg.db.GetTransactionByID(ctx, database.GetTransactionByIDParams{ID: id, UserID: userID})
	case ownedBudget:
		_, err = cfg.db.GetBudgetByID(ctx, database.GetBudgetByIDParams{ID: id, UserID: userID})
	default:
		err = errors.New("unknown resource " + string(res))
	}
	return err
}

// middlewareRequireOwnership resolves the {id} path parameter to a resource
// owned by the authenticated user. Anything else, including another user's
// resource, is reported as not found.
func (cfg *APIConfig) middlewareRequireOwnership(res ownedResource, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validatedUserID := getContextKeyValueAsUUID(r.Context(), "user_id")

		pathID, err := parseUUIDFromPath("id", r)
		if err != nil {
			respondWithError(w, r, kindValidation, "invalid "+string(res)+" id", err)
			return
		}

		if err := cfg.lookupOwned(r.Context(), res, pathID, validatedUserID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondWithError(w, r, kindNotFound, string(res)+" not found", nil)
				return
			}
			respondWithError(w, r, kindUnexpected, "could not look up "+string(res), err)
			return
		}

		ctxResourceID := ctxKey("resource_id")
		ctx := context.WithValue(r.Context(), ctxResourceID, pathID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// middlewareDevOnly hides a route outside the dev platform.
func (cfg *APIConfig) middlewareDevOnly(next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.platform != "dev" {
			respondWithError(w, r, kindForbidden, "only available on the dev platform", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// middlewareLogRequests logs one line per request once the response is written.
func (cfg *APIConfig) middlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.LogAttrs(r.Context(), level, "request completed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("client_ip", r.RemoteAddr),
		)
	})
}

// ============== HELPERS =================

func getContextKeyValueAsUUID(ctx context.Context, key string) uuid.UUID {
	contextKeyValue, ok := ctx.Value(ctxKey(key)).(uuid.UUID)
	if !ok {
		slog.Warn("failed to retrieve key from context", slog.String("key", key))
		return uuid.Nil
	}
	return contextKeyValue
}
