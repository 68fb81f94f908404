package api

import (
	"context"
	"net/http"
	"time"
)

func (cfg *APIConfig) handleHealth(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Status string `json:"status"`
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Status: "ok"})
}

// handleReadiness reports whether the database answers within two seconds.
func (cfg *APIConfig) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := cfg.db.Ping(ctx); err != nil {
		respondWithError(w, r, kindUnavailable, "database unavailable", err)
		return
	}
	type rspSchema struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Status: "ok", Database: "ok"})
}
