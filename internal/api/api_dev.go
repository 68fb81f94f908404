package api

import (
	"net/http"
)

func (cfg *APIConfig) handleDeleteAllUsers(w http.ResponseWriter, r *http.Request) {
	if err := cfg.db.DeleteUsers(r.Context()); err != nil {
		respondWithError(w, r, kindUnexpected, "could not delete users", err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Successfully deleted all users.")
}

func (cfg *APIConfig) handleGetTotalUserCount(w http.ResponseWriter, r *http.Request) {
	count, err := cfg.db.GetUserCount(r.Context())
	if err != nil {
		respondWithError(w, r, kindUnexpected, "could not count users", err)
		return
	}

	type rspSchema struct {
		Count int64 `json:"count"`
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Count: count})
}
