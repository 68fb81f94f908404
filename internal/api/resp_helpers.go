package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/YouWantToPinch/pocketwise-api/internal/ledger"
)

const (
	dateLayout     = "2006-01-02"
	maxPayloadSize = 1 << 20
)

func decodePayload[T any](r *http.Request) (T, error) {
	var v T
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxPayloadSize))
	if err := decoder.Decode(&v); err != nil {
		return v, fmt.Errorf("failure decoding request payload: %w", err)
	}
	return v, nil
}

func makeStatusCodeMsg(code int) string {
	return fmt.Sprintf("%d %s", code, http.StatusText(code))
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("could not marshal JSON for response: " + err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(data)
	if err != nil {
		slog.Error("could not write to header from JSON payload: " + err.Error())
	}
}

type messageResponse struct {
	Message string     `json:"message"`
	ID      *uuid.UUID `json:"id,omitempty"`
}

func respondWithMessage(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, messageResponse{Message: msg})
}

func parseUUIDFromPath(pathParam string, r *http.Request) (uuid.UUID, error) {
	uuidString := r.PathValue(pathParam)
	if uuidString == "" {
		return uuid.Nil, fmt.Errorf("path parameter '%s' is missing", pathParam)
	}
	parsedID, err := uuid.Parse(uuidString)
	if err != nil {
		return uuid.Nil, fmt.Errorf("value '%s' for path parameter '%s' could not be parsed as UUID: %w", uuidString, pathParam, err)
	}
	return parsedID, nil
}

// Try to parse input query parameter; the zero time means it was absent.
func parseDateFromQuery(queryParam string, r *http.Request) (time.Time, error) {
	parsed, err := parseDate(r.URL.Query().Get(queryParam))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid query parameter value '%s': %w", queryParam, err)
	}
	return parsed, nil
}

// queryAlias returns the first of names present in the query, or names[0].
func queryAlias(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, name := range names {
		if q.Has(name) {
			return name
		}
	}
	return names[0]
}

// parseDate parses YYYY-MM-DD. An empty string yields the zero time.
func parseDate(dateString string) (time.Time, error) {
	if dateString == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, dateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("value '%s' could not be parsed as DATE", dateString)
	}
	return parsed, nil
}

var errNoPeriod = errors.New("no period given")

// parsePeriodFromQuery reads month=YYYY-MM, or month=M together with year=YYYY.
// It returns errNoPeriod when neither form is present.
func parsePeriodFromQuery(r *http.Request) (ledger.Period, error) {
	q := r.URL.Query()
	month, year := q.Get("month"), q.Get("year")
	switch {
	case month == "" && year == "":
		return ledger.Period{}, errNoPeriod
	case year != "":
		if month == "" {
			return ledger.Period{}, errors.New("query parameter 'year' requires 'month'")
		}
		return ledger.ParsePeriodParts(month, year)
	default:
		return ledger.ParsePeriod(month)
	}
}

// periodInput is the request body form of a budget period: either month and
// year as numbers, or period as YYYY-MM.
type periodInput struct {
	Month  int    `json:"month"`
	Year   int    `json:"year"`
	Period string `json:"period"`
}

func (p periodInput) resolve() (ledger.Period, error) {
	if p.Period != "" {
		if p.Month != 0 || p.Year != 0 {
			return ledger.Period{}, errors.New("give either period or month and year, not both")
		}
		return ledger.ParsePeriod(p.Period)
	}
	if p.Month == 0 || p.Year == 0 {
		return ledger.Period{}, errors.New("month and year are required")
	}
	return ledger.NewPeriod(p.Year, p.Month)
}

func parseLimitFromQuery(r *http.Request) (int32, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid query parameter value 'limit': '%s' is not a positive integer", raw)
	}
	return int32(limit), nil
}
