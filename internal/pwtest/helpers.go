package pwtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
)

// GetJSONField decodes the response body as an object and returns one
// field. Numbers come back as int64 when they are whole, float64 otherwise.
// The recorder is left unread so the same response can be queried again.
func GetJSONField(w *httptest.ResponseRecorder, field string) (any, error) {
	var body map[string]any
	decoder := json.NewDecoder(bytes.NewReader(w.Body.Bytes()))
	decoder.UseNumber()
	err := decoder.Decode(&body)
	if err != nil {
		return nil, err
	}
	val, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	if num, ok := val.(json.Number); ok {
		if i, err := num.Int64(); err == nil {
			return i, nil
		}
		if f, err := num.Float64(); err == nil {
			return f, nil
		}
	}

	return val, nil
}

// DecodeJSON decodes the whole response body into T.
func DecodeJSON[T any](w *httptest.ResponseRecorder) (T, error) {
	var v T
	err := json.Unmarshal(w.Body.Bytes(), &v)
	return v, err
}
