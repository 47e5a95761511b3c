package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/apperr"
)

// envelope is the standard success body: {"success": true, "data": ...}.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listEnvelope adds the result count to list responses.
type listEnvelope struct {
	Success bool `json:"success"`
	NbHit   int  `json:"nbHit"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeList(w http.ResponseWriter, count int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(listEnvelope{Success: true, NbHit: count, Data: data}); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy onto status codes. Retryable failures
// carry a Retry-After hint; internal details never reach the client.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(apperr.CodeOf(err))
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorBody{Error: apperr.MessageOf(err)}); encErr != nil {
		slog.Error("Failed to encode error response", "error", encErr)
	}
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeInvalid, apperr.CodeConflict:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// project reduces a record (or slice of records) to the requested fields by
// round-tripping through JSON. The id field is always retained. An empty
// field list returns the value unchanged.
func project(v any, fields []string) any {
	if len(fields) == 0 {
		return v
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}

	keep := make(map[string]struct{}, len(fields)+1)
	keep["id"] = struct{}{}
	for _, f := range fields {
		keep[f] = struct{}{}
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		for i := range list {
			list[i] = projectMap(list[i], keep)
		}
		return list
	}

	var single map[string]any
	if err := json.Unmarshal(raw, &single); err == nil {
		return projectMap(single, keep)
	}
	return v
}

func projectMap(m map[string]any, keep map[string]struct{}) map[string]any {
	out := make(map[string]any, len(keep))
	for k, v := range m {
		if _, ok := keep[k]; ok {
			out[k] = v
		}
	}
	return out
}
