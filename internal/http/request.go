package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/victor-uk/expense-tracker/internal/apperr"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON parses a request body into dst, rejecting oversized bodies and
// trailing garbage.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.CodeInvalid, "empty request body")
		}
		return apperr.Wrap(apperr.CodeInvalid, "malformed request body", err)
	}
	if dec.More() {
		return apperr.New(apperr.CodeInvalid, "request body must contain a single JSON object")
	}
	return nil
}
