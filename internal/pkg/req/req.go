/*
Package req provides helpers for parsing HTTP request input.

JSON bodies are decoded strictly (known fields only, a single value, bounded size)
and query parameters are read through small typed accessors so handlers report
malformed input with the application error codes.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"coderoom/internal/pkg/errs"
)

// MaxJSONBodySize bounds the size of a JSON request body (1 MB).
const MaxJSONBodySize int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrInvalidParams)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// QueryInt returns the integer query parameter key, or def when absent.
// Values that do not parse or fall outside [minValue, maxValue] are an error.
func QueryInt(r *http.Request, key string, def, minValue, maxValue int) (int, *errs.CustomError) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < minValue || v > maxValue {
		return 0, errs.NewError(errs.ErrInvalidParams)
	}
	return v, nil
}
