/*
Package resp writes HTTP JSON responses.

Successful responses carry the bare payload the editor client consumes (a tree, a
file's content, {"success": true}). Errors carry the application code and message
as {"code": <int>, "error": "<message>"} with the status mapped by package errs.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	// Code is the application error code (see package errs).
	Code int `json:"code"`

	// Error is the client-facing message.
	Error string `json:"error"`
}

// SuccessBody is returned by mutating endpoints.
type SuccessBody struct {
	Success bool `json:"success"`
}

// RespondJSON marshals payload and writes it with httpStatus.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	if _, err := w.Write(response); err != nil {
		logx.Warn("Failed to write response body", "error", err.Error())
	}
}

// RespondSuccess writes data with HTTP 200.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondOK writes {"success": true} with HTTP 200.
func RespondOK(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, r, http.StatusOK, SuccessBody{Success: true})
}

// RespondError writes customErr with its mapped status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorBody{
		Code:  customErr.Code,
		Error: customErr.Message,
	})
}
