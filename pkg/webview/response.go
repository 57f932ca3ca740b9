package webview

import (
	"encoding/json"
	"net/http"
)

// Error codes in JSON error responses.
const (
	codeInvalidRequest = "invalid_request"
	codeUnknownField   = "unknown_field"
	codeValidation     = "validation_error"
	codeRemote         = "remote_error"
	codeClosed         = "unavailable"
	codeInternal       = "internal_error"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// writeJSON writes a JSON response with the given status code. A value that
// cannot be encoded becomes a 500 error response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var body []byte
	if data != nil {
		var err error
		if body, err = json.Marshal(data); err != nil {
			status = http.StatusInternalServerError
			body, _ = json.Marshal(errorResponse{Error: codeInternal, Message: "response could not be encoded"})
		}
		body = append(body, '\n')
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeErrorWithDetails writes a JSON error response with extra details,
// such as the fields that failed validation.
func writeErrorWithDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, errorResponse{Error: code, Message: message, Details: details})
}
