package httpserver

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeProductNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeRender:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFetch, errors.ErrCodeNetwork, errors.ErrCodeTimeout, errors.ErrCodeRateLimited:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type apiError struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), apiError{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}

// writeError writes a plain-text error for non-JSON routes.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, errors.UserMessage(err), statusFor(err))
}

// writeFile sends data as a download (or inline when attachment is false).
func writeFile(w http.ResponseWriter, data []byte, contentType, filename string, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
