package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeServiceError maps a service or store error to a response. Messages of
// 5xx responses never include err.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var missing *services.MissingFieldsError
	if errors.As(err, &missing) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "Missing required fields",
			"fields": missing.Fields,
		})
		return
	}

	status, msg := statusFor(err)
	if msg == "" {
		msg = fallback
	}
	writeError(w, status, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, common.ErrEmailRequired):
		return http.StatusBadRequest, "Email is required"
	case errors.Is(err, common.ErrInvalidFields):
		return http.StatusBadRequest, "Fields must be an array"
	case errors.Is(err, common.ErrPrivateForm):
		return http.StatusBadRequest, "Private forms cannot generate share links"
	case errors.Is(err, common.ErrPackageNotFound):
		return http.StatusBadRequest, "Package not found"
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrShareKeyExhausted):
		return http.StatusServiceUnavailable, ""
	default:
		return http.StatusInternalServerError, ""
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: invalid JSON body", common.ErrorValidation)
}
