package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// UserHeader identifies the caller. Authentication happens upstream.
const UserHeader = "X-User-ID"

const maxUserIDLen = 64

var errMissingUser = errors.New("missing " + UserHeader + " header")

// userID reads and validates the caller's id.
func userID(r *http.Request) (string, error) {
	id := sanitizeInput(r.Header.Get(UserHeader))
	if id == "" {
		return "", errMissingUser
	}
	if len(id) > maxUserIDLen {
		return "", errors.New(UserHeader + " too long")
	}
	return id, nil
}

// parseDays reads the optional days query parameter. Zero means the default window.
func parseDays(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("days"))
	if v == "" {
		return 0, nil
	}
	days, err := strconv.Atoi(v)
	if err != nil || days < 0 || days > 3650 {
		return 0, errors.New("days must be an integer between 0 and 3650")
	}
	return days, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto status codes and logs server faults.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 && status != http.StatusNotImplemented {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err.Error(),
			log.FieldPath, r.URL.Path)
		msg = http.StatusText(status)
	}
	writeError(w, r, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrCategoryMismatch),
		errors.Is(err, errInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyUser):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrSheetsDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// sanitizeInput removes control characters except tab, newline and carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
