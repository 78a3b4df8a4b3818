package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"nestflow/internal/auth"
	"nestflow/internal/domain"

	"github.com/rs/zerolog"
)

const (
	codeInvalidDateRange     = "InvalidDateRange"
	codeDateRangeUnavailable = "DateRangeUnavailable"
	codeSelfBooking          = "SelfBookingForbidden"
	codeForbidden            = "Forbidden"
	codeActiveBookings       = "ActiveBookingsExist"
	codeInvalidStatus        = "InvalidStatus"
	codePropertyNotFound     = "PropertyNotFound"
	codeNotFound             = "NotFound"
	codeReviewNotAllowed     = "ReviewNotAllowed"
	codeAlreadyReviewed      = "AlreadyReviewed"
	codeEmailTaken           = "EmailTaken"
	codeInvalidCredentials   = "InvalidCredentials"
	codeRateLimited          = "RateLimited"
	codeValidation           = "ValidationError"
	codeUnauthorized         = "Unauthorized"
	codeInvalidToken         = "InvalidToken"
	codeInternal             = "InternalError"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters: specific not-found errors before the generic one.
var errorMappings = []errorMapping{
	{domain.ErrInvalidDateRange, http.StatusBadRequest, codeInvalidDateRange},
	{domain.ErrDateRangeUnavailable, http.StatusConflict, codeDateRangeUnavailable},
	{domain.ErrSelfBookingForbidden, http.StatusBadRequest, codeSelfBooking},
	{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
	{domain.ErrActiveBookingsExist, http.StatusForbidden, codeActiveBookings},
	{domain.ErrInvalidStatus, http.StatusBadRequest, codeInvalidStatus},
	{domain.ErrPropertyNotFound, http.StatusNotFound, codePropertyNotFound},
	{domain.ErrNotFound, http.StatusNotFound, codeNotFound},
	{domain.ErrReviewNotAllowed, http.StatusForbidden, codeReviewNotAllowed},
	{domain.ErrAlreadyReviewed, http.StatusBadRequest, codeAlreadyReviewed},
	{domain.ErrEmailTaken, http.StatusBadRequest, codeEmailTaken},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, codeInvalidCredentials},
	{domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
	{domain.ErrValidation, http.StatusBadRequest, codeValidation},
	{auth.ErrInvalidToken, http.StatusForbidden, codeInvalidToken},
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps an error to its HTTP status and code; ok is false for unknown errors.
func classify(err error) (int, string, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code, true
		}
	}
	return http.StatusInternalServerError, codeInternal, false
}

// respondError writes the mapped error. Unmapped errors are logged and hidden.
func respondError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	status, code, ok := classify(err)
	if !ok {
		logger.Error().Err(err).
			Str("request_id", requestIDFrom(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Unhandled error")
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Code: code})
}
