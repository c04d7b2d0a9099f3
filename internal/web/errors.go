package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical detail and request ID, then
// returned as an ErrorResponse built by core.MapError. Activation code check
// failures keep their localized message.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/core"
	"github.com/JonMunkholm/codeimport/internal/logging"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNoFile      = errors.New("no file provided")
	errBadRequest  = errors.New("invalid request")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Codes   []string `json:"codes,omitempty"` // offending activation codes, when known
}

// badRequest wraps a decoding problem so it maps to 400.
func badRequest(err error) error {
	return errors.Join(errBadRequest, err)
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var checkErr *codes.CheckError
	switch {
	case errors.As(err, &checkErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errBadRequest), errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrOfferNotFound), errors.Is(err, core.ErrStockNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrAlreadyImported),
		errors.Is(err, core.ErrCodesAlreadyExist),
		errors.Is(err, core.ErrNoActivationCodeAvailable),
		errors.Is(err, core.ErrBookingLimitPassed):
		return http.StatusConflict
	case errors.Is(err, core.ErrOfferNameRequired),
		errors.Is(err, core.ErrOfferNotDigital),
		errors.Is(err, core.ErrOfferIsEvent),
		errors.Is(err, core.ErrExpirationTooEarly),
		errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrPriceTooHigh),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrQuantityBelowBooked):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// offendingCodes returns the codes an error is about, if any.
func offendingCodes(err error) []string {
	var conflict *core.CodeConflictError
	if errors.As(err, &conflict) {
		return conflict.Codes
	}
	var checkErr *codes.CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Duplicates
	}
	return nil
}

// respondError logs err and writes the mapped ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeJSON(w, r, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
		Codes:   offendingCodes(err),
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
