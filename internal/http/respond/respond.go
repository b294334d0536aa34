package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, messageResponse{Message: msg})
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Message: msg})
}

// Err maps service errors onto HTTP statuses. Anything unrecognised is logged
// and reported as a bare 500 so ledger details never leak to clients.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	var verr *transaction.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{Message: err.Error(), Field: verr.Field})
	case errors.Is(err, transaction.ErrNotFound):
		Error(w, http.StatusNotFound, "Transaction not found")
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func Invalid(w http.ResponseWriter, field, reason string) {
	JSON(w, http.StatusBadRequest, errorResponse{Message: field + " " + reason, Field: field})
}

// Money renders d as a JSON number with exactly two decimals.
func Money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
