// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mcardoso/brecho-be/internal/core/domain"
)

// respondJSON writes data as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// respondError writes a JSON error envelope.
func respondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	respondJSON(w, logger, status, map[string]string{"error": message})
}

// statusForError maps domain sentinels to HTTP statuses. Conflicts that
// arise from losing a race (closed consignment, stock gone) are 409 so the
// caller knows to refetch; validation failures are 400.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrConsignmentNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConsignmentClosed),
		errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptySelection),
		errors.Is(err, domain.ErrClienteRequired),
		errors.Is(err, domain.ErrQuantityExceedsLoan),
		errors.Is(err, domain.ErrItemNotInConsignment),
		errors.Is(err, domain.ErrBarterDescriptionRequired),
		errors.Is(err, domain.ErrBarterDiscountNotAllowed),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrPastDeadline),
		errors.Is(err, domain.ErrInvalidPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondDomainError maps a service error to a status; internal errors get
// a generic message so database detail never leaks to the client.
func respondDomainError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = fallback
	}
	respondError(w, logger, status, message)
}

// parseID reads a positive int64 path value.
func parseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
