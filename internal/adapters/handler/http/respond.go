package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/communitydesk/ballot/internal/core/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeError maps domain errors onto HTTP statuses. Not-found stays generic
// on purpose; conflict-class errors keep their reason.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var notActiveErr *domain.PollNotActiveError
	if errors.As(err, &notActiveErr) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "poll is not active",
			"reason": string(notActiveErr.Reason),
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPollID), errors.Is(err, domain.ErrInvalidOption):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrPollNotFound), errors.Is(err, domain.ErrReceiptNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyVoted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrResultsNotOpen):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrTransientStorage):
		http.Error(w, "temporary storage failure, retry later", http.StatusServiceUnavailable)
	default:
		http.Error(w, domain.ErrInternal.Error(), http.StatusInternalServerError)
	}
}
