package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/ports"
)

type AuditHandler struct {
	service ports.AuditService
}

func NewAuditHandler(service ports.AuditService) *AuditHandler {
	return &AuditHandler{
		service: service,
	}
}

// ValidateChain runs a full integrity audit of one poll's chain. Admin-only;
// the report is returned regardless of outcome, tampering is never an HTTP
// error.
func (h *AuditHandler) ValidateChain(w http.ResponseWriter, r *http.Request) {
	pollID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid poll id", http.StatusBadRequest)
		return
	}

	report, err := h.service.ValidateChain(r.Context(), pollID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
