package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/communitydesk/ballot/internal/core/ports"
)

type ReceiptHandler struct {
	service ports.ReceiptService
}

func NewReceiptHandler(service ports.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		service: service,
	}
}

// VerifyReceipt is a public, anonymous lookup. All failure modes collapse
// to the same not-found response.
func (h *ReceiptHandler) VerifyReceipt(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.Error(w, "missing receipt code", http.StatusBadRequest)
		return
	}

	receipt, err := h.service.Verify(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}
