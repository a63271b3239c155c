package services

import (
	"context"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type receiptService struct {
	ledger ports.VoteLedger
}

func NewReceiptService(ledger ports.VoteLedger) ports.ReceiptService {
	return &receiptService{
		ledger: ledger,
	}
}

// Verify resolves a receipt code to a redacted vote summary. The summary
// never includes voter identity, and hit and miss are the same single
// ledger lookup.
func (s *receiptService) Verify(ctx context.Context, code string) (*domain.Receipt, error) {
	return s.ledger.ReceiptByCode(ctx, code)
}
