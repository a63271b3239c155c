package ports

import (
	"context"

	"github.com/communitydesk/ballot/internal/core/domain"
)

type ReceiptService interface {
	Verify(ctx context.Context, code string) (*domain.Receipt, error)
}
