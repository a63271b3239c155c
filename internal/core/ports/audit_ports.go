package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
)

type AuditService interface {
	ValidateChain(ctx context.Context, pollID uuid.UUID) (*domain.ChainReport, error)
}
