package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
)

type ResultsRepository interface {
	TallyByPoll(ctx context.Context, pollID uuid.UUID) ([]domain.OptionTally, error)
}

// ResultsService gates tally access: admin-only while a poll is active,
// public once it has closed.
type ResultsService interface {
	Results(ctx context.Context, pollID uuid.UUID, admin bool) ([]domain.OptionTally, error)
}
