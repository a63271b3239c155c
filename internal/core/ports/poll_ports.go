package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
)

type PollFilter struct {
	Type   domain.PollType
	Status domain.PollStatus
}

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	// Delete purges the poll and cascades to its options, votes,
	// participations and chain tail.
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreatePollInput struct {
	Title       string
	Description string
	Type        domain.PollType
	Anonymous   bool
	Notify      bool
	StartsAt    time.Time
	EndsAt      time.Time
	Options     []string
	CreatedBy   uuid.UUID
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, filter PollFilter) ([]*domain.Poll, error)
	Purge(ctx context.Context, id string) error
}
