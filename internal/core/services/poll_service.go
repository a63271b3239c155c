package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type pollService struct {
	repo     ports.PollRepository
	notifier ports.Notifier
}

func NewPollService(repo ports.PollRepository, notifier ports.Notifier) ports.PollService {
	return &pollService{
		repo:     repo,
		notifier: notifier,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	if input.Title == "" {
		return nil, &domain.ValidationError{Field: "title", Message: "title is required"}
	}
	if !input.Type.Valid() {
		return nil, &domain.ValidationError{Field: "type", Message: "unknown poll type"}
	}
	if !input.EndsAt.After(input.StartsAt) {
		return nil, &domain.ValidationError{Field: "ends_at", Message: "end time must be after start time"}
	}

	pollID := uuid.New()
	now := time.Now()

	poll := &domain.Poll{
		ID:          pollID,
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Anonymous:   input.Anonymous,
		Notify:      input.Notify,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
	}

	order := 0
	for _, optText := range input.Options {
		if optText == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.PollOption{
			ID:           uuid.New(),
			PollID:       pollID,
			Text:         optText,
			DisplayOrder: order,
		})
		order++
	}

	if len(poll.Options) < 2 {
		return nil, &domain.ValidationError{Field: "options", Message: "at least two non-empty options are required"}
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	if poll.Notify && s.notifier != nil {
		s.notifier.PollCreated(poll)
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrInvalidPollID
	}

	return s.repo.GetByID(ctx, pollID)
}

func (s *pollService) ListPolls(ctx context.Context, filter ports.PollFilter) ([]*domain.Poll, error) {
	polls, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filtered := make([]*domain.Poll, 0, len(polls))
	for _, p := range polls {
		if filter.Type != "" && p.Type != filter.Type {
			continue
		}
		if filter.Status != "" && p.StatusAt(now) != filter.Status {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

func (s *pollService) Purge(ctx context.Context, id string) error {
	pollID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrInvalidPollID
	}

	return s.repo.Delete(ctx, pollID)
}
