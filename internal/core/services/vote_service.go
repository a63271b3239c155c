package services

import (
	"context"
	"errors"
	"time"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
	"github.com/communitydesk/ballot/internal/platform/metrics"
)

// voteService is the voting coordinator: it validates one cast request and
// hands it to the ledger, which performs the serialized, atomic chain
// append. The duplicate check here is a cheap early-out; the ledger repeats
// it under the per-poll lock, which is the authoritative one.
type voteService struct {
	pollRepo ports.PollRepository
	ledger   ports.VoteLedger
	notifier ports.Notifier
	metrics  *metrics.Metrics
}

func NewVoteService(pollRepo ports.PollRepository, ledger ports.VoteLedger, notifier ports.Notifier, m *metrics.Metrics) ports.VoteService {
	return &voteService{
		pollRepo: pollRepo,
		ledger:   ledger,
		notifier: notifier,
		metrics:  m,
	}
}

func (s *voteService) Cast(ctx context.Context, input ports.CastInput) (*ports.CastResult, error) {
	start := time.Now()

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	switch poll.StatusAt(time.Now()) {
	case domain.PollStatusDraft:
		return nil, &domain.PollNotActiveError{Reason: domain.PollNotStarted}
	case domain.PollStatusClosed:
		return nil, &domain.PollNotActiveError{Reason: domain.PollClosed}
	}

	if poll.Option(input.OptionID) == nil {
		return nil, domain.ErrInvalidOption
	}

	voted, err := s.ledger.HasParticipated(ctx, input.PollID, input.VoterID)
	if err != nil {
		return nil, err
	}
	if voted {
		if s.metrics != nil {
			s.metrics.DuplicateVotesRejected.Inc()
		}
		return nil, domain.ErrAlreadyVoted
	}

	vote, err := s.ledger.Append(ctx, ports.AppendVote{
		PollID:    input.PollID,
		OptionID:  input.OptionID,
		VoterID:   input.VoterID,
		Anonymous: poll.Anonymous,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) && s.metrics != nil {
			s.metrics.DuplicateVotesRejected.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.VotesCast.Inc()
		s.metrics.CastDuration.Observe(time.Since(start).Seconds())
	}

	// Receipt delivery is best effort and happens strictly after the append
	// committed; a notification failure must not fail the cast.
	if s.notifier != nil {
		s.notifier.VoteRecorded(poll.Title, vote.ReceiptCode)
	}

	return &ports.CastResult{
		ReceiptCode: vote.ReceiptCode,
		VoteHash:    vote.VoteHash,
		PrevHash:    vote.PrevHash,
		CastAt:      vote.CastAt,
		PollID:      vote.PollID,
	}, nil
}
