// Package memory provides an in-memory implementation of the poll, ledger
// and results repositories. It backs unit tests and local development; the
// append path mirrors the Postgres adapter's per-poll serialization with a
// per-poll mutex.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/hashchain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

type participationKey struct {
	pollID  uuid.UUID
	voterID uuid.UUID
}

// pollChain holds one poll's chain state. Its mutex is the per-poll
// serialization point: appends on different polls never contend.
type pollChain struct {
	mu    sync.Mutex
	votes []*domain.Vote
	tail  *string
}

type Store struct {
	mu             sync.RWMutex
	polls          map[uuid.UUID]*domain.Poll
	chains         map[uuid.UUID]*pollChain
	byReceipt      map[string]*domain.Vote
	participations map[participationKey]struct{}
}

func NewStore() *Store {
	return &Store{
		polls:          make(map[uuid.UUID]*domain.Poll),
		chains:         make(map[uuid.UUID]*pollChain),
		byReceipt:      make(map[string]*domain.Vote),
		participations: make(map[participationKey]struct{}),
	}
}

var (
	_ ports.PollRepository    = (*Store)(nil)
	_ ports.VoteLedger        = (*Store)(nil)
	_ ports.ResultsRepository = (*Store)(nil)
)

func (s *Store) Save(ctx context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *poll
	cp.Options = append([]domain.PollOption(nil), poll.Options...)
	s.polls[poll.ID] = &cp
	s.chains[poll.ID] = &pollChain{}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	cp := *poll
	cp.Options = append([]domain.PollOption(nil), poll.Options...)
	return &cp, nil
}

func (s *Store) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		cp := *poll
		cp.Options = append([]domain.PollOption(nil), poll.Options...)
		polls = append(polls, &cp)
	}
	return polls, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.polls[id]; !ok {
		s.mu.Unlock()
		return domain.ErrPollNotFound
	}
	delete(s.polls, id)
	chain := s.chains[id]
	delete(s.chains, id)
	for key := range s.participations {
		if key.pollID == id {
			delete(s.participations, key)
		}
	}
	s.mu.Unlock()

	if chain == nil {
		return nil
	}

	// The chain is detached from the map, so no further append can publish
	// to it; chain.mu still serializes with one already in flight. chain.mu
	// is never taken while holding s.mu.
	chain.mu.Lock()
	votes := append([]*domain.Vote(nil), chain.votes...)
	chain.mu.Unlock()

	s.mu.Lock()
	for _, vote := range votes {
		delete(s.byReceipt, vote.ReceiptCode)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Append(ctx context.Context, req ports.AppendVote) (*domain.Vote, error) {
	s.mu.RLock()
	chain, ok := s.chains[req.PollID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	chain.mu.Lock()
	defer chain.mu.Unlock()

	key := participationKey{pollID: req.PollID, voterID: req.VoterID}
	s.mu.RLock()
	_, voted := s.participations[key]
	s.mu.RUnlock()
	if voted {
		return nil, domain.ErrAlreadyVoted
	}

	castAt := hashchain.CanonicalTime(time.Now())
	if n := len(chain.votes); n > 0 && !castAt.After(chain.votes[n-1].CastAt) {
		castAt = chain.votes[n-1].CastAt.Add(time.Microsecond)
	}

	vote := &domain.Vote{
		ID:          uuid.New(),
		PollID:      req.PollID,
		OptionID:    req.OptionID,
		CastAt:      castAt,
		PrevHash:    chain.tail,
		HashVersion: hashchain.VersionV1,
	}
	if !req.Anonymous {
		voterID := req.VoterID
		vote.VoterID = &voterID
	}

	hash, err := hashchain.HashVote(vote)
	if err != nil {
		return nil, err
	}
	vote.VoteHash = hash
	vote.ReceiptCode = hashchain.DeriveReceiptCode(hash)

	chain.votes = append(chain.votes, vote)
	chain.tail = &vote.VoteHash

	// Publish only if the poll was not deleted while this append held the
	// chain lock; a mutated detached chain is unreachable and harmless.
	s.mu.Lock()
	if s.chains[req.PollID] != chain {
		s.mu.Unlock()
		return nil, domain.ErrPollNotFound
	}
	s.byReceipt[vote.ReceiptCode] = vote
	s.participations[key] = struct{}{}
	s.mu.Unlock()

	cp := *vote
	return &cp, nil
}

func (s *Store) VotesByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error) {
	s.mu.RLock()
	chain, ok := s.chains[pollID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	chain.mu.Lock()
	defer chain.mu.Unlock()

	votes := make([]*domain.Vote, 0, len(chain.votes))
	for _, vote := range chain.votes {
		cp := *vote
		votes = append(votes, &cp)
	}
	return votes, nil
}

func (s *Store) ReceiptByCode(ctx context.Context, code string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vote, ok := s.byReceipt[code]
	if !ok {
		return nil, domain.ErrReceiptNotFound
	}
	poll, ok := s.polls[vote.PollID]
	if !ok {
		return nil, domain.ErrReceiptNotFound
	}
	opt := poll.Option(vote.OptionID)
	if opt == nil {
		return nil, domain.ErrReceiptNotFound
	}
	return &domain.Receipt{
		PollTitle:  poll.Title,
		OptionText: opt.Text,
		CastAt:     vote.CastAt,
		VoteHash:   vote.VoteHash,
	}, nil
}

func (s *Store) HasParticipated(ctx context.Context, pollID, voterID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.participations[participationKey{pollID: pollID, voterID: voterID}]
	return ok, nil
}

func (s *Store) TallyByPoll(ctx context.Context, pollID uuid.UUID) ([]domain.OptionTally, error) {
	s.mu.RLock()
	poll, ok := s.polls[pollID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	votes, err := s.VotesByPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(poll.Options))
	for _, vote := range votes {
		counts[vote.OptionID]++
	}

	tallies := make([]domain.OptionTally, 0, len(poll.Options))
	for _, opt := range poll.Options {
		tallies = append(tallies, domain.OptionTally{
			OptionID: opt.ID,
			Text:     opt.Text,
			Count:    counts[opt.ID],
		})
	}
	return tallies, nil
}
