package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

// tallyCache is an explicit per-poll cache with its own TTL and an injected
// clock. It is owned by the results service instead of living in a
// process-wide variable, so tests can drive expiry deterministically.
type tallyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]tallyEntry
}

type tallyEntry struct {
	tallies   []domain.OptionTally
	fetchedAt time.Time
}

func newTallyCache(ttl time.Duration, now func() time.Time) *tallyCache {
	return &tallyCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[uuid.UUID]tallyEntry),
	}
}

func (c *tallyCache) get(pollID uuid.UUID) ([]domain.OptionTally, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pollID]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.tallies, true
}

func (c *tallyCache) put(pollID uuid.UUID, tallies []domain.OptionTally) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pollID] = tallyEntry{tallies: tallies, fetchedAt: c.now()}
}

type resultsService struct {
	pollRepo ports.PollRepository
	results  ports.ResultsRepository
	cache    *tallyCache
	now      func() time.Time
}

// NewResultsService builds the tally service. ttl bounds how stale a cached
// tally may be; now is the clock used both for cache expiry and for the
// active/closed access decision.
func NewResultsService(pollRepo ports.PollRepository, results ports.ResultsRepository, ttl time.Duration, now func() time.Time) ports.ResultsService {
	if now == nil {
		now = time.Now
	}
	return &resultsService{
		pollRepo: pollRepo,
		results:  results,
		cache:    newTallyCache(ttl, now),
		now:      now,
	}
}

// Results returns per-option vote counts. While a poll is active the tallies
// are admin-only; once it has closed they are public. Draft polls have no
// results to show.
func (s *resultsService) Results(ctx context.Context, pollID uuid.UUID, admin bool) ([]domain.OptionTally, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	status := poll.StatusAt(s.now())
	if status != domain.PollStatusClosed && !admin {
		return nil, domain.ErrResultsNotOpen
	}

	if tallies, ok := s.cache.get(pollID); ok {
		return tallies, nil
	}

	tallies, err := s.results.TallyByPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	s.cache.put(pollID, tallies)
	return tallies, nil
}
