package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitydesk/ballot/internal/adapters/repository/memory"
	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
)

func seedPoll(t *testing.T, store *memory.Store, mutate func(*domain.Poll)) *domain.Poll {
	t.Helper()

	pollID := uuid.New()
	poll := &domain.Poll{
		ID:       pollID,
		Title:    "Budget approval",
		Type:     domain.PollTypeBinding,
		StartsAt: time.Now().Add(-time.Hour),
		EndsAt:   time.Now().Add(time.Hour),
		Options: []domain.PollOption{
			{ID: uuid.New(), PollID: pollID, Text: "Yes", DisplayOrder: 0},
			{ID: uuid.New(), PollID: pollID, Text: "No", DisplayOrder: 1},
		},
		CreatedBy: uuid.New(),
		CreatedAt: time.Now(),
	}
	if mutate != nil {
		mutate(poll)
	}
	require.NoError(t, store.Save(context.Background(), poll))
	return poll
}

func TestCastVote(t *testing.T) {
	store := memory.NewStore()
	notify := &fakeNotifier{}
	svc := NewVoteService(store, store, notify, nil)
	ctx := context.Background()

	poll := seedPoll(t, store, nil)

	result, err := svc.Cast(ctx, ports.CastInput{
		PollID:   poll.ID,
		OptionID: poll.Options[0].ID,
		VoterID:  uuid.New(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.ReceiptCode)
	assert.NotEmpty(t, result.VoteHash)
	assert.Nil(t, result.PrevHash, "first vote has no predecessor")
	assert.False(t, result.CastAt.IsZero())
	assert.Equal(t, []string{result.ReceiptCode}, notify.receipts)
}

func TestCastVoteChainLinkage(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)
	ctx := context.Background()

	poll := seedPoll(t, store, nil)

	var hashes []string
	for i := 0; i < 3; i++ {
		result, err := svc.Cast(ctx, ports.CastInput{
			PollID:   poll.ID,
			OptionID: poll.Options[i%2].ID,
			VoterID:  uuid.New(),
		})
		require.NoError(t, err)
		hashes = append(hashes, result.VoteHash)
	}

	votes, err := store.VotesByPoll(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, votes, 3)

	assert.Nil(t, votes[0].PrevHash)
	for i := 1; i < 3; i++ {
		require.NotNil(t, votes[i].PrevHash)
		assert.Equal(t, hashes[i-1], *votes[i].PrevHash)
	}
}

func TestCastVotePollNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)

	_, err := svc.Cast(context.Background(), ports.CastInput{
		PollID:   uuid.New(),
		OptionID: uuid.New(),
		VoterID:  uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestCastVotePollNotActive(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)
	ctx := context.Background()

	draft := seedPoll(t, store, func(p *domain.Poll) {
		p.StartsAt = time.Now().Add(time.Hour)
		p.EndsAt = time.Now().Add(2 * time.Hour)
	})
	_, err := svc.Cast(ctx, ports.CastInput{PollID: draft.ID, OptionID: draft.Options[0].ID, VoterID: uuid.New()})
	var notActive *domain.PollNotActiveError
	require.ErrorAs(t, err, &notActive)
	assert.Equal(t, domain.PollNotStarted, notActive.Reason)

	closed := seedPoll(t, store, func(p *domain.Poll) {
		p.StartsAt = time.Now().Add(-2 * time.Hour)
		p.EndsAt = time.Now().Add(-time.Hour)
	})
	_, err = svc.Cast(ctx, ports.CastInput{PollID: closed.ID, OptionID: closed.Options[0].ID, VoterID: uuid.New()})
	require.ErrorAs(t, err, &notActive)
	assert.Equal(t, domain.PollClosed, notActive.Reason)
}

func TestCastVoteInvalidOption(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)

	poll := seedPoll(t, store, nil)
	other := seedPoll(t, store, nil)

	// An option from another poll is invalid even though it exists.
	_, err := svc.Cast(context.Background(), ports.CastInput{
		PollID:   poll.ID,
		OptionID: other.Options[0].ID,
		VoterID:  uuid.New(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestCastVoteDuplicate(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)
	ctx := context.Background()

	poll := seedPoll(t, store, nil)
	voterID := uuid.New()

	_, err := svc.Cast(ctx, ports.CastInput{PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: voterID})
	require.NoError(t, err)

	// Same voter, other option: still rejected.
	_, err = svc.Cast(ctx, ports.CastInput{PollID: poll.ID, OptionID: poll.Options[1].ID, VoterID: voterID})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	// Same voter, different poll: allowed.
	other := seedPoll(t, store, nil)
	_, err = svc.Cast(ctx, ports.CastInput{PollID: other.ID, OptionID: other.Options[0].ID, VoterID: voterID})
	assert.NoError(t, err)
}

func TestCastVoteAnonymousPoll(t *testing.T) {
	store := memory.NewStore()
	svc := NewVoteService(store, store, nil, nil)
	ctx := context.Background()

	poll := seedPoll(t, store, func(p *domain.Poll) { p.Anonymous = true })
	voterID := uuid.New()

	_, err := svc.Cast(ctx, ports.CastInput{PollID: poll.ID, OptionID: poll.Options[0].ID, VoterID: voterID})
	require.NoError(t, err)

	votes, err := store.VotesByPoll(ctx, poll.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Nil(t, votes[0].VoterID, "anonymous poll must not store voter identity on the vote")

	// Dedup still works without identity on the chain.
	_, err = svc.Cast(ctx, ports.CastInput{PollID: poll.ID, OptionID: poll.Options[1].ID, VoterID: voterID})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
}
