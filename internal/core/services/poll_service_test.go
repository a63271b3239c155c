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

// fakeNotifier records calls so tests can assert on best-effort dispatch.
type fakeNotifier struct {
	pollsCreated []string
	receipts     []string
}

func (f *fakeNotifier) PollCreated(poll *domain.Poll) {
	f.pollsCreated = append(f.pollsCreated, poll.Title)
}

func (f *fakeNotifier) VoteRecorded(pollTitle, receiptCode string) {
	f.receipts = append(f.receipts, receiptCode)
}

func validPollInput() ports.CreatePollInput {
	return ports.CreatePollInput{
		Title:     "Board election",
		Type:      domain.PollTypeBinding,
		StartsAt:  time.Now().Add(-time.Hour),
		EndsAt:    time.Now().Add(time.Hour),
		Options:   []string{"Yes", "No"},
		CreatedBy: uuid.New(),
	}
}

func TestPollServiceCreate(t *testing.T) {
	store := memory.NewStore()
	notify := &fakeNotifier{}
	svc := NewPollService(store, notify)

	poll, err := svc.Create(context.Background(), validPollInput())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, poll.ID)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, 0, poll.Options[0].DisplayOrder)
	assert.Equal(t, 1, poll.Options[1].DisplayOrder)
	assert.Empty(t, notify.pollsCreated, "notify flag off, no notification expected")

	stored, err := svc.GetPoll(context.Background(), poll.ID.String())
	require.NoError(t, err)
	assert.Equal(t, poll.Title, stored.Title)
}

func TestPollServiceCreateValidation(t *testing.T) {
	svc := NewPollService(memory.NewStore(), nil)

	cases := []struct {
		name   string
		mutate func(*ports.CreatePollInput)
		field  string
	}{
		{"missing title", func(in *ports.CreatePollInput) { in.Title = "" }, "title"},
		{"unknown type", func(in *ports.CreatePollInput) { in.Type = "ranked" }, "type"},
		{"end before start", func(in *ports.CreatePollInput) { in.EndsAt = in.StartsAt.Add(-time.Minute) }, "ends_at"},
		{"end equals start", func(in *ports.CreatePollInput) { in.EndsAt = in.StartsAt }, "ends_at"},
		{"one option", func(in *ports.CreatePollInput) { in.Options = []string{"Yes"} }, "options"},
		{"blank options filtered", func(in *ports.CreatePollInput) { in.Options = []string{"Yes", ""} }, "options"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validPollInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestPollServiceCreateNotifies(t *testing.T) {
	notify := &fakeNotifier{}
	svc := NewPollService(memory.NewStore(), notify)

	input := validPollInput()
	input.Notify = true

	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, []string{"Board election"}, notify.pollsCreated)
}

func TestPollServiceStatusDerivation(t *testing.T) {
	now := time.Now()
	poll := &domain.Poll{StartsAt: now.Add(time.Hour), EndsAt: now.Add(2 * time.Hour)}

	assert.Equal(t, domain.PollStatusDraft, poll.StatusAt(now))
	assert.Equal(t, domain.PollStatusActive, poll.StatusAt(now.Add(time.Hour)))
	assert.Equal(t, domain.PollStatusActive, poll.StatusAt(now.Add(2*time.Hour-time.Second)))
	assert.Equal(t, domain.PollStatusClosed, poll.StatusAt(now.Add(2*time.Hour)))
}

func TestPollServiceListFilters(t *testing.T) {
	svc := NewPollService(memory.NewStore(), nil)
	ctx := context.Background()

	binding := validPollInput()
	_, err := svc.Create(ctx, binding)
	require.NoError(t, err)

	closed := validPollInput()
	closed.Type = domain.PollTypeInformal
	closed.StartsAt = time.Now().Add(-2 * time.Hour)
	closed.EndsAt = time.Now().Add(-time.Hour)
	_, err = svc.Create(ctx, closed)
	require.NoError(t, err)

	all, err := svc.ListPolls(ctx, ports.PollFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bindingOnly, err := svc.ListPolls(ctx, ports.PollFilter{Type: domain.PollTypeBinding})
	require.NoError(t, err)
	assert.Len(t, bindingOnly, 1)

	closedOnly, err := svc.ListPolls(ctx, ports.PollFilter{Status: domain.PollStatusClosed})
	require.NoError(t, err)
	require.Len(t, closedOnly, 1)
	assert.Equal(t, domain.PollTypeInformal, closedOnly[0].Type)
}

func TestPollServicePurge(t *testing.T) {
	store := memory.NewStore()
	svc := NewPollService(store, nil)
	ctx := context.Background()

	poll, err := svc.Create(ctx, validPollInput())
	require.NoError(t, err)

	require.NoError(t, svc.Purge(ctx, poll.ID.String()))

	_, err = svc.GetPoll(ctx, poll.ID.String())
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	assert.ErrorIs(t, svc.Purge(ctx, "not-a-uuid"), domain.ErrInvalidPollID)
	assert.ErrorIs(t, svc.Purge(ctx, uuid.NewString()), domain.ErrPollNotFound)
}
