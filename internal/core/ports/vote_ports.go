package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/communitydesk/ballot/internal/core/domain"
)

// AppendVote is the ledger-side request to extend a poll's chain by one
// vote. VoterID is always the acting voter, even for anonymous polls: the
// ledger needs it for the participation record, but must not store it on the
// vote row when Anonymous is set.
type AppendVote struct {
	PollID    uuid.UUID
	OptionID  uuid.UUID
	VoterID   uuid.UUID
	Anonymous bool
}

// VoteLedger is the append-only, per-poll ordered store of votes. Append is
// the single serialized operation in the system: implementations must make
// two concurrent appends on the same poll strictly ordered (the chain never
// forks) while appends on different polls proceed independently. On any
// failure Append leaves zero partial state.
type VoteLedger interface {
	Append(ctx context.Context, req AppendVote) (*domain.Vote, error)
	VotesByPoll(ctx context.Context, pollID uuid.UUID) ([]*domain.Vote, error)
	// ReceiptByCode resolves a receipt code to its redacted vote summary in
	// one lookup; an unknown code is ErrReceiptNotFound.
	ReceiptByCode(ctx context.Context, code string) (*domain.Receipt, error)
	HasParticipated(ctx context.Context, pollID, voterID uuid.UUID) (bool, error)
}

type CastInput struct {
	PollID   uuid.UUID
	OptionID uuid.UUID
	VoterID  uuid.UUID
}

// CastResult is what a voter gets back. It never includes voter identity.
type CastResult struct {
	ReceiptCode string    `json:"receipt_code"`
	VoteHash    string    `json:"vote_hash"`
	PrevHash    *string   `json:"prev_hash,omitempty"`
	CastAt      time.Time `json:"cast_at"`
	PollID      uuid.UUID `json:"poll_id"`
}

type VoteService interface {
	Cast(ctx context.Context, input CastInput) (*CastResult, error)
}
