package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is one link in a poll's hash chain. VoterID is nil for anonymous
// polls; PrevHash is nil only for the first vote in a poll. CastAt is
// assigned by the ledger at append time, never by the caller.
type Vote struct {
	ID          uuid.UUID  `json:"id"`
	PollID      uuid.UUID  `json:"poll_id"`
	VoterID     *uuid.UUID `json:"voter_id,omitempty"`
	OptionID    uuid.UUID  `json:"option_id"`
	CastAt      time.Time  `json:"cast_at"`
	PrevHash    *string    `json:"prev_hash,omitempty"`
	VoteHash    string     `json:"vote_hash"`
	ReceiptCode string     `json:"-"`
	HashVersion int        `json:"hash_version"`
}

// Participation records that a voter has cast a vote in a poll. It lives off
// the public chain so duplicate prevention keeps working when the poll is
// anonymous and the Vote row itself carries no voter identity. The privacy
// cost is deliberate: "anonymous" hides who voted for what, not who voted.
type Participation struct {
	PollID  uuid.UUID
	VoterID uuid.UUID
}

// Receipt is the redacted view of a vote returned by receipt verification.
// It never contains voter identity.
type Receipt struct {
	PollTitle  string    `json:"poll_title"`
	OptionText string    `json:"option_text"`
	CastAt     time.Time `json:"cast_at"`
	VoteHash   string    `json:"vote_hash"`
}

// OptionTally is the vote count for a single option.
type OptionTally struct {
	OptionID uuid.UUID `json:"option_id"`
	Text     string    `json:"text"`
	Count    int64     `json:"count"`
}
