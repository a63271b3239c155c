package domain

import "github.com/google/uuid"

// Reasons recorded against a broken chain link. "hash mismatch" means the
// vote's stored hash does not equal the hash recomputed from its own fields;
// "chain break" means its predecessor hash does not match the prior vote.
const (
	BreakReasonHashMismatch = "hash mismatch"
	BreakReasonChainBreak   = "chain break"
)

type BrokenLink struct {
	Index  int       `json:"index"`
	VoteID uuid.UUID `json:"vote_id"`
	Reason string    `json:"reason"`
}

// ChainReport is the result of walking a poll's full chain. It only reports;
// repair is a separate, human-triggered operation.
type ChainReport struct {
	PollID      uuid.UUID    `json:"poll_id"`
	Valid       bool         `json:"valid"`
	TotalVotes  int          `json:"total_votes"`
	BrokenLinks []BrokenLink `json:"broken_links"`
	Message     string       `json:"message"`
}
