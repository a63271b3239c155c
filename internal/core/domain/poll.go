package domain

import (
	"time"

	"github.com/google/uuid"
)

type PollType string

const (
	PollTypeInformal  PollType = "informal"
	PollTypeBinding   PollType = "binding"
	PollTypeStrawPoll PollType = "straw-poll"
)

func (t PollType) Valid() bool {
	switch t {
	case PollTypeInformal, PollTypeBinding, PollTypeStrawPoll:
		return true
	}
	return false
}

// PollStatus is derived from the current time and the poll window. It is
// never stored.
type PollStatus string

const (
	PollStatusDraft  PollStatus = "draft"
	PollStatusActive PollStatus = "active"
	PollStatusClosed PollStatus = "closed"
)

type Poll struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Type        PollType     `json:"type"`
	Anonymous   bool         `json:"anonymous"`
	Notify      bool         `json:"notify"`
	Options     []PollOption `json:"options"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      time.Time    `json:"ends_at"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
}

type PollOption struct {
	ID           uuid.UUID `json:"id"`
	PollID       uuid.UUID `json:"poll_id"`
	Text         string    `json:"text"`
	DisplayOrder int       `json:"display_order"`
}

// StatusAt derives the poll status from its window: before the window the
// poll is a draft, inside it the poll is active, from the end time on it is
// closed.
func (p *Poll) StatusAt(now time.Time) PollStatus {
	if now.Before(p.StartsAt) {
		return PollStatusDraft
	}
	if now.Before(p.EndsAt) {
		return PollStatusActive
	}
	return PollStatusClosed
}

// Option returns the poll option with the given id, or nil when the option
// does not belong to this poll.
func (p *Poll) Option(id uuid.UUID) *PollOption {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i]
		}
	}
	return nil
}
