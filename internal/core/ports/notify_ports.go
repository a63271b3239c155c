package ports

import (
	"github.com/communitydesk/ballot/internal/core/domain"
)

// Notifier is the best-effort outbound notification collaborator. Calls must
// never block the caller and are never retried by the core: a dropped
// notification is acceptable, a stalled vote cast is not.
type Notifier interface {
	PollCreated(poll *domain.Poll)
	VoteRecorded(pollTitle, receiptCode string)
}
