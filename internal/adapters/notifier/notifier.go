// Package notifier implements the best-effort outbound notification
// collaborator. Events are queued on a buffered channel and delivered by a
// background worker; when the buffer is full the event is dropped and
// counted, never blocking the vote path.
package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/communitydesk/ballot/internal/core/domain"
	"github.com/communitydesk/ballot/internal/core/ports"
	"github.com/communitydesk/ballot/internal/platform/metrics"
)

type event struct {
	kind    string
	subject string
	detail  string
}

type Notifier struct {
	inbox   chan event
	log     *log.Logger
	metrics *metrics.Metrics
}

var _ ports.Notifier = (*Notifier)(nil)

func New(logger *log.Logger, m *metrics.Metrics, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 64
	}
	return &Notifier{
		inbox:   make(chan event, buffer),
		log:     logger,
		metrics: m,
	}
}

func (n *Notifier) PollCreated(poll *domain.Poll) {
	n.enqueue(event{
		kind:    "poll_created",
		subject: poll.Title,
		detail:  fmt.Sprintf("opens %s, closes %s", poll.StartsAt.Format("2006-01-02 15:04"), poll.EndsAt.Format("2006-01-02 15:04")),
	})
}

func (n *Notifier) VoteRecorded(pollTitle, receiptCode string) {
	n.enqueue(event{
		kind:    "vote_recorded",
		subject: pollTitle,
		detail:  "receipt " + receiptCode,
	})
}

func (n *Notifier) enqueue(e event) {
	select {
	case n.inbox <- e:
	default:
		if n.metrics != nil {
			n.metrics.NotificationsDropped.Inc()
		}
	}
}

// Run consumes queued events until the context is cancelled. Delivery is a
// log line here; a mail or webhook sender slots in behind the same loop.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-n.inbox:
			n.log.Printf("notify %s: %s (%s)", e.kind, e.subject, e.detail)
		}
	}
}
