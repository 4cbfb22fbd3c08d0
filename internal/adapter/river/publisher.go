package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/catalogue/internal/domain"
)

var _ domain.EventPublisher = (*Publisher)(nil)

// ChangeJobArgs is the queued form of a domain.Change. River stores it as
// JSON in river_job, so the worker never reads the catalogue tables.
type ChangeJobArgs struct {
	ChangeKind string `json:"kind"`
	Class      string `json:"class"`
	RecordID   string `json:"record_id"`
	Status     string `json:"status"`
	Event      string `json:"event,omitempty"`
}

// Kind returns the job type River routes on.
func (ChangeJobArgs) Kind() string { return "catalogue.change" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher enqueues record changes as River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues change. Deletes go to their own queue so they are not
// held up behind bursts of creates.
func (p *Publisher) Publish(ctx context.Context, change domain.Change) error {
	args := ChangeJobArgs{
		ChangeKind: string(change.Kind),
		Class:      change.Class.Name,
		RecordID:   change.RecordID,
		Status:     string(change.Status),
		Event:      string(change.Event),
	}

	var opts *river.InsertOpts
	if change.Kind == domain.ChangeDeleted {
		opts = &river.InsertOpts{Queue: QueueDeletions}
	}

	if _, err := p.client.Insert(ctx, args, opts); err != nil {
		return fmt.Errorf("enqueuing %s change of %s: %w", change.Kind, change.RecordID, err)
	}
	return nil
}
