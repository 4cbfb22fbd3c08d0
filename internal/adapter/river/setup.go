package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
)

// QueueDeletions carries delete changes.
const QueueDeletions = "deletions"

// Setup runs River's migrations and creates a client with the change worker
// registered. handle defaults to LogChange. The caller starts and stops the
// client.
func Setup(ctx context.Context, db *sql.DB, handle ChangeHandler) (*Client, error) {
	driver := riversqlite.New(db)

	// River keeps its own schema (river_job, river_leader, ...), separate
	// from the goose migrations of the catalogue tables.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, fmt.Errorf("running river migrations: %w", err)
	}

	if handle == nil {
		handle = LogChange
	}
	workers := river.NewWorkers()
	river.AddWorker(workers, &ChangeWorker{handle: handle})

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
			QueueDeletions:     {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
