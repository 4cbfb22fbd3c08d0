package river

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/catalogue/internal/domain"
)

// ChangeHandler consumes a dequeued change.
type ChangeHandler func(ctx context.Context, change domain.Change) error

// LogChange is the default handler. It records the change in the log.
func LogChange(ctx context.Context, change domain.Change) error {
	attrs := []any{
		"kind", change.Kind,
		"class", change.Class.Name,
		"record_id", change.RecordID,
		"status", change.Status,
	}
	if change.Event != "" {
		attrs = append(attrs, "event", change.Event)
	}
	slog.InfoContext(ctx, "catalogue record changed", attrs...)
	return nil
}

// ChangeWorker decodes change jobs and hands them to a ChangeHandler.
type ChangeWorker struct {
	river.WorkerDefaults[ChangeJobArgs]
	handle ChangeHandler
}

// Work processes a single change job. Jobs naming an unknown class are
// cancelled, since retrying cannot fix them.
func (w *ChangeWorker) Work(ctx context.Context, job *river.Job[ChangeJobArgs]) error {
	class, ok := domain.ClassByName(job.Args.Class)
	if !ok {
		slog.WarnContext(ctx, "dropping change of unknown class",
			"class", job.Args.Class, "job_id", job.ID)
		return river.JobCancel(fmt.Errorf("unknown identifier class %q", job.Args.Class))
	}

	change := domain.Change{
		Kind:     domain.ChangeKind(job.Args.ChangeKind),
		Class:    class,
		RecordID: job.Args.RecordID,
		Status:   domain.Status(job.Args.Status),
		Event:    domain.Event(job.Args.Event),
	}
	if err := w.handle(ctx, change); err != nil {
		slog.ErrorContext(ctx, "handling change",
			"record_id", change.RecordID, "job_id", job.ID, "attempt", job.Attempt, "error", err)
		return err
	}
	return nil
}
