package note

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

// Remote is the slice of the Todoist client the reconciler mutates through.
type Remote interface {
	UpdateTaskContent(ctx context.Context, id, content string) error
	UpdateTaskDue(ctx context.Context, id string, due time.Time, durationMinutes int) error
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	LastDueChange(ctx context.Context, id string) (*time.Time, error)
}

// Reconciler pushes note edits back to the remote source of truth. Each
// task's updates are independent: one failure never blocks the others.
type Reconciler struct {
	remote Remote
	logger *zap.Logger
	loc    *time.Location
}

func NewReconciler(remote Remote, logger *zap.Logger, loc *time.Location) *Reconciler {
	return &Reconciler{remote: remote, logger: logger, loc: loc}
}

// Reconcile diffs parsed note records against current remote tasks and
// resolves content, completion and time discrepancies. Records without a
// matching remote id are ignored; the note is not authoritative for task
// existence, only for edits.
func (r *Reconciler) Reconcile(ctx context.Context, notePath string, records []TaskRecord, remoteTasks []todoist.Task) {
	noteModified, err := ModifiedAt(notePath)
	if err != nil {
		r.logger.Warn("Could not stat note for conflict timestamps", zap.Error(err))
		noteModified = time.Now()
	}

	byID := make(map[string]*todoist.Task, len(remoteTasks))
	for i := range remoteTasks {
		byID[remoteTasks[i].ID] = &remoteTasks[i]
	}

	for _, rec := range records {
		task, ok := byID[rec.ID]
		if !ok {
			continue
		}
		r.reconcileCompletion(ctx, rec, task)
		r.reconcileContent(ctx, rec, task)
		r.reconcileTime(ctx, rec, task, noteModified)
	}
}

// reconcileCompletion resolves a completion conflict. When the remote has a
// recorded completion event its state wins; otherwise the note is
// authoritative and the remote task is closed or reopened to match.
func (r *Reconciler) reconcileCompletion(ctx context.Context, rec TaskRecord, task *todoist.Task) {
	if rec.Completed == task.Completed {
		return
	}
	if task.Completed && task.CompletedAt != nil {
		r.logger.Debug("Remote completion timestamp wins", zap.String("task_id", task.ID))
		return
	}

	if rec.Completed {
		if err := r.remote.CloseTask(ctx, task.ID); err != nil {
			r.logger.Error("Error closing task", zap.String("task_id", task.ID), zap.Error(err))
			return
		}
		r.logger.Info("Closed task completed in note", zap.String("task_id", task.ID))
		task.Completed = true
	} else {
		if err := r.remote.ReopenTask(ctx, task.ID); err != nil {
			r.logger.Error("Error reopening task", zap.String("task_id", task.ID), zap.Error(err))
			return
		}
		r.logger.Info("Reopened task unchecked in note", zap.String("task_id", task.ID))
		task.Completed = false
	}
}

// reconcileContent pushes a title edited in the note to the remote task.
func (r *Reconciler) reconcileContent(ctx context.Context, rec TaskRecord, task *todoist.Task) {
	if rec.Content == "" || rec.Content == task.DisplayContent() {
		return
	}

	content := rec.Content
	if task.Content != task.DisplayContent() {
		// Keep the calendar origin suffix the display form strips.
		content += todoist.CalendarOriginSuffix
	}
	if err := r.remote.UpdateTaskContent(ctx, task.ID, content); err != nil {
		r.logger.Error("Error updating task content", zap.String("task_id", task.ID), zap.Error(err))
		return
	}
	r.logger.Info("Updated task content from note",
		zap.String("task_id", task.ID), zap.String("content", rec.Content))
	task.Content = content
}

// reconcileTime resolves a scheduled-time conflict between an explicit
// HH:MM - HH:MM range in the note and the remote due time. The side with
// the newer modification timestamp wins; with no remote timestamp the note
// wins.
func (r *Reconciler) reconcileTime(ctx context.Context, rec TaskRecord, task *todoist.Task, noteModified time.Time) {
	if rec.Time == nil {
		return
	}
	remoteStart, ok := task.ScheduledAt()
	if !ok {
		return
	}
	if remoteStart.In(r.loc).Format("15:04") == rec.Time.Start {
		return
	}

	remoteChanged, err := r.remote.LastDueChange(ctx, task.ID)
	if err != nil {
		r.logger.Warn("Could not fetch due change history, treating note as newer",
			zap.String("task_id", task.ID), zap.Error(err))
		remoteChanged = nil
	}
	if remoteChanged != nil && remoteChanged.After(noteModified) {
		r.logger.Debug("Remote due change is newer than note", zap.String("task_id", task.ID))
		return
	}

	due, ok := rec.Time.StartOn(remoteStart.In(r.loc), r.loc)
	if !ok {
		return
	}
	minutes := rec.Time.Minutes()
	if minutes == 0 && task.Duration != nil {
		minutes = task.Duration.Minutes
	}
	if err := r.remote.UpdateTaskDue(ctx, task.ID, due, minutes); err != nil {
		r.logger.Error("Error updating task time", zap.String("task_id", task.ID), zap.Error(err))
		return
	}
	r.logger.Info("Updated task time from note",
		zap.String("task_id", task.ID),
		zap.String("from", remoteStart.In(r.loc).Format("15:04")),
		zap.String("to", rec.Time.Start))
	task.Due.Datetime = &todoist.Timestamp{Time: due}
	if minutes > 0 {
		task.Duration = &todoist.Duration{Minutes: minutes}
	}
}
