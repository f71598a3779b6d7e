// Package importer converts qualifying Google Calendar events into Todoist
// tasks, idempotently: each event is imported at most once per date, guarded
// by the sync log and a fuzzy duplicate check against current remote tasks.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/config"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/google"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/synclog"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

// Events whose start is further out than this are treated as malformed
// recurring-event expansions and skipped.
const maxFutureWindow = 365 * 24 * time.Hour

// EventSource lists calendar events in a time window.
type EventSource interface {
	Events(ctx context.Context, calendarID string, from, to time.Time) ([]*calendar.Event, error)
}

// TaskService is the slice of the Todoist client the importer needs.
type TaskService interface {
	ListTasks(ctx context.Context, filter string) ([]todoist.Task, error)
	CreateTask(ctx context.Context, nt todoist.NewTask) (*todoist.Task, error)
	Projects(ctx context.Context) (map[string]string, error)
}

type Importer struct {
	calendar EventSource
	tasks    TaskService
	log      *synclog.Log
	logger   *zap.Logger

	mappings   []config.CalendarMapping
	windowDays int
	threshold  float64
	window     time.Duration
	dryRun     bool
}

func New(calendar EventSource, tasks TaskService, log *synclog.Log, logger *zap.Logger, cfg *config.Config, dryRun bool) *Importer {
	return &Importer{
		calendar:   calendar,
		tasks:      tasks,
		log:        log,
		logger:     logger,
		mappings:   cfg.Calendars,
		windowDays: cfg.SyncWindowDays,
		threshold:  cfg.MatchThreshold,
		window:     cfg.MatchWindow,
		dryRun:     dryRun,
	}
}

// Run imports events from every configured calendar. A failed creation is
// logged and does not abort the remaining events; an error constructing the
// shared prerequisites aborts the whole import pass.
func (im *Importer) Run(ctx context.Context, now time.Time) error {
	projectIDs, err := im.projectIDs(ctx)
	if err != nil {
		return err
	}

	existing, err := im.tasks.ListTasks(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list tasks for duplicate checking: %w", err)
	}

	from := now
	to := now.AddDate(0, 0, im.windowDays)
	for _, mapping := range im.mappings {
		events, err := im.calendar.Events(ctx, mapping.CalendarID, from, to)
		if err != nil {
			im.logger.Error("Error listing calendar events",
				zap.String("calendar", mapping.CalendarID), zap.Error(err))
			continue
		}
		im.logger.Info("Checking calendar events for import",
			zap.String("calendar", mapping.CalendarID), zap.Int("events", len(events)))

		for _, ev := range events {
			im.importEvent(ctx, ev, projectIDs[mapping.ProjectName], existing, now)
		}
	}
	return nil
}

func (im *Importer) importEvent(ctx context.Context, ev *calendar.Event, projectID string, existing []todoist.Task, now time.Time) {
	if google.Declined(ev) {
		return
	}
	start, ok := google.EventStart(ev)
	if !ok {
		// All-day events have no time component and are not imported.
		return
	}
	if start.After(now.Add(maxFutureWindow)) {
		im.logger.Warn("Skipping event too far in the future", zap.String("summary", ev.Summary))
		return
	}

	date := start.Format("2006-01-02")
	if im.log.Contains(ev.Id, date) {
		return
	}

	if dup := im.findDuplicate(ev.Summary, start, existing); dup != nil {
		im.logger.Info("Event already exists as a task, skipping",
			zap.String("summary", ev.Summary), zap.String("task_id", dup.ID))
		im.record(ev.Id, ev.Summary, date)
		return
	}

	durationMinutes := 0
	if end, ok := google.EventEnd(ev); ok && end.After(start) {
		durationMinutes = int(end.Sub(start) / time.Minute)
	}

	if im.dryRun {
		im.logger.Info("Dry run: would create task",
			zap.String("summary", ev.Summary), zap.Time("start", start))
		im.record(ev.Id, ev.Summary, date)
		return
	}

	created, err := im.tasks.CreateTask(ctx, todoist.NewTask{
		Content:         ev.Summary + todoist.CalendarOriginSuffix,
		ProjectID:       projectID,
		DueDatetime:     start,
		DurationMinutes: durationMinutes,
	})
	if err != nil {
		im.logger.Error("Error creating task from event",
			zap.String("summary", ev.Summary), zap.Error(err))
		return
	}
	im.logger.Info("Created task from calendar event",
		zap.String("summary", ev.Summary), zap.String("task_id", created.ID))
	im.record(ev.Id, ev.Summary, date)
}

// findDuplicate returns an existing task that already covers the event:
// either the normalized titles match exactly on the same calendar date, or
// the similarity ratio exceeds the threshold and the task starts within the
// match window of the event.
func (im *Importer) findDuplicate(summary string, start time.Time, existing []todoist.Task) *todoist.Task {
	normalized := todoist.NormalizeContent(summary)
	date := start.Format("2006-01-02")

	for i := range existing {
		task := &existing[i]
		taskStart, scheduled := task.ScheduledAt()

		if task.NormalizedContent() == normalized {
			if scheduled && taskStart.Format("2006-01-02") == date {
				return task
			}
			if !scheduled && task.Due != nil && task.Due.Date == date {
				return task
			}
		}

		if !scheduled {
			continue
		}
		diff := taskStart.Sub(start)
		if diff < 0 {
			diff = -diff
		}
		if diff <= im.window && Similarity(normalized, task.NormalizedContent()) > im.threshold {
			return task
		}
	}
	return nil
}

// Similarity is the title-match ratio used for fuzzy duplicate detection.
func Similarity(a, b string) float64 {
	return strutil.Similarity(a, b, metrics.NewSorensenDice())
}

func (im *Importer) projectIDs(ctx context.Context) (map[string]string, error) {
	names, err := im.tasks.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination projects: %w", err)
	}
	ids := make(map[string]string, len(names))
	for id, name := range names {
		ids[name] = id
	}
	return ids, nil
}

// record appends to the idempotency log so the event is not rechecked on
// every run. A failed append is logged; the worst case is a re-check later.
func (im *Importer) record(eventID, title, date string) {
	if err := im.log.Append(eventID, title, date); err != nil {
		im.logger.Warn("Could not record synced event", zap.String("event_id", eventID), zap.Error(err))
	}
}
