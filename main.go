package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/agenda"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/auth"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/config"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/google"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/importer"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/logger"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/note"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/synclog"
	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Log calendar imports as 'would create' without mutating Todoist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	zl := logger.New(cfg.LogLevel)
	defer zl.Sync()

	loc, err := cfg.Location()
	if err != nil {
		zl.Fatal("Configuration error", zap.Error(err))
	}

	ctx := context.Background()
	now := time.Now().In(loc)
	td := todoist.NewClient(cfg.TodoistAPIKey, zl)

	// 1. Calendar import, optional and best-effort: a failure here never
	// stops the note from being rendered.
	if cfg.CalendarImportEnabled() {
		runCalendarImport(ctx, cfg, td, zl, now, *dryRun)
	} else {
		zl.Debug("Calendar import not configured, skipping")
	}

	// 2. Fetch current remote state and reconcile the previous note
	// against it before rendering.
	notePath := note.Path(cfg.NotesPath, now)
	reconcileNote(ctx, td, zl, loc, notePath, now)

	// 3. Re-fetch so the render picks up reconciliation effects.
	zl.Info("Creating daily note...")
	today := td.TodayTasks(ctx)
	completed := td.CompletedToday(ctx, now, loc)
	future := td.FutureTasks(ctx)
	backlog := td.BacklogTasks(ctx)
	zl.Info("Found tasks",
		zap.Int("active", len(today)), zap.Int("completed", len(completed)),
		zap.Int("future", len(future)), zap.Int("backlog", len(backlog)))

	projects, err := td.Projects(ctx)
	if err != nil {
		zl.Error("Error fetching projects, task project names will be empty", zap.Error(err))
		projects = map[string]string{}
	}

	// 4. Organize and render.
	todayTasks := agenda.Organize(append(today, completed...))
	futureTasks := agenda.Organize(future)
	backlogTasks := agenda.Organize(backlog)
	agenda.ResolveProjects(todayTasks, projects)
	agenda.ResolveProjects(futureTasks, projects)
	agenda.ResolveProjects(backlogTasks, projects)

	r := &agenda.Renderer{Now: now, Loc: loc}
	content := note.Build(now,
		agenda.SummaryLine(len(todayTasks), true),
		r.Render(todayTasks),
		r.Render(futureTasks),
		r.Render(backlogTasks))

	if err := note.Write(notePath, content); err != nil {
		zl.Fatal("Error writing daily note", zap.Error(err))
	}
	zl.Info("Daily note created", zap.String("path", notePath))
}

func runCalendarImport(ctx context.Context, cfg *config.Config, td *todoist.Client, zl *zap.Logger, now time.Time, dryRun bool) {
	srv, err := auth.NewCalendarService(ctx, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken)
	if err != nil {
		zl.Error("Calendar import aborted", zap.Error(err))
		return
	}
	slog, err := synclog.Open(cfg.SyncLogPath)
	if err != nil {
		zl.Error("Calendar import aborted", zap.Error(err))
		return
	}

	im := importer.New(google.NewCalendarClient(srv), td, slog, zl, cfg, dryRun)
	if err := im.Run(ctx, now); err != nil {
		zl.Error("Calendar import aborted", zap.Error(err))
	}
}

func reconcileNote(ctx context.Context, td *todoist.Client, zl *zap.Logger, loc *time.Location, notePath string, now time.Time) {
	existing, err := note.Read(notePath)
	if err != nil {
		zl.Warn("Could not read existing note", zap.Error(err))
		return
	}
	if existing == "" {
		return
	}
	if note.SyncStopped(existing) {
		zl.Info("Sync stop marker found in note, skipping remote writes")
		return
	}

	records := note.ParseTasks(existing)
	if len(records) == 0 {
		return
	}

	remoteTasks := td.TodayTasks(ctx)
	remoteTasks = append(remoteTasks, td.FutureTasks(ctx)...)
	remoteTasks = append(remoteTasks, td.BacklogTasks(ctx)...)
	remoteTasks = append(remoteTasks, td.CompletedToday(ctx, now, loc)...)

	note.NewReconciler(td, zl, loc).Reconcile(ctx, notePath, records, remoteTasks)
}
