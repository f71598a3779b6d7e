package agenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

// Renderer converts an organized task list into the note's bullet-list text
// block. Rendering is pure: the same tasks and render date always produce
// byte-identical output.
type Renderer struct {
	Now time.Time
	Loc *time.Location
}

// Render emits one line per task. Each line carries a checkbox, an optional
// priority badge, an optional same-day time range, and the anchor element
// that later round-trips through the note parser.
func (r *Renderer) Render(tasks []todoist.Task) string {
	byID := make(map[string]todoist.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, r.line(t, byID))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) line(t todoist.Task, byID map[string]todoist.Task) string {
	checkbox := " "
	if t.Completed {
		checkbox = "x"
	}

	badge := ""
	if t.Priority > 1 {
		level := 5 - t.Priority
		badge = fmt.Sprintf(`<i d="p%d">p%d</i> `, level, level)
	}

	timeRange := ""
	if start, ok := t.ScheduledAt(); ok {
		local := start.In(r.Loc)
		if sameDay(local, r.Now.In(r.Loc)) {
			timeRange = local.Format("15:04")
			if end, ok := t.EndAt(); ok {
				timeRange += " - " + end.In(r.Loc).Format("15:04")
			}
			timeRange += " "
		}
	}

	// A subtask is indented only when it shares its parent's project;
	// cross-project children stay flush left.
	indent := ""
	if t.ParentID != "" {
		if parent, ok := byID[t.ParentID]; ok && parent.ProjectID == t.ProjectID {
			indent = "\t"
		}
	}

	content := t.DisplayContent()
	anchor := fmt.Sprintf(`<span data-id="%s" data-project="%s" class="%s">%s</span>`,
		t.ID, t.ProjectName, todoist.ClassString(content), content)

	return fmt.Sprintf("%s- [%s] %s%s%s", indent, checkbox, badge, timeRange, anchor)
}

// SummaryLine is the localized task-count line under the note header.
func SummaryLine(count int, today bool) string {
	if today {
		return fmt.Sprintf("Tehtäviä tänään: %d.", count)
	}
	return fmt.Sprintf("Tehtäviä: %d.", count)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
