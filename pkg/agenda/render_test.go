package agenda

import (
	"strings"
	"testing"
	"time"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

func testRenderer() *Renderer {
	return &Renderer{
		Now: time.Date(2026, 1, 15, 7, 30, 0, 0, time.UTC),
		Loc: time.UTC,
	}
}

func TestRenderTimedTaskLine(t *testing.T) {
	task := todoist.Task{
		ID:          "8485364869",
		Content:     "Viikkopalaveri",
		Priority:    1,
		ProjectID:   "p1",
		ProjectName: "Työ",
		Due: &todoist.Due{
			Date:     "2026-01-15",
			Datetime: &todoist.Timestamp{Time: time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)},
		},
		Duration: &todoist.Duration{Minutes: 30},
	}

	got := testRenderer().Render([]todoist.Task{task})
	want := `- [ ] 14:00 - 14:30 <span data-id="8485364869" data-project="Työ" class="viikkopalaveri">Viikkopalaveri</span>`
	if got != want {
		t.Errorf("Rendered line mismatch:\ngot:  %s\nwant: %s", got, want)
	}
}

func TestRenderPriorityBadge(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "Urgent", Priority: 4}
	got := testRenderer().Render([]todoist.Task{task})
	if !strings.Contains(got, `<i d="p1">p1</i>`) {
		t.Errorf("Expected p1 badge for priority 4, got: %s", got)
	}

	task.Priority = 1
	got = testRenderer().Render([]todoist.Task{task})
	if strings.Contains(got, "<i") {
		t.Errorf("Priority 1 must not render a badge, got: %s", got)
	}
}

func TestRenderCompletedCheckbox(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "Done", Priority: 1, Completed: true}
	got := testRenderer().Render([]todoist.Task{task})
	if !strings.HasPrefix(got, "- [x] ") {
		t.Errorf("Expected checked checkbox, got: %s", got)
	}
}

func TestRenderHidesTimeForOtherDays(t *testing.T) {
	task := todoist.Task{
		ID:       "1",
		Content:  "Tomorrow's task",
		Priority: 1,
		Due: &todoist.Due{
			Date:     "2026-01-16",
			Datetime: &todoist.Timestamp{Time: time.Date(2026, 1, 16, 14, 0, 0, 0, time.UTC)},
		},
	}
	got := testRenderer().Render([]todoist.Task{task})
	if strings.Contains(got, "14:00") {
		t.Errorf("Time must only render on the render date, got: %s", got)
	}
}

func TestRenderIndentsSameProjectChildOnly(t *testing.T) {
	parent := todoist.Task{ID: "1", Content: "Parent", Priority: 1, ProjectID: "p1"}
	sameProject := todoist.Task{ID: "2", Content: "Same", Priority: 1, ProjectID: "p1", ParentID: "1", IsSubtask: true}
	otherProject := todoist.Task{ID: "3", Content: "Other", Priority: 1, ProjectID: "p2", ParentID: "1", IsSubtask: true}

	lines := strings.Split(testRenderer().Render([]todoist.Task{parent, sameProject, otherProject}), "\n")
	if !strings.HasPrefix(lines[1], "\t") {
		t.Errorf("Same-project child should be indented: %q", lines[1])
	}
	if strings.HasPrefix(lines[2], "\t") {
		t.Errorf("Cross-project child must not be indented: %q", lines[2])
	}
}

func TestRenderStripsOriginSuffix(t *testing.T) {
	task := todoist.Task{ID: "1", Content: "Palaveri" + todoist.CalendarOriginSuffix, Priority: 1}
	got := testRenderer().Render([]todoist.Task{task})
	if strings.Contains(got, todoist.CalendarOriginSuffix) {
		t.Errorf("Origin suffix must be stripped for display, got: %s", got)
	}
	if !strings.Contains(got, ">Palaveri</span>") {
		t.Errorf("Expected bare title in anchor, got: %s", got)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	tasks := []todoist.Task{
		{ID: "1", Content: "High", Priority: 4},
		{ID: "2", Content: "Low", Priority: 1, Completed: true},
		scheduled("3", "Timed", time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)),
	}

	r := testRenderer()
	first := r.Render(Organize(tasks))
	second := r.Render(Organize(tasks))
	if first != second {
		t.Error("Rendering the same collection twice must be byte-identical")
	}
}

func TestSummaryLine(t *testing.T) {
	if got := SummaryLine(5, true); got != "Tehtäviä tänään: 5." {
		t.Errorf("Unexpected summary line: %q", got)
	}
	if got := SummaryLine(3, false); got != "Tehtäviä: 3." {
		t.Errorf("Unexpected summary line: %q", got)
	}
}
