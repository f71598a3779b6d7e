package todoist

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTask(t *testing.T) {
	input := `{
		"id": "2995104339",
		"content": "Buy milk",
		"is_completed": false,
		"priority": 3,
		"project_id": "2203306141",
		"parent_id": null,
		"due": {
			"date": "2026-01-15",
			"datetime": "2026-01-15T14:00:00Z",
			"string": "Jan 15 at 14:00"
		},
		"duration": {"amount": 30, "unit": "minute"}
	}`

	var task Task
	if err := json.Unmarshal([]byte(input), &task); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if task.ID != "2995104339" {
		t.Errorf("Expected ID 2995104339, got %s", task.ID)
	}
	if task.IDNum() != 2995104339 {
		t.Errorf("Expected IDNum 2995104339, got %d", task.IDNum())
	}
	if task.Priority != 3 {
		t.Errorf("Expected priority 3, got %d", task.Priority)
	}
	if task.ParentID != "" {
		t.Errorf("Expected empty parent id, got %q", task.ParentID)
	}

	start, ok := task.ScheduledAt()
	if !ok {
		t.Fatal("Expected a scheduled time")
	}
	expected := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	if !start.Equal(expected) {
		t.Errorf("Expected start %v, got %v", expected, start)
	}

	end, ok := task.EndAt()
	if !ok {
		t.Fatal("Expected an end time")
	}
	if !end.Equal(expected.Add(30 * time.Minute)) {
		t.Errorf("Expected end %v, got %v", expected.Add(30*time.Minute), end)
	}
}

func TestTimestampNaiveDatetime(t *testing.T) {
	var ts Timestamp
	if err := ts.UnmarshalJSON([]byte(`"2026-01-15T09:30:00"`)); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if ts.Hour() != 9 || ts.Minute() != 30 {
		t.Errorf("Expected 09:30, got %v", ts.Time)
	}
}

func TestDurationUnion(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"object with number amount", `{"amount": 30, "unit": "minute"}`, 30},
		{"object with string amount", `{"amount": "45", "unit": "minute"}`, 45},
		{"hour unit", `{"amount": 2, "unit": "hour"}`, 120},
		{"day unit", `{"amount": 1, "unit": "day"}`, 1440},
		{"bare number", `25`, 25},
		{"null", `null`, 0},
	}
	for _, tc := range cases {
		var d Duration
		if err := json.Unmarshal([]byte(tc.input), &d); err != nil {
			t.Errorf("%s: unmarshal failed: %v", tc.name, err)
			continue
		}
		if d.Minutes != tc.want {
			t.Errorf("%s: expected %d minutes, got %d", tc.name, tc.want, d.Minutes)
		}
	}

	var d Duration
	if err := json.Unmarshal([]byte(`{"amount": 1, "unit": "fortnight"}`), &d); err == nil {
		t.Error("Expected error for unknown unit")
	}
}

func TestNormalizeContent(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Buy Milk", "buy milk"},
		{"  Buy   Milk  ", "buy milk"},
		{"Standup" + CalendarOriginSuffix, "standup"},
		{"STANDUP", "standup"},
	}
	for _, tc := range cases {
		if got := NormalizeContent(tc.input); got != tc.want {
			t.Errorf("NormalizeContent(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDisplayContent(t *testing.T) {
	task := Task{Content: "Viikkopalaveri" + CalendarOriginSuffix}
	if got := task.DisplayContent(); got != "Viikkopalaveri" {
		t.Errorf("Expected suffix stripped, got %q", got)
	}
}

func TestClassString(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Buy Milk!", "buy milk"},
		{"Review [[Project Plan]]", "review project plan"},
		{"Käy kaupassa 14:30", "käy kaupassa 1430"},
	}
	for _, tc := range cases {
		if got := ClassString(tc.input); got != tc.want {
			t.Errorf("ClassString(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
