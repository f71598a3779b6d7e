package todoist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// CalendarOriginSuffix marks tasks that were created from calendar events.
// It is stripped for display and for content normalization.
const CalendarOriginSuffix = " (kalenterista)"

// Timestamp wraps time.Time to accept the service's ISO-8601 forms: RFC3339
// with a 'Z' marker, fractional seconds, or a naive local datetime.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements the json.Unmarshaler interface for Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("failed to parse Todoist time string %q", s)
}

// MarshalJSON implements the json.Marshaler interface for Timestamp.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ts.UTC().Format("2006-01-02T15:04:05Z") + `"`), nil
}

// Duration is a task's planned length, normalized to minutes at the adapter
// boundary. The wire value is polymorphic: a bare number of minutes, or an
// object whose amount is a number or a numeric string.
type Duration struct {
	Minutes int
}

// UnmarshalJSON implements the json.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		d.Minutes = 0
		return nil
	}

	if b[0] != '{' {
		amount, err := parseAmount(b)
		if err != nil {
			return fmt.Errorf("failed to parse duration %s: %w", b, err)
		}
		d.Minutes = amount
		return nil
	}

	var raw struct {
		Amount json.RawMessage `json:"amount"`
		Unit   string          `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to parse duration object %s: %w", b, err)
	}
	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return fmt.Errorf("failed to parse duration amount %s: %w", raw.Amount, err)
	}

	switch raw.Unit {
	case "", "minute":
		d.Minutes = amount
	case "hour":
		d.Minutes = amount * 60
	case "day":
		d.Minutes = amount * 1440
	default:
		return fmt.Errorf("unknown duration unit %q", raw.Unit)
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for Duration.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount int    `json:"amount"`
		Unit   string `json:"unit"`
	}{Amount: d.Minutes, Unit: "minute"})
}

func parseAmount(b []byte) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// Due is a task's scheduling information.
type Due struct {
	Date        string     `json:"date,omitempty"`
	Datetime    *Timestamp `json:"datetime,omitempty"`
	String      string     `json:"string,omitempty"`
	IsRecurring bool       `json:"is_recurring,omitempty"`
}

// Task is one item of work, constructed fresh on every fetch. Identity is
// the ID; content, completion and time are mutable projections of remote or
// locally edited state.
type Task struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Completed bool      `json:"is_completed"`
	Priority  int       `json:"priority"`
	ProjectID string    `json:"project_id"`
	ParentID  string    `json:"parent_id"`
	Due       *Due      `json:"due,omitempty"`
	Duration  *Duration `json:"duration,omitempty"`
	Labels    []string  `json:"labels,omitempty"`

	// Derived during a sync cycle, never serialized.
	ProjectName string     `json:"-"`
	IsSubtask   bool       `json:"-"`
	CompletedAt *time.Time `json:"-"`
}

// ScheduledAt returns the task's scheduled instant, if it has one.
func (t *Task) ScheduledAt() (time.Time, bool) {
	if t.Due == nil || t.Due.Datetime == nil || t.Due.Datetime.IsZero() {
		return time.Time{}, false
	}
	return t.Due.Datetime.Time, true
}

// EndAt returns the scheduled end instant, derived from start + duration.
func (t *Task) EndAt() (time.Time, bool) {
	start, ok := t.ScheduledAt()
	if !ok || t.Duration == nil || t.Duration.Minutes <= 0 {
		return time.Time{}, false
	}
	return start.Add(time.Duration(t.Duration.Minutes) * time.Minute), true
}

// IDNum returns the numeric form of the remote ID, 0 if it is not numeric.
func (t *Task) IDNum() int64 {
	n, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// DisplayContent is the title as rendered in the note, with the calendar
// origin suffix stripped.
func (t *Task) DisplayContent() string {
	return strings.TrimSpace(strings.TrimSuffix(t.Content, CalendarOriginSuffix))
}

// NormalizedContent is the deduplication and fuzzy-matching form of the
// title: lowercased, whitespace collapsed, origin suffix stripped.
func (t *Task) NormalizedContent() string {
	return NormalizeContent(t.Content)
}

// NormalizeContent lowercases a title, collapses whitespace and strips the
// calendar origin suffix.
func NormalizeContent(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, strings.ToLower(CalendarOriginSuffix))
	return strings.Join(strings.Fields(s), " ")
}

// ClassString derives the CSS-like classification embedded in a rendered
// task anchor: lowercased title, wiki-link brackets stripped, letters,
// digits and spaces only.
func ClassString(title string) string {
	title = strings.ToLower(title)
	title = strings.ReplaceAll(title, "[[", "")
	title = strings.ReplaceAll(title, "]]", "")
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Project is a Todoist project, used only to resolve id → name.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompletedItem is a minimal event record from the completed-items feed.
type CompletedItem struct {
	TaskID      string     `json:"task_id"`
	Content     string     `json:"content"`
	CompletedAt *Timestamp `json:"completed_at"`
}

// ActivityEvent is one entry of the activity/audit feed, used to find when
// a task's due date last changed.
type ActivityEvent struct {
	ObjectID  string     `json:"object_id"`
	EventType string     `json:"event_type"`
	EventDate *Timestamp `json:"event_date"`
	ExtraData struct {
		DueDate     string `json:"due_date"`
		LastDueDate string `json:"last_due_date"`
	} `json:"extra_data"`
}
