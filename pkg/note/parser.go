package note

import (
	"bufio"
	"regexp"
	"strings"
	"time"
)

// SyncStopMarker, written anywhere in the note outside a quote block, is an
// explicit opt-out: no remote writes happen for the rest of the day.
const SyncStopMarker = "Synkronointi lopetettu"

// The anchor grammar: a rendered task line is a markdown checkbox followed
// by optional badge/time text and an inline span carrying data-id,
// data-project and a class attribute. Attributes are matched independently
// so their ordering inside the span does not matter.
var (
	checkboxPattern = regexp.MustCompile(`^\s*- \[( |x|X)\]\s*(.*)$`)
	idPattern       = regexp.MustCompile(`data-id="(\d+)"`)
	projectPattern  = regexp.MustCompile(`data-project="([^"]*)"`)
	contentPattern  = regexp.MustCompile(`<span[^>]*>(.*?)</span>`)
	rangePattern    = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
)

// TimeRange is a wall-clock range parsed from a rendered task line.
type TimeRange struct {
	Start string
	End   string
}

// StartOn anchors the range's start clock onto a calendar day.
func (tr TimeRange) StartOn(day time.Time, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation("15:04", tr.Start, loc)
	if err != nil {
		return time.Time{}, false
	}
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

// Minutes returns the range length, 0 if it cannot be computed.
func (tr TimeRange) Minutes() int {
	start, err1 := time.Parse("15:04", tr.Start)
	end, err2 := time.Parse("15:04", tr.End)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}

// TaskRecord is a task as parsed back out of a rendered note. It is derived
// from text and exists only within one reconciliation pass.
type TaskRecord struct {
	ID        string
	Content   string
	Project   string
	Completed bool
	Time      *TimeRange
	Raw       string
}

// ParseTasks extracts tracked task records from note text. Lines that do not
// match the anchor grammar are not tracked tasks and are skipped silently.
func ParseTasks(content string) []TaskRecord {
	var records []TaskRecord
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		if rec, ok := parseLine(scanner.Text()); ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseLine(line string) (TaskRecord, bool) {
	checkbox := checkboxPattern.FindStringSubmatch(line)
	if checkbox == nil {
		return TaskRecord{}, false
	}
	id := idPattern.FindStringSubmatch(line)
	body := contentPattern.FindStringSubmatch(line)
	if id == nil || body == nil {
		return TaskRecord{}, false
	}

	rec := TaskRecord{
		ID:        id[1],
		Content:   strings.TrimSpace(body[1]),
		Completed: checkbox[1] == "x" || checkbox[1] == "X",
		Raw:       strings.TrimSpace(line),
	}
	if project := projectPattern.FindStringSubmatch(line); project != nil {
		rec.Project = project[1]
	}

	// The time range belongs to the line prefix; content inside the anchor
	// may legitimately contain clock strings.
	prefix := line
	if idx := strings.Index(line, "<span"); idx >= 0 {
		prefix = line[:idx]
	}
	if tr := rangePattern.FindStringSubmatch(prefix); tr != nil {
		rec.Time = &TimeRange{Start: normalizeClock(tr[1]), End: normalizeClock(tr[2])}
	}
	return rec, true
}

// SyncStopped reports whether the note contains the stop marker on a
// non-quoted line.
func SyncStopped(content string) bool {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, ">") {
			continue
		}
		if strings.Contains(line, SyncStopMarker) {
			return true
		}
	}
	return false
}

// normalizeClock pads "9:30" to "09:30" so clock comparisons are textual.
func normalizeClock(clock string) string {
	if len(clock) == 4 {
		return "0" + clock
	}
	return clock
}
