package synclog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppendAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synced-events.log")

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if log.Contains("ev1", "2026-01-15") {
		t.Error("Fresh log should not contain anything")
	}

	if err := log.Append("ev1", "Standup", "2026-01-15"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !log.Contains("ev1", "2026-01-15") {
		t.Error("Appended entry not found")
	}
	if log.Contains("ev1", "2026-01-16") {
		t.Error("Same event on another date is a separate entry")
	}

	// A reopened log must see entries from earlier runs.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !reopened.Contains("ev1", "2026-01-15") {
		t.Error("Reopened log lost the entry")
	}
}

func TestAppendIsAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synced-events.log")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := log.Append(id, "Event "+id, "2026-01-15"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "a|Event a|2026-01-15" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
}

func TestAppendSanitizesDelimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synced-events.log")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := log.Append("ev1", "Weird | title\nwith newline", "2026-01-15"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed after sanitized append: %v", err)
	}
	if !reopened.Contains("ev1", "2026-01-15") {
		t.Error("Sanitized entry not readable on reopen")
	}
}

func TestOpenIgnoresMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synced-events.log")
	if err := os.WriteFile(path, []byte("garbage\nev1|Standup|2026-01-15\ntoo|many|fields|here\n"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !log.Contains("ev1", "2026-01-15") {
		t.Error("Valid line should be loaded")
	}
}
