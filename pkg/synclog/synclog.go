// Package synclog persists the calendar import idempotency log: append-only,
// pipe-delimited lines of eventId|title|date. Entries are never updated or
// deleted, only appended and scanned.
package synclog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Log struct {
	path string
	seen map[string]bool
}

// Open loads the log at path. A missing file is an empty log.
func Open(path string) (*Log, error) {
	l := &Log{path: path, seen: make(map[string]bool)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to open sync log %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "|")
		if len(fields) != 3 {
			continue
		}
		l.seen[key(fields[0], fields[2])] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sync log %s: %w", path, err)
	}
	return l, nil
}

// Contains reports whether the event was already imported for the given date.
func (l *Log) Contains(eventID, date string) bool {
	return l.seen[key(eventID, date)]
}

// Append records an imported event. The write is flushed before returning so
// a crash mid-run does not lose already-created tasks.
func (l *Log) Append(eventID, title, date string) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create sync log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open sync log for appending: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s|%s|%s\n", sanitize(eventID), sanitize(title), sanitize(date)); err != nil {
		return fmt.Errorf("failed to append sync log entry: %w", err)
	}
	l.seen[key(eventID, date)] = true
	return nil
}

func key(eventID, date string) string {
	return eventID + "|" + date
}

// sanitize keeps the pipe-delimited single-line format intact.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
