// Package note owns the daily note artifact: its path, its fixed structure,
// the anchor grammar parsed back out of it, and the reconciliation of note
// edits against remote task state.
package note

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode"
	"unicode/utf8"
)

// Weekday and month names are fixed tables instead of process locale: Go has
// no setlocale, and the note path must be stable across machines.
var weekdays = [7]string{
	"sunnuntai", "maanantai", "tiistai", "keskiviikko", "torstai", "perjantai", "lauantai",
}

var months = [12]string{
	"tammikuu", "helmikuu", "maaliskuu", "huhtikuu", "toukokuu", "kesäkuu",
	"heinäkuu", "elokuu", "syyskuu", "lokakuu", "marraskuu", "joulukuu",
}

// WeekdayName returns the lowercase Finnish weekday name.
func WeekdayName(t time.Time) string {
	return weekdays[int(t.Weekday())]
}

// MonthName returns the Finnish month name in nominative form.
func MonthName(t time.Time) string {
	return months[int(t.Month())-1]
}

// Path derives the note file location for a given day:
// <base>/YYYY/MM/D.M.YYYY, weekday.md
func Path(base string, day time.Time) string {
	name := fmt.Sprintf("%d.%d.%d, %s.md", day.Day(), int(day.Month()), day.Year(), WeekdayName(day))
	return filepath.Join(base, day.Format("2006"), day.Format("01"), name)
}

// Build assembles the full note content: header, self-instruction block and
// the three task sections.
func Build(now time.Time, summary, todayBlock, futureBlock, backlogBlock string) string {
	return fmt.Sprintf(`# %s, %d. %sta

Kello on päiväsuunnitelmapohjan tekohetkellä %s. %s

> [!NOTE] Note to self: Ajo-ohje itselleni
> Tehtävät tulevat Todoistista, mutta niitä voi täällä aikatauluttaa kalenteriin kätevästi Day Plannerin avulla. Kirjoita päivän muistiinpanot myös alle.

## Päivän tehtävät

%s

## Tulevat tehtävät

%s

## Backlog

%s`,
		capitalize(WeekdayName(now)), now.Day(), MonthName(now),
		now.Format("15:04"), summary,
		todayBlock, futureBlock, backlogBlock)
}

// Read returns the note content, or "" if no note exists yet.
func Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read note %s: %w", path, err)
	}
	return string(b), nil
}

// Write persists the note, creating the year/month directories as needed.
func Write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create note directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write note %s: %w", path, err)
	}
	return nil
}

// ModifiedAt returns the note file's last-modified timestamp.
func ModifiedAt(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat note %s: %w", path, err)
	}
	return info.ModTime(), nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
