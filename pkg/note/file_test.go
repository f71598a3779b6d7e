package note

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPath(t *testing.T) {
	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	got := Path("/notes", day)
	want := filepath.Join("/notes", "2026", "01", "15.1.2026, torstai.md")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}

	sunday := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got = Path("/notes", sunday)
	want = filepath.Join("/notes", "2026", "03", "1.3.2026, sunnuntai.md")
	if got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 1, 15, 7, 30, 0, 0, time.UTC)
	content := Build(now, "Tehtäviä tänään: 2.", "- [ ] a", "- [ ] b", "- [ ] c")

	for _, want := range []string{
		"# Torstai, 15. tammikuuta",
		"Kello on päiväsuunnitelmapohjan tekohetkellä 07:30. Tehtäviä tänään: 2.",
		"> [!NOTE] Note to self: Ajo-ohje itselleni",
		"## Päivän tehtävät\n\n- [ ] a",
		"## Tulevat tehtävät\n\n- [ ] b",
		"## Backlog\n\n- [ ] c",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Note missing %q:\n%s", want, content)
		}
	}
}

func TestReadMissingNote(t *testing.T) {
	content, err := Read(filepath.Join(t.TempDir(), "missing.md"))
	if err != nil {
		t.Fatalf("Read of missing note should not error: %v", err)
	}
	if content != "" {
		t.Errorf("Expected empty content, got %q", content)
	}
}

func TestWriteCreatesDirectories(t *testing.T) {
	path := Path(t.TempDir(), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	if err := Write(path, "sisältö"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	content, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if content != "sisältö" {
		t.Errorf("Expected round-tripped content, got %q", content)
	}
}
