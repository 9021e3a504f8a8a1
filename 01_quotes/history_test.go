package quotes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"horror-quote-pipeline/types"
)

func TestLoadHistoryMissingFile(t *testing.T) {
	h, err := LoadHistory(filepath.Join(t.TempDir(), "quotes_history.txt"))
	if err != nil {
		t.Fatalf("missing history file should not error, got %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d entries", h.Len())
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"We all go a little mad sometimes." - Psycho (1960)`, "we all go a little mad sometimes. - psycho (1960)"},
		{`'They're here.' - Poltergeist (1982)`, "theyre here. - poltergeist (1982)"},
		{"  “Do you like scary movies?” - Scream (1996)  ", "do you like scary movies? - scream (1996)"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHistoryContainsVariations(t *testing.T) {
	h := &History{seen: make(map[string]bool)}
	h.Add(`"Here's Johnny!" - The Shining (1980)`)

	variants := []string{
		`"Here's Johnny!" - The Shining (1980)`,
		`'Here's Johnny!' - The Shining (1980)`,
		`HERE'S JOHNNY! - The Shining (1980)`,
	}
	for _, v := range variants {
		if !h.Contains(v) {
			t.Errorf("expected history to contain variant %q", v)
		}
	}
	if h.Contains(`"Redrum." - The Shining (1980)`) {
		t.Error("unrelated quote should not be in history")
	}
}

func TestAppendIsUnionOfOldAndNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes_history.txt")
	existing := `"It's alive!" - Frankenstein (1931)` + "\n"
	if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	h, err := LoadHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	accepted := []types.Quote{
		{Raw: `"Be afraid. Be very afraid." - The Fly (1986)`},
		{Raw: `"I see dead people." - The Sixth Sense (1999)`},
	}
	if err := h.Append(accepted); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, existing) {
		t.Error("append must preserve the pre-existing history")
	}
	for _, q := range accepted {
		if !strings.Contains(content, q.Raw+"\n") {
			t.Errorf("history missing appended quote %q", q.Raw)
		}
	}

	reloaded, err := LoadHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 3 {
		t.Errorf("expected 3 history entries after reload, got %d", reloaded.Len())
	}
	for _, q := range accepted {
		if !reloaded.Contains(q.Raw) {
			t.Errorf("reloaded history missing %q", q.Raw)
		}
	}
}

func TestAppendNothingLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes_history.txt")
	h := &History{path: path, seen: make(map[string]bool)}
	if err := h.Append(nil); err != nil {
		t.Fatalf("empty append: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty append should not create the file")
	}
}
