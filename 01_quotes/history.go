// Package quotes produces the horror movie quotes for one video, either from
// the chat completions API or from a curated subreddit, deduplicated against
// a persisted history file.
//
// The history file is plain text, one raw quote line per entry. Appends are a
// single O_APPEND write at the end of a run; concurrent runs against the same
// file are not supported.
package quotes

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"horror-quote-pipeline/types"
)

// History is the set of previously used quotes, keyed by normalized text
// to catch slight wording variations.
type History struct {
	path string
	seen map[string]bool
}

// LoadHistory reads the history file. A missing file yields an empty set.
func LoadHistory(path string) (*History, error) {
	h := &History{path: path, seen: make(map[string]bool)}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		h.seen[Normalize(line)] = true
	}
	return h, sc.Err()
}

// Normalize lowercases a quote and strips quote characters so near-identical
// lines collide.
func Normalize(s string) string {
	s = strings.ToLower(s)
	for _, q := range []string{`"`, "'", "“", "”", "‘", "’"} {
		s = strings.ReplaceAll(s, q, "")
	}
	return strings.TrimSpace(s)
}

// Contains reports whether a raw quote line is already in the history.
func (h *History) Contains(raw string) bool {
	return h.seen[Normalize(raw)]
}

// Add marks a quote as used for the rest of this run. It does not touch the
// file — call Append once the run's quotes are final.
func (h *History) Add(raw string) {
	h.seen[Normalize(raw)] = true
}

// Len returns the number of known quotes.
func (h *History) Len() int {
	return len(h.seen)
}

// Append writes the accepted quotes to the end of the history file, creating
// it if needed. Best-effort: not atomic, no locking.
func (h *History) Append(accepted []types.Quote) error {
	if len(accepted) == 0 {
		return nil
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history for append: %w", err)
	}
	for _, q := range accepted {
		if _, err := fmt.Fprintln(f, q.Raw); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
