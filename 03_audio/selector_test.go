package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"horror-quote-pipeline/config"
)

func newTestSelector(t *testing.T, dir string) *Selector {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Audio = dir
	s := New(cfg)
	s.probe = func(ctx context.Context, path string) error { return nil }
	return s
}

func writeAudioFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestExplicitFileAlwaysSelected(t *testing.T) {
	dir := t.TempDir()
	writeAudioFiles(t, dir, "a.mp3", "b.mp3", "c.mp3")
	s := newTestSelector(t, dir)

	// Repeated selections must never fall back to a random pick
	for i := 0; i < 5; i++ {
		got, err := s.Select(context.Background(), "b.mp3")
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if filepath.Base(got) != "b.mp3" {
			t.Fatalf("expected b.mp3, got %s", got)
		}
	}
}

func TestExplicitMissingIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeAudioFiles(t, dir, "a.mp3")
	s := newTestSelector(t, dir)

	_, err := s.Select(context.Background(), "ghost.mp3")
	if err == nil {
		t.Fatal("missing explicit file must error, not substitute")
	}
	if !strings.Contains(err.Error(), "ghost.mp3") {
		t.Errorf("error should name the missing file, got %v", err)
	}
}

func TestExplicitInvalidIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeAudioFiles(t, dir, "bad.mp3")
	s := newTestSelector(t, dir)
	s.probe = func(ctx context.Context, path string) error { return errors.New("not audio") }

	if _, err := s.Select(context.Background(), "bad.mp3"); err == nil {
		t.Fatal("invalid explicit file must error")
	}
}

func TestEmptyDirMeansSilent(t *testing.T) {
	s := newTestSelector(t, t.TempDir())
	got, err := s.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("empty dir should not error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no audio, got %q", got)
	}
}

func TestMissingDirMeansSilent(t *testing.T) {
	s := newTestSelector(t, filepath.Join(t.TempDir(), "does-not-exist"))
	got, err := s.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("missing dir should not error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no audio, got %q", got)
	}
}

func TestRandomPickSkipsUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeAudioFiles(t, dir, "bed.mp3", "notes.txt", "cover.png")
	s := newTestSelector(t, dir)

	got, err := s.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if filepath.Base(got) != "bed.mp3" {
		t.Errorf("expected bed.mp3, got %q", got)
	}
}

func TestAllInvalidMeansSilent(t *testing.T) {
	dir := t.TempDir()
	writeAudioFiles(t, dir, "a.mp3", "b.wav")
	s := newTestSelector(t, dir)
	s.probe = func(ctx context.Context, path string) error { return errors.New("corrupt") }

	got, err := s.Select(context.Background(), "")
	if err != nil {
		t.Fatalf("invalid pool should degrade to silence, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no audio, got %q", got)
	}
}
