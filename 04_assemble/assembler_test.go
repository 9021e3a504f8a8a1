package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"horror-quote-pipeline/config"
)

// stubFFmpeg records every invocation and creates the output file (the last
// argument), mimicking a successful encode.
func stubFFmpeg(calls *[][]string) func(ctx context.Context, args ...string) error {
	return func(ctx context.Context, args ...string) error {
		*calls = append(*calls, args)
		out := args[len(args)-1]
		return os.WriteFile(out, []byte("video"), 0644)
	}
}

func testFrames(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame_%d.png", i+1))
		if err := os.WriteFile(paths[i], []byte("png"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func TestConcatListFormat(t *testing.T) {
	list := ConcatList([]string{"/f/1.png", "/f/2.png", "/f/3.png"}, 10)
	lines := strings.Split(strings.TrimSuffix(list, "\n"), "\n")

	want := []string{
		"file '/f/1.png'", "duration 10",
		"file '/f/2.png'", "duration 10",
		"file '/f/3.png'", "duration 10",
		"file '/f/3.png'", // last frame repeated, no trailing duration
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), list)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunSilentWhenNoAudio(t *testing.T) {
	var calls [][]string
	a := New(config.Default())
	a.ffmpeg = stubFFmpeg(&calls)

	out := filepath.Join(t.TempDir(), "final.mp4")
	got, err := a.Run(context.Background(), testFrames(t, 3), "", out, 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != out {
		t.Errorf("returned path %q, want %q", got, out)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 ffmpeg invocations, got %d", len(calls))
	}

	second := strings.Join(calls[1], " ")
	if !strings.Contains(second, "-c copy") {
		t.Errorf("silent path should stream-copy, got: %s", second)
	}
	if strings.Contains(second, "-c:a") {
		t.Errorf("silent path must not encode audio, got: %s", second)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("final video missing: %v", err)
	}
}

func TestRunMuxesAndLoopsAudio(t *testing.T) {
	var calls [][]string
	a := New(config.Default())
	a.ffmpeg = stubFFmpeg(&calls)

	audioFile := filepath.Join(t.TempDir(), "bed.mp3")
	out := filepath.Join(t.TempDir(), "final.mp4")
	if _, err := a.Run(context.Background(), testFrames(t, 2), audioFile, out, 5); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 ffmpeg invocations, got %d", len(calls))
	}

	mux := strings.Join(calls[1], " ")
	for _, want := range []string{"-stream_loop -1", audioFile, "-shortest", "-c:a aac"} {
		if !strings.Contains(mux, want) {
			t.Errorf("mux args missing %q: %s", want, mux)
		}
	}
}

func TestRunEncodesDurationPerFrame(t *testing.T) {
	var calls [][]string
	a := New(config.Default())
	a.ffmpeg = func(ctx context.Context, args ...string) error {
		calls = append(calls, args)
		// The first pass reads the concat list: verify its contents here,
		// before Run's temp dir is removed.
		if len(calls) == 1 {
			var listFile string
			for i, arg := range args {
				if arg == "-i" {
					listFile = args[i+1]
				}
			}
			data, err := os.ReadFile(listFile)
			if err != nil {
				t.Fatalf("read concat list: %v", err)
			}
			if got := strings.Count(string(data), "duration 7"); got != 4 {
				t.Errorf("expected 4 duration lines, got %d:\n%s", got, data)
			}
		}
		return os.WriteFile(args[len(args)-1], []byte("video"), 0644)
	}

	out := filepath.Join(t.TempDir(), "final.mp4")
	if _, err := a.Run(context.Background(), testFrames(t, 4), "", out, 7); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunNoFramesFails(t *testing.T) {
	a := New(config.Default())
	if _, err := a.Run(context.Background(), nil, "", "out.mp4", 10); err == nil {
		t.Fatal("expected error with no frames")
	}
}

func TestRunSurfacesEncoderDiagnostics(t *testing.T) {
	a := New(config.Default())
	a.ffmpeg = func(ctx context.Context, args ...string) error {
		return fmt.Errorf("ffmpeg: exit status 1\nUnknown encoder 'libx264'")
	}

	_, err := a.Run(context.Background(), testFrames(t, 1), "", filepath.Join(t.TempDir(), "out.mp4"), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Errorf("encoder diagnostics not surfaced: %v", err)
	}
}
