// Package audio picks the background audio bed for a run from the local
// audio directory. No audio is not an error — the assembler produces a
// silent video instead.
package audio

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"horror-quote-pipeline/config"
)

// Selector chooses and validates the audio bed
type Selector struct {
	cfg *config.Config
	rng *rand.Rand

	// probe is swappable in tests so ffprobe is not required
	probe func(ctx context.Context, path string) error
}

// New creates a new Selector
func New(cfg *config.Config) *Selector {
	return &Selector{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		probe: probeWithFFprobe,
	}
}

// Select returns the audio file for this run.
//
// An explicit file name always refers to exactly that file in the audio
// directory; if it is missing or invalid the error is fatal — it is never
// silently replaced with another file. With no explicit name, a random
// supported file from the directory is used. An empty path with nil error
// means "no audio": the run continues and produces a silent video.
func (s *Selector) Select(ctx context.Context, explicit string) (string, error) {
	dir := s.cfg.Paths.Audio

	if explicit != "" {
		path := filepath.Join(dir, explicit)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("audio file %q not found in %s — place it there and retry", explicit, dir)
		}
		if err := s.probe(ctx, path); err != nil {
			return "", fmt.Errorf("audio file %q failed validation: %w", explicit, err)
		}
		log.Printf("[audio] Using specified audio file: %s", path)
		return path, nil
	}

	candidates, err := s.scan(dir)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		log.Printf("[audio] No audio files in %s — video will be silent. Supported: %s",
			dir, strings.Join(s.cfg.Audio.Extensions, ", "))
		return "", nil
	}

	// Random order; first file that ffprobe accepts wins
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, path := range candidates {
		if err := s.probe(ctx, path); err != nil {
			log.Printf("[audio] Warning: %s failed validation: %v — trying next", path, err)
			continue
		}
		log.Printf("[audio] Selected audio file: %s", path)
		return path, nil
	}

	log.Printf("[audio] No valid audio file in %s — video will be silent", dir)
	return "", nil
}

// scan lists the supported audio files in dir. A missing dir means no audio.
func (s *Selector) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audio dir: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range s.cfg.Audio.Extensions {
			if ext == want {
				candidates = append(candidates, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return candidates, nil
}

func probeWithFFprobe(ctx context.Context, path string) error {
	out, err := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-i", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
