// Package assemble stitches the rendered frames and the audio bed into the
// final MP4 with ffmpeg.
package assemble

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"horror-quote-pipeline/config"
)

// Assembler drives the two-pass ffmpeg encode: silent video from frames,
// then audio mux.
type Assembler struct {
	cfg *config.Config

	// ffmpeg is swappable in tests
	ffmpeg func(ctx context.Context, args ...string) error
}

// New creates a new Assembler
func New(cfg *config.Config) *Assembler {
	return &Assembler{cfg: cfg, ffmpeg: runFFmpeg}
}

// Run builds outputPath from the ordered frames and an optional audio file.
// Each frame holds for durationPerFrame seconds; total video length is
// frames × duration within one frame's tolerance. Short audio loops, long
// audio is trimmed (-stream_loop -1 + -shortest). Empty audioFile produces
// a silent video.
func (a *Assembler) Run(ctx context.Context, framePaths []string, audioFile, outputPath string, durationPerFrame int) (string, error) {
	if len(framePaths) == 0 {
		return "", fmt.Errorf("no frames to assemble")
	}

	log.Printf("[assemble] Creating video: %d frames × %ds each", len(framePaths), durationPerFrame)

	tempDir, err := os.MkdirTemp("", "assemble")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tempDir)

	// Concat demuxer list with absolute paths; ffmpeg chokes on relative ones
	abs := make([]string, len(framePaths))
	for i, p := range framePaths {
		if abs[i], err = filepath.Abs(p); err != nil {
			return "", err
		}
	}
	listFile := filepath.Join(tempDir, "frames_concat.txt")
	if err := os.WriteFile(listFile, []byte(ConcatList(abs, durationPerFrame)), 0644); err != nil {
		return "", err
	}

	// Pass 1: silent video from the frame list
	silentVideo := filepath.Join(tempDir, "silent_video.mp4")
	err = a.ffmpeg(ctx, "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", a.cfg.Video.Preset,
		"-crf", fmt.Sprintf("%d", a.cfg.Video.CRF),
		"-r", fmt.Sprintf("%d", a.cfg.Video.FPS),
		silentVideo,
	)
	if err != nil {
		return "", fmt.Errorf("create silent video: %w", err)
	}

	// Pass 2: mux audio, or copy the silent video through
	if audioFile == "" {
		log.Println("[assemble] No audio — writing silent video")
		err = a.ffmpeg(ctx, "-y", "-i", silentVideo, "-c", "copy", outputPath)
	} else {
		log.Printf("[assemble] Muxing audio: %s", audioFile)
		err = a.ffmpeg(ctx, "-y",
			"-i", silentVideo,
			"-stream_loop", "-1",
			"-i", audioFile,
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", a.cfg.Video.AudioBitrate,
			"-shortest",
			"-movflags", "+faststart",
			outputPath,
		)
	}
	if err != nil {
		return "", fmt.Errorf("write final video: %w", err)
	}

	fi, err := os.Stat(outputPath)
	if err != nil {
		return "", fmt.Errorf("final video not created at %s: %w", outputPath, err)
	}
	log.Printf("[assemble] ✅ Video ready: %s (%.1f MB)", outputPath, float64(fi.Size())/1024/1024)
	return outputPath, nil
}

// ConcatList renders the ffmpeg concat demuxer input: each frame with its
// duration, then the last frame repeated without one (the demuxer drops the
// final duration otherwise).
func ConcatList(framePaths []string, durationPerFrame int) string {
	var sb strings.Builder
	for _, p := range framePaths {
		fmt.Fprintf(&sb, "file '%s'\n", p)
		fmt.Fprintf(&sb, "duration %d\n", durationPerFrame)
	}
	fmt.Fprintf(&sb, "file '%s'\n", framePaths[len(framePaths)-1])
	return sb.String()
}

// runFFmpeg executes ffmpeg, folding its stderr into the returned error so
// encoder diagnostics reach the user.
func runFFmpeg(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w\n%s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
