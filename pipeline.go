package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	quotes "horror-quote-pipeline/01_quotes"
	frames "horror-quote-pipeline/02_frames"
	audio "horror-quote-pipeline/03_audio"
	assemble "horror-quote-pipeline/04_assemble"
	metadata "horror-quote-pipeline/05_metadata"
	upload "horror-quote-pipeline/06_upload"
	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagQuotes    int
	flagDuration  int
	flagAudioFile string
	flagUpload    bool
	flagCurated   bool
	flagConfig    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "horror-quote-pipeline",
		Short: "Generate horror movie quote shorts: AI quotes on gradient frames, muxed with a local audio bed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().IntVar(&flagQuotes, "quotes", 0, "number of quotes to use (default from config: 9)")
	rootCmd.Flags().IntVar(&flagDuration, "duration", 0, "seconds per quote (default from config: 10)")
	rootCmd.Flags().StringVar(&flagAudioFile, "audio-file", "", "specific audio file to use (must exist in the audio directory)")
	rootCmd.Flags().BoolVar(&flagUpload, "upload", false, "upload to YouTube when done")
	rootCmd.Flags().BoolVar(&flagCurated, "curated", false, "use curated subreddit quotes instead of the LLM")
	rootCmd.Flags().StringVar(&flagConfig, "config", "config.yaml", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load .env (local dev only — CI uses real env vars)
	_ = godotenv.Load()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	count := cfg.Quotes.Count
	if flagQuotes > 0 {
		count = flagQuotes
	}
	duration := cfg.Video.DurationPerQuote
	if flagDuration > 0 {
		duration = flagDuration
	}

	if err := setupDirectories(cfg); err != nil {
		return err
	}

	runID := uuid.NewString()[:8]
	log.Printf("🎬 Horror Quote Pipeline starting — Run ID: %s", runID)

	state := &types.PipelineState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(cfg.Paths.Output, fmt.Sprintf("pipeline_state_%s.json", runID)), state)
	}()

	// ─────────────────────────────────────────────
	// STAGE 1: Quotes
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 1: Quotes ━━━")
	hist, err := quotes.LoadHistory(cfg.Paths.History)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 1 Quotes: %v", err)
		return fmt.Errorf("load history: %w", err)
	}

	var accepted []types.Quote
	if flagCurated || os.Getenv("OPENAI_API_KEY") == "" {
		curated, cerr := quotes.NewCuratedSource(cfg)
		if cerr == nil {
			accepted, cerr = curated.Run(ctx, count, hist)
		}
		if cerr != nil {
			state.Error = fmt.Sprintf("Stage 1 Quotes: %v", cerr)
			return fmt.Errorf("curated quotes: %w", cerr)
		}
	} else {
		accepted, err = quotes.New(cfg).Run(ctx, count, hist)
		if err != nil {
			state.Error = fmt.Sprintf("Stage 1 Quotes: %v", err)
			return fmt.Errorf("generate quotes: %w", err)
		}
	}
	state.Quotes = accepted

	if err := quotes.WriteQuoteFiles(cfg.Paths.Quotes, accepted); err != nil {
		log.Printf("⚠️  Could not write quote files: %v", err)
	}
	if err := hist.Append(accepted); err != nil {
		log.Printf("⚠️  Could not update history file: %v", err)
	}

	// ─────────────────────────────────────────────
	// STAGE 2: Frames
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 2: Frames ━━━")
	renderer, err := frames.New(cfg)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Frames init: %v", err)
		return err
	}
	framePaths, err := renderer.Run(accepted)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Frames: %v", err)
		return fmt.Errorf("render frames: %w", err)
	}

	// ─────────────────────────────────────────────
	// STAGE 3: Audio
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 3: Audio ━━━")
	audioFile, err := audio.New(cfg).Select(ctx, flagAudioFile)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 3 Audio: %v", err)
		return fmt.Errorf("select audio: %w", err)
	}
	state.AudioFile = audioFile

	// ─────────────────────────────────────────────
	// STAGE 4: Assemble
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 4: Assemble ━━━")
	outputPath := filepath.Join(cfg.Paths.Output,
		fmt.Sprintf("horror_quotes_%s.mp4", time.Now().Format("20060102_150405")))
	videoFile, err := assemble.New(cfg).Run(ctx, framePaths, audioFile, outputPath, duration)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 4 Assemble: %v", err)
		return fmt.Errorf("assemble video: %w", err)
	}
	state.VideoFile = videoFile

	// ─────────────────────────────────────────────
	// STAGE 5: Metadata
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 5: Metadata ━━━")
	meta, err := metadata.New(cfg).Run(ctx, accepted)
	if err != nil {
		log.Printf("⚠️  Metadata generation failed: %v — using static metadata", err)
		meta = metadata.Static(cfg)
	}
	state.Metadata = meta
	saveJSON(filepath.Join(cfg.Paths.Output, fmt.Sprintf("metadata_%s.json", runID)), meta)

	// ─────────────────────────────────────────────
	// STAGE 6: Upload (optional; the local video is kept either way)
	// ─────────────────────────────────────────────
	if flagUpload {
		log.Println("\n━━━ STAGE 6: YouTube Upload ━━━")
		videoID, videoURL, err := upload.New(cfg).Run(ctx, videoFile, meta)
		if err != nil {
			log.Printf("⚠️  Upload failed: %v — video kept at %s", err, videoFile)
		} else {
			state.YouTubeID = videoID
			state.YouTubeURL = videoURL
			_ = upload.LogUpload(videoID, videoURL, videoFile, cfg.Paths.Logs, meta)
		}
	}

	log.Printf("✅ Pipeline complete! Video: %s", videoFile)
	return nil
}

// setupDirectories creates the project directories and removes quote files
// from previous runs so every run starts fresh.
func setupDirectories(cfg *config.Config) error {
	for _, dir := range []string{
		cfg.Paths.Audio, cfg.Paths.Quotes, cfg.Paths.Images,
		cfg.Paths.Frames, cfg.Paths.Output, cfg.Paths.Logs,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	old, err := filepath.Glob(filepath.Join(cfg.Paths.Quotes, "quote_*.txt"))
	if err != nil {
		return err
	}
	for _, f := range old {
		if err := os.Remove(f); err == nil {
			log.Printf("Removed old quote file: %s", f)
		}
	}
	return nil
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
