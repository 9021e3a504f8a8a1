// Package metadata produces the YouTube title, description and tags for a
// finished video, via the chat completions API when a key is available and
// static defaults otherwise.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"
)

const metadataSystemPrompt = `You are a YouTube Shorts strategist for a horror movie quotes channel.
Generate metadata that maximizes click-through without misrepresenting the content.

You MUST respond with ONLY valid JSON — no markdown, no explanation, no preamble.

The JSON must have exactly these fields:
- "title": string (max 70 chars, evocative horror hook)
- "description": string (2-4 sentences, mentions the films quoted, ends with a subscribe CTA)
- "tags": array of strings (mix of broad horror tags and the quoted film titles)`

// Generator creates upload metadata
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	apiKey     string
}

// New creates a new metadata Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     os.Getenv("OPENAI_API_KEY"),
	}
}

type metadataJSON struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Run generates metadata for the video. Without an API key it returns the
// static defaults rather than failing — metadata is never worth losing a run.
func (g *Generator) Run(ctx context.Context, accepted []types.Quote) (*types.VideoMetadata, error) {
	if g.apiKey == "" {
		log.Println("[metadata] No API key — using static metadata")
		return Static(g.cfg), nil
	}

	log.Println("[metadata] Generating metadata...")

	reqBody := map[string]interface{}{
		"model": g.cfg.Metadata.Model,
		"messages": []map[string]string{
			{"role": "system", "content": metadataSystemPrompt},
			{"role": "user", "content": buildMetadataPrompt(accepted)},
		},
		"temperature": 0.8,
	}

	bodyBytes, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.Quotes.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, _ := io.ReadAll(resp.Body)

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("parse metadata response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("api returned no choices")
	}

	content := cleanJSON(chatResp.Choices[0].Message.Content)

	var raw metadataJSON
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parse metadata JSON: %w\ncontent: %s", err, truncate(content, 300))
	}

	title := raw.Title
	if len(title) > g.cfg.Metadata.TitleMaxChars {
		title = title[:g.cfg.Metadata.TitleMaxChars-3] + "..."
	}
	tags := raw.Tags
	if len(tags) > g.cfg.Metadata.TagsCount {
		tags = tags[:g.cfg.Metadata.TagsCount]
	}

	meta := &types.VideoMetadata{
		Title:       title,
		Description: raw.Description,
		Tags:        tags,
		CategoryID:  g.cfg.Upload.CategoryID,
		Visibility:  g.cfg.Upload.Visibility,
	}

	log.Printf("[metadata] ✅ Title: %q (%d tags)", meta.Title, len(meta.Tags))
	return meta, nil
}

// Static is the no-API fallback metadata
func Static(cfg *config.Config) *types.VideoMetadata {
	return &types.VideoMetadata{
		Title:       "Haunting Horror Movie Quotes",
		Description: "A collection of the most spine-chilling quotes from classic horror films.",
		Tags:        []string{"horror", "movie quotes", "scary", "horror films", "shorts"},
		CategoryID:  cfg.Upload.CategoryID,
		Visibility:  cfg.Upload.Visibility,
	}
}

func buildMetadataPrompt(accepted []types.Quote) string {
	var sb strings.Builder
	sb.WriteString("Generate metadata for a YouTube Short featuring these horror movie quotes:\n\n")
	for _, q := range accepted {
		sb.WriteString("- " + q.Raw + "\n")
	}
	sb.WriteString("\nRespond ONLY with valid JSON.")
	return sb.String()
}

// cleanJSON strips markdown fences if the model wraps its response in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
