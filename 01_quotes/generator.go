package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"
)

const systemPrompt = `You are a film historian specializing in horror movies. Provide authentic, memorable quotes from horror films. Include only the quote and the movie title. Format each line as: 'QUOTE' - MOVIE TITLE (YEAR). Ensure each quote is unique and different from any you have provided before.`

var leadingNumber = regexp.MustCompile(`^\d+[\.\)]\s*`)

// Generator requests quotes from the chat completions API
type Generator struct {
	cfg        *config.Config
	httpClient *http.Client
	apiKey     string

	// now and seed are swappable for tests
	now  func() time.Time
	seed func() int
}

// New creates a new quote Generator
func New(cfg *config.Config) *Generator {
	return &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		now:        time.Now,
		seed:       func() int { return int(time.Now().UnixNano() % 100000) },
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Run produces up to count quotes that are not in the history set.
// It requests fresh batches for a bounded number of attempts; if collisions
// keep eating the results, it reports the shortfall and returns what it has.
// Accepted quotes are added to the in-memory history as they arrive.
func (g *Generator) Run(ctx context.Context, count int, hist *History) ([]types.Quote, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	log.Printf("[quotes] Requesting %d quotes (%d previously used)", count, hist.Len())

	var accepted []types.Quote
	var lastErr error

	for attempt := 1; attempt <= g.cfg.Quotes.MaxAttempts && len(accepted) < count; attempt++ {
		log.Printf("[quotes] Attempt %d to get unique quotes...", attempt)

		lines, err := g.requestBatch(ctx, count-len(accepted), attempt)
		if err != nil {
			lastErr = err
			log.Printf("[quotes] Attempt %d failed: %v", attempt, err)
			continue
		}

		for _, line := range lines {
			if len(accepted) >= count {
				break
			}
			q, ok := ParseQuote(line)
			if !ok {
				continue
			}
			if hist.Contains(q.Raw) {
				log.Printf("[quotes] × duplicate: %s", truncate(q.Raw, 50))
				continue
			}
			hist.Add(q.Raw)
			q.Index = len(accepted)
			accepted = append(accepted, q)
			log.Printf("[quotes] ✓ %s", truncate(q.Raw, 50))
		}
	}

	if len(accepted) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("quote generation failed: %w", lastErr)
		}
		return nil, fmt.Errorf("no unique quotes after %d attempts", g.cfg.Quotes.MaxAttempts)
	}
	if len(accepted) < count {
		log.Printf("[quotes] Warning: only %d of %d unique quotes", len(accepted), count)
	}
	return accepted, nil
}

// requestBatch asks the API for one batch and returns the non-empty lines.
func (g *Generator) requestBatch(ctx context.Context, need, attempt int) ([]string, error) {
	theme := "classic horror"
	if n := len(g.cfg.Quotes.Themes); n > 0 {
		theme = g.cfg.Quotes.Themes[(g.seed()+attempt)%n]
	}

	// Random seed + timestamp in the prompt defeat response caching and push
	// the model away from the same well-worn lines every run.
	userPrompt := fmt.Sprintf(
		"Provide %d different, authentic horror movie quotes focusing on %s. "+
			"Choose quotes that are impactful, memorable, and would look good on a dramatic background. "+
			"Random seed: %d, timestamp: %s. Avoid common, overused lines.",
		need, theme, g.seed(), g.now().Format("20060102150405"),
	)

	reqBody := chatRequest{
		Model: g.cfg.Quotes.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: g.cfg.Quotes.Temperature,
		TopP:        0.9,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.Quotes.Endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("parse chat response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("api error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("api returned no choices")
	}

	var lines []string
	for _, line := range strings.Split(chatResp.Choices[0].Message.Content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// ParseQuote splits a raw line into quote text and movie title.
// Leading list numbering ("1. " or "1) ") is stripped; a line without a
// " - " separator gets title "Unknown".
func ParseQuote(line string) (types.Quote, bool) {
	line = leadingNumber.ReplaceAllString(strings.TrimSpace(line), "")
	if line == "" {
		return types.Quote{}, false
	}

	text := line
	title := "Unknown"
	if idx := strings.Index(line, " - "); idx >= 0 {
		text = strings.TrimSpace(line[:idx])
		title = strings.TrimSpace(line[idx+3:])
	}

	text = strings.Trim(text, `"'“”‘’`)
	if text == "" {
		return types.Quote{}, false
	}

	return types.Quote{Text: text, Title: title, Raw: line}, true
}

// WriteQuoteFiles stores each accepted quote as quotes/quote_N.txt
func WriteQuoteFiles(dir string, accepted []types.Quote) error {
	for i, q := range accepted {
		path := filepath.Join(dir, fmt.Sprintf("quote_%d.txt", i+1))
		if err := os.WriteFile(path, []byte(q.Raw+"\n"), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
