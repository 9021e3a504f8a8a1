package quotes

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

// quoteShaped matches post titles that already look like an attributed quote:
// a quoted line, a dash, an attribution.
var quoteShaped = regexp.MustCompile(`^["'“‘].+["'”’]\s*[-–—]\s*.+$`)

// CuratedSource pulls hand-curated quotes from a subreddit. It is the offline
// fallback when no API key is configured (or --curated is passed): top posts
// whose titles parse as attributed quotes become the quote pool.
type CuratedSource struct {
	cfg    *config.Config
	client *reddit.Client
}

// NewCuratedSource creates a read-only Reddit client (no credentials needed).
func NewCuratedSource(cfg *config.Config) (*CuratedSource, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return &CuratedSource{cfg: cfg, client: client}, nil
}

// Run returns up to count quotes from the configured subreddit, filtered
// against the history set. Accepted quotes are added to the in-memory history.
func (c *CuratedSource) Run(ctx context.Context, count int, hist *History) ([]types.Quote, error) {
	sub := c.cfg.Quotes.CuratedSubreddit
	log.Printf("[quotes] Pulling curated quotes from r/%s...", sub)

	posts, _, err := c.client.Subreddit.TopPosts(ctx, sub, &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: 100},
		Time:        "all",
	})
	if err != nil {
		return nil, fmt.Errorf("reddit top posts: %w", err)
	}

	var accepted []types.Quote
	for _, post := range posts {
		if len(accepted) >= count {
			break
		}
		line := strings.TrimSpace(post.Title)
		if !quoteShaped.MatchString(line) {
			continue
		}
		q, ok := ParseQuote(line)
		if !ok {
			continue
		}
		if hist.Contains(q.Raw) {
			continue
		}
		hist.Add(q.Raw)
		q.Index = len(accepted)
		accepted = append(accepted, q)
		log.Printf("[quotes] ✓ curated: %s", truncate(q.Raw, 50))
	}

	if len(accepted) == 0 {
		return nil, fmt.Errorf("no usable quotes found in r/%s", sub)
	}
	if len(accepted) < count {
		log.Printf("[quotes] Warning: only %d of %d curated quotes", len(accepted), count)
	}
	return accepted, nil
}
