// Package aggregator assembles official updates from unreliable upstream
// sources. Sources are tried as a cascade of tiers with monotonically
// decreasing specificity: structured page extraction, then syndicated feeds,
// then a generic heading scrape. A dead source is skipped, never fatal; the
// worst case is an empty list, not an error.
package aggregator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/satyam1256/disaster/pkg/models"
)

const (
	// MaxItems caps the final aggregate.
	MaxItems = 10

	// perSourceCap limits how many items one source may contribute.
	perSourceCap = 3

	// minTitleRunes rejects near-empty or noise titles; a title must be
	// strictly longer than this to count.
	minTitleRunes = 10

	// headingScanCap bounds how many headings the fallback tier inspects.
	headingScanCap = 5

	scrapeTimeout = 15 * time.Second
	feedTimeout   = 10 * time.Second

	maxBodyBytes = 2 << 20

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Aggregator runs the cascade. The tier targets are plain exported fields so
// tests can point them at fixtures.
type Aggregator struct {
	client *http.Client
	log    zerolog.Logger

	Sources  []ScrapeSource
	Feeds    []FeedSource
	Fallback HeadingSource
}

// New creates an Aggregator with the default tier targets. A nil client gets
// a default with timeout.
func New(client *http.Client, log zerolog.Logger) *Aggregator {
	if client == nil {
		client = &http.Client{Timeout: scrapeTimeout}
	}
	return &Aggregator{
		client:   client,
		log:      log.With().Str("component", "aggregator").Logger(),
		Sources:  DefaultSources(),
		Feeds:    DefaultFeeds(),
		Fallback: DefaultFallback(),
	}
}

// Aggregate walks the tiers in order and returns up to MaxItems updates,
// deduplicated by title+link. A later tier runs only when every earlier tier
// produced nothing at all.
func (a *Aggregator) Aggregate(ctx context.Context) []models.OfficialUpdate {
	out := newItemSet(MaxItems)

	a.scrapeTier(ctx, out)
	if out.len() == 0 {
		a.feedTier(ctx, out)
	}
	if out.len() == 0 {
		a.headingTier(ctx, out)
	}

	a.log.Info().Int("items", out.len()).Msg("aggregation finished")
	return out.items
}

// fetch retrieves a page body with a bounded timeout. Timeouts and transport
// errors are equivalent to the caller: skip the source.
func (a *Aggregator) fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// --- item accumulation ------------------------------------------------------

// itemSet accumulates updates with a hard cap and title+link deduplication.
type itemSet struct {
	max   int
	seen  map[string]struct{}
	items []models.OfficialUpdate
}

func newItemSet(max int) *itemSet {
	return &itemSet{max: max, seen: make(map[string]struct{})}
}

func (s *itemSet) len() int   { return len(s.items) }
func (s *itemSet) full() bool { return len(s.items) >= s.max }

func (s *itemSet) add(u models.OfficialUpdate) bool {
	if s.full() {
		return false
	}
	key := u.Title + "|" + u.Link
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, u)
	return true
}

// --- shared helpers ---------------------------------------------------------

// meaningful applies the minimum-title-length invariant.
func meaningful(title string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(title)) > minTitleRunes
}

// resolveLink absolutizes href against base, falling back to the source URL
// when the element carried no link at all.
func resolveLink(base *url.URL, href, fallback string) string {
	if href == "" {
		return fallback
	}
	ref, err := url.Parse(href)
	if err != nil {
		return fallback
	}
	if base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseDoc(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}
