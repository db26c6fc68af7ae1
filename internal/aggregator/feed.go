package aggregator

import (
	"context"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/satyam1256/disaster/pkg/models"
)

// feedTier parses the syndicated feeds. Same per-item invariants as the
// scrape tier, different field names on the wire (title/link/pubDate).
func (a *Aggregator) feedTier(ctx context.Context, out *itemSet) {
	parser := gofeed.NewParser()
	parser.Client = a.client
	parser.UserAgent = userAgent

	for _, f := range a.Feeds {
		if out.full() {
			return
		}

		fctx, cancel := context.WithTimeout(ctx, feedTimeout)
		feed, err := parser.ParseURLWithContext(f.URL, fctx)
		cancel()
		if err != nil {
			a.log.Debug().Err(err).Str("feed", f.Name).Msg("feed fetch failed")
			continue
		}

		taken := 0
		for _, it := range feed.Items {
			if taken >= perSourceCap || out.full() {
				break
			}
			if it == nil || !meaningful(it.Title) {
				continue
			}

			link := it.Link
			if link == "" {
				link = f.URL
			}
			pub := it.Published
			if pub == "" && it.PublishedParsed != nil {
				pub = it.PublishedParsed.UTC().Format(time.RFC3339)
			}
			if pub == "" {
				pub = nowRFC3339()
			}

			if out.add(models.OfficialUpdate{
				Title:   strings.TrimSpace(it.Title),
				Link:    link,
				PubDate: pub,
				Source:  f.Name,
			}) {
				taken++
			}
		}
	}
}
