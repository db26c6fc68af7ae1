package aggregator

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/satyam1256/disaster/pkg/models"
)

// headingTier is the last resort: scan one known-good page for heading-like
// text and take anything passing the length invariant.
func (a *Aggregator) headingTier(ctx context.Context, out *itemSet) {
	src := a.Fallback

	body, err := a.fetch(ctx, src.URL, scrapeTimeout)
	if err != nil {
		a.log.Debug().Err(err).Str("source", src.Name).Msg("heading fetch failed")
		return
	}
	doc, err := parseDoc(body)
	if err != nil {
		return
	}

	base, _ := url.Parse(src.URL)
	scanned := 0
	doc.Find(src.Selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if scanned >= headingScanCap || out.full() {
			return false
		}
		scanned++

		title := strings.TrimSpace(el.Text())
		if !meaningful(title) {
			return true
		}

		link, _ := el.Find("a").First().Attr("href")
		if link == "" {
			link, _ = el.Parent().Find("a").First().Attr("href")
		}

		out.add(models.OfficialUpdate{
			Title:   title,
			Link:    resolveLink(base, link, src.URL),
			PubDate: nowRFC3339(),
			Source:  src.Name,
		})
		return true
	})
}
