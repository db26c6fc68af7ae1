package aggregator

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/satyam1256/disaster/pkg/models"
)

// scrapeTier visits each structured source in order until the overall cap is
// reached. A fetch or parse failure moves on to the next source.
func (a *Aggregator) scrapeTier(ctx context.Context, out *itemSet) {
	for _, src := range a.Sources {
		if out.full() {
			return
		}
		body, err := a.fetch(ctx, src.URL, scrapeTimeout)
		if err != nil {
			a.log.Debug().Err(err).Str("source", src.Name).Msg("scrape fetch failed")
			continue
		}
		doc, err := parseDoc(body)
		if err != nil {
			a.log.Debug().Err(err).Str("source", src.Name).Msg("scrape parse failed")
			continue
		}
		a.extract(doc, src, out)
	}
}

// extract applies the source's candidate container selectors in order; the
// first one that yields at least one accepted item settles the source.
func (a *Aggregator) extract(doc *goquery.Document, src ScrapeSource, out *itemSet) {
	base, _ := url.Parse(src.URL)

	for _, sel := range src.ContainerSelectors {
		taken := 0
		doc.Find(sel).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if taken >= perSourceCap || out.full() {
				return false
			}

			title := firstText(el, src.TitleSelectors)
			if title == "" {
				// No title element matched; fall back to the container's own
				// text, clipped to keep noise out.
				title = clip(strings.TrimSpace(el.Text()), 100)
			}
			if !meaningful(title) {
				return true
			}

			link := firstAttr(el, src.LinkSelectors, "href")
			date := firstText(el, src.DateSelectors)
			if date == "" {
				date = nowRFC3339()
			}

			if out.add(models.OfficialUpdate{
				Title:   title,
				Link:    resolveLink(base, link, src.URL),
				PubDate: date,
				Source:  src.Name,
			}) {
				taken++
			}
			return true
		})
		if taken > 0 {
			return
		}
	}
}

// firstText returns the trimmed text of the first selector that matches a
// non-empty element under el.
func firstText(el *goquery.Selection, selectors []string) string {
	for _, sel := range selectors {
		if txt := strings.TrimSpace(el.Find(sel).First().Text()); txt != "" {
			return txt
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first selector that carries it.
func firstAttr(el *goquery.Selection, selectors []string, attr string) string {
	for _, sel := range selectors {
		if v, ok := el.Find(sel).First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
