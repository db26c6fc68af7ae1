package aggregator

// ScrapeSource is one structured-extraction target: a page plus ordered
// candidate selectors for the item containers and their fields. Selectors are
// candidates because official sites restructure without notice; the first
// container selector that yields items wins for that source.
type ScrapeSource struct {
	Name               string
	URL                string
	ContainerSelectors []string
	TitleSelectors     []string
	LinkSelectors      []string
	DateSelectors      []string
}

// FeedSource is one syndicated feed used by the second tier.
type FeedSource struct {
	Name string
	URL  string
}

// HeadingSource is the last-resort tier: one known-good page scanned for any
// heading-like text.
type HeadingSource struct {
	Name     string
	URL      string
	Selector string
}

// DefaultSources returns the structured-extraction tier targets.
func DefaultSources() []ScrapeSource {
	return []ScrapeSource{
		{
			Name: "FEMA",
			URL:  "https://www.fema.gov/disasters",
			ContainerSelectors: []string{
				".disaster-item", ".disaster-list-item", ".news-item", "article", ".content-item",
			},
			TitleSelectors: []string{"h3", "h2", "h1", ".title", ".headline"},
			LinkSelectors:  []string{"a", ".link"},
			DateSelectors:  []string{".date", ".published", ".timestamp", "time"},
		},
		{
			Name: "Red Cross",
			URL:  "https://www.redcross.org/about-us/news-and-events/news/",
			ContainerSelectors: []string{
				".news-item", ".news-article", ".content-item", "article", ".story",
			},
			TitleSelectors: []string{".news-title", ".title", "h2", "h3"},
			LinkSelectors:  []string{"a", ".read-more"},
			DateSelectors:  []string{".news-date", ".date", ".published"},
		},
		{
			Name: "Ready.gov",
			URL:  "https://www.ready.gov/",
			ContainerSelectors: []string{
				".emergency-alert", ".disaster-info", ".news-item", ".content-block", "article",
			},
			TitleSelectors: []string{"h1", "h2", "h3", ".title", ".headline"},
			LinkSelectors:  []string{"a", ".read-more"},
			DateSelectors:  []string{".date", ".published", "time"},
		},
	}
}

// DefaultFeeds returns the syndicated-feed tier targets.
func DefaultFeeds() []FeedSource {
	return []FeedSource{
		{Name: "FEMA RSS", URL: "https://www.fema.gov/rss/disasters.xml"},
		{Name: "Red Cross RSS", URL: "https://www.redcross.org/rss/news.xml"},
		{Name: "Weather RSS", URL: "https://www.weather.gov/rss/alerts.xml"},
	}
}

// DefaultFallback returns the generic heading-scrape target.
func DefaultFallback() HeadingSource {
	return HeadingSource{
		Name:     "Ready.gov",
		URL:      "https://www.ready.gov/",
		Selector: "h1, h2, h3, .title, .headline",
	}
}
