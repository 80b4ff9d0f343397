package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/asifah/stormwatch/internal/models"
)

// RSSClient fetches one RSS feed and serves the targets it is configured
// for. Regional outlets (Kyiv Independent, Meduza, ISW, Arctic Today) arrive
// through this path.
type RSSClient struct {
	name     string
	url      string
	targets  map[string]bool
	maxItems int
	http     *httpClient
}

// rssDocument mirrors the subset of RSS 2.0 we consume.
type rssDocument struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

// NewRSSClient creates a fetcher for one feed, restricted to the given targets.
func NewRSSClient(name, feedURL string, targets []string, maxItems int, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *RSSClient {
	if maxItems <= 0 {
		maxItems = 20
	}
	targetSet := make(map[string]bool, len(targets))
	for _, t := range targets {
		targetSet[t] = true
	}
	return &RSSClient{
		name:     name,
		url:      feedURL,
		targets:  targetSet,
		maxItems: maxItems,
		http:     newHTTPClient(timeout, maxRetries, retryDelayBase),
	}
}

func (c *RSSClient) Name() string { return "rss-" + c.name }

// ServesTarget reports whether this feed informs the given target.
func (c *RSSClient) ServesTarget(target string) bool { return c.targets[target] }

// Fetch retrieves the feed's latest items. The feed is target-scoped by
// configuration, so the query's keywords are not applied here.
func (c *RSSClient) Fetch(ctx context.Context, query TargetQuery, days int) ([]models.RawRecord, error) {
	if !c.ServesTarget(query.Target) {
		return nil, nil
	}

	headers := map[string]string{"User-Agent": "Mozilla/5.0 (compatible; stormwatch/1.0)"}
	resp, err := c.http.get(ctx, c.url, headers)
	if err != nil {
		return nil, fmt.Errorf("rss %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	var doc rssDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("rss %s: failed to parse feed: %w", c.name, err)
	}

	items := doc.Channel.Items
	if len(items) > c.maxItems {
		items = items[:c.maxItems]
	}

	records := make([]models.RawRecord, 0, len(items))
	for _, item := range items {
		records = append(records, models.RawRecord{
			Title:       item.Title,
			Description: truncate(item.Description, 500),
			Content:     item.Description,
			PublishedAt: item.PubDate,
			URL:         item.Link,
			SourceName:  c.name,
			Language:    "en",
		})
	}
	return records, nil
}
