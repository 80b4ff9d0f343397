package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/asifah/stormwatch/internal/models"
)

// RedditClient fetches posts from the target's configured subreddits via the
// public search endpoint. Reddit is the social tier: low credibility weight,
// high volume.
type RedditClient struct {
	baseURL   string
	userAgent string
	limit     int
	http      *httpClient
}

type redditResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// NewRedditClient creates a Reddit search fetcher.
func NewRedditClient(baseURL, userAgent string, limit int, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *RedditClient {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	return &RedditClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		http:      newHTTPClient(timeout, maxRetries, retryDelayBase),
	}
}

func (c *RedditClient) Name() string { return "reddit" }

// Fetch searches each configured subreddit for the target's Reddit keywords.
// A failing subreddit is skipped; partial results are better than none for a
// social-tier source.
func (c *RedditClient) Fetch(ctx context.Context, query TargetQuery, days int) ([]models.RawRecord, error) {
	timeFilter := "week"
	switch {
	case days <= 1:
		timeFilter = "day"
	case days <= 7:
		timeFilter = "week"
	case days <= 30:
		timeFilter = "month"
	default:
		timeFilter = "year"
	}

	headers := map[string]string{"User-Agent": c.userAgent}

	var records []models.RawRecord
	var lastErr error
	for _, subreddit := range query.Subreddits {
		params := url.Values{}
		params.Set("q", orQuery(query.RedditKeywords, 3))
		params.Set("restrict_sr", "true")
		params.Set("sort", "new")
		params.Set("t", timeFilter)
		params.Set("limit", fmt.Sprintf("%d", c.limit))

		u := fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, subreddit, params.Encode())
		resp, err := c.http.get(ctx, u, headers)
		if err != nil {
			lastErr = fmt.Errorf("reddit r/%s: %w", subreddit, err)
			continue
		}

		var payload redditResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("reddit r/%s: failed to decode response: %w", subreddit, err)
			continue
		}

		for _, child := range payload.Data.Children {
			post := child.Data
			records = append(records, models.RawRecord{
				Title:       truncate(post.Title, 200),
				Description: truncate(post.Selftext, 300),
				Content:     post.Selftext,
				PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC().Format(time.RFC3339),
				URL:         c.baseURL + post.Permalink,
				SourceName:  "r/" + subreddit,
				Language:    "en",
			})
		}
	}

	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
