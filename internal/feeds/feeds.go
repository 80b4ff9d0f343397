// Package feeds implements the upstream fetchers: NewsAPI, the GDELT doc
// API, Reddit search, and RSS feeds. Each fetcher returns raw records tagged
// with a source name; normalization and scoring happen downstream.
//
// Retry and timeout policy lives here, not in the scoring engine: fetchers
// retry transient failures with linear backoff, and a failed source degrades
// the cycle rather than aborting it.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/asifah/stormwatch/internal/models"
)

// TargetQuery carries the per-target search parameters fetchers need.
type TargetQuery struct {
	Target         string
	Keywords       []string
	RedditKeywords []string
	Subreddits     []string
}

// Fetcher retrieves raw records about one target from one upstream source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, query TargetQuery, days int) ([]models.RawRecord, error)
}

// httpClient wraps http.Client with the shared retry policy.
type httpClient struct {
	client         *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

func newHTTPClient(timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *httpClient {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	return &httpClient{
		client:         &http.Client{Timeout: timeout},
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}
}

// get performs a GET with retry on transport errors and 5xx responses.
// 4xx responses fail immediately; retrying a rejected request cannot help.
func (c *httpClient) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if !sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)) {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if !sleepCtx(ctx, c.retryDelayBase*time.Duration(i+1)) {
				return nil, ctx.Err()
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", c.maxRetries, lastErr)
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// orQuery joins up to max keywords into an OR search expression.
func orQuery(keywords []string, max int) string {
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	q := ""
	for i, kw := range keywords {
		if i > 0 {
			q += " OR "
		}
		q += kw
	}
	return q
}
