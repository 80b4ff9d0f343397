package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/asifah/stormwatch/internal/models"
)

// NewsAPIClient fetches English-language articles from NewsAPI's /everything
// endpoint.
type NewsAPIClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *httpClient
}

// newsAPIResponse mirrors the subset of the NewsAPI payload we consume.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		PublishedAt string `json:"publishedAt"`
		URL         string `json:"url"`
	} `json:"articles"`
}

// NewNewsAPIClient creates a NewsAPI fetcher.
func NewNewsAPIClient(baseURL, apiKey string, pageSize int, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *NewsAPIClient {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &NewsAPIClient{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		http:     newHTTPClient(timeout, maxRetries, retryDelayBase),
	}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

// Fetch retrieves articles matching the target's keywords published within
// the last `days` days.
func (c *NewsAPIClient) Fetch(ctx context.Context, query TargetQuery, days int) ([]models.RawRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi: no API key configured")
	}

	params := url.Values{}
	params.Set("q", orQuery(query.Keywords, 8))
	params.Set("from", time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("apiKey", c.apiKey)
	params.Set("pageSize", fmt.Sprintf("%d", c.pageSize))

	resp, err := c.http.get(ctx, c.baseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}
	defer resp.Body.Close()

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("newsapi: failed to decode response: %w", err)
	}

	records := make([]models.RawRecord, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		records = append(records, models.RawRecord{
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
			SourceName:  a.Source.Name,
			Language:    "en",
		})
	}
	return records, nil
}
