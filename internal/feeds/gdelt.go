package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/asifah/stormwatch/internal/models"
)

// GDELTClient fetches articles from the GDELT v2 doc API. One client covers
// one source language; the engine runs one per configured language, which
// gives the multilingual coverage the aggregator tier provides.
type GDELTClient struct {
	baseURL    string
	language   string // GDELT three-letter code, e.g. "eng", "rus"
	maxRecords int
	http       *httpClient
}

// gdeltLangCodes maps GDELT source languages to ISO 639-1 codes.
var gdeltLangCodes = map[string]string{
	"eng": "en", "rus": "ru", "fra": "fr",
	"ukr": "uk", "pol": "pl", "dan": "da", "deu": "de",
}

type gdeltResponse struct {
	Articles []struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		SeenDate string `json:"seendate"`
		Domain   string `json:"domain"`
	} `json:"articles"`
}

// NewGDELTClient creates a GDELT fetcher for one source language.
func NewGDELTClient(baseURL, language string, maxRecords int, timeout time.Duration, maxRetries int, retryDelayBase time.Duration) *GDELTClient {
	if maxRecords <= 0 {
		maxRecords = 75
	}
	return &GDELTClient{
		baseURL:    baseURL,
		language:   language,
		maxRecords: maxRecords,
		http:       newHTTPClient(timeout, maxRetries, retryDelayBase),
	}
}

func (c *GDELTClient) Name() string { return "gdelt-" + c.language }

// Fetch retrieves articles matching the target's keywords from the last
// `days` days in the client's language.
func (c *GDELTClient) Fetch(ctx context.Context, query TargetQuery, days int) ([]models.RawRecord, error) {
	q := orQuery(query.Keywords, 8)
	if strings.Contains(q, " OR ") {
		q = "(" + q + ")"
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("mode", "artlist")
	params.Set("maxrecords", fmt.Sprintf("%d", c.maxRecords))
	params.Set("timespan", fmt.Sprintf("%dd", days))
	params.Set("format", "json")
	params.Set("sourcelang", c.language)

	resp, err := c.http.get(ctx, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gdelt %s: %w", c.language, err)
	}
	defer resp.Body.Close()

	var payload gdeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("gdelt %s: failed to decode response: %w", c.language, err)
	}

	lang := gdeltLangCodes[c.language]
	if lang == "" {
		lang = "en"
	}

	records := make([]models.RawRecord, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		// GDELT only exposes titles in artlist mode
		records = append(records, models.RawRecord{
			Title:       a.Title,
			PublishedAt: a.SeenDate,
			URL:         a.URL,
			SourceName:  "GDELT",
			Language:    lang,
		})
	}
	return records, nil
}
