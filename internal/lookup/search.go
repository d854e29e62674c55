package lookup

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	searchPath   = "/search.json"
	defaultLimit = 10
)

// Mode selects which search field the query matches against.
type Mode string

const (
	ModeTitle  Mode = "title"
	ModeGenre  Mode = "genre"
	ModeAuthor Mode = "author"
)

// Valid reports whether the mode is one of the known search fields.
func (m Mode) Valid() bool {
	return m == ModeTitle || m == ModeGenre || m == ModeAuthor
}

// Search queries the lookup service by the given mode and returns the first
// batch of candidates. An empty result set is a legitimate outcome, not an
// error.
func (c *Client) Search(ctx context.Context, query string, mode Mode) ([]Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	switch mode {
	case ModeTitle:
		params.Set("title", query)
	case ModeGenre:
		params.Set("subject", query)
	case ModeAuthor:
		params.Set("author", query)
	default:
		return nil, fmt.Errorf("unknown lookup mode %q", mode)
	}
	params.Set("limit", fmt.Sprintf("%d", defaultLimit))

	searchURL := c.baseURL + searchPath + "?" + params.Encode()

	c.logger.Debug("searching lookup service",
		"query", query,
		"mode", string(mode),
		"url", searchURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("lookup search results",
		"query", query,
		"count", searchResp.NumFound,
	)

	results := make([]Result, 0, len(searchResp.Docs))
	for i := range searchResp.Docs {
		d := &searchResp.Docs[i]
		if d.Key == "" {
			continue
		}

		result := Result{
			Key:      workKey(d.Key),
			Title:    strings.TrimSpace(d.Title),
			Subjects: d.Subject,
		}
		if len(d.FirstSentence) > 0 {
			result.Description = strings.TrimSpace(d.FirstSentence[0])
		}
		if d.CoverID > 0 {
			result.CoverURL = CoverURL(d.CoverID)
		}

		results = append(results, result)
	}

	return results, nil
}

// workKey flattens the service's path-style key ("/works/OL45883W") into a
// storable book ID ("works-OL45883W").
func workKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	return strings.ReplaceAll(key, "/", "-")
}

// CoverURL builds the large cover image URL for a cover ID.
func CoverURL(coverID int64) string {
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", coverID)
}
