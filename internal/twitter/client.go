// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package twitter queries the twitterapi.io advanced search endpoint.
package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/peril-crawler/internal/httputil"
	"github.com/pdiddy/peril-crawler/pkg/types"
)

// advancedSearchURL is declared as a var so tests can substitute an
// httptest server.
var advancedSearchURL = "https://api.twitterapi.io/twitter/tweet/advanced_search"

const (
	defaultHours      = 72
	defaultMaxResults = 20
	queryTypeLatest   = "Latest"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("twitter API key is required")

// Client searches recent tweets for a query string.
type Client struct {
	http   *http.Client
	cfg    types.SearchConfig
	logger *zap.Logger
}

// NewClient validates cfg and fills defaults for Hours and MaxResults.
func NewClient(hc *http.Client, cfg types.SearchConfig, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Hours <= 0 {
		cfg.Hours = defaultHours
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: hc, cfg: cfg, logger: logger}, nil
}

// Search returns the latest tweets matching query within the configured
// window, at most MaxResults of them, each tagged with the query.
func (c *Client) Search(ctx context.Context, query string) ([]types.Tweet, error) {
	params := url.Values{
		"query":     {BuildQuery(query, c.cfg.Hours)},
		"queryType": {queryTypeLatest},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, advancedSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.logger)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	tweets := sr.Tweets
	if len(tweets) > c.cfg.MaxResults {
		tweets = tweets[:c.cfg.MaxResults]
	}
	for i := range tweets {
		tweets[i].SearchQuery = query
	}

	c.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("returned", len(sr.Tweets)),
		zap.Int("kept", len(tweets)))
	return tweets, nil
}

// BuildQuery appends the within_time operator to q.
func BuildQuery(q string, hours int) string {
	return q + " within_time:" + strconv.Itoa(hours) + "h"
}

// StatusError reports a non-200 answer from the search API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("search API returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("search API returned HTTP %d: %s", e.Code, e.Body)
}

type searchResponse struct {
	Tweets      []types.Tweet `json:"tweets"`
	HasNextPage bool          `json:"has_next_page"`
	NextCursor  string        `json:"next_cursor"`
}
