// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that call the network.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "peril-crawler/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is how many times a rate-limited (HTTP 429) request is
	// re-issued before giving up (default 1).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SearchConfig holds settings for the tweet search API.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is sent in the X-API-Key header.
	APIKey string `json:"-" yaml:"-"`

	// Hours bounds the search window via the within_time operator (default 72).
	Hours int `json:"hours" yaml:"hours"`

	// MaxResults caps the tweets kept per query (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// CrawlConfig holds settings for a crawl run.
type CrawlConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`

	// KeywordsFile is the JSON or YAML keyword source.
	KeywordsFile string `json:"keywords_file" yaml:"keywords_file"`

	// OutputDir receives the tweet file and run manifest.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// QueryDelay is the pause between consecutive queries (default 100ms).
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay"`
}
