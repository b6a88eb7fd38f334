// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest is the on-disk record of a crawl run, written beside the tweet
// file so a run can be audited without re-querying the API.
type Manifest struct {
	KeywordsFile string         `yaml:"keywords_file"`
	TweetFile    string         `yaml:"tweet_file"`
	Config       ManifestConfig `yaml:"config"`
	Queries      ManifestQuery  `yaml:"queries"`
	Summary      Summary        `yaml:"summary"`
	StartedAt    time.Time      `yaml:"started_at"`
	FinishedAt   time.Time      `yaml:"finished_at"`
}

// ManifestConfig stores the settings that shaped the run.
type ManifestConfig struct {
	Hours      int           `yaml:"hours"`
	MaxResults int           `yaml:"max_results"`
	QueryDelay time.Duration `yaml:"query_delay"`
}

// ManifestQuery describes the query set.
type ManifestQuery struct {
	States       int      `yaml:"states"`
	Keywords     []string `yaml:"keywords"`
	Combinations int      `yaml:"combinations"`
	Extra        int      `yaml:"extra"`
}

// ManifestPath returns the manifest location for a tweet file.
func ManifestPath(tweetFile string) string {
	return strings.TrimSuffix(tweetFile, ".json") + ".yaml"
}

// WriteManifest saves m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
