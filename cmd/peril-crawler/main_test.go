// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/peril-crawler/internal/crawl"
	"github.com/pdiddy/peril-crawler/internal/perils"
	"github.com/pdiddy/peril-crawler/internal/secrets"
	"github.com/pdiddy/peril-crawler/internal/twitter"
	"github.com/pdiddy/peril-crawler/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func defaultKeywordFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peril_keywords.json")
	require.NoError(t, perils.WriteDefaultKeywords(path))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCombinations_Totals(t *testing.T) {
	out, err := execute(t, "combinations", "--keywords", defaultKeywordFile(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Total keywords: 11")
	assert.Contains(t, out, "States: 40")
	assert.Contains(t, out, "Single keyword combinations: 440")
	assert.Contains(t, out, "   1. Arizona explosion damage")
	assert.NotContains(t, out, "   7. ")
}

func TestCombinations_JSONIncludesExtras(t *testing.T) {
	path := writeFile(t, "kw.json", `{"damage_keywords": ["hail damage"], "For Flood": ["flash flood"]}`)

	out, err := execute(t, "combinations", "--keywords", path, "--json")
	require.NoError(t, err)

	var queries []string
	require.NoError(t, json.Unmarshal([]byte(out), &queries))
	require.Len(t, queries, 41)
	assert.Equal(t, "Arizona hail damage", queries[0])
	assert.Equal(t, "DC hail damage", queries[39])
	assert.Equal(t, "flash flood", queries[40])
}

func TestCombinations_KeywordsFromConfigFile(t *testing.T) {
	kw := defaultKeywordFile(t)
	cfg := writeFile(t, "peril-crawler.yaml", "keywords: "+kw+"\n")

	out, err := execute(t, "--config", cfg, "combinations", "--sample", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Single keyword combinations: 440")
}

func TestCombinations_KeywordsFromEnv(t *testing.T) {
	t.Setenv("PERIL_CRAWLER_KEYWORDS", defaultKeywordFile(t))

	out, err := execute(t, "combinations")
	require.NoError(t, err)
	assert.Contains(t, out, "Total queries: 440")
}

func TestCrawl_DryRun(t *testing.T) {
	out, err := execute(t, "crawl", "--dry-run", "--keywords", defaultKeywordFile(t))
	require.NoError(t, err)

	assert.Contains(t, out, "   1. Arizona explosion damage")
	assert.Contains(t, out, " 440. DC smoke damage")
	assert.Contains(t, out, "440 combinations (40 states x 11 keywords), 0 extra queries")
}

func TestCrawl_MalformedKeywords(t *testing.T) {
	path := writeFile(t, "peril_keywords.json", `{"damage_keywords": [`)

	_, err := execute(t, "crawl", "--keywords", path)
	var cle *perils.ConfigLoadError
	require.True(t, errors.As(err, &cle), "got %v", err)
}

func TestCrawl_MissingKeywords(t *testing.T) {
	_, err := execute(t, "crawl", "--keywords", filepath.Join(t.TempDir(), "missing.json"))
	var cle *perils.ConfigLoadError
	require.True(t, errors.As(err, &cle), "got %v", err)
}

func TestCrawl_EmptyKeywords(t *testing.T) {
	path := writeFile(t, "peril_keywords.json", `{"damage_keywords": []}`)

	_, err := execute(t, "crawl", "--keywords", path)
	var empty *perils.EmptyInputError
	require.True(t, errors.As(err, &empty), "got %v", err)
	assert.Equal(t, "keywords", empty.Input)
}

func TestCrawl_MissingAPIKey(t *testing.T) {
	t.Setenv(secrets.TwitterAPIKeyEnv, "")
	dir := t.TempDir()

	_, err := execute(t, "crawl",
		"--keywords", defaultKeywordFile(t),
		"--env-file", filepath.Join(dir, ".env"),
		"--secrets-dir", filepath.Join(dir, ".secrets"))
	assert.ErrorIs(t, err, twitter.ErrMissingAPIKey)
}

// stubSearcher returns one tweet per query, keyed by position.
type stubSearcher struct {
	fail map[string]bool
	n    int
}

func (s *stubSearcher) Search(_ context.Context, q string) ([]types.Tweet, error) {
	s.n++
	if s.fail[q] {
		return nil, errors.New("boom")
	}
	return []types.Tweet{{ID: q, Text: "report", SearchQuery: q}}, nil
}

func TestAppCrawl_WritesTweetsAndManifest(t *testing.T) {
	a := &app{v: viper.New(), logger: zaptest.NewLogger(t)}
	outDir := filepath.Join(t.TempDir(), "output")

	kf := &perils.KeywordFile{Keywords: []string{"hail damage", "flood damage"}, Extra: []string{"flash flood"}}
	combos, err := perils.Generate([]string{"Texas", "Ohio"}, kf.Keywords)
	require.NoError(t, err)
	queries := append(perils.Queries(combos), kf.Extra...)

	cfg := types.CrawlConfig{
		Search:       types.SearchConfig{Hours: 72, MaxResults: 20},
		KeywordsFile: "peril_keywords.json",
		OutputDir:    outDir,
	}
	ss := &stubSearcher{fail: map[string]bool{"Ohio hail damage": true}}
	var out bytes.Buffer
	require.NoError(t, a.crawl(context.Background(), ss, queries, combos, kf, cfg, &out))
	assert.Equal(t, 5, ss.n)

	manifests, err := filepath.Glob(filepath.Join(outDir, "peril_tweets_72h_*.yaml"))
	require.NoError(t, err)
	require.Len(t, manifests, 1)

	m, err := crawl.ReadManifest(manifests[0])
	require.NoError(t, err)
	assert.Equal(t, 5, m.Summary.Queries)
	assert.Equal(t, 1, m.Summary.Failed)
	assert.Equal(t, 4, m.Summary.Unique)
	assert.Equal(t, 4, m.Queries.Combinations)
	assert.Equal(t, 1, m.Queries.Extra)

	tf, err := crawl.OpenTweetFile(m.TweetFile)
	require.NoError(t, err)
	assert.Equal(t, 4, tf.Len())
	assert.Contains(t, out.String(), "Output file:")
}

func TestAppCrawl_AllQueriesFailed(t *testing.T) {
	a := &app{v: viper.New(), logger: zaptest.NewLogger(t)}
	kf := &perils.KeywordFile{Keywords: []string{"hail damage"}}
	combos, err := perils.Generate([]string{"Texas"}, kf.Keywords)
	require.NoError(t, err)

	cfg := types.CrawlConfig{Search: types.SearchConfig{Hours: 72}, OutputDir: t.TempDir()}
	ss := &stubSearcher{fail: map[string]bool{"Texas hail damage": true}}
	err = a.crawl(context.Background(), ss, perils.Queries(combos), combos, kf, cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 queries failed")
}

func TestResolveHours(t *testing.T) {
	t.Setenv("SEARCH_HOURS", "")

	tests := []struct {
		name   string
		dotenv string
		set    any
		want   int
	}{
		{"default when nothing set", "", nil, defaultHours},
		{"dotenv value", "SEARCH_HOURS=24\n", nil, 24},
		{"invalid dotenv falls back", "SEARCH_HOURS=soon\n", nil, defaultHours},
		{"explicit value wins over dotenv", "SEARCH_HOURS=24\n", 12, 12},
		{"non-positive falls back", "", -5, defaultHours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app{v: viper.New(), logger: zaptest.NewLogger(t)}
			if tt.set != nil {
				a.v.Set("hours", tt.set)
			}
			envFile := ""
			if tt.dotenv != "" {
				envFile = writeFile(t, ".env", tt.dotenv)
			}
			set, err := secrets.Load(envFile, "", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.resolveHours(set))
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "peril-crawler dev\n", out)
}
