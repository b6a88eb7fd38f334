// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/peril-crawler/internal/crawl"
	"github.com/pdiddy/peril-crawler/internal/perils"
	"github.com/pdiddy/peril-crawler/internal/secrets"
	"github.com/pdiddy/peril-crawler/internal/twitter"
	"github.com/pdiddy/peril-crawler/pkg/types"
)

const (
	defaultKeywordsFile = "peril_keywords.json"
	defaultHours        = 72
	defaultMaxResults   = 20
	defaultDelay        = 100 * time.Millisecond
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "peril-crawler/0.1"
)

func newCrawlCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Query the search API for every state and peril keyword",
		Long: `Crawl loads the keyword file, builds every "<state> <keyword>" query,
then issues them one at a time against the tweet search API. Extra lists in
the keyword file are queried verbatim after the state combinations.

Tweets are saved after each query to output/peril_tweets_<hours>h_<ts>.json,
deduplicated by tweet ID, and a YAML manifest of the run is written next to
it. A failed query is reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrawl(cmd)
		},
	}

	cmd.Flags().String("keywords", defaultKeywordsFile, "keyword file (JSON or YAML)")
	cmd.Flags().Int("hours", defaultHours, "search window in hours")
	cmd.Flags().Int("max-results", defaultMaxResults, "maximum tweets kept per query")
	cmd.Flags().Duration("delay", defaultDelay, "delay between consecutive queries")
	cmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().Int("max-retries", 1, "retries after an HTTP 429")
	cmd.Flags().String("output-dir", "output", "directory for tweet files and manifests")
	cmd.Flags().String("env-file", ".env", "dotenv file holding TWITTER_API_KEY")
	cmd.Flags().String("secrets-dir", ".secrets", "directory of key files")
	cmd.Flags().Bool("dry-run", false, "print the queries without calling the API")
	return cmd
}

func (a *app) runCrawl(cmd *cobra.Command) error {
	if err := a.bindFlags(cmd, "keywords", "hours", "max-results", "delay", "timeout",
		"max-retries", "output-dir", "env-file", "secrets-dir"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	keywordsFile := a.v.GetString("keywords")
	kf, err := perils.LoadKeywordFile(keywordsFile)
	if err != nil {
		return err
	}
	combos, err := perils.Generate(perils.States(), kf.Keywords)
	if err != nil {
		return err
	}
	queries := append(perils.Queries(combos), kf.Extra...)

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		for i, q := range queries {
			fmt.Fprintf(out, "%4d. %s\n", i+1, q)
		}
		fmt.Fprintf(out, "\n%d combinations (%d states x %d keywords), %d extra queries\n",
			len(combos), len(perils.States()), len(kf.Keywords), len(kf.Extra))
		return nil
	}

	set, err := secrets.Load(a.v.GetString("env-file"), a.v.GetString("secrets-dir"), a.logger)
	if err != nil {
		return err
	}
	apiKey, source, ok := set.Get(secrets.TwitterAPIKeyEnv, secrets.TwitterAPIKeyFile)
	if !ok {
		return fmt.Errorf("%w: set %s in the environment or %s, or write %s",
			twitter.ErrMissingAPIKey, secrets.TwitterAPIKeyEnv,
			a.v.GetString("env-file"),
			filepath.Join(a.v.GetString("secrets-dir"), secrets.TwitterAPIKeyFile))
	}
	a.logger.Info("loaded API key", zap.String("source", source))

	cfg := types.CrawlConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    a.v.GetDuration("timeout"),
				UserAgent:  defaultUserAgent,
				MaxRetries: a.v.GetInt("max-retries"),
			},
			APIKey:     apiKey,
			Hours:      a.resolveHours(set),
			MaxResults: a.v.GetInt("max-results"),
		},
		KeywordsFile: keywordsFile,
		OutputDir:    a.v.GetString("output-dir"),
		QueryDelay:   a.v.GetDuration("delay"),
	}

	client, err := twitter.NewClient(&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.crawl(ctx, client, queries, combos, kf, cfg, out)
}

// crawl runs the queries and records the run. It is split from runCrawl so
// the searcher can be substituted.
func (a *app) crawl(ctx context.Context, searcher crawl.Searcher, queries []string, combos []perils.Combination, kf *perils.KeywordFile, cfg types.CrawlConfig, out io.Writer) error {
	started := time.Now()
	tweetPath := filepath.Join(cfg.OutputDir, crawl.TweetFileName(cfg.Search.Hours, started))
	sink, err := crawl.OpenTweetFile(tweetPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Starting peril tweet search...")
	runner := &crawl.Runner{
		Searcher: searcher,
		Sink:     sink,
		Delay:    cfg.QueryDelay,
		Out:      out,
		Logger:   a.logger,
	}
	summary, runErr := runner.Run(ctx, queries)

	manifest := &crawl.Manifest{
		KeywordsFile: cfg.KeywordsFile,
		TweetFile:    tweetPath,
		Config: crawl.ManifestConfig{
			Hours:      cfg.Search.Hours,
			MaxResults: cfg.Search.MaxResults,
			QueryDelay: cfg.QueryDelay,
		},
		Queries: crawl.ManifestQuery{
			States:       len(perils.States()),
			Keywords:     kf.Keywords,
			Combinations: len(combos),
			Extra:        len(kf.Extra),
		},
		Summary:    summary,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	manifestPath := crawl.ManifestPath(tweetPath)
	if err := crawl.WriteManifest(manifestPath, manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if sink.Len() > 0 {
		fmt.Fprintf(out, "Output file: %s\n", absPath(tweetPath))
	}
	fmt.Fprintf(out, "Manifest: %s\n", absPath(manifestPath))

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("crawl interrupted after %d of %d queries", summary.Queries, len(queries))
		}
		return runErr
	}
	if summary.Failed == summary.Queries {
		return fmt.Errorf("all %d queries failed", summary.Failed)
	}
	return nil
}

// resolveHours picks the search window. A dotenv SEARCH_HOURS applies
// only when no flag, environment variable, or config value is set. An
// unusable value falls back to the default with a warning.
func (a *app) resolveHours(set *secrets.Set) int {
	hours := a.v.GetInt("hours")
	if !a.v.IsSet("hours") {
		if raw, src, ok := set.Get("SEARCH_HOURS", ""); ok && src == "dotenv" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				a.logger.Warn("invalid SEARCH_HOURS in dotenv, using default",
					zap.String("value", raw), zap.Int("default", defaultHours))
				return defaultHours
			}
			hours = n
		}
	}
	if hours <= 0 {
		a.logger.Warn("invalid search window, using default",
			zap.Int("hours", hours), zap.Int("default", defaultHours))
		return defaultHours
	}
	return hours
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
