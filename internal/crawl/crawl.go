// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl issues search queries one at a time, collects the tweets
// they return, and records the run.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/peril-crawler/pkg/types"
)

// Searcher runs one query against a tweet search backend.
type Searcher interface {
	Search(ctx context.Context, query string) ([]types.Tweet, error)
}

// Sink accumulates tweets across queries.
type Sink interface {
	// Add stores tweets not already held and reports how many were new.
	Add(tweets []types.Tweet) int
	// Flush persists everything added so far.
	Flush() error
	// Len is the number of unique tweets held.
	Len() int
}

// Failure records a query whose search returned an error.
type Failure struct {
	Query string `json:"query" yaml:"query"`
	Error string `json:"error" yaml:"error"`
}

// Summary holds counts from a crawl run.
type Summary struct {
	Queries  int       `json:"queries" yaml:"queries"`
	Failed   int       `json:"failed" yaml:"failed"`
	Fetched  int       `json:"fetched" yaml:"fetched"`
	Unique   int       `json:"unique" yaml:"unique"`
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// HasFailures reports whether any query failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Runner drives a crawl.
type Runner struct {
	Searcher Searcher
	Sink     Sink

	// Delay is the pause between consecutive queries.
	Delay time.Duration

	// Out receives human-readable progress. Nil discards it.
	Out io.Writer

	Logger *zap.Logger
}

// Run issues queries in order. A failed query is logged and counted and
// the crawl moves on; the sink is flushed after every query that returned
// tweets. Cancelling ctx stops the crawl and returns ctx.Err() with the
// partial summary. A flush failure aborts the run.
func (r *Runner) Run(ctx context.Context, queries []string) (Summary, error) {
	if len(queries) == 0 {
		return Summary{}, errors.New("no queries to run")
	}
	w := r.Out
	if w == nil {
		w = io.Discard
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var summary Summary
	fmt.Fprintf(w, "Fetching tweets for %d search combinations...\n", len(queries))

	for i, q := range queries {
		if i > 0 && r.Delay > 0 {
			select {
			case <-ctx.Done():
				summary.Unique = r.Sink.Len()
				return summary, ctx.Err()
			case <-time.After(r.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			summary.Unique = r.Sink.Len()
			return summary, err
		}

		fmt.Fprintf(w, "Query %d/%d: %s\n", i+1, len(queries), q)
		summary.Queries++

		tweets, err := r.Searcher.Search(ctx, q)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				summary.Unique = r.Sink.Len()
				return summary, ctxErr
			}
			logger.Warn("query failed", zap.String("query", q), zap.Error(err))
			fmt.Fprintf(w, "  -> failed: %v\n", err)
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Query: q, Error: err.Error()})
			continue
		}
		if len(tweets) == 0 {
			continue
		}

		summary.Fetched += len(tweets)
		added := r.Sink.Add(tweets)
		if err := r.Sink.Flush(); err != nil {
			summary.Unique = r.Sink.Len()
			return summary, fmt.Errorf("saving tweets after %q: %w", q, err)
		}
		fmt.Fprintf(w, "  -> Fetched %d tweets (%d new)\n", len(tweets), added)
		logger.Debug("query done",
			zap.String("query", q),
			zap.Int("fetched", len(tweets)),
			zap.Int("new", added))
	}

	summary.Unique = r.Sink.Len()

	fmt.Fprintf(w, "\n=== Final Summary ===\n")
	fmt.Fprintf(w, "Total queries run: %d\n", summary.Queries)
	fmt.Fprintf(w, "Failed queries: %d\n", summary.Failed)
	fmt.Fprintf(w, "Total tweets fetched: %d\n", summary.Fetched)
	fmt.Fprintf(w, "Unique tweets: %d\n", summary.Unique)
	return summary, nil
}
