// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/peril-crawler/pkg/types"
)

const tweetFileTimeLayout = "20060102_150405"

// TweetFileName returns the output name for a run started at ts.
func TweetFileName(hours int, ts time.Time) string {
	return fmt.Sprintf("peril_tweets_%dh_%s.json", hours, ts.Format(tweetFileTimeLayout))
}

// TweetFile is a JSON array of tweets deduplicated by ID. The first
// occurrence of an ID wins. It implements Sink.
type TweetFile struct {
	path   string
	tweets []types.Tweet
	seen   map[string]struct{}
}

// OpenTweetFile loads path if it exists so a rerun appends to it. A file
// that is not a JSON array of tweets is an error rather than being
// overwritten.
func OpenTweetFile(path string) (*TweetFile, error) {
	f := &TweetFile{path: path, seen: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading tweet file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	var existing []types.Tweet
	if err := json.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("parsing tweet file %s: %w", path, err)
	}
	f.Add(existing)
	return f, nil
}

// Path returns the file location.
func (f *TweetFile) Path() string { return f.path }

// Len returns the number of unique tweets held.
func (f *TweetFile) Len() int { return len(f.tweets) }

// Tweets returns a copy of the held tweets in insertion order.
func (f *TweetFile) Tweets() []types.Tweet {
	out := make([]types.Tweet, len(f.tweets))
	copy(out, f.tweets)
	return out
}

// Add appends tweets whose ID has not been seen. Tweets without an ID are
// dropped.
func (f *TweetFile) Add(tweets []types.Tweet) int {
	added := 0
	for _, t := range tweets {
		if t.ID == "" {
			continue
		}
		if _, ok := f.seen[t.ID]; ok {
			continue
		}
		f.seen[t.ID] = struct{}{}
		f.tweets = append(f.tweets, t)
		added++
	}
	return added
}

// Flush writes the array to a temp file beside path and renames it into
// place.
func (f *TweetFile) Flush() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	tweets := f.tweets
	if tweets == nil {
		tweets = []types.Tweet{}
	}
	if err := enc.Encode(tweets); err != nil {
		return fmt.Errorf("encoding tweets: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tweets-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming tweet file: %w", err)
	}
	return nil
}
