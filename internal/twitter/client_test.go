// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/peril-crawler/internal/httputil"
	"github.com/pdiddy/peril-crawler/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	goleak.VerifyTestMain(m)
}

const sampleSearchJSON = `{
  "tweets": [
    {
      "type": "tweet",
      "id": "1949880559427342845",
      "url": "https://x.com/KTAR923/status/1949880559427342845",
      "text": "Hail damage reported across Maricopa County",
      "createdAt": "Mon Jul 28 17:12:07 +0000 2025",
      "retweetCount": 3,
      "replyCount": 1,
      "likeCount": 12,
      "lang": "en",
      "author": {"userName": "KTAR923", "name": "KTAR News"}
    },
    {
      "type": "tweet",
      "id": "1949871803339554886",
      "url": "https://x.com/AZHouseGOP/status/1949871803339554886",
      "text": "Storm cleanup continues",
      "createdAt": "Mon Jul 28 16:37:19 +0000 2025",
      "author": {"userName": "AZHouseGOP", "name": "Arizona House Republicans"}
    }
  ],
  "has_next_page": true,
  "next_cursor": "abc"
}`

// fakeAPI serves body with status and records the last request.
func fakeAPI(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	last := &http.Request{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*last = *r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	old := advancedSearchURL
	advancedSearchURL = ts.URL
	t.Cleanup(func() {
		advancedSearchURL = old
		ts.Close()
	})
	return ts, last
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "peril-crawler/test"},
		APIKey:     "tw_test",
		Hours:      72,
		MaxResults: 20,
	}
}

func TestClientSearch(t *testing.T) {
	ts, last := fakeAPI(t, http.StatusOK, sampleSearchJSON)

	c, err := NewClient(ts.Client(), testCfg(), zaptest.NewLogger(t))
	require.NoError(t, err)

	tweets, err := c.Search(context.Background(), "Arizona hail damage")
	require.NoError(t, err)
	require.Len(t, tweets, 2)

	assert.Equal(t, "Arizona hail damage within_time:72h", last.URL.Query().Get("query"))
	assert.Equal(t, "Latest", last.URL.Query().Get("queryType"))
	assert.Equal(t, "tw_test", last.Header.Get("X-API-Key"))
	assert.Equal(t, "peril-crawler/test", last.Header.Get("User-Agent"))

	t0 := tweets[0]
	assert.Equal(t, "1949880559427342845", t0.ID)
	assert.Equal(t, "KTAR923", t0.Author.UserName)
	assert.Equal(t, 12, t0.LikeCount)
	assert.Equal(t, "Arizona hail damage", t0.SearchQuery)
	assert.True(t, time.Date(2025, 7, 28, 17, 12, 7, 0, time.UTC).Equal(t0.Created()))

	// Output keeps fields the typed struct does not model.
	out, err := json.Marshal(t0)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(out, &obj))
	assert.Equal(t, "en", obj["lang"])
	assert.Equal(t, "Arizona hail damage", obj["search_query"])
}

func TestClientSearch_TruncatesToMaxResults(t *testing.T) {
	ts, _ := fakeAPI(t, http.StatusOK, sampleSearchJSON)

	cfg := testCfg()
	cfg.MaxResults = 1
	c, err := NewClient(ts.Client(), cfg, nil)
	require.NoError(t, err)

	tweets, err := c.Search(context.Background(), "Ohio storm damage")
	require.NoError(t, err)
	require.Len(t, tweets, 1)
	assert.Equal(t, "1949880559427342845", tweets[0].ID)
}

func TestClientSearch_EmptyResult(t *testing.T) {
	ts, _ := fakeAPI(t, http.StatusOK, `{"tweets": [], "has_next_page": false}`)

	c, err := NewClient(ts.Client(), testCfg(), nil)
	require.NoError(t, err)

	tweets, err := c.Search(context.Background(), "Utah flood damage")
	require.NoError(t, err)
	assert.Empty(t, tweets)
}

func TestClientSearch_HTTPError(t *testing.T) {
	ts, _ := fakeAPI(t, http.StatusUnauthorized, `{"error": "invalid api key"}`)

	c, err := NewClient(ts.Client(), testCfg(), nil)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "Iowa hail damage")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestClientSearch_MalformedBody(t *testing.T) {
	ts, _ := fakeAPI(t, http.StatusOK, `{"tweets": [`)

	c, err := NewClient(ts.Client(), testCfg(), nil)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "Maine water damage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing search response")
}

func TestClientSearch_RetriesOnRateLimit(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, sampleSearchJSON)
	}))
	defer ts.Close()
	old := advancedSearchURL
	advancedSearchURL = ts.URL
	defer func() { advancedSearchURL = old }()

	c, err := NewClient(ts.Client(), testCfg(), zaptest.NewLogger(t))
	require.NoError(t, err)

	tweets, err := c.Search(context.Background(), "Texas tornado damage")
	require.NoError(t, err)
	assert.Len(t, tweets, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, types.SearchConfig{APIKey: "  "}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := NewClient(nil, types.SearchConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultHours, c.cfg.Hours)
	assert.Equal(t, defaultMaxResults, c.cfg.MaxResults)
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		q     string
		hours int
		want  string
	}{
		{"Texas hail damage", 72, "Texas hail damage within_time:72h"},
		{"DC smoke damage", 24, "DC smoke damage within_time:24h"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.q, tt.hours))
		})
	}
}
