// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay is how long to wait after an HTTP 429 before re-issuing
// the request. Tests override this to avoid real sleeps.
var RetryBaseDelay = 60 * time.Second

const defaultMaxRetries = 1

// DoWithRetry executes an HTTP request and re-issues it when the server
// answers HTTP 429 (Too Many Requests), waiting RetryBaseDelay before each
// retry.
//
// When maxRetries is 0 the default (1) is used. The body of each 429 is
// drained and closed before waiting. A context cancelled during the wait
// returns ctx.Err(). After the last retry the final 429 response is
// returned for the caller to inspect. A nil logger is allowed.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int, logger *zap.Logger) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if attempt >= maxRetries {
			logger.Warn("rate limited, giving up",
				zap.String("url", req.URL.Redacted()),
				zap.Int("attempts", attempt+1))
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		logger.Info("rate limited, waiting",
			zap.Duration("wait", RetryBaseDelay),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(RetryBaseDelay):
		}
	}
}
