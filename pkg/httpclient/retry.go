// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type retryTransport struct {
	base          http.RoundTripper
	attempts      int
	backoff       time.Duration
	maxBackoff    time.Duration
	nonIdempotent bool
	logger        *slog.Logger
}

func newRetryTransport(base http.RoundTripper, cfg Config, logger *slog.Logger) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &retryTransport{
		base:          base,
		attempts:      cfg.RetryAttempts + 1,
		backoff:       cfg.RetryBackoff,
		maxBackoff:    cfg.MaxBackoff,
		nonIdempotent: cfg.AllowNonIdempotentRetry,
		logger:        logger,
	}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.nonIdempotent && !idempotent(req.Method) {
		return t.base.RoundTrip(req)
	}
	// A body can only be replayed when the request knows how to reopen it.
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return t.base.RoundTrip(req)
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 1; ; attempt++ {
		if attempt > 1 {
			if err := t.wait(req.Context(), attempt-1, resp); err != nil {
				return nil, err
			}
			if req.GetBody != nil {
				body, gerr := req.GetBody()
				if gerr != nil {
					return nil, gerr
				}
				req.Body = body
			}
		}

		resp, err = t.base.RoundTrip(req)
		retry := t.retryable(resp, err)
		if !retry || attempt >= t.attempts {
			return resp, err
		}

		t.logger.Debug("retrying http request",
			slog.String("method", req.Method),
			slog.String("url", SanitizeURL(req.URL)),
			slog.Int("attempt", attempt))
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
	}
}

func (t *retryTransport) retryable(resp *http.Response, err error) bool {
	if err != nil {
		return retryableError(err)
	}
	switch {
	case resp.StatusCode >= 500:
		return true
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return true
	}
	return false
}

// wait sleeps before retry n, honoring a shorter Retry-After from the
// previous response.
func (t *retryTransport) wait(ctx context.Context, n int, prev *http.Response) error {
	delay := t.delay(n)
	if prev != nil {
		if after := retryAfter(prev.Header.Get("Retry-After")); after > 0 && after < delay {
			delay = after
		}
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// delay is backoff * 2^(n-1), capped at maxBackoff, plus up to 20% jitter.
func (t *retryTransport) delay(n int) time.Duration {
	d := float64(t.backoff) * math.Pow(2, float64(n-1))
	if d > float64(t.maxBackoff) {
		d = float64(t.maxBackoff)
	}
	return time.Duration(d + rand.Float64()*d*0.2)
}

func idempotent(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func retryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, transient := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network is unreachable",
		"temporary failure in name resolution",
		"eof",
	} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or invalid.
func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(header); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
