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
	"fmt"
	"log/slog"
	"time"
)

// Config configures New.
type Config struct {
	// Timeout bounds a whole request including the body read. Zero leaves
	// the deadline to the request context.
	Timeout time.Duration

	// RetryAttempts is the number of retries after the first try.
	RetryAttempts int
	// RetryBackoff is the delay before the first retry. Later retries
	// double it up to MaxBackoff.
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	// UserAgent is sent when a request has no User-Agent of its own.
	UserAgent string

	// AllowNonIdempotentRetry retries POST, PUT, PATCH and DELETE too.
	AllowNonIdempotentRetry bool

	// InsecureSkipVerify disables certificate verification.
	InsecureSkipVerify bool

	// Logger receives request logs. nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the settings used by omcli when nothing is
// configured.
func DefaultConfig() Config {
	return Config{
		RetryAttempts: 0,
		RetryBackoff:  200 * time.Millisecond,
		MaxBackoff:    10 * time.Second,
		UserAgent:     "omcli/dev",
	}
}

// Validate checks c.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts must be >= 0, got %d", c.RetryAttempts)
	}
	if c.RetryAttempts > 0 {
		if c.RetryBackoff <= 0 {
			return fmt.Errorf("retry_backoff must be > 0 when retry_attempts > 0, got %v", c.RetryBackoff)
		}
		if c.MaxBackoff < c.RetryBackoff {
			return fmt.Errorf("max_backoff (%v) must be >= retry_backoff (%v)", c.MaxBackoff, c.RetryBackoff)
		}
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}
	return nil
}
