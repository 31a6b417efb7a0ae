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

// Package httpclient builds the *http.Client used for API request actions.
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
// The client layers two transports over a pooled *http.Transport:
//
//   - a logging transport that sets the User-Agent, forwards the run id of
//     the request context as X-Correlation-ID and logs method, sanitized
//     URL, status and duration
//   - a retry transport, only when RetryAttempts > 0, that retries 5xx,
//     408 and 429 responses and transient network errors with exponential
//     backoff and jitter
//
// Only GET, HEAD and OPTIONS are retried unless AllowNonIdempotentRetry is
// set. Query parameters that look like credentials are redacted from logs.
package httpclient
