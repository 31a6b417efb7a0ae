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
	"net/url"
	"strings"
)

const redacted = "[REDACTED]"

// sensitiveParams are matched as substrings of the lowercased name.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"passwd",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
}

// SanitizeURL renders u with credential-like query values and the user
// info password replaced.
func SanitizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	safe := *u
	if _, ok := u.User.Password(); ok {
		safe.User = url.UserPassword(u.User.Username(), redacted)
	}
	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if isSensitiveParam(name) {
				q.Set(name, redacted)
			}
		}
		safe.RawQuery = q.Encode()
	}
	return safe.String()
}

// SanitizeRawURL is SanitizeURL for unparsed URLs. Unparsable input is
// returned without its query string.
func SanitizeRawURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '?'); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	return SanitizeURL(u)
}

func isSensitiveParam(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveParams {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
