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

package jq

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FromJSONPath translates a JSON-path expression into an equivalent jq
// program. Supported syntax: optional leading "$", dotted field names,
// ".*" and "[*]" wildcards, "[n]" indexes, quoted keys in brackets, and
// ".." recursive descent. A step that does not apply to the data yields no
// output rather than an error: fields select only keys an object has and
// indexes select only elements an array has, so a present null is still
// a match while a missing key is not.
func FromJSONPath(path string) (string, error) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")

	var steps []string
	for i := 0; i < len(p); {
		switch {
		case strings.HasPrefix(p[i:], ".."):
			i += 2
			steps = append(steps, "..")
			name, n := readName(p[i:])
			i += n
			if name != "" {
				steps = append(steps, fieldStep(name))
			}
		case p[i] == '.':
			i++
			name, n := readName(p[i:])
			i += n
			if name != "" {
				steps = append(steps, fieldStep(name))
			}
		case p[i] == '[':
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("unterminated bracket in path %q", path)
			}
			step, err := bracketStep(strings.TrimSpace(p[i+1 : i+end]))
			if err != nil {
				return "", fmt.Errorf("invalid path %q: %w", path, err)
			}
			steps = append(steps, step)
			i += end + 1
		default:
			name, n := readName(p[i:])
			if n == 0 {
				return "", fmt.Errorf("unexpected character %q in path %q", p[i], path)
			}
			i += n
			steps = append(steps, fieldStep(name))
		}
	}

	if len(steps) == 0 {
		return ".", nil
	}
	return strings.Join(steps, " | "), nil
}

func readName(s string) (string, int) {
	n := 0
	for n < len(s) && s[n] != '.' && s[n] != '[' {
		n++
	}
	return strings.TrimSpace(s[:n]), n
}

func fieldStep(name string) string {
	if name == "*" {
		return ".[]?"
	}
	return keyStep(name)
}

func keyStep(name string) string {
	key := quote(name)
	return fmt.Sprintf(`(if type == "object" and has(%s) then .[%s] else empty end)`, key, key)
}

func bracketStep(inner string) (string, error) {
	switch {
	case inner == "*" || inner == "":
		return ".[]?", nil
	case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
		return keyStep(inner[1 : len(inner)-1]), nil
	}
	idx := strings.TrimPrefix(inner, "-")
	if idx == "" || strings.Trim(idx, "0123456789") != "" {
		return "", fmt.Errorf("unsupported bracket expression [%s]", inner)
	}
	// Strings are indexable in gojq; JSON path only indexes arrays.
	bound := fmt.Sprintf("length > %s", idx)
	if idx != inner {
		bound = fmt.Sprintf("length >= %s", idx)
	}
	return fmt.Sprintf(`(if type == "array" and %s then .[%s] else empty end)`, bound, inner), nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
