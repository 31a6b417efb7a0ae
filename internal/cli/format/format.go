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

// Package format renders JSON and markdown for terminal output.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

const (
	maxJSONSize     = 10 * 1024 * 1024
	maxMarkdownSize = 5 * 1024 * 1024
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape sequences from s.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

func enforceSize(content, kind string, limit int) error {
	if len(content) > limit {
		return fmt.Errorf("output size (%d bytes) exceeds maximum for %s format (%d bytes)", len(content), kind, limit)
	}
	return nil
}

// Markdown renders content with glamour when color is true and returns it
// unchanged otherwise or when rendering fails.
func Markdown(content string, color bool) (string, error) {
	if err := enforceSize(content, "markdown", maxMarkdownSize); err != nil {
		return "", err
	}
	if !color {
		return content, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content, nil
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}
	return rendered, nil
}

// JSON pretty-prints content with 4-space indentation, highlighted when
// color is true.
func JSON(content string, color bool) (string, error) {
	if err := enforceSize(content, "json", maxJSONSize); err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(content), "", "    "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	if !color {
		return out.String(), nil
	}
	var highlighted bytes.Buffer
	if err := quick.Highlight(&highlighted, out.String(), "json", "terminal256", "monokai"); err != nil {
		return out.String(), nil
	}
	return highlighted.String(), nil
}

// JSONValue marshals v and formats it like JSON.
func JSONValue(v any, color bool) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return JSON(string(b), color)
}
