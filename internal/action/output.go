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

package action

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/omcli/internal/cli/format"
)

var (
	InfoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	CellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
)

// PrintInfo writes text to w in the info style, surrounded by blank lines.
func PrintInfo(w io.Writer, text string) {
	fmt.Fprintln(w, InfoStyle.Render("\n"+text+"\n"))
}

// PrintJSON pretty-prints a JSON document to w. It returns an error when
// content is not JSON.
func PrintJSON(w io.Writer, content string) error {
	out, err := format.JSON(content, format.IsTTY(w))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

// Stringify renders strings as-is and everything else as JSON.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
