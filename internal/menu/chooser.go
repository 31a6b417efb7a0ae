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

package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/omcli/internal/cli/prompt"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))

// FormChooser shows each page as a huh select field.
type FormChooser struct {
	theme *huh.Theme
}

// NewFormChooser returns a FormChooser using the Charm theme.
func NewFormChooser() *FormChooser {
	return &FormChooser{theme: huh.ThemeCharm()}
}

// Choose implements Chooser.
func (c *FormChooser) Choose(ctx context.Context, page *Page) (string, error) {
	options := make([]huh.Option[string], 0, len(page.Items))
	for _, it := range page.Items {
		options = append(options, huh.NewOption(it.Key+"  "+it.Label, it.Key))
	}
	description := page.Subtitle
	if page.ShowHelp {
		description = strings.TrimSpace(description + "\n\n" + page.Help)
	}

	var key string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(page.Title).
				Description(description).
				Options(options...).
				Value(&key),
		),
	).WithTheme(c.theme)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", prompt.ErrAborted
		}
		return "", err
	}
	return key, nil
}

// LineChooser prints the page and reads the key from a prompter. It
// serves terminals without cursor control and scripted input.
type LineChooser struct {
	prompter prompt.Prompter
	out      io.Writer
}

// NewLineChooser returns a LineChooser writing pages to out.
func NewLineChooser(p prompt.Prompter, out io.Writer) *LineChooser {
	return &LineChooser{prompter: p, out: out}
}

// Choose implements Chooser.
func (c *LineChooser) Choose(ctx context.Context, page *Page) (string, error) {
	fmt.Fprint(c.out, RenderPage(page))
	key, err := c.prompter.Input(ctx, ">> ")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}

// RenderPage formats page as plain lines.
func RenderPage(page *Page) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(page.Title))
	b.WriteString("\n")
	if page.Subtitle != "" {
		b.WriteString(page.Subtitle)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for _, it := range page.Items {
		fmt.Fprintf(&b, "  %s - %s\n", it.Key, it.Label)
	}
	if page.ShowHelp {
		b.WriteString("\n")
		b.WriteString(page.Help)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
