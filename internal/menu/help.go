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
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// AbortHint closes every help text.
const AbortHint = "You can at any time during an Operation use Ctrl+D to abort and return to the main menu."

// HelpStyles colors the parts of a help text.
type HelpStyles struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Text      lipgloss.Style
	Action    lipgloss.Style
	Parameter lipgloss.Style
	Footer    lipgloss.Style
}

// DefaultHelpStyles returns the terminal colors of the help text.
func DefaultHelpStyles() *HelpStyles {
	return &HelpStyles{
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		Title:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("136")),
		Action:    lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		Parameter: lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

type painter struct {
	styles *HelpStyles
}

// paint renders single-line text only; lipgloss pads multi-line blocks.
func (p painter) paint(pick func(*HelpStyles) lipgloss.Style, s string) string {
	if p.styles == nil || s == "" {
		return s
	}
	return pick(p.styles).Render(s)
}

// HelpText describes ops and the parameters of their actions. A nil
// styles renders plain text.
func HelpText(ops []*operation.Operation, styles *HelpStyles) string {
	p := painter{styles: styles}
	var b strings.Builder
	b.WriteString(p.paint(pickHeader, "HELP TEXT"))
	for _, op := range ops {
		if op.HelpText == "" {
			continue
		}
		b.WriteString("\n.\n")
		b.WriteString(p.paint(pickTitle, op.MenuTitle))
		b.WriteString(" - ")
		b.WriteString(p.paint(pickText, op.HelpText))
		b.WriteString(parameterHelp(op, p))
	}
	b.WriteString("\n.\n")
	b.WriteString(p.paint(pickFooter, AbortHint))
	return b.String()
}

const (
	noParameters      = "\n--No required parameters."
	withParameters    = "\n--Actions with required parameters:"
	commandParamNote  = " - Is Command Parameter"
	nonStickParamNote = " - Is Non-stick"
)

func parameterHelp(op *operation.Operation, p painter) string {
	var b strings.Builder
	for _, a := range op.Actions {
		var lines []string
		for _, pr := range a.Parameters.Items() {
			if pr.Type == parameter.TypeUndefined {
				continue
			}
			line := " * " + pr.Name + " (" + pr.Type.String() + ")"
			if pr.CommandParameter {
				line += commandParamNote
			}
			if pr.NonStick {
				line += nonStickParamNote
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(p.paint(pickAction, " -"+a.Name+":"))
		for _, line := range lines {
			b.WriteString("\n")
			b.WriteString(p.paint(pickParameter, line))
		}
	}
	if b.Len() == 0 {
		return noParameters
	}
	return withParameters + b.String()
}

func pickHeader(s *HelpStyles) lipgloss.Style    { return s.Header }
func pickTitle(s *HelpStyles) lipgloss.Style     { return s.Title }
func pickText(s *HelpStyles) lipgloss.Style      { return s.Text }
func pickAction(s *HelpStyles) lipgloss.Style    { return s.Action }
func pickParameter(s *HelpStyles) lipgloss.Style { return s.Parameter }
func pickFooter(s *HelpStyles) lipgloss.Style    { return s.Footer }
