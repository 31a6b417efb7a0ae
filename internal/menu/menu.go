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

// Package menu presents an operation tree as nested menus and runs the
// chosen leaf operations.
package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/pkg/operation"
)

// Reserved menu keys.
const (
	KeyHelp = "0"
	KeyExit = "q"
	KeyBack = "b"
)

var (
	submenuStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	toggleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Kind tells what selecting an item does.
type Kind int

const (
	// KindRun runs a leaf operation.
	KindRun Kind = iota
	// KindSubmenu opens the children of a branch operation.
	KindSubmenu
	// KindEmpty is an operation with neither actions nor children.
	KindEmpty
	// KindHelp toggles the help text.
	KindHelp
	// KindExit leaves the menu.
	KindExit
)

// Item is one entry of a page.
type Item struct {
	Key       string
	Label     string
	Kind      Kind
	Operation *operation.Operation
}

// Page is one menu level as shown to the operator.
type Page struct {
	Title    string
	Subtitle string
	Items    []Item
	// Help is shown when ShowHelp is set.
	Help     string
	ShowHelp bool
}

// Chooser shows a page and returns the key of the chosen item.
// prompt.ErrAborted leaves the page.
type Chooser interface {
	Choose(ctx context.Context, page *Page) (string, error)
}

// RunFunc runs a leaf operation chosen from the menu.
type RunFunc func(ctx context.Context, op *operation.Operation) error

// Menu walks an operation tree.
type Menu struct {
	tree    *operation.Tree
	chooser Chooser
	run     RunFunc
	out     io.Writer
	logger  *slog.Logger
	styles  *HelpStyles
}

// New returns a menu over tree. Chosen leaf operations are passed to run.
func New(tree *operation.Tree, chooser Chooser, run RunFunc) *Menu {
	return &Menu{
		tree:    tree,
		chooser: chooser,
		run:     run,
		out:     io.Discard,
		logger:  slog.New(slog.DiscardHandler),
	}
}

// WithOutput sets where notices are written.
func (m *Menu) WithOutput(w io.Writer) *Menu {
	if w != nil {
		m.out = w
	}
	return m
}

// WithLogger sets the logger.
func (m *Menu) WithLogger(logger *slog.Logger) *Menu {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithStyles colors the help text.
func (m *Menu) WithStyles(s *HelpStyles) *Menu {
	m.styles = s
	return m
}

// Run shows the root menu until the operator exits.
func (m *Menu) Run(ctx context.Context) error {
	return m.show(ctx, m.tree.Operations, m.tree.Name, m.tree.Description, true)
}

func (m *Menu) show(ctx context.Context, ops []*operation.Operation, title, subtitle string, main bool) error {
	page := m.page(ops, title, subtitle, main)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, err := m.chooser.Choose(ctx, page)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		item, ok := page.find(key)
		if !ok {
			fmt.Fprintf(m.out, "Invalid choice: %s\n", key)
			continue
		}

		switch item.Kind {
		case KindExit:
			return nil
		case KindHelp:
			page.ShowHelp = !page.ShowHelp
		case KindSubmenu:
			if err := m.show(ctx, item.Operation.Children, item.Operation.MenuTitle, "", false); err != nil {
				return err
			}
		case KindEmpty:
			m.logger.Warn("The operation has no actions or children", slog.String("operation", item.Operation.ID))
		case KindRun:
			if err := m.run(ctx, item.Operation); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Error("Operation failed",
					slog.String("operation", item.Operation.ID),
					slog.Any("error", err))
			}
		}
	}
}

func (m *Menu) page(ops []*operation.Operation, title, subtitle string, main bool) *Page {
	p := &Page{Title: title, Subtitle: subtitle, Help: HelpText(ops, m.styles)}
	for i, op := range ops {
		item := Item{Key: strconv.Itoa(i + 1), Operation: op}
		switch {
		case !op.IsLeaf():
			item.Kind, item.Label = KindSubmenu, submenuStyle.Render(op.MenuTitle)
		case len(op.Actions) > 0:
			item.Kind, item.Label = KindRun, actionStyle.Render(op.MenuTitle)
		default:
			item.Kind, item.Label = KindEmpty, missingStyle.Render(op.MenuTitle)
		}
		p.Items = append(p.Items, item)
	}
	p.Items = append(p.Items, Item{Key: KeyHelp, Label: toggleStyle.Render("Toggle help text"), Kind: KindHelp})
	if main {
		p.Items = append(p.Items, Item{Key: KeyExit, Label: "Exit", Kind: KindExit})
	} else {
		p.Items = append(p.Items, Item{Key: KeyBack, Label: "Back", Kind: KindExit})
	}
	return p
}

func (p *Page) find(key string) (Item, bool) {
	for _, it := range p.Items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}
