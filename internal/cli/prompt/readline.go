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

package prompt

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// LinePrompter reads input with readline, giving line editing when stdin
// is a terminal and plain line reads otherwise.
type LinePrompter struct {
	rl          *readline.Instance
	interactive bool
}

// LineConfig configures a LinePrompter. Nil streams default to the
// process stdio.
type LineConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(cfg LineConfig) (*LinePrompter, error) {
	interactive := false
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
		interactive = term.IsTerminal(int(os.Stdin.Fd()))
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	rl, err := readline.NewEx(&readline.Config{
		Stdin:                  io.NopCloser(cfg.Stdin),
		Stdout:                 cfg.Stdout,
		Stderr:                 cfg.Stderr,
		InterruptPrompt:        "^C",
		EOFPrompt:              "^D",
		DisableAutoSaveHistory: true,
		FuncIsTerminal:         func() bool { return interactive },
	})
	if err != nil {
		return nil, err
	}
	return &LinePrompter{rl: rl, interactive: interactive}, nil
}

// Input implements Prompter.
func (p *LinePrompter) Input(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Multi-line messages print everything but the last line as output so
	// that readline only redraws the final prompt line.
	if i := strings.LastIndex(message, "\n"); i >= 0 {
		_, _ = io.WriteString(p.rl.Stdout(), message[:i+1])
		message = message[i+1:]
	}
	p.rl.SetPrompt(message)

	line, err := p.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// IsInteractive implements Prompter.
func (p *LinePrompter) IsInteractive() bool {
	return p.interactive
}

// Close releases the terminal.
func (p *LinePrompter) Close() error {
	return p.rl.Close()
}
