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

// Package prompt reads operator input for the engine and the action packs.
//
// Every implementation maps end-of-input (Ctrl+D) and interrupts (Ctrl+C)
// to ErrAborted so callers can tell a deliberate abort from other failures.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrAborted is returned when the operator ends input at a prompt.
var ErrAborted = errors.New("input aborted")

// Prompter reads one line of input after showing message.
type Prompter interface {
	// Input shows message and returns the entered line without its
	// trailing newline.
	Input(ctx context.Context, message string) (string, error)

	// IsInteractive reports whether a person is on the other end.
	IsInteractive() bool
}

// IsAborted reports whether err signals an operator abort.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, io.EOF)
}

// YesNo asks message until the answer is "y" or "n" (case-insensitive).
// invalid is written to out after every other answer.
func YesNo(ctx context.Context, p Prompter, out io.Writer, message, invalid string) (bool, error) {
	for {
		answer, err := p.Input(ctx, message)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(out, invalid)
	}
}

// Acknowledge waits for the operator to press enter. It is a no-op for
// non-interactive prompters.
func Acknowledge(ctx context.Context, p Prompter) error {
	if !p.IsInteractive() {
		return nil
	}
	_, err := p.Input(ctx, "Press enter to continue")
	if IsAborted(err) {
		return nil
	}
	return err
}
