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
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyPrompter implements Prompter using survey inputs.
type SurveyPrompter struct {
	interactive bool
	opts        []survey.AskOpt
}

// NewSurveyPrompter creates a survey-based prompter. opts are passed to
// every survey.AskOne call, which lets tests supply their own stdio.
func NewSurveyPrompter(interactive bool, opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{
		interactive: interactive,
		opts:        opts,
	}
}

// Input implements Prompter.
func (sp *SurveyPrompter) Input(ctx context.Context, message string) (string, error) {
	if !sp.interactive {
		return "", fmt.Errorf("cannot prompt in non-interactive mode")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var result string
	q := &survey.Input{
		Message: strings.TrimSuffix(strings.TrimRight(message, " "), ":"),
	}

	if err := survey.AskOne(q, &result, sp.opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	return result, nil
}

// IsInteractive implements Prompter.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}
