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

package operation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/pkg/parameter"
)

// MaxInputAttempts bounds the prompts for a single parameter value.
const MaxInputAttempts = 20

// ReservedOperationID is the name of the parameter seeded with the id of
// the running operation.
const ReservedOperationID = "operation_id"

var errTooManyAttempts = errors.New("Infinite loop detected while processing the parameters")

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Processor resolves the declared parameters of an action.
//
// For every parameter the value is taken from the first source that has
// one: the command line arguments, the accumulated scope, the preset value.
// Output slots are left empty. Anything else is prompted for. Non-stick
// parameters ignore both scopes when the action runs again, except that
// arguments still apply while loops are skipped.
type Processor struct {
	prompter prompt.Prompter
	out      io.Writer
	logger   *slog.Logger
	resolver *parameter.Resolver
}

// NewProcessor returns a Processor prompting through p and writing
// validation messages to out.
func NewProcessor(p prompt.Prompter, out io.Writer, logger *slog.Logger) *Processor {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{
		prompter: p,
		out:      out,
		logger:   logger,
		resolver: parameter.NewResolver(logger),
	}
}

// Process fills in the values of declared in place. On success the result
// carries declared. A user abort yields the AbortedText result.
func (p *Processor) Process(ctx context.Context, declared, args, accumulated *parameter.Set, isRepeated, skipLooping bool, actionIndex int) *Result {
	for _, param := range declared.Items() {
		if param.Name == ReservedOperationID {
			continue
		}
		if _, ok := param.ActionIndex(); !ok {
			param.SetActionIndex(actionIndex)
		}

		preview := p.resolver.Resolve(param, declared, args, accumulated)
		inputName := param.Name
		if preview.CustomInputName != "" {
			inputName = preview.CustomInputName
			p.logger.Debug("parameter has a custom input name",
				slog.String("parameter", param.Name),
				slog.String("input_name", inputName))
		}

		if p.fromScopes(param, inputName, args, accumulated, actionIndex, isRepeated, skipLooping) {
			continue
		}
		if preview.PresetValue != nil {
			param.SetValue(*preview.PresetValue)
			p.logger.Debug("using preset value", slog.String("parameter", inputName))
			continue
		}
		if param.OverrideOutputParameterName {
			p.logger.Debug("parameter is an output slot",
				slog.String("parameter", param.Name),
				slog.String("overrides", param.OverrideParameterName))
			continue
		}

		value, err := p.ask(ctx, param, preview)
		if err != nil {
			if prompt.IsAborted(err) {
				return Aborted()
			}
			return Failed(fmt.Sprintf("An error occurred while processing the parameters: %v", err))
		}
		param.SetValue(value)
	}
	return &Result{Success: true, Parameters: declared}
}

func (p *Processor) fromScopes(param *parameter.Parameter, inputName string, args, accumulated *parameter.Set, actionIndex int, isRepeated, skipLooping bool) bool {
	fresh := !param.NonStick || !isRepeated
	if args.HasItems() && (skipLooping || fresh) && p.inject(param, inputName, args, actionIndex, "argument") {
		return true
	}
	if !fresh {
		p.logger.Debug("non-stick parameter is not filled from previous input",
			slog.String("parameter", inputName))
		return false
	}
	return accumulated.HasItems() && p.inject(param, inputName, accumulated, actionIndex, "accumulated")
}

func (p *Processor) inject(param *parameter.Parameter, inputName string, scope *parameter.Set, actionIndex int, source string) bool {
	found, ok := scope.Get(inputName, actionIndex)
	if !ok {
		return false
	}
	if found.Value == nil {
		param.Value = nil
	} else {
		param.SetValue(*found.Value)
	}
	if found.CommandParameter {
		param.CommandParameter = true
	}
	p.logger.Debug("injected parameter value",
		slog.String("parameter", inputName),
		slog.String("source", source))
	return true
}

func (p *Processor) ask(ctx context.Context, param, preview *parameter.Parameter) (string, error) {
	if p.prompter == nil {
		return "", fmt.Errorf("no value for %s and no prompter available", param.Name)
	}
	message := promptText(preview)
	def := ""
	if preview.DefaultValue != nil {
		def = *preview.DefaultValue
	}
	for range MaxInputAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		input, err := p.prompter.Input(ctx, message)
		if err != nil {
			return "", err
		}
		if input == "" {
			input = def
		}
		fmt.Fprintln(p.out)
		value, err := parameter.Validate(param.Name, input, param.Type)
		if err == nil {
			return value, nil
		}
		fmt.Fprintln(p.out, errorStyle.Render(err.Error()))
		p.logger.Warn("invalid input for parameter",
			slog.String("parameter", param.Name),
			slog.String("error", err.Error()))
	}
	return "", errTooManyAttempts
}

func promptText(preview *parameter.Parameter) string {
	text := preview.CustomText
	if text == "" {
		text = "Please enter " + preview.Name
	}
	parts := []string{text, "[" + preview.Type.String() + "]"}
	if preview.DefaultValue != nil && *preview.DefaultValue != "" {
		parts = append(parts, "(default: "+defaultStyle.Render(*preview.DefaultValue)+")")
	}
	return promptStyle.Render(strings.Join(parts, " ")) + ": "
}
