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

package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// CommandPack is a declarative action pack. Every action renders its
// {param} placeholders into a command line and runs it.
type CommandPack struct {
	Name    string                 `yaml:"name" json:"name"`
	Actions map[string]CommandSpec `yaml:"actions" json:"actions"`
}

// CommandSpec declares one command action.
type CommandSpec struct {
	Command  string `yaml:"command" json:"command"`
	UseShell bool   `yaml:"use_shell" json:"use_shell"`
	// UseCheck defaults to true.
	UseCheck *bool `yaml:"use_check,omitempty" json:"use_check,omitempty"`
	// OutputParameter receives the trimmed stdout when set.
	OutputParameter string                          `yaml:"output_parameter" json:"output_parameter"`
	Parameters      map[string]action.ParameterSpec `yaml:"parameters" json:"parameters"`
}

// ParseCommandPack decodes a YAML or JSON command pack.
func ParseCommandPack(data []byte) (*CommandPack, error) {
	var cp CommandPack
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse command pack: %w", err)
	}
	if cp.Name == "" {
		return nil, errors.New("command pack has no name")
	}
	for name, spec := range cp.Actions {
		if strings.TrimSpace(spec.Command) == "" {
			return nil, fmt.Errorf("command pack %s: action %s has no command", cp.Name, name)
		}
		for pname, ps := range spec.Parameters {
			if ps.Type == parameter.TypeUndefined {
				ps.Type = parameter.TypeString
				spec.Parameters[pname] = ps
			}
		}
		if spec.OutputParameter != "" {
			if spec.Parameters == nil {
				spec.Parameters = map[string]action.ParameterSpec{}
			}
			if _, declared := spec.Parameters[spec.OutputParameter]; !declared {
				spec.Parameters[spec.OutputParameter] = action.Out(parameter.TypeString)
			}
			cp.Actions[name] = spec
		}
	}
	return &cp, nil
}

// Pack turns cp into an action pack run by r. Actions are ordered by name.
func (cp *CommandPack) Pack(r *Runner) action.Pack {
	names := make([]string, 0, len(cp.Actions))
	for name := range cp.Actions {
		names = append(names, name)
	}
	sort.Strings(names)

	p := action.Pack{Name: cp.Name}
	for _, name := range names {
		spec := cp.Actions[name]
		p.Actions = append(p.Actions, action.Definition{
			Name:       name,
			Parameters: spec.Parameters,
			Func:       r.commandAction(name, spec),
		})
	}
	return p
}

func (r *Runner) commandAction(name string, spec CommandSpec) operation.ActionFunc {
	return func(ctx context.Context, call *operation.Call) *operation.Result {
		c, err := spec.render(call)
		if err != nil {
			return action.Failf("An unexpected error occurred while executing the command %s: %v", name, err)
		}
		if spec.OutputParameter == "" {
			c.Stream = call.Out
		}
		call.Logger.Debug("Executing a pack command", "action", name, "command", c.display())

		out, err := r.Run(ctx, c)
		if err != nil {
			return action.Failf("Failed to execute the command %s: %v", name, err)
		}
		if spec.OutputParameter == "" {
			return operation.Succeeded("Executed the command: " + c.display())
		}
		return operation.Succeeded("Executed the command: "+c.display(),
			call.Output(spec.OutputParameter, parameter.TypeString, strings.TrimRight(out.Stdout, "\r\n")))
	}
}

// render substitutes the values of the input parameters. Without a shell
// the command is split first so a value always stays one argument.
func (spec CommandSpec) render(call *operation.Call) (Command, error) {
	pairs := make([]string, 0, 2*len(spec.Parameters))
	for pname, ps := range spec.Parameters {
		if ps.Direction != action.Input {
			continue
		}
		if v, ok := call.Value(pname); ok {
			pairs = append(pairs, "{"+pname+"}", v)
		}
	}
	replacer := strings.NewReplacer(pairs...)
	c := Command{UseShell: spec.UseShell, Check: spec.UseCheck == nil || *spec.UseCheck}
	if spec.UseShell {
		c.Line = replacer.Replace(spec.Command)
		return c, nil
	}
	words, err := shellquote.Split(spec.Command)
	if err != nil {
		return c, fmt.Errorf("failed to split the command: %w", err)
	}
	if len(words) == 0 {
		return c, errors.New("No command found")
	}
	for i, w := range words {
		words[i] = replacer.Replace(w)
	}
	c.Args = words
	return c, nil
}
