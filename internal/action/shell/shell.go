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

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "shell"

// Pack returns the shell action pack backed by r.
func Pack(r *Runner) action.Pack {
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "perform_bash_command", Func: r.PerformCommand, Parameters: map[string]action.ParameterSpec{
			"command":      action.In(parameter.TypeString),
			"use_shell":    action.In(parameter.TypeBoolean),
			"use_check":    action.In(parameter.TypeBoolean),
			"print_output": action.In(parameter.TypeBoolean),
		}},
	}}
}

// PerformCommand runs command. Without print_output the command writes
// straight to the terminal; with it, the captured stdout and stderr are
// printed once it exits. With use_check (the default) a non-zero exit
// status fails the action.
func (r *Runner) PerformCommand(ctx context.Context, call *operation.Call) *operation.Result {
	line, err := action.Require(call, "command")
	if err != nil {
		return action.Failf("An unexpected error occurred while executing the command: No command found")
	}
	printOutput := parameter.IsTrue(call.ValueOr("print_output", "false"))
	c := Command{
		Line:     line,
		UseShell: parameter.IsTrue(call.ValueOr("use_shell", "false")),
		Check:    parameter.IsTrue(call.ValueOr("use_check", "true")),
	}
	if !printOutput {
		c.Stream = call.Out
	}

	call.Logger.Debug("Executing a command", "command", line, "use_shell", c.UseShell)
	out, err := r.Run(ctx, c)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return action.Failf("Failed to execute the command: %v", err)
	}
	if err != nil {
		return action.Failf("An unexpected error occurred while executing the command: %v", err)
	}
	if printOutput {
		fmt.Fprintln(call.Out, "stdout:", out.Stdout+"\n")
		fmt.Fprintln(call.Out, "stderr:", out.Stderr+"\n")
	}
	return operation.Succeeded("Executed the command: " + line)
}
