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
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

func newCall(params ...*parameter.Parameter) (*operation.Call, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &operation.Call{
		Params: parameter.NewSet(params...),
		Out:    out,
		Logger: slog.New(slog.DiscardHandler),
	}, out
}

func p(name, value string) *parameter.Parameter {
	return parameter.New(name, parameter.TypeString, value)
}

func TestNew(t *testing.T) {
	r := New(nil)
	assert.Equal(t, "sh", r.config.Shell)
	assert.Zero(t, r.config.Timeout)

	r = New(&Config{Timeout: 10 * time.Second, Shell: "bash"})
	assert.Equal(t, "bash", r.config.Shell)
}

func TestRun(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	t.Run("split words", func(t *testing.T) {
		out, err := r.Run(ctx, Command{Line: `echo "hello world"`})
		require.NoError(t, err)
		assert.Equal(t, "hello world\n", out.Stdout)
	})

	t.Run("shell", func(t *testing.T) {
		out, err := r.Run(ctx, Command{Line: "echo one; echo two >&2", UseShell: true})
		require.NoError(t, err)
		assert.Equal(t, "one\n", out.Stdout)
		assert.Equal(t, "two\n", out.Stderr)
	})

	t.Run("checked failure", func(t *testing.T) {
		out, err := r.Run(ctx, Command{Line: "exit 3", UseShell: true, Check: true})
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.Code)
		assert.Equal(t, 3, out.ExitCode)
		assert.EqualError(t, err, "Command 'exit 3' returned non-zero exit status 3.")
	})

	t.Run("unchecked failure", func(t *testing.T) {
		out, err := r.Run(ctx, Command{Line: "exit 2", UseShell: true})
		require.NoError(t, err)
		assert.Equal(t, 2, out.ExitCode)
	})

	t.Run("stream", func(t *testing.T) {
		var buf bytes.Buffer
		out, err := r.Run(ctx, Command{Args: []string{"echo", "streamed"}, Stream: &buf})
		require.NoError(t, err)
		assert.Equal(t, "streamed\n", buf.String())
		assert.Equal(t, "streamed\n", out.Stdout)
	})

	t.Run("env", func(t *testing.T) {
		out, err := r.Run(ctx, Command{Line: "echo $OMCLI_TEST_VALUE", UseShell: true, Env: map[string]string{"OMCLI_TEST_VALUE": "set"}})
		require.NoError(t, err)
		assert.Equal(t, "set\n", out.Stdout)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := r.Run(ctx, Command{Line: "  "})
		assert.EqualError(t, err, "No command found")
		_, err = r.Run(ctx, Command{Line: `echo "open`})
		assert.Error(t, err)
		_, err = r.Run(ctx, Command{Line: "surely-not-a-command-omcli"})
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		r := New(&Config{Timeout: 50 * time.Millisecond})
		_, err := r.Run(ctx, Command{Line: "sleep 5", Check: true})
		assert.Error(t, err)
	})
}

func TestPerformCommand(t *testing.T) {
	r := New(nil)
	ctx := context.Background()

	t.Run("streams by default", func(t *testing.T) {
		call, out := newCall(p("command", "echo hi"))
		res := r.PerformCommand(ctx, call)
		require.True(t, res.Success, res.Text)
		assert.Equal(t, "Executed the command: echo hi", res.Text)
		assert.Equal(t, "hi\n", out.String())
	})

	t.Run("print output", func(t *testing.T) {
		call, out := newCall(p("command", "echo hi"), p("print_output", "true"))
		require.True(t, r.PerformCommand(ctx, call).Success)
		assert.Contains(t, out.String(), "stdout: hi\n")
		assert.Contains(t, out.String(), "stderr: ")
	})

	t.Run("check", func(t *testing.T) {
		call, _ := newCall(p("command", "exit 1"), p("use_shell", "true"))
		res := r.PerformCommand(ctx, call)
		assert.False(t, res.Success)
		assert.Contains(t, res.Text, "Failed to execute the command: Command 'exit 1' returned non-zero exit status 1.")

		call, _ = newCall(p("command", "exit 1"), p("use_shell", "true"), p("use_check", "false"))
		assert.True(t, r.PerformCommand(ctx, call).Success)
	})

	t.Run("no command", func(t *testing.T) {
		call, _ := newCall()
		res := r.PerformCommand(ctx, call)
		assert.Equal(t, "An unexpected error occurred while executing the command: No command found", res.Text)
	})
}

const packYAML = `
name: greetings
actions:
  greet:
    command: echo "hello {who}"
    output_parameter: greeting
    parameters:
      who:
        direction: input
        type: STRING
  shout:
    command: echo {word} | tr a-z A-Z
    use_shell: true
    parameters:
      word:
        direction: input
`

func TestCommandPack(t *testing.T) {
	cp, err := ParseCommandPack([]byte(packYAML))
	require.NoError(t, err)
	assert.Equal(t, parameter.TypeString, cp.Actions["shout"].Parameters["word"].Type)
	assert.Equal(t, action.Out(parameter.TypeString), cp.Actions["greet"].Parameters["greeting"])

	reg := action.NewRegistry()
	require.NoError(t, reg.Register(cp.Pack(New(nil))))
	assert.Equal(t, []string{"greet", "shout"}, reg.Names())

	greet, ok := reg.Lookup("greet")
	require.True(t, ok)
	call, _ := newCall(p("who", "big world"))
	res := greet(context.Background(), call)
	require.True(t, res.Success, res.Text)
	out, ok := res.Parameters.Find("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello big world", out.StringValue())

	shout, _ := reg.Lookup("shout")
	call, buf := newCall(p("word", "loud"))
	require.True(t, shout(context.Background(), call).Success)
	assert.Equal(t, "LOUD\n", buf.String())
}

func TestParseCommandPackErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"no name":    "actions: {}",
		"no command": "name: x\nactions:\n  a: {}\n",
		"invalid":    "name: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCommandPack([]byte(doc))
			assert.Error(t, err)
		})
	}
}
