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

// Package shell runs commands for the shell action pack and for
// declarative command packs.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// Config holds configuration for the Runner.
type Config struct {
	// WorkingDir is the working directory for commands (default: current)
	WorkingDir string

	// Timeout bounds every command. Zero means no limit.
	Timeout time.Duration

	// Shell runs commands with use_shell (default: sh)
	Shell string

	// Stdin is passed to commands that stream their output.
	Stdin io.Reader
}

// Command is a single command invocation.
type Command struct {
	// Line is the command text. It is split into words unless UseShell.
	Line string
	// Args, when set, is used as argv instead of splitting Line.
	Args []string

	UseShell bool
	// Check turns a non-zero exit status into an *ExitError.
	Check bool

	// Env is added to the inherited environment.
	Env map[string]string

	// Stream receives stdout and stderr as the command runs, in addition to
	// the captured Output.
	Stream io.Writer
}

// Output is what a finished command produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ExitError reports a checked command that exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("Command '%s' returned non-zero exit status %d.", e.Command, e.Code)
}

// Runner executes commands.
type Runner struct {
	config *Config
}

// New creates a Runner. A nil config uses the defaults.
func New(config *Config) *Runner {
	if config == nil {
		config = &Config{}
	}
	if config.Shell == "" {
		config.Shell = "sh"
	}
	return &Runner{config: config}
}

// Run executes c and waits for it to finish. The returned Output is
// non-nil whenever the process started.
func (r *Runner) Run(ctx context.Context, c Command) (*Output, error) {
	args, err := r.argv(c)
	if err != nil {
		return nil, err
	}
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = r.config.WorkingDir
	if len(c.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range c.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if c.Stream != nil {
		cmd.Stdout = io.MultiWriter(&stdout, c.Stream)
		cmd.Stderr = io.MultiWriter(&stderr, c.Stream)
		cmd.Stdin = r.config.Stdin
	}

	start := time.Now()
	err = cmd.Run()
	out := &Output{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("command did not finish: %w", ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, err
		}
		out.ExitCode = exitErr.ExitCode()
		if c.Check {
			return out, &ExitError{Command: c.display(), Code: out.ExitCode, Stderr: strings.TrimSpace(out.Stderr)}
		}
	}
	return out, nil
}

func (r *Runner) argv(c Command) ([]string, error) {
	switch {
	case len(c.Args) > 0:
		return c.Args, nil
	case strings.TrimSpace(c.Line) == "":
		return nil, errors.New("No command found")
	case c.UseShell:
		return []string{r.config.Shell, "-c", c.Line}, nil
	}
	args, err := shellquote.Split(c.Line)
	if err != nil {
		return nil, fmt.Errorf("failed to split the command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("No command found")
	}
	return args, nil
}

func (c Command) display() string {
	if len(c.Args) > 0 {
		return shellquote.Join(c.Args...)
	}
	return c.Line
}
