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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/omcli/internal/action/builtin"
	"github.com/tombee/omcli/internal/action/shell"
	"github.com/tombee/omcli/internal/api"
	"github.com/tombee/omcli/internal/cli/format"
	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/internal/commands/shared"
	"github.com/tombee/omcli/internal/config"
	"github.com/tombee/omcli/internal/menu"
	"github.com/tombee/omcli/internal/tracing"
	"github.com/tombee/omcli/pkg/httpclient"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

const shutdownTimeout = 5 * time.Second

// run loads the custom directory and runs either the operation named by
// -o or the interactive menu.
func run(cmd *cobra.Command, settings *config.Settings, logger *slog.Logger, opts runOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	params, err := ParseArgs(args, logger)
	if err != nil {
		return err
	}

	v, _, _ := shared.GetVersion()
	provider, err := tracing.NewProvider(tracing.Config{File: settings.Trace.File, ServiceName: "omcli", ServiceVersion: v})
	if err != nil {
		return shared.NewConfigError("", err)
	}
	metrics := tracing.NewMetrics()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := provider.Shutdown(sctx); serr != nil {
			logger.Warn("failed to flush traces", slog.Any("error", serr))
		}
		if settings.Metrics.File != "" {
			if merr := metrics.WriteFile(settings.Metrics.File); merr != nil {
				logger.Warn("failed to write metrics", slog.String("path", settings.Metrics.File), slog.Any("error", merr))
			}
		}
	}()

	p, closePrompter, err := newPrompter(cmd, settings)
	if err != nil {
		return shared.NewExecutionError("failed to open the terminal", err)
	}
	defer closePrompter()

	custom, err := config.LoadCustom(settings, builtin.Options{
		Shell: shell.New(&shell.Config{Stdin: cmd.InOrStdin()}),
	}, logger)
	if err != nil {
		return shared.NewConfigError("", err)
	}

	if opts.generate {
		if err := generateTree(out, custom.Tree, settings.WorkspaceRoot(), logger); err != nil {
			return shared.NewConfigError("", err)
		}
	}

	hcfg := httpclient.DefaultConfig()
	hcfg.RetryAttempts = settings.HTTP.RetryAttempts
	hcfg.UserAgent = settings.HTTP.UserAgent
	hcfg.Logger = logger
	hc, err := httpclient.New(hcfg)
	if err != nil {
		return shared.NewConfigError("invalid HTTP settings", err)
	}
	adapter, err := api.NewAdapter(custom.Catalog, hc, api.WithMocks(custom.Mocks), api.WithLogger(logger))
	if err != nil {
		return shared.NewConfigError("", err)
	}

	exec := operation.NewExecutor(custom.Registry, adapter, p).
		WithLogger(logger).
		WithOutput(out).
		WithTracer(provider.Tracer()).
		WithRecorder(metrics).
		WithCommand(operation.CommandConfig{
			Prefix:     settings.CommandPrefix,
			CustomPath: settings.CustomPath,
			TreePath:   settings.TreePath,
			MockPath:   settings.MockPath,
		})

	if opts.operation != "" {
		return runOperation(ctx, exec, custom.Tree, opts, params)
	}

	m := menu.New(custom.Tree, newChooser(p, out), func(ctx context.Context, op *operation.Operation) error {
		_, err := exec.Run(ctx, op, params, opts.skipLooping)
		if errors.Is(err, operation.ErrAborted) {
			return nil
		}
		return err
	}).WithOutput(out).WithLogger(logger)
	return m.Run(ctx)
}

func runOperation(ctx context.Context, exec *operation.Executor, tree *operation.Tree, opts runOptions, params *parameter.Set) error {
	op, ok := tree.Find(opts.operation)
	if !ok {
		return shared.NewInvalidArgumentsError(
			fmt.Sprintf("The operation %s was not found in the operation tree.", opts.operation), nil)
	}
	verified, err := VerifyArgs(op, params)
	if err != nil {
		return err
	}
	if _, err := exec.Run(ctx, op, verified, opts.skipLooping); err != nil {
		return shared.NewExecutionError("", err)
	}
	return nil
}

func generateTree(out io.Writer, tree *operation.Tree, workspace string, logger *slog.Logger) error {
	gen, err := config.Generate(tree, config.GeneratedTreeFile, workspace)
	if err != nil {
		return err
	}
	if gen.Identical() {
		fmt.Fprintln(out, shared.RenderOK("The generated OMTree in "+gen.Path+" matches the loaded OMTree."))
		return nil
	}
	fmt.Fprintln(out, shared.RenderWarn("The generated OMTree in "+gen.Path+" differs from the loaded OMTree."))
	logger.Debug("generated tree difference", slog.String("diff", gen.Diff))
	return nil
}

// newPrompter returns the prompter selected by prompt.style and a func
// that releases it.
func newPrompter(cmd *cobra.Command, s *config.Settings) (prompt.Prompter, func(), error) {
	if s.Prompt.Style == config.PromptStyleSurvey {
		return prompt.NewSurveyPrompter(!shared.IsNonInteractive()), func() {}, nil
	}
	var cfg prompt.LineConfig
	if in := cmd.InOrStdin(); in != os.Stdin {
		cfg.Stdin = in
	}
	if o := cmd.OutOrStdout(); o != os.Stdout {
		cfg.Stdout = o
	}
	if e := cmd.ErrOrStderr(); e != os.Stderr {
		cfg.Stderr = e
	}
	lp, err := prompt.NewLinePrompter(cfg)
	if err != nil {
		return nil, nil, err
	}
	return lp, func() { _ = lp.Close() }, nil
}

func newChooser(p prompt.Prompter, out io.Writer) menu.Chooser {
	if p.IsInteractive() && format.IsTTY(out) {
		return menu.NewFormChooser()
	}
	return menu.NewLineChooser(p, out)
}
