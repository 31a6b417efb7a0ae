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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tombee/omcli/internal/commands/shared"
	"github.com/tombee/omcli/internal/commands/validate"
	"github.com/tombee/omcli/internal/commands/version"
	"github.com/tombee/omcli/internal/config"
	"github.com/tombee/omcli/internal/log"
)

// Flag names. Each flag bound to a setting overrides it.
const (
	flagLogLevel      = "log-level"
	flagCustomPath    = "custom-path"
	flagTreePath      = "tree-path"
	flagMockResponses = "mock-responses"
	flagSettings      = "settings"
	flagGenerateTree  = "generate-tree"
	flagOperation     = "operation"
	flagSkipLooping   = "skip-looping"
)

var flagBindings = map[string]string{
	flagLogLevel:      config.KeyLogLevel,
	flagCustomPath:    config.KeyCustomPath,
	flagTreePath:      config.KeyTreePath,
	flagMockResponses: config.KeyMockPath,
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}

// runOptions are the flags of the root command itself.
type runOptions struct {
	generate    bool
	operation   string
	skipLooping bool
}

// NewRootCommand creates the omcli command tree.
func NewRootCommand() *cobra.Command {
	var (
		settingsFile string
		opts         runOptions
	)

	load := func(cmd *cobra.Command) (*config.Settings, *slog.Logger, error) {
		return loadSettings(cmd, settingsFile)
	}

	cmd := &cobra.Command{
		Use:   "omcli [flags] [name=value ...]",
		Short: "Run operations described by an operation tree",
		Long: `omcli presents the operations of an operation tree as an interactive
menu and runs them: API requests against the loaded API definitions and
calls into the action packs, with parameters taken from the command line,
from earlier actions or from prompts.

With -o the named operation runs once without the menu; every command
parameter of the operation must then be passed as name=value.`,
		Example: `  omcli -c ./custom
  omcli -c ./custom -m ./mocks.json
  omcli -s -c ./custom -o list_users page=2`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := load(cmd)
			if err != nil {
				return err
			}
			return run(cmd, settings, logger, opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP(flagLogLevel, "l", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR or CRITICAL")
	pf.StringP(flagCustomPath, "c", "", "Custom directory with api_definitions, action_packs and operation_menus")
	pf.StringP(flagTreePath, "t", "", "Operation tree file (default: <custom>/operation_menus/om_tree.json)")
	pf.StringP(flagMockResponses, "m", "", "JSON file of mock API responses keyed by URL")
	pf.StringVar(&settingsFile, flagSettings, "", "Settings file (default: ~/.config/omcli/config.yaml)")

	f := cmd.Flags()
	f.BoolVarP(&opts.generate, flagGenerateTree, "g", false, "Write the loaded tree to "+config.GeneratedTreeFile+" and compare it with the original")
	f.StringVarP(&opts.operation, flagOperation, "o", "", "Run one operation without the menu")
	f.BoolVarP(&opts.skipLooping, flagSkipLooping, "s", false, "Run loop markers as no-ops")

	cmd.AddCommand(validate.NewCommand(load))
	cmd.AddCommand(version.NewCommand())
	cmd.SetHelpCommand(NewHelpCommand(cmd))

	return cmd
}

// loadSettings resolves the settings of cmd. Flags take precedence over
// the environment and the settings file, which take precedence over
// defaults.
func loadSettings(cmd *cobra.Command, settingsFile string) (*config.Settings, *slog.Logger, error) {
	v, err := config.NewViper(settingsFile)
	if err != nil {
		return nil, nil, shared.NewConfigError("failed to read settings", err)
	}
	if err := bindFlags(cmd, v); err != nil {
		return nil, nil, err
	}
	settings, err := config.Load(v)
	if err != nil {
		return nil, nil, shared.NewConfigError("", err)
	}
	if !log.ValidLevel(settings.Log.Level) {
		return nil, nil, shared.NewInvalidArgumentsError(
			fmt.Sprintf("invalid log level %q: expected DEBUG, INFO, WARNING, ERROR or CRITICAL", settings.Log.Level), nil)
	}
	return settings, newLogger(cmd, settings), nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for flag, key := range flagBindings {
		f := cmd.Flag(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func newLogger(cmd *cobra.Command, s *config.Settings) *slog.Logger {
	cfg := log.FromEnv()
	if d := os.Getenv("OMCLI_DEBUG"); d != "true" && d != "1" {
		cfg.Level = s.Log.Level
	}
	cfg.Format = log.Format(s.Log.Format)
	cfg.Output = cmd.ErrOrStderr()
	if s.Log.File != "" {
		cfg.File = &log.FileConfig{Path: s.Log.File, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28}
	}
	return log.New(cfg)
}
