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

// Package validate implements the validate subcommand: it loads the
// custom directory the way a run does and reports what it found.
package validate

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tombee/omcli/internal/action/builtin"
	"github.com/tombee/omcli/internal/commands/shared"
	"github.com/tombee/omcli/internal/config"
)

// Loader resolves the settings and logger of cmd.
type Loader func(cmd *cobra.Command) (*config.Settings, *slog.Logger, error)

// Summary is the outcome of a successful validation.
type Summary struct {
	shared.JSONResponse
	CustomPath    string   `json:"custom_path"`
	TreePath      string   `json:"tree_path"`
	Tree          string   `json:"tree"`
	Operations    int      `json:"operations"`
	APIs          int      `json:"apis"`
	Endpoints     int      `json:"endpoints"`
	ActionPacks   []string `json:"action_packs"`
	Actions       int      `json:"actions"`
	MockResponses int      `json:"mock_responses"`
}

// NewCommand creates the validate command
func NewCommand(load Loader) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the custom directory and operation tree",
		Long: `Validate loads the API definitions, action packs, mock responses and
operation tree selected by the flags and settings, checks every action of
the tree against them, and reports what was loaded.`,
		Example: `  omcli validate -c ./custom
  omcli validate -c ./custom -t ./custom/operation_menus/other.json --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, logger, err := load(cmd)
			if err != nil {
				return err
			}
			custom, err := config.LoadCustom(settings, builtin.Options{}, logger)
			if err != nil {
				if asJSON {
					_ = shared.EmitJSONError(cmd.OutOrStdout(), "validate", err)
				}
				return shared.NewConfigError("validation failed", err)
			}

			s := Summary{
				JSONResponse:  shared.JSONResponse{Version: shared.JSONVersion, Command: "validate", Success: true},
				CustomPath:    custom.Layout.Custom,
				TreePath:      custom.Layout.Tree,
				Tree:          custom.Tree.Name,
				Operations:    custom.OperationCount(),
				APIs:          custom.Catalog.Len(),
				Endpoints:     custom.Catalog.EndpointCount(),
				ActionPacks:   custom.Registry.Packs(),
				Actions:       custom.Registry.Len(),
				MockResponses: len(custom.Mocks),
			}
			if asJSON {
				return shared.EmitJSON(cmd.OutOrStdout(), s)
			}
			printSummary(cmd, s)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func printSummary(cmd *cobra.Command, s Summary) {
	cmd.Println(shared.RenderOK(fmt.Sprintf("Configuration is valid: %s", s.Tree)))
	cmd.Printf("  %s %s\n", shared.RenderLabel("Tree file:"), s.TreePath)
	cmd.Printf("  %s %d\n", shared.RenderLabel("Operations:"), s.Operations)
	cmd.Printf("  %s %d (%d endpoints)\n", shared.RenderLabel("APIs:"), s.APIs, s.Endpoints)
	cmd.Printf("  %s %d in %d packs\n", shared.RenderLabel("Actions:"), s.Actions, len(s.ActionPacks))
	if s.MockResponses > 0 {
		cmd.Printf("  %s %d\n", shared.RenderLabel("Mock responses:"), s.MockResponses)
	}
}
