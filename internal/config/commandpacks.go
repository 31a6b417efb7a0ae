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

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tombee/omcli/internal/action/shell"
	omerrors "github.com/tombee/omcli/pkg/errors"
)

// CommandPackPattern matches declarative command packs in the
// action_packs directory.
const CommandPackPattern = "*.{yaml,yml,json}"

// LoadCommandPacks parses every command pack file of dir. Other files are
// ignored.
func LoadCommandPacks(dir string, logger *slog.Logger) ([]*shell.CommandPack, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	names, err := doublestar.Glob(os.DirFS(dir), CommandPackPattern)
	if err != nil {
		return nil, &omerrors.ConfigError{Key: dir, Reason: "cannot list the action packs", Cause: err}
	}
	sort.Strings(names)

	var packs []*shell.CommandPack
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &omerrors.ConfigError{Key: path, Reason: "cannot read the action pack", Cause: err}
		}
		cp, err := shell.ParseCommandPack(data)
		if err != nil {
			return nil, &omerrors.ConfigError{Key: path, Reason: "invalid action pack", Cause: err}
		}
		logger.Debug("loaded command pack", slog.String("pack", cp.Name), slog.Int("actions", len(cp.Actions)))
		packs = append(packs, cp)
	}
	return packs, nil
}
