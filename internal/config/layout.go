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
	"os"
	"path/filepath"

	omerrors "github.com/tombee/omcli/pkg/errors"
)

// Custom directory entries.
const (
	ActionPacksDir    = "action_packs"
	APIDefinitionsDir = "api_definitions"
	DefaultTreeFile   = "operation_menus/om_tree.json"
)

// Layout locates the parts of a custom directory.
type Layout struct {
	Custom         string
	ActionPacks    string
	APIDefinitions string
	Tree           string
}

// NewLayout resolves the layout of custom. An empty tree selects
// <custom>/operation_menus/om_tree.json. It fails when custom, the tree
// file or either required directory is missing.
func NewLayout(custom, tree string) (*Layout, error) {
	if custom == "" {
		return nil, &omerrors.ConfigError{Key: KeyCustomPath, Reason: "no custom path provided"}
	}
	if !isDir(custom) {
		return nil, &omerrors.ConfigError{Key: custom, Reason: "The custom path provided does not exist."}
	}
	if tree == "" {
		tree = filepath.Join(custom, filepath.FromSlash(DefaultTreeFile))
	}
	l := &Layout{
		Custom:         custom,
		ActionPacks:    filepath.Join(custom, ActionPacksDir),
		APIDefinitions: filepath.Join(custom, APIDefinitionsDir),
		Tree:           tree,
	}
	if _, err := os.Stat(l.Tree); err != nil {
		return nil, &omerrors.ConfigError{Key: l.Tree, Reason: "The OMTree configuration file does not exist.", Cause: err}
	}
	if !isDir(l.ActionPacks) {
		return nil, &omerrors.ConfigError{Key: l.ActionPacks, Reason: "The action_packs directory is missing from the custom directory."}
	}
	if !isDir(l.APIDefinitions) {
		return nil, &omerrors.ConfigError{Key: l.APIDefinitions, Reason: "The api_definitions directory is missing from the custom directory."}
	}
	return l, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
