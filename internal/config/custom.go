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
	"fmt"
	"log/slog"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/action/builtin"
	"github.com/tombee/omcli/internal/api"
	"github.com/tombee/omcli/internal/log"
	"github.com/tombee/omcli/pkg/operation"
)

// Custom is a loaded and validated custom directory.
type Custom struct {
	Layout   *Layout
	Tree     *operation.Tree
	Catalog  *api.Catalog
	Mocks    api.Mocks
	Registry *action.Registry
}

// LoadCustom loads everything the settings point at: the custom directory
// layout, the command packs, the action registry, the API definitions, the
// mock responses and the operation tree. The tree is validated against the
// registry and the catalog. packs configures the built-in packs; its
// CommandPacks are replaced by the ones found in the custom directory.
func LoadCustom(s *Settings, packs builtin.Options, logger *slog.Logger) (*Custom, error) {
	logger = log.OrDiscard(logger)

	layout, err := NewLayout(s.CustomPath, s.TreePath)
	if err != nil {
		return nil, err
	}

	commandPacks, err := LoadCommandPacks(layout.ActionPacks, logger)
	if err != nil {
		return nil, err
	}
	packs.CommandPacks = commandPacks
	registry, err := builtin.NewRegistry(packs)
	if err != nil {
		return nil, fmt.Errorf("failed to build the action registry: %w", err)
	}
	logger.Debug("loaded action packs", slog.Any("packs", registry.Packs()), slog.Int("actions", registry.Len()))

	catalog, err := LoadAPIDefinitions(layout.APIDefinitions, logger)
	if err != nil {
		return nil, err
	}

	mocks, err := LoadMocks(s.MockPath)
	if err != nil {
		return nil, err
	}
	if mocks != nil {
		logger.Info("using mock API responses", slog.String("path", s.MockPath), slog.Int("responses", len(mocks)))
	}

	tree, err := LoadTree(layout.Tree, s.WorkspaceRoot())
	if err != nil {
		return nil, err
	}
	if err := ValidateTree(tree, registry, catalog); err != nil {
		return nil, err
	}

	return &Custom{
		Layout:   layout,
		Tree:     tree,
		Catalog:  catalog,
		Mocks:    mocks,
		Registry: registry,
	}, nil
}

// OperationCount returns the number of operations in the tree.
func (c *Custom) OperationCount() int {
	n := 0
	c.Tree.Walk(func(*operation.Operation) { n++ })
	return n
}
