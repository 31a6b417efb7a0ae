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

package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
)

var nodeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

// PresentTree prints the JSON list json_string as a tree. Each item is
// named by node_name_field and hangs below the item whose name equals its
// parent_field. Items without a parent are roots.
func PresentTree(_ context.Context, call *operation.Call) *operation.Result {
	raw, _ := call.Value("json_string")
	nameField, _ := call.Value("node_name_field")
	parentField, _ := call.Value("parent_field")
	if raw == "" || nameField == "" || parentField == "" {
		return action.Failf("An unexpected error occurred while presenting the json tree: Missing JSON string, node name field, or parent field")
	}
	items, err := action.DecodeJSON(raw, "Error decoding the JSON tree")
	if err != nil {
		return action.Failf("An unexpected error occurred while presenting the json tree: %v", err)
	}
	list, ok := items.([]any)
	if !ok {
		return action.Failf("An unexpected error occurred while presenting the json tree: the JSON string is not a list")
	}
	out, err := BuildTree(list, nameField, parentField)
	if err != nil {
		return action.Failf("An unexpected error occurred while presenting the json tree: %v", err)
	}
	fmt.Fprintln(call.Out, out)
	return operation.Succeeded("JSON tree presented")
}

// BuildTree renders items as one tree per root. Items whose parent is not
// in the list are dropped.
func BuildTree(items []any, nameField, parentField string) (string, error) {
	type node struct {
		name, parent string
		hasParent    bool
	}
	nodes := make([]node, 0, len(items))
	trees := make(map[string]*tree.Tree, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return "", fmt.Errorf("item %d is not an object", i)
		}
		name, ok := obj[nameField]
		if !ok {
			return "", fmt.Errorf("item %d has no field %q", i, nameField)
		}
		n := node{name: action.Stringify(name)}
		if parent, ok := obj[parentField]; ok && parent != nil {
			n.parent, n.hasParent = action.Stringify(parent), true
		}
		nodes = append(nodes, n)
		trees[n.name] = tree.Root(n.name).RootStyle(nodeStyle).ItemStyle(nodeStyle)
	}

	var roots []*tree.Tree
	for _, n := range nodes {
		if !n.hasParent {
			roots = append(roots, trees[n.name])
			continue
		}
		if parent, ok := trees[n.parent]; ok {
			parent.Child(trees[n.name])
		}
	}
	if len(roots) == 0 {
		return "", errors.New("No root node found")
	}
	out := make([]string, len(roots))
	for i, r := range roots {
		out[i] = r.String()
	}
	return strings.Join(out, "\n"), nil
}
