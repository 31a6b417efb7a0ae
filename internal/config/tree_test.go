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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/pkg/condition"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

const sampleTree = `{
    "name": "Demo tree",
    "description": "Operations against the demo API",
    "custom_variables": {
        "API": "demo",
        "OUT": "$WORKSPACE/out",
        "HOME_DIR": "$OMCLI_TEST_HOME"
    },
    "operations": [
        {
            "operation_id": "users",
            "menu_title": "Users",
            "children": [
                {
                    "operation_id": "list_users",
                    "menu_title": "List {{{API}}} users",
                    "help_text": "Lists the users",
                    "actions": [
                        {"type": "LOOP_START", "name": "start", "loop_number": "2"},
                        {
                            "type": "API_REQUEST",
                            "name": "{{{API}}}.list_users",
                            "failure_termination": false,
                            "parameters": [
                                {"name": "page", "type": "INTEGER", "default_value": 1, "command_parameter": true},
                                {"name": "dir", "default_value": "{{{OUT}}}", "non_stick": true}
                            ],
                            "skip_if_conditions": [
                                {
                                    "operator": "OR",
                                    "conditions": [
                                        {"parameter_name": "users", "jsonpath": "$.items[*].id", "regex": "^4", "skip_if_path_not_found": true}
                                    ]
                                }
                            ]
                        },
                        {"type": "LOOP_END", "name": "end", "loop_number": 2, "custom_loop_repeat_prompt": "Again?"}
                    ]
                }
            ]
        },
        {
            "operation_id": "home",
            "menu_title": "Home",
            "actions": [
                {
                    "type": "FUNCTION_CALL",
                    "name": "print_parameter",
                    "parameters": [{"name": "parameter_value", "preset_value": "{{{HOME_DIR}}}"}]
                }
            ]
        }
    ]
}`

func decodeSample(t *testing.T) *operation.Tree {
	t.Helper()
	t.Setenv("OMCLI_TEST_HOME", "/home/tester")
	tree, err := DecodeTree([]byte(sampleTree), "om_tree.json", "/ws")
	require.NoError(t, err)
	return tree
}

func TestDecodeTree(t *testing.T) {
	tree := decodeSample(t)

	assert.Equal(t, "Demo tree", tree.Name)
	assert.Equal(t, "$WORKSPACE/out", tree.CustomVariables["OUT"])
	require.Len(t, tree.Operations, 2)

	users := tree.Operations[0]
	assert.Equal(t, DefaultHelpText, users.HelpText)
	assert.Empty(t, users.Actions)
	require.Len(t, users.Children, 1)

	list, ok := tree.Find("list_users")
	require.True(t, ok)
	assert.Equal(t, "List demo users", list.MenuTitle)
	assert.Equal(t, "Lists the users", list.HelpText)
	require.Len(t, list.Actions, 3)

	start := list.Actions[0]
	assert.Equal(t, operation.ActionTypeLoopStart, start.Type)
	require.NotNil(t, start.LoopNumber)
	assert.Equal(t, 2, *start.LoopNumber)
	assert.True(t, start.FailureTermination)

	req := list.Actions[1]
	assert.Equal(t, "demo.list_users", req.Name)
	assert.False(t, req.FailureTermination)

	page, ok := req.Parameters.Find("page")
	require.True(t, ok)
	assert.Equal(t, parameter.TypeInteger, page.Type)
	assert.Equal(t, "1", *page.DefaultValue)
	assert.True(t, page.CommandParameter)
	assert.Nil(t, page.Value)

	dir, ok := req.Parameters.Find("dir")
	require.True(t, ok)
	assert.Equal(t, parameter.TypeString, dir.Type)
	assert.Equal(t, "/ws/out", *dir.DefaultValue)
	assert.True(t, dir.NonStick)

	require.Len(t, req.SkipIfConditions, 1)
	group := req.SkipIfConditions[0]
	assert.Equal(t, condition.OperatorOr, group.Operator)
	require.Len(t, group.Conditions, 1)
	assert.Equal(t, "$.items[*].id", group.Conditions[0].JSONPath)
	require.NotNil(t, group.Conditions[0].SkipIfPathNotFound)
	assert.True(t, *group.Conditions[0].SkipIfPathNotFound)

	assert.Equal(t, "Again?", list.Actions[2].CustomLoopRepeatPrompt)

	home, ok := tree.Find("home")
	require.True(t, ok)
	preset, ok := home.Actions[0].Parameters.Find("parameter_value")
	require.True(t, ok)
	assert.Equal(t, "/home/tester", *preset.PresetValue)
}

func TestDecodeTreeYAML(t *testing.T) {
	doc := `
name: YAML tree
description: from yaml
custom_variables:
  API: demo
operations:
  - operation_id: ping
    menu_title: Ping {{{API}}}
    actions:
      - type: api_request
        name: "{{{API}}}.ping"
        loop_number: 1
        parameters:
          - name: count
            type: INTEGER
            default_value: 3
`
	tree, err := DecodeTree([]byte(doc), "tree.yml", "")
	require.NoError(t, err)

	op, ok := tree.Find("ping")
	require.True(t, ok)
	assert.Equal(t, "Ping demo", op.MenuTitle)
	require.Len(t, op.Actions, 1)
	assert.Equal(t, operation.ActionTypeAPIRequest, op.Actions[0].Type)
	assert.Equal(t, "demo.ping", op.Actions[0].Name)
	assert.Equal(t, 1, *op.Actions[0].LoopNumber)
	count, ok := op.Actions[0].Parameters.Find("count")
	require.True(t, ok)
	assert.Equal(t, "3", *count.DefaultValue)
}

func TestDecodeTreeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "invalid json",
			doc:  `{"name": `,
			want: "invalid OMTree configuration file",
		},
		{
			name: "missing operation id",
			doc:  `{"name": "t", "description": "d", "operations": [{"menu_title": "Lost"}]}`,
			want: "has no operation_id",
		},
		{
			name: "unknown action type",
			doc:  `{"name": "t", "description": "d", "operations": [{"operation_id": "a", "menu_title": "A", "actions": [{"type": "SOMETHING", "name": "x"}]}]}`,
			want: `unknown action type "SOMETHING"`,
		},
		{
			name: "unknown parameter type",
			doc:  `{"name": "t", "description": "d", "operations": [{"operation_id": "a", "menu_title": "A", "actions": [{"type": "FUNCTION_CALL", "name": "x", "parameters": [{"name": "p", "type": "FLOAT"}]}]}]}`,
			want: `unknown parameter type "FLOAT"`,
		},
		{
			name: "unknown operator",
			doc:  `{"name": "t", "description": "d", "operations": [{"operation_id": "a", "menu_title": "A", "actions": [{"type": "FUNCTION_CALL", "name": "x", "skip_if_conditions": [{"operator": "XOR", "conditions": []}]}]}]}`,
			want: `unknown condition operator "XOR"`,
		},
		{
			name: "bad loop number",
			doc:  `{"name": "t", "description": "d", "operations": [{"operation_id": "a", "menu_title": "A", "actions": [{"type": "LOOP_START", "name": "x", "loop_number": "one"}]}]}`,
			want: `loop_number "one" is not an integer`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTree([]byte(tt.doc), "om_tree.json", "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadTreeMissingFile(t *testing.T) {
	_, err := LoadTree(filepath.Join(t.TempDir(), "none.json"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read the OMTree configuration file")
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("OMCLI_TEST_REGION", "eu")
	got := expandVariables(map[string]string{
		"A": "$WORKSPACE/data",
		"B": "${OMCLI_TEST_REGION}-1",
		"C": "$OMCLI_TEST_UNSET_VAR/x",
		"D": "plain",
	}, "/root/ws")

	assert.Equal(t, map[string]string{
		"A": "/root/ws/data",
		"B": "eu-1",
		"C": "$OMCLI_TEST_UNSET_VAR/x",
		"D": "plain",
	}, got)
}
