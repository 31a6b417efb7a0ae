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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/api"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

func testRegistry(t *testing.T) *action.Registry {
	t.Helper()
	noop := func(context.Context, *operation.Call) *operation.Result { return operation.Succeeded("ok") }
	r := action.NewRegistry()
	require.NoError(t, r.Register(action.Pack{
		Name: "test",
		Actions: []action.Definition{{
			Name: "print_parameter",
			Parameters: map[string]action.ParameterSpec{
				"parameter_value": action.In(parameter.TypeString),
				"limit":           action.In(parameter.TypeInteger),
			},
			Func: noop,
		}},
	}))
	return r
}

func testCatalog(t *testing.T) *api.Catalog {
	t.Helper()
	c, err := api.NewCatalog(&api.Definition{
		ID:        "demo",
		Endpoints: []*api.Endpoint{{Name: "list_users"}},
	})
	require.NoError(t, err)
	return c
}

func treeWith(actions ...*operation.Action) *operation.Tree {
	return &operation.Tree{Operations: []*operation.Operation{{
		ID:       "root",
		Children: []*operation.Operation{{ID: "leaf", Actions: actions}},
	}}}
}

func call(name string, params ...*parameter.Parameter) *operation.Action {
	return &operation.Action{Type: operation.ActionTypeFunctionCall, Name: name, Parameters: parameter.NewSet(params...)}
}

func TestValidateTree(t *testing.T) {
	loop := 1
	tests := []struct {
		name   string
		action *operation.Action
		want   string
	}{
		{
			name:   "valid function call",
			action: call("print_parameter", &parameter.Parameter{Name: "parameter_value", Type: parameter.TypeString}),
		},
		{
			name: "override name",
			action: call("print_parameter", &parameter.Parameter{
				Name: "users", Type: parameter.TypeString, OverrideParameterName: "parameter_value",
			}),
		},
		{
			name:   "custom parameter is not checked",
			action: call("print_parameter", &parameter.Parameter{Name: "anything", CustomParameter: true}),
		},
		{
			name:   "valid api request",
			action: &operation.Action{Type: operation.ActionTypeAPIRequest, Name: "demo.list_users"},
		},
		{
			name:   "valid loop",
			action: &operation.Action{Type: operation.ActionTypeLoopStart, Name: "start", LoopNumber: &loop},
		},
		{
			name:   "unknown function",
			action: call("missing_action"),
			want:   "No loaded Action pack action named: 'missing_action'",
		},
		{
			name:   "unknown parameter",
			action: call("print_parameter", &parameter.Parameter{Name: "other", Type: parameter.TypeString}),
			want:   "No parameter definition found for the parameter: 'other'",
		},
		{
			name: "unknown override",
			action: call("print_parameter", &parameter.Parameter{
				Name: "users", Type: parameter.TypeString, OverrideParameterName: "nope",
			}),
			want: "No parameter definition found for the parameter: 'nope (overridden from users)'",
		},
		{
			name:   "type mismatch",
			action: call("print_parameter", &parameter.Parameter{Name: "limit", Type: parameter.TypeString}),
			want:   "Parameter type mismatch for parameter: 'limit'. Expected: 'INTEGER', Found: 'STRING'",
		},
		{
			name:   "unknown api",
			action: &operation.Action{Type: operation.ActionTypeAPIRequest, Name: "other.list_users"},
			want:   "The API other was not found",
		},
		{
			name:   "unknown endpoint",
			action: &operation.Action{Type: operation.ActionTypeAPIRequest, Name: "demo.delete"},
			want:   "The endpoint delete was not found in the API demo",
		},
		{
			name:   "loop without number",
			action: &operation.Action{Type: operation.ActionTypeLoopEnd, Name: "end"},
			want:   "loop markers must have a loop_number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTree(treeWith(tt.action), testRegistry(t), testCatalog(t))
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "Invalid OMTree configuration found in the action '"+tt.action.Name+"' from the operation 'leaf'")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
