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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/internal/log"
	omerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]string
	}{
		{"none", nil, map[string]string{}},
		{"plain", []string{"page=2"}, map[string]string{"page": "2"}},
		{"double quotes", []string{`name="a b"`}, map[string]string{"name": "a b"}},
		{"single quotes", []string{`name='x'`}, map[string]string{"name": "x"}},
		{"mismatched quotes kept", []string{`name="x'`}, map[string]string{"name": `"x'`}},
		{"only one pair stripped", []string{`name=""x""`}, map[string]string{"name": `"x"`}},
		{"value with equals", []string{"q=a=b"}, map[string]string{"q": "a=b"}},
		{"invalid entry skipped", []string{"junk", "ok=1"}, map[string]string{"ok": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseArgs(tt.args, log.Discard())
			require.NoError(t, err)
			got := map[string]string{}
			for _, p := range set.Items() {
				assert.Equal(t, parameter.TypeString, p.Type)
				got[p.Name] = p.StringValue()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgsNoValid(t *testing.T) {
	_, err := ParseArgs([]string{"junk", "=x"}, log.Discard())
	var verr *omerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No valid parameters found.", verr.Message)
}

func verifyOperation() *operation.Operation {
	page := &parameter.Parameter{Name: "page", Type: parameter.TypeInteger, CommandParameter: true}
	flag := &parameter.Parameter{Name: "force", Type: parameter.TypeBoolean, CommandParameter: true}
	other := &parameter.Parameter{Name: "note", Type: parameter.TypeString}
	return &operation.Operation{
		ID: "list_users",
		Actions: []*operation.Action{
			{Type: operation.ActionTypeAPIRequest, Name: "demo.list", Parameters: parameter.NewSet(page, other)},
			{Type: operation.ActionTypeFunctionCall, Name: "print_response", Parameters: parameter.NewSet(flag)},
		},
	}
}

func TestVerifyArgs(t *testing.T) {
	args, err := ParseArgs([]string{"page=3", "force=TRUE", "note=x", "extra=y"}, log.Discard())
	require.NoError(t, err)

	verified, err := VerifyArgs(verifyOperation(), args)
	require.NoError(t, err)
	require.Equal(t, 2, verified.Len())

	page, ok := verified.Find("page")
	require.True(t, ok)
	assert.Equal(t, parameter.TypeInteger, page.Type)
	assert.True(t, page.CommandParameter)
	force, ok := verified.Find("force")
	require.True(t, ok)
	assert.Equal(t, "true", force.StringValue())
	_, ok = verified.Find("note")
	assert.False(t, ok)
}

func TestVerifyArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", []string{"force=true"}, "The parameter page of the type Integer is required for list_users."},
		{"bad integer", []string{"page=x", "force=true"}, "x is not a valid integer."},
		{"bad boolean", []string{"page=1", "force=maybe"}, "maybe is not a valid boolean value."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := ParseArgs(tt.args, log.Discard())
			require.NoError(t, err)
			_, err = VerifyArgs(verifyOperation(), args)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestVerifyArgsWithoutParameters(t *testing.T) {
	args, err := ParseArgs([]string{"page=3"}, log.Discard())
	require.NoError(t, err)
	op := &operation.Operation{ID: "plain", Actions: []*operation.Action{
		{Type: operation.ActionTypeFunctionCall, Name: "print_response"},
	}}

	verified, err := VerifyArgs(op, args)
	require.NoError(t, err)
	assert.Equal(t, 0, verified.Len())
}
