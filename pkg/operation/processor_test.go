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

package operation

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/pkg/parameter"
)

func TestProcessor_PriorityChain(t *testing.T) {
	const (
		fromArgs   = "argument"
		fromScope  = "accumulated"
		fromPreset = "preset"
		fromPrompt = "prompted"
	)

	// expected follows the documented order: arguments, accumulated scope,
	// preset value, prompt.
	expected := func(nonStick, repeated, skipLooping, inArgs, inScope, preset bool) string {
		fresh := !nonStick || !repeated
		switch {
		case inArgs && (skipLooping || fresh):
			return fromArgs
		case inScope && fresh:
			return fromScope
		case preset:
			return fromPreset
		default:
			return fromPrompt
		}
	}

	for mask := 0; mask < 64; mask++ {
		nonStick := mask&1 != 0
		repeated := mask&2 != 0
		skipLooping := mask&4 != 0
		inArgs := mask&8 != 0
		inScope := mask&16 != 0
		preset := mask&32 != 0

		name := fmt.Sprintf("nonStick=%t/repeated=%t/skip=%t/args=%t/scope=%t/preset=%t",
			nonStick, repeated, skipLooping, inArgs, inScope, preset)
		t.Run(name, func(t *testing.T) {
			p := &parameter.Parameter{Name: "target", Type: parameter.TypeString, NonStick: nonStick}
			if preset {
				p.PresetValue = parameter.StringPtr(fromPreset)
			}
			args := parameter.NewSet()
			if inArgs {
				args.Add(parameter.New("target", parameter.TypeString, fromArgs))
			}
			scope := parameter.NewSet()
			if inScope {
				scope.Add(parameter.New("target", parameter.TypeString, fromScope))
			}

			prompter := prompt.NewMockPrompter(false, fromPrompt)
			res := NewProcessor(prompter, nil, nil).Process(context.Background(),
				parameter.NewSet(p), args, scope, repeated, skipLooping, 0)

			require.True(t, res.Success, res.Text)
			assert.Equal(t, expected(nonStick, repeated, skipLooping, inArgs, inScope, preset), p.StringValue())
		})
	}
}

func TestProcessor_OutputSlotIsNotPrompted(t *testing.T) {
	p := &parameter.Parameter{Name: "out", Type: parameter.TypeString, OverrideOutputParameterName: true, OverrideParameterName: "value"}
	prompter := prompt.NewMockPrompter(false)

	res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 3)

	require.True(t, res.Success)
	assert.False(t, p.HasValue())
	assert.Empty(t, prompter.GetCallLog())
	idx, ok := p.ActionIndex()
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
}

func TestProcessor_SkipsOperationID(t *testing.T) {
	p := &parameter.Parameter{Name: ReservedOperationID, Type: parameter.TypeString}
	prompter := prompt.NewMockPrompter(false)

	res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 0)

	require.True(t, res.Success)
	assert.Empty(t, prompter.GetCallLog())
}

func TestProcessor_PromptText(t *testing.T) {
	p := &parameter.Parameter{
		Name:         "region",
		Type:         parameter.TypeString,
		CustomText:   "Region for {{env}}",
		DefaultValue: parameter.StringPtr("eu-{{env}}"),
	}
	scope := parameter.NewSet(parameter.New("env", parameter.TypeString, "prod"))
	prompter := prompt.NewMockPrompter(false, "")

	res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, scope, false, false, 0)

	require.True(t, res.Success)
	assert.Equal(t, "eu-prod", p.StringValue(), "empty input falls back to the resolved default")
	require.Len(t, prompter.GetCallLog(), 1)
	msg := prompter.GetCallLog()[0]
	assert.Contains(t, msg, "Region for prod [String]")
	assert.Contains(t, msg, "(default: ")
	assert.Contains(t, msg, "eu-prod")
	assert.Equal(t, "Region for {{env}}", p.CustomText, "declared fields are not rewritten")
}

func TestProcessor_DefaultPromptText(t *testing.T) {
	p := &parameter.Parameter{Name: "count", Type: parameter.TypeInteger}
	prompter := prompt.NewMockPrompter(false, "7")

	res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 0)

	require.True(t, res.Success)
	assert.Contains(t, prompter.GetCallLog()[0], "Please enter count [Integer]: ")
}

func TestProcessor_CustomInputName(t *testing.T) {
	p := &parameter.Parameter{Name: "id", Type: parameter.TypeString, CustomInputName: "registry_id"}
	scope := parameter.NewSet(parameter.New("registry_id", parameter.TypeString, "r-1"))

	res := NewProcessor(prompt.NewMockPrompter(false), nil, nil).Process(context.Background(), parameter.NewSet(p), nil, scope, false, false, 0)

	require.True(t, res.Success)
	assert.Equal(t, "r-1", p.StringValue())
}

func TestProcessor_ArgumentMarksCommandParameter(t *testing.T) {
	p := &parameter.Parameter{Name: "name", Type: parameter.TypeString}
	arg := parameter.New("name", parameter.TypeString, "svc")
	arg.CommandParameter = true

	res := NewProcessor(prompt.NewMockPrompter(false), nil, nil).Process(context.Background(), parameter.NewSet(p), parameter.NewSet(arg), nil, false, false, 0)

	require.True(t, res.Success)
	assert.True(t, p.CommandParameter)
}

func TestProcessor_Validation(t *testing.T) {
	t.Run("reprompts until valid", func(t *testing.T) {
		p := &parameter.Parameter{Name: "enabled", Type: parameter.TypeBoolean}
		prompter := prompt.NewMockPrompter(false, "maybe", "TRUE")

		res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 0)

		require.True(t, res.Success)
		assert.Equal(t, "true", p.StringValue())
		assert.Len(t, prompter.GetCallLog(), 2)
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		answers := make([]any, MaxInputAttempts+1)
		for i := range answers {
			answers[i] = "abc"
		}
		prompter := prompt.NewMockPrompter(false, answers...)
		p := &parameter.Parameter{Name: "count", Type: parameter.TypeInteger}

		res := NewProcessor(prompter, nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 0)

		assert.False(t, res.Success)
		assert.Equal(t, "An error occurred while processing the parameters: Infinite loop detected while processing the parameters", res.Text)
		assert.Len(t, prompter.GetCallLog(), MaxInputAttempts)
	})

	t.Run("abort", func(t *testing.T) {
		p := &parameter.Parameter{Name: "name", Type: parameter.TypeString}

		res := NewProcessor(prompt.NewMockPrompter(false), nil, nil).Process(context.Background(), parameter.NewSet(p), nil, nil, false, false, 0)

		assert.True(t, res.IsAborted())
		assert.Equal(t, AbortedText, res.Text)
	})
}
