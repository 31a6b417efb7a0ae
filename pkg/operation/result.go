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
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/pkg/parameter"
)

// AbortedText is the result text of a run the user aborted with end of input.
const AbortedText = "Aborted the Operation using CTRL+D"

// Response is the HTTP response attached to the result of an API request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// Result is returned by every action, by the parameter processor and by a
// completed run.
type Result struct {
	Success  bool
	Text     string
	Response *Response

	// Parameters are the outputs of the action.
	Parameters *parameter.Set

	// RepeatAction asks the user whether the action should run again.
	RepeatAction bool
	// RepeatLoop, when set, replays (true) or leaves (false) the loop the
	// action belongs to without prompting.
	RepeatLoop *bool
}

// Succeeded returns a successful result carrying params.
func Succeeded(text string, params ...*parameter.Parameter) *Result {
	return &Result{Success: true, Text: text, Parameters: parameter.NewSet(params...)}
}

// Failed returns a failed result with the given text.
func Failed(text string) *Result {
	return &Result{Text: text, Parameters: parameter.NewSet()}
}

// Aborted returns the result of a run cancelled by the user.
func Aborted() *Result {
	return Failed(AbortedText)
}

// IsAborted reports whether r is the result of a user abort.
func (r *Result) IsAborted() bool {
	return r != nil && !r.Success && r.Text == AbortedText
}

// WithRepeatLoop sets RepeatLoop and returns r.
func (r *Result) WithRepeatLoop(repeat bool) *Result {
	r.RepeatLoop = &repeat
	return r
}

// ResponseText returns the response body, or the result text when the
// result carries no response.
func (r *Result) ResponseText() string {
	if r == nil {
		return ""
	}
	if r.Response != nil {
		return r.Response.Text()
	}
	return r.Text
}

// Call is what a function action receives.
type Call struct {
	// Prior is the result of the action that ran before this one.
	Prior *Result
	// Params is the merged scope visible to the action.
	Params *parameter.Set
	// ActionIndex is the position of the action in its operation.
	ActionIndex int

	Prompter prompt.Prompter
	Out      io.Writer
	Logger   *slog.Logger
}

// OutputName returns the name an output called internal is published under.
func (c *Call) OutputName(internal string) string {
	return c.Params.OverrideName(internal, c.ActionIndex)
}

// Value returns the value of name as seen by this action.
func (c *Call) Value(name string) (string, bool) {
	return c.Params.Value(name, c.ActionIndex)
}

// ValueOr returns the value of name, or def when it is missing or empty.
func (c *Call) ValueOr(name, def string) string {
	return c.Params.ValueOr(name, c.ActionIndex, def)
}

// Output builds an output parameter named through OutputName.
func (c *Call) Output(internal string, typ parameter.Type, value string) *parameter.Parameter {
	return parameter.Output(c.OutputName(internal), typ, value, c.ActionIndex)
}

// ActionFunc is the body of a function action.
type ActionFunc func(ctx context.Context, call *Call) *Result

// FunctionRegistry resolves function action names.
type FunctionRegistry interface {
	Lookup(name string) (ActionFunc, bool)
}

// RequestAdapter executes API request actions. endpoint is
// "api_id.endpoint_name".
type RequestAdapter interface {
	Execute(ctx context.Context, endpoint string, params *parameter.Set, actionIndex int) *Result
}

// Recorder receives timing for dispatched actions and finished runs.
type Recorder interface {
	RecordAction(actionType, outcome string, d time.Duration)
	RecordOperation(operationID, outcome string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordAction(string, string, time.Duration)    {}
func (nopRecorder) RecordOperation(string, string, time.Duration) {}
