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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/internal/log"
	"github.com/tombee/omcli/pkg/condition"
	pkgerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/parameter"
)

// ErrAborted is returned by Run when the user ends input at a prompt.
var ErrAborted = errors.New("operation aborted by user")

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeAborted = "aborted"

	invalidYesNo = "Invalid input, please enter 'y' or 'n'"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RunError describes why a run stopped at an action.
type RunError struct {
	Action string
	Index  int
	Type   ActionType
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("action %s (index %d) of type %s: %v", e.Action, e.Index, e.Type, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Report is what a run leaves behind, complete or not.
type Report struct {
	RunID string
	// Result is the result of the last action that ran.
	Result *Result
	// ParameterHistory holds every parameter resolved during the run, in
	// the order the names were first seen.
	ParameterHistory *parameter.Set
	// APIResultHistory holds the response text of every API request.
	APIResultHistory []string
	// ActionHistory holds the names of the actions that ran, first run only.
	ActionHistory []string
	// Command replays the run unattended. Empty unless the run completed.
	Command string
}

// Executor runs operations.
type Executor struct {
	registry  FunctionRegistry
	requests  RequestAdapter
	prompter  prompt.Prompter
	evaluator *condition.Evaluator
	processor *Processor

	logger   *slog.Logger
	out      io.Writer
	tracer   trace.Tracer
	recorder Recorder
	command  CommandConfig
}

// NewExecutor returns an Executor dispatching function actions to registry
// and API requests to requests. p answers every prompt of a run.
func NewExecutor(registry FunctionRegistry, requests RequestAdapter, p prompt.Prompter) *Executor {
	e := &Executor{
		registry: registry,
		requests: requests,
		prompter: p,
		logger:   log.Discard(),
		out:      io.Discard,
		tracer:   noop.NewTracerProvider().Tracer("omcli"),
		recorder: nopRecorder{},
	}
	e.rebuild()
	return e
}

// WithLogger sets the logger.
func (e *Executor) WithLogger(logger *slog.Logger) *Executor {
	e.logger = log.OrDiscard(logger)
	e.rebuild()
	return e
}

// WithOutput sets where progress and validation messages are written.
func (e *Executor) WithOutput(w io.Writer) *Executor {
	if w == nil {
		w = io.Discard
	}
	e.out = w
	e.rebuild()
	return e
}

// WithTracer sets the tracer used for operation and action spans.
func (e *Executor) WithTracer(t trace.Tracer) *Executor {
	if t != nil {
		e.tracer = t
	}
	return e
}

// WithRecorder sets the metrics recorder.
func (e *Executor) WithRecorder(r Recorder) *Executor {
	if r != nil {
		e.recorder = r
	}
	return e
}

// WithCommand sets how the replay command is built.
func (e *Executor) WithCommand(cfg CommandConfig) *Executor {
	e.command = cfg
	return e
}

func (e *Executor) rebuild() {
	e.evaluator = condition.NewEvaluator(e.logger)
	e.processor = NewProcessor(e.prompter, e.out, e.logger)
}

type runState struct {
	op          *Operation
	actions     []*Action
	args        *parameter.Set
	skipLooping bool
	logger      *slog.Logger

	loop       *LoopState
	extra      *parameter.Set
	history    *parameter.Set
	apiHistory []string
	seen       map[string]bool
	seenOrder  []string
	result     *Result
	repeatLoop *bool
}

// Run executes op. args are the command line parameters; skipLooping turns
// loop markers into no-ops. The returned Report is never nil. The error is
// ErrAborted when the user aborted, a *RunError when an action stopped the
// run, and nil when every action ran.
func (e *Executor) Run(ctx context.Context, op *Operation, args *parameter.Set, skipLooping bool) (*Report, error) {
	runID := uuid.NewString()
	logger := log.WithRunContext(e.logger, runID, op.ID)
	started := time.Now()

	ctx, span := e.tracer.Start(ctx, "omcli.operation", trace.WithAttributes(
		attribute.String("omcli.run_id", runID),
		attribute.String("omcli.operation_id", op.ID),
		attribute.Bool("omcli.skip_looping", skipLooping),
	))
	defer span.End()

	fmt.Fprintln(e.out, titleStyle.Render("Processing the operation: "+op.MenuTitle))

	st := &runState{
		op:          op,
		args:        args,
		skipLooping: skipLooping,
		logger:      logger,
		loop:        NewLoopState(),
		extra:       parameter.NewSet(parameter.Output(ReservedOperationID, parameter.TypeString, op.ID, -1)),
		history:     parameter.NewSet(),
		seen:        make(map[string]bool),
		result:      Succeeded(""),
	}
	st.actions = make([]*Action, len(op.Actions))
	for i, a := range op.Actions {
		st.actions[i] = a.Clone()
	}

	report := func(err error) (*Report, error) {
		outcome := outcomeSuccess
		switch {
		case errors.Is(err, ErrAborted):
			outcome = outcomeAborted
		case err != nil:
			outcome = outcomeFailure
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		e.recorder.RecordOperation(op.ID, outcome, time.Since(started))
		logger.Debug("finished processing the operation",
			slog.String("outcome", outcome),
			slog.Int64(log.DurationKey, time.Since(started).Milliseconds()))
		r := &Report{
			RunID:            runID,
			Result:           st.result,
			ParameterHistory: st.history,
			APIResultHistory: st.apiHistory,
			ActionHistory:    st.seenOrder,
		}
		if err == nil {
			r.Command = BuildCommand(e.command, op.ID, st.history)
			fmt.Fprintf(e.out, "\nCommand:\n%s\n", infoStyle.Render(r.Command))
			e.acknowledge(ctx)
		}
		return r, err
	}

	if len(st.actions) == 0 {
		logger.Error("The operation does not contain any actions")
		e.acknowledge(ctx)
		return &Report{RunID: runID, Result: st.result, ParameterHistory: st.history}, nil
	}

	for st.loop.Index < len(st.actions) {
		if err := e.step(ctx, st); err != nil {
			if !errors.Is(err, ErrAborted) {
				e.acknowledge(ctx)
			}
			return report(err)
		}
	}
	return report(nil)
}

// step runs the action under the cursor and moves the cursor.
func (e *Executor) step(ctx context.Context, st *runState) (err error) {
	index := st.loop.Index
	action := st.actions[index]
	logger := log.WithActionContext(st.logger, action.Name, string(action.Type), index)

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("An unexpected error occurred while processing the action %s [%d] of type %s: %v",
				action.Name, index, action.Type, r))
			st.result = Failed(fmt.Sprintf("%v", r))
			err = &RunError{Action: action.Name, Index: index, Type: action.Type, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	logger.Debug("processing the action")

	if e.evaluator.ShouldSkip(ctx, action.SkipIfConditions, st.extra) {
		logger.Debug("skipping the action based on the conditions")
		st.loop.Advance()
		return nil
	}

	handled, err := e.loopStep(ctx, st, action, logger)
	if err != nil {
		return err
	}
	if handled {
		st.repeatLoop = nil
		return nil
	}

	isRepeated := st.seen[action.Name]
	processed := parameter.NewSet()
	if action.Parameters.HasItems() {
		res := e.processor.Process(ctx, action.Parameters, st.args, st.extra, isRepeated, st.skipLooping, index)
		if res.IsAborted() {
			fmt.Fprintln(e.out, "\n"+AbortedText)
			st.result = res
			e.acknowledge(ctx)
			return ErrAborted
		}
		if !res.Success {
			logger.Error(fmt.Sprintf("Failed to process the parameters for the action %s: %s", action.Name, res.Text))
			st.result = res
			return &RunError{Action: action.Name, Index: index, Type: action.Type, Err: errors.New(res.Text)}
		}
		processed = res.Parameters.Copy()
	}
	logger.Debug("action scope", slog.Any("parameters", st.extra))

	// Freshly resolved values replace stale ones, then the action sees the
	// whole scope.
	st.extra.Merge(processed)
	processed.Merge(st.extra)

	res, err := e.dispatch(ctx, st, action, index, processed, logger)
	if err != nil {
		return err
	}
	st.result = res
	st.repeatLoop = res.RepeatLoop
	if res.IsAborted() {
		fmt.Fprintln(e.out, "\n"+AbortedText)
		e.acknowledge(ctx)
		return ErrAborted
	}

	if !st.seen[action.Name] {
		st.seen[action.Name] = true
		st.seenOrder = append(st.seenOrder, action.Name)
	}

	if res.RepeatAction {
		again, err := e.ask(ctx, fmt.Sprintf("\nThe action %s resulted in:\n%s\nDo you want to repeat the action? (y/n): ", action.Name, res.Text))
		if err != nil {
			return e.inputError(ctx, st, action, index, err)
		}
		if again {
			logger.Info("repeating the action")
			return nil
		}
	}

	st.history.Merge(st.extra)

	if !res.Success && action.FailureTermination {
		logger.Error(fmt.Sprintf("Breaking the chain %s based on the result from the action %s (index %d) of the type %s: %s",
			st.op.ID, action.Name, index, action.Type, res.ResponseText()))
		return &RunError{Action: action.Name, Index: index, Type: action.Type, Err: errors.New(res.Text)}
	}

	logger.Debug("finished processing the action")
	st.loop.Advance()
	return nil
}

// loopStep applies loop markers and loop replay requests. handled is true
// when the cursor has already been moved.
func (e *Executor) loopStep(ctx context.Context, st *runState, action *Action, logger *slog.Logger) (handled bool, err error) {
	index := st.loop.Index
	fail := func(cause error) error {
		logger.Error(cause.Error())
		st.result = Failed(cause.Error())
		return &RunError{Action: action.Name, Index: index, Type: action.Type, Err: cause}
	}

	if st.skipLooping && action.Type.IsLoop() {
		logger.Debug("skipping the loop marker since looping is disabled")
		st.loop.Advance()
		return true, nil
	}

	if st.repeatLoop != nil {
		if action.LoopNumber == nil {
			return false, fail(fmt.Errorf("The action %s does not contain a loop number so repeat loop can not be used, check the Operation Tree", action.Name))
		}
		n := *action.LoopNumber
		if *st.repeatLoop {
			logger.Debug("repeating the loop based on previous input", slog.Int("loop", n))
			if !st.loop.Rewind(n) {
				return false, fail(fmt.Errorf("The loop %d has not been started", n))
			}
			return true, nil
		}
		logger.Debug("continuing past the loop based on previous input", slog.Int("loop", n))
		st.loop.Pop()
		st.loop.Advance()
		return true, nil
	}

	switch action.Type {
	case ActionTypeLoopStart:
		if action.LoopNumber == nil {
			return false, fail(fmt.Errorf("The loop start %s does not contain a loop number", action.Name))
		}
		st.loop.Start(*action.LoopNumber)
		logger.Debug("starting the loop", slog.Int("loop", *action.LoopNumber), slog.Int("depth", st.loop.Depth()))
		st.loop.Advance()
		return true, nil

	case ActionTypeLoopEnd:
		top, ok := st.loop.Top()
		if action.LoopNumber == nil || !ok || top != *action.LoopNumber {
			n := "None"
			if action.LoopNumber != nil {
				n = fmt.Sprint(*action.LoopNumber)
			}
			return false, fail(fmt.Errorf("Loop end without matching start for loop %s", n))
		}
		if e.prompter == nil {
			return false, fail(errors.New("no prompter available to confirm the loop"))
		}
		text := action.CustomLoopRepeatPrompt
		if text == "" {
			text = fmt.Sprintf("Do you want to repeat the loop %s?", action.Name)
		}
		again, err := prompt.YesNo(ctx, e.prompter, e.out, text+" (y/n): ", invalidYesNo)
		if err != nil {
			return false, e.inputError(ctx, st, action, index, err)
		}
		if again {
			logger.Debug("repeating the loop", slog.Int("loop", top))
			st.loop.Rewind(top)
		} else {
			st.loop.Pop()
			st.loop.Advance()
			logger.Debug("continuing past the loop", slog.Int("next_index", st.loop.Index), slog.Int("depth", st.loop.Depth()))
		}
		return true, nil
	}
	return false, nil
}

func (e *Executor) dispatch(ctx context.Context, st *runState, action *Action, index int, params *parameter.Set, logger *slog.Logger) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "omcli.action", trace.WithAttributes(
		attribute.String("omcli.action.name", action.Name),
		attribute.String("omcli.action.type", string(action.Type)),
		attribute.Int("omcli.action.index", index),
	))
	defer span.End()
	started := time.Now()

	var res *Result
	switch action.Type {
	case ActionTypeAPIRequest:
		if e.requests == nil {
			return nil, e.configError(st, action, index, span, errors.New("no request adapter configured"))
		}
		res = e.requests.Execute(ctx, action.Name, params, index)
		if res == nil {
			res = Failed("The request adapter returned no result")
		}
		st.extra.Merge(res.Parameters)
		if !res.Success {
			logger.Warn(fmt.Sprintf("The API request for the action %s resulted in a non successful HTTP response: %s", action.Name, res.Text))
		}
		st.apiHistory = append(st.apiHistory, res.ResponseText())

	case ActionTypeFunctionCall:
		var fn ActionFunc
		ok := false
		if e.registry != nil {
			fn, ok = e.registry.Lookup(action.Name)
		}
		if !ok {
			logger.Error(fmt.Sprintf("The action %s was not found in the loaded Action packs, check the Operation Tree Action spelling", action.Name))
			return nil, e.configError(st, action, index, span, &pkgerrors.NotFoundError{Resource: "action", ID: action.Name})
		}
		res = fn(ctx, &Call{
			Prior:       st.result,
			Params:      params,
			ActionIndex: index,
			Prompter:    e.prompter,
			Out:         e.out,
			Logger:      logger,
		})
		if res == nil {
			res = Failed(fmt.Sprintf("The action %s returned no result", action.Name))
		}
		st.extra.Merge(res.Parameters)

	default:
		logger.Error(fmt.Sprintf("Unknown action type %s", action.Type))
		return nil, e.configError(st, action, index, span, fmt.Errorf("unknown action type %q", action.Type))
	}

	outcome := outcomeSuccess
	if !res.Success {
		outcome = outcomeFailure
		span.SetStatus(codes.Error, res.Text)
	}
	span.SetAttributes(attribute.Bool("omcli.action.success", res.Success))
	e.recorder.RecordAction(string(action.Type), outcome, time.Since(started))
	return res, nil
}

func (e *Executor) configError(st *runState, action *Action, index int, span trace.Span, cause error) error {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	e.recorder.RecordAction(string(action.Type), outcomeFailure, 0)
	st.result = Failed(cause.Error())
	return &RunError{Action: action.Name, Index: index, Type: action.Type, Err: cause}
}

// inputError converts a prompt failure into the error that ends the run.
func (e *Executor) inputError(ctx context.Context, st *runState, action *Action, index int, err error) error {
	if prompt.IsAborted(err) {
		st.logger.Error(fmt.Sprintf("Aborted the Operation using CTRL+D while processing the action %s [%d] of type %s",
			action.Name, index, action.Type))
		st.result = Aborted()
		e.acknowledge(ctx)
		return ErrAborted
	}
	st.result = Failed(err.Error())
	return &RunError{Action: action.Name, Index: index, Type: action.Type, Err: err}
}

func (e *Executor) ask(ctx context.Context, message string) (bool, error) {
	if e.prompter == nil {
		return false, nil
	}
	answer, err := e.prompter.Input(ctx, message)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

func (e *Executor) acknowledge(ctx context.Context) {
	if e.prompter == nil {
		return
	}
	if err := prompt.Acknowledge(ctx, e.prompter); err != nil {
		e.logger.Debug("acknowledge prompt failed", log.Error(err))
	}
}
