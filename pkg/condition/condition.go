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

// Package condition evaluates the skip conditions attached to actions.
//
// A Condition extracts values from a parameter with a JSON path and
// matches them against a regular expression. Conditions are combined into
// Groups with AND or OR; an action is skipped when every one of its groups
// holds.
package condition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/tombee/omcli/internal/jq"
	"github.com/tombee/omcli/pkg/parameter"
)

// lookupIndex is the action index used for condition lookups. No
// parameter is bound to it, so override names never apply.
const lookupIndex = -1

// Operator combines the conditions of a Group.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// Condition tests one parameter of the accumulated scope.
type Condition struct {
	ParameterName string
	JSONPath      string
	Regex         string

	// SkipIfPathNotFound is the result when the path matches nothing.
	// nil means false.
	SkipIfPathNotFound *bool

	// Expression, when set, replaces the path and regex test with an
	// expr-lang boolean expression evaluated over every parameter value.
	Expression string
}

// Group is a list of conditions joined by Operator. The zero Operator is AND.
type Group struct {
	Conditions []Condition
	Operator   Operator
}

// Evaluator evaluates conditions against a parameter scope.
type Evaluator struct {
	jq     *jq.Executor
	logger *slog.Logger
}

// NewEvaluator returns an Evaluator logging its decisions at debug level.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{
		jq:     jq.NewExecutor(jq.DefaultTimeout, jq.DefaultMaxInputSize),
		logger: logger,
	}
}

// ShouldSkip reports whether every group holds. No groups never skips.
func (e *Evaluator) ShouldSkip(ctx context.Context, groups []Group, scope *parameter.Set) bool {
	if len(groups) == 0 {
		return false
	}
	for _, g := range groups {
		if !e.EvaluateGroup(ctx, g, scope) {
			return false
		}
	}
	return true
}

// EvaluateGroup applies the group operator. Unknown operators are false.
func (e *Evaluator) EvaluateGroup(ctx context.Context, g Group, scope *parameter.Set) bool {
	switch Operator(strings.ToUpper(string(g.Operator))) {
	case "", OperatorAnd:
		for _, c := range g.Conditions {
			if !e.Evaluate(ctx, c, scope) {
				e.logger.Debug("Condition group evaluated", slog.String("operator", "AND"), slog.Bool("result", false))
				return false
			}
		}
		e.logger.Debug("Condition group evaluated", slog.String("operator", "AND"), slog.Bool("result", true))
		return true
	case OperatorOr:
		for _, c := range g.Conditions {
			if e.Evaluate(ctx, c, scope) {
				e.logger.Debug("Condition group evaluated", slog.String("operator", "OR"), slog.Bool("result", true))
				return true
			}
		}
		e.logger.Debug("Condition group evaluated", slog.String("operator", "OR"), slog.Bool("result", false))
		return false
	default:
		e.logger.Debug("Condition group operator not recognized", slog.String("operator", string(g.Operator)))
		return false
	}
}

// Evaluate tests a single condition.
func (e *Evaluator) Evaluate(ctx context.Context, c Condition, scope *parameter.Set) bool {
	if c.Expression != "" {
		return e.evaluateExpression(c, scope)
	}

	matches := e.matches(ctx, c, scope)
	if len(matches) == 0 {
		result := c.notFound()
		e.logger.Debug("Condition path not found",
			slog.String("parameter", c.ParameterName),
			slog.String("jsonpath", c.JSONPath),
			slog.Bool("result", result))
		return result
	}

	re, err := regexp.Compile(c.Regex)
	if err != nil {
		e.logger.Warn("Invalid condition regex", slog.String("regex", c.Regex), slog.Any("error", err))
		return false
	}

	for _, m := range matches {
		if s := stringify(m); re.MatchString(s) {
			e.logger.Debug("Condition matched",
				slog.String("parameter", c.ParameterName),
				slog.String("jsonpath", c.JSONPath),
				slog.String("regex", c.Regex),
				slog.String("value", s))
			return true
		}
	}
	e.logger.Debug("Condition did not match any value",
		slog.String("parameter", c.ParameterName),
		slog.String("jsonpath", c.JSONPath),
		slog.String("regex", c.Regex))
	return false
}

func (e *Evaluator) matches(ctx context.Context, c Condition, scope *parameter.Set) []any {
	p, ok := scope.Get(c.ParameterName, lookupIndex)
	if !ok || !p.HasValue() {
		return nil
	}

	var target any = p.StringValue()
	var decoded any
	if err := json.Unmarshal([]byte(p.StringValue()), &decoded); err == nil {
		target = decoded
	} else {
		e.logger.Debug("Condition parameter is not JSON", slog.String("parameter", c.ParameterName), slog.Any("error", err))
	}

	program, err := jq.FromJSONPath(c.JSONPath)
	if err != nil {
		e.logger.Warn("Invalid condition jsonpath", slog.String("jsonpath", c.JSONPath), slog.Any("error", err))
		return nil
	}

	results, err := e.jq.Run(ctx, program, target)
	if err != nil {
		e.logger.Warn("Condition jsonpath evaluation failed", slog.String("jsonpath", c.JSONPath), slog.Any("error", err))
		return nil
	}
	return results
}

func (e *Evaluator) evaluateExpression(c Condition, scope *parameter.Set) bool {
	env := expressionEnv(scope)
	program, err := expr.Compile(c.Expression, expr.Env(env), expr.AsBool())
	if err != nil {
		e.logger.Warn("Invalid condition expression", slog.String("expression", c.Expression), slog.Any("error", err))
		return c.notFound()
	}
	out, err := expr.Run(program, env)
	if err != nil {
		e.logger.Debug("Condition expression failed", slog.String("expression", c.Expression), slog.Any("error", err))
		return c.notFound()
	}
	result, _ := out.(bool)
	e.logger.Debug("Condition expression evaluated", slog.String("expression", c.Expression), slog.Bool("result", result))
	return result
}

func (c Condition) notFound() bool {
	return c.SkipIfPathNotFound != nil && *c.SkipIfPathNotFound
}

// expressionEnv exposes each parameter by name. JSON objects and arrays
// are decoded, BOOLEAN and INTEGER values are converted.
func expressionEnv(scope *parameter.Set) map[string]any {
	env := make(map[string]any, scope.Len())
	for _, p := range scope.Items() {
		if _, seen := env[p.Name]; seen || !p.HasValue() {
			continue
		}
		value := p.StringValue()
		switch p.Type {
		case parameter.TypeBoolean:
			env[p.Name] = parameter.IsTrue(value)
			continue
		case parameter.TypeInteger:
			if n, err := strconv.Atoi(value); err == nil {
				env[p.Name] = n
				continue
			}
		}
		trimmed := strings.TrimSpace(value)
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			var decoded any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err == nil {
				env[p.Name] = decoded
				continue
			}
		}
		env[p.Name] = value
	}
	return env
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
