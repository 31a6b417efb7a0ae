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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/omcli/pkg/condition"
	omerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// WorkspaceVariable is expanded to the workspace root inside custom
// variable values.
const WorkspaceVariable = "WORKSPACE"

// DefaultHelpText is the help text of an operation that declares none.
const DefaultHelpText = "This is a sample help text"

// On-disk shape of an operation tree. Field order is the write order of
// the generator.
type treeFile struct {
	Name            string            `json:"name" yaml:"name"`
	Description     string            `json:"description" yaml:"description"`
	CustomVariables map[string]string `json:"custom_variables,omitempty" yaml:"custom_variables,omitempty"`
	Operations      []operationFile   `json:"operations" yaml:"operations"`
}

type operationFile struct {
	OperationID string          `json:"operation_id" yaml:"operation_id"`
	MenuTitle   string          `json:"menu_title" yaml:"menu_title"`
	HelpText    *string         `json:"help_text,omitempty" yaml:"help_text,omitempty"`
	Actions     []actionFile    `json:"actions,omitempty" yaml:"actions,omitempty"`
	Children    []operationFile `json:"children,omitempty" yaml:"children,omitempty"`
}

type actionFile struct {
	Type                   string          `json:"type" yaml:"type"`
	Name                   string          `json:"name" yaml:"name"`
	LoopNumber             *loopNumber     `json:"loop_number,omitempty" yaml:"loop_number,omitempty"`
	CustomLoopRepeatPrompt string          `json:"custom_loop_repeat_prompt,omitempty" yaml:"custom_loop_repeat_prompt,omitempty"`
	FailureTermination     *bool           `json:"failure_termination,omitempty" yaml:"failure_termination,omitempty"`
	Parameters             []parameterFile `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	SkipIfConditions       []groupFile     `json:"skip_if_conditions,omitempty" yaml:"skip_if_conditions,omitempty"`
}

type parameterFile struct {
	Name                        string  `json:"name" yaml:"name"`
	Type                        string  `json:"type,omitempty" yaml:"type,omitempty"`
	DefaultValue                *scalar `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	CustomText                  string  `json:"custom_text,omitempty" yaml:"custom_text,omitempty"`
	APIParameterName            string  `json:"api_parameter_name,omitempty" yaml:"api_parameter_name,omitempty"`
	NonStick                    bool    `json:"non_stick,omitempty" yaml:"non_stick,omitempty"`
	PresetValue                 *scalar `json:"preset_value,omitempty" yaml:"preset_value,omitempty"`
	CustomInputName             string  `json:"custom_input_name,omitempty" yaml:"custom_input_name,omitempty"`
	CommandParameter            bool    `json:"command_parameter,omitempty" yaml:"command_parameter,omitempty"`
	CustomParameter             bool    `json:"custom_parameter,omitempty" yaml:"custom_parameter,omitempty"`
	OverrideOutputParameterName bool    `json:"override_output_parameter_name,omitempty" yaml:"override_output_parameter_name,omitempty"`
	OverrideParameterName       string  `json:"override_parameter_name,omitempty" yaml:"override_parameter_name,omitempty"`
}

type groupFile struct {
	Conditions []conditionFile `json:"conditions" yaml:"conditions"`
	Operator   string          `json:"operator,omitempty" yaml:"operator,omitempty"`
}

type conditionFile struct {
	ParameterName      string `json:"parameter_name" yaml:"parameter_name"`
	JSONPath           string `json:"jsonpath,omitempty" yaml:"jsonpath,omitempty"`
	Regex              string `json:"regex,omitempty" yaml:"regex,omitempty"`
	SkipIfPathNotFound *bool  `json:"skip_if_path_not_found,omitempty" yaml:"skip_if_path_not_found,omitempty"`
	Expression         string `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// scalar is a parameter value written as a JSON string, number or boolean.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = scalar(t)
	case float64, bool:
		*s = scalar(bytes.TrimSpace(b))
	default:
		return fmt.Errorf("expected a string, number or boolean, found %s", b)
	}
	return nil
}

// loopNumber accepts both 3 and "3".
type loopNumber int

func (n *loopNumber) UnmarshalJSON(b []byte) error {
	return n.parse(strings.Trim(string(bytes.TrimSpace(b)), `"`))
}

func (n *loopNumber) UnmarshalYAML(node *yaml.Node) error {
	return n.parse(node.Value)
}

func (n *loopNumber) parse(s string) error {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("loop_number %q is not an integer", s)
	}
	*n = loopNumber(i)
	return nil
}

// LoadTree reads and decodes the operation tree at path.
func LoadTree(path, workspace string) (*operation.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "cannot read the OMTree configuration file", Cause: err}
	}
	return DecodeTree(data, path, workspace)
}

// DecodeTree decodes an operation tree. Files ending in .yaml or .yml are
// YAML, everything else JSON. Every {{{VAR}}} of a string field is
// replaced with the value of the custom variable VAR after $WORKSPACE and
// environment expansion.
func DecodeTree(data []byte, path, workspace string) (*operation.Tree, error) {
	var tf treeFile
	var err error
	if isYAML(path) {
		err = yaml.Unmarshal(data, &tf)
	} else {
		err = json.Unmarshal(data, &tf)
	}
	if err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "invalid OMTree configuration file", Cause: err}
	}
	b := &treeBuilder{vars: expandVariables(tf.CustomVariables, workspace)}
	tree, err := b.tree(tf)
	if err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "invalid OMTree configuration file", Cause: err}
	}
	return tree, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// expandVariables returns the custom variables with $WORKSPACE and
// environment references expanded. Unknown references are left as is.
func expandVariables(vars map[string]string, workspace string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = os.Expand(v, func(name string) string {
			if name == WorkspaceVariable {
				return workspace
			}
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			return "$" + name
		})
	}
	return out
}

// sortedKeys returns the keys of m in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type treeBuilder struct {
	vars map[string]string
}

func (b *treeBuilder) text(s string) string {
	if !strings.Contains(s, "{{{") {
		return s
	}
	for _, k := range sortedKeys(b.vars) {
		s = strings.ReplaceAll(s, "{{{"+k+"}}}", b.vars[k])
	}
	return s
}

func (b *treeBuilder) tree(tf treeFile) (*operation.Tree, error) {
	t := &operation.Tree{
		Name:            tf.Name,
		Description:     tf.Description,
		CustomVariables: tf.CustomVariables,
	}
	ops, err := b.operations(tf.Operations)
	if err != nil {
		return nil, err
	}
	t.Operations = ops
	return t, nil
}

func (b *treeBuilder) operations(files []operationFile) ([]*operation.Operation, error) {
	var ops []*operation.Operation
	for i, of := range files {
		op, err := b.operation(of)
		if err != nil {
			return nil, err
		}
		if op.ID == "" {
			return nil, fmt.Errorf("operation %d (%s) has no operation_id", i, op.MenuTitle)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (b *treeBuilder) operation(of operationFile) (*operation.Operation, error) {
	op := &operation.Operation{
		ID:        b.text(of.OperationID),
		MenuTitle: b.text(of.MenuTitle),
		HelpText:  DefaultHelpText,
	}
	if of.HelpText != nil {
		op.HelpText = b.text(*of.HelpText)
	}
	for i, af := range of.Actions {
		a, err := b.action(af)
		if err != nil {
			return nil, fmt.Errorf("operation %s, action %d: %w", op.ID, i, err)
		}
		op.Actions = append(op.Actions, a)
	}
	children, err := b.operations(of.Children)
	if err != nil {
		return nil, err
	}
	op.Children = children
	return op, nil
}

func (b *treeBuilder) action(af actionFile) (*operation.Action, error) {
	a := &operation.Action{
		Type:                   operation.ActionType(strings.ToUpper(af.Type)),
		Name:                   b.text(af.Name),
		CustomLoopRepeatPrompt: b.text(af.CustomLoopRepeatPrompt),
		FailureTermination:     af.FailureTermination == nil || *af.FailureTermination,
		Parameters:             parameter.NewSet(),
	}
	if !a.Type.Valid() {
		return nil, fmt.Errorf("unknown action type %q", af.Type)
	}
	if af.LoopNumber != nil {
		n := int(*af.LoopNumber)
		a.LoopNumber = &n
	}
	for _, pf := range af.Parameters {
		p, err := b.parameter(pf)
		if err != nil {
			return nil, err
		}
		a.Parameters.Add(p)
	}
	for _, gf := range af.SkipIfConditions {
		g, err := b.group(gf)
		if err != nil {
			return nil, err
		}
		a.SkipIfConditions = append(a.SkipIfConditions, g)
	}
	return a, nil
}

func (b *treeBuilder) parameter(pf parameterFile) (*parameter.Parameter, error) {
	if pf.Name == "" {
		return nil, fmt.Errorf("a parameter has no name")
	}
	typ, err := parameter.ParseType(pf.Type)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", pf.Name, err)
	}
	return &parameter.Parameter{
		Name:                        b.text(pf.Name),
		Type:                        typ,
		DefaultValue:                b.scalar(pf.DefaultValue),
		PresetValue:                 b.scalar(pf.PresetValue),
		CustomText:                  b.text(pf.CustomText),
		APIParameterName:            b.text(pf.APIParameterName),
		CustomInputName:             b.text(pf.CustomInputName),
		OverrideParameterName:       b.text(pf.OverrideParameterName),
		NonStick:                    pf.NonStick,
		CommandParameter:            pf.CommandParameter,
		CustomParameter:             pf.CustomParameter,
		OverrideOutputParameterName: pf.OverrideOutputParameterName,
	}, nil
}

func (b *treeBuilder) scalar(s *scalar) *string {
	if s == nil {
		return nil
	}
	v := b.text(string(*s))
	return &v
}

func (b *treeBuilder) group(gf groupFile) (condition.Group, error) {
	op := condition.Operator(strings.ToUpper(gf.Operator))
	switch op {
	case "":
		op = condition.OperatorAnd
	case condition.OperatorAnd, condition.OperatorOr:
	default:
		return condition.Group{}, fmt.Errorf("unknown condition operator %q", gf.Operator)
	}
	g := condition.Group{Operator: op}
	for _, cf := range gf.Conditions {
		g.Conditions = append(g.Conditions, condition.Condition{
			ParameterName:      b.text(cf.ParameterName),
			JSONPath:           b.text(cf.JSONPath),
			Regex:              b.text(cf.Regex),
			SkipIfPathNotFound: cf.SkipIfPathNotFound,
			Expression:         cf.Expression,
		})
	}
	return g, nil
}
