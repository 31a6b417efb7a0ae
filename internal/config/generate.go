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
	"os"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tombee/omcli/pkg/condition"
	omerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// GeneratedTreeFile is the file written by the tree generator.
const GeneratedTreeFile = "temp_om_tree.json"

// Generated is the outcome of a generator round trip.
type Generated struct {
	Path string
	Tree *operation.Tree
	// Diff is empty when the written tree decodes to the original.
	Diff string
}

// Identical reports whether the round trip preserved the tree.
func (g *Generated) Identical() bool {
	return g.Diff == ""
}

// TreeOptions compares loaded trees structurally.
var TreeOptions = cmp.Options{
	cmp.AllowUnexported(parameter.Set{}, parameter.Parameter{}),
	cmpopts.EquateEmpty(),
}

// Generate writes tree to path in file form, with custom variable values
// folded back into {{{VAR}}} placeholders and default-valued fields
// omitted, then reads the file back and compares the two trees.
func Generate(tree *operation.Tree, path, workspace string) (*Generated, error) {
	data, err := EncodeTree(tree, workspace)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "cannot write the generated OMTree", Cause: err}
	}
	reloaded, err := LoadTree(path, workspace)
	if err != nil {
		return nil, err
	}
	return &Generated{
		Path: path,
		Tree: reloaded,
		Diff: cmp.Diff(tree, reloaded, TreeOptions),
	}, nil
}

// EncodeTree renders tree as an indented JSON tree file.
func EncodeTree(tree *operation.Tree, workspace string) ([]byte, error) {
	e := newTreeEncoder(expandVariables(tree.CustomVariables, workspace))
	tf := treeFile{
		Name:            tree.Name,
		Description:     tree.Description,
		CustomVariables: tree.CustomVariables,
		Operations:      e.operations(tree.Operations),
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type placeholder struct {
	value, token string
}

type treeEncoder struct {
	placeholders []placeholder
}

func newTreeEncoder(vars map[string]string) *treeEncoder {
	e := &treeEncoder{}
	for _, k := range sortedKeys(vars) {
		if vars[k] == "" {
			continue
		}
		e.placeholders = append(e.placeholders, placeholder{value: vars[k], token: "{{{" + k + "}}}"})
	}
	// Longer values first so a value containing another is folded whole.
	sort.SliceStable(e.placeholders, func(i, j int) bool {
		return len(e.placeholders[i].value) > len(e.placeholders[j].value)
	})
	return e
}

func (e *treeEncoder) text(s string) string {
	for _, p := range e.placeholders {
		s = strings.ReplaceAll(s, p.value, p.token)
	}
	return s
}

func (e *treeEncoder) ptr(s *string) *scalar {
	if s == nil {
		return nil
	}
	v := scalar(e.text(*s))
	return &v
}

func (e *treeEncoder) operations(ops []*operation.Operation) []operationFile {
	var out []operationFile
	for _, op := range ops {
		of := operationFile{
			OperationID: e.text(op.ID),
			MenuTitle:   e.text(op.MenuTitle),
			Children:    e.operations(op.Children),
		}
		if op.HelpText != DefaultHelpText {
			h := e.text(op.HelpText)
			of.HelpText = &h
		}
		for _, a := range op.Actions {
			of.Actions = append(of.Actions, e.action(a))
		}
		out = append(out, of)
	}
	return out
}

func (e *treeEncoder) action(a *operation.Action) actionFile {
	af := actionFile{
		Type:                   string(a.Type),
		Name:                   e.text(a.Name),
		CustomLoopRepeatPrompt: e.text(a.CustomLoopRepeatPrompt),
	}
	if a.LoopNumber != nil {
		n := loopNumber(*a.LoopNumber)
		af.LoopNumber = &n
	}
	if !a.FailureTermination {
		f := false
		af.FailureTermination = &f
	}
	for _, p := range a.Parameters.Items() {
		af.Parameters = append(af.Parameters, e.parameter(p))
	}
	for _, g := range a.SkipIfConditions {
		af.SkipIfConditions = append(af.SkipIfConditions, e.group(g))
	}
	return af
}

func (e *treeEncoder) parameter(p *parameter.Parameter) parameterFile {
	pf := parameterFile{
		Name:                        e.text(p.Name),
		DefaultValue:                e.ptr(p.DefaultValue),
		PresetValue:                 e.ptr(p.PresetValue),
		CustomText:                  e.text(p.CustomText),
		APIParameterName:            e.text(p.APIParameterName),
		CustomInputName:             e.text(p.CustomInputName),
		OverrideParameterName:       e.text(p.OverrideParameterName),
		NonStick:                    p.NonStick,
		CommandParameter:            p.CommandParameter,
		CustomParameter:             p.CustomParameter,
		OverrideOutputParameterName: p.OverrideOutputParameterName,
	}
	if p.Type != parameter.TypeString {
		pf.Type = p.Type.Name()
	}
	return pf
}

func (e *treeEncoder) group(g condition.Group) groupFile {
	gf := groupFile{Conditions: []conditionFile{}}
	if g.Operator != "" && g.Operator != condition.OperatorAnd {
		gf.Operator = string(g.Operator)
	}
	for _, c := range g.Conditions {
		gf.Conditions = append(gf.Conditions, conditionFile{
			ParameterName:      e.text(c.ParameterName),
			JSONPath:           e.text(c.JSONPath),
			Regex:              e.text(c.Regex),
			SkipIfPathNotFound: c.SkipIfPathNotFound,
			Expression:         c.Expression,
		})
	}
	return gf
}
