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
	"github.com/tombee/omcli/pkg/condition"
	"github.com/tombee/omcli/pkg/parameter"
)

// ActionType selects how an action is dispatched.
type ActionType string

const (
	// ActionTypeAPIRequest sends a request through the RequestAdapter.
	ActionTypeAPIRequest ActionType = "API_REQUEST"
	// ActionTypeFunctionCall invokes a callable from the FunctionRegistry.
	ActionTypeFunctionCall ActionType = "FUNCTION_CALL"
	// ActionTypeLoopStart marks the beginning of a repeatable section.
	ActionTypeLoopStart ActionType = "LOOP_START"
	// ActionTypeLoopEnd marks the end of a repeatable section.
	ActionTypeLoopEnd ActionType = "LOOP_END"
)

// IsLoop reports whether t is a loop marker.
func (t ActionType) IsLoop() bool {
	return t == ActionTypeLoopStart || t == ActionTypeLoopEnd
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionTypeAPIRequest, ActionTypeFunctionCall, ActionTypeLoopStart, ActionTypeLoopEnd:
		return true
	}
	return false
}

// Action is one step of an operation.
type Action struct {
	Type ActionType
	// Name is "api_id.endpoint" for API requests, the registered function
	// name for function calls and a free label for loop markers.
	Name string

	// LoopNumber ties loop markers together. Actions inside a loop that can
	// signal RepeatLoop carry the number of their loop as well.
	LoopNumber             *int
	CustomLoopRepeatPrompt string

	// FailureTermination stops the run when the action fails.
	FailureTermination bool

	Parameters       *parameter.Set
	SkipIfConditions []condition.Group
}

// Clone returns a deep copy of a, including its parameter values.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	if a.LoopNumber != nil {
		n := *a.LoopNumber
		c.LoopNumber = &n
	}
	c.Parameters = a.Parameters.Copy()
	if a.SkipIfConditions != nil {
		c.SkipIfConditions = make([]condition.Group, len(a.SkipIfConditions))
		for i, g := range a.SkipIfConditions {
			g.Conditions = append([]condition.Condition(nil), g.Conditions...)
			c.SkipIfConditions[i] = g
		}
	}
	return &c
}

// Operation is a node of the operation tree. Leaf operations carry actions,
// branch operations carry children.
type Operation struct {
	ID        string
	MenuTitle string
	HelpText  string
	Actions   []*Action
	Children  []*Operation
}

// IsLeaf reports whether the operation has no children.
func (o *Operation) IsLeaf() bool {
	return len(o.Children) == 0
}

// CommandParameters returns the command parameters declared by the
// operation's actions, first occurrence per name, in declaration order.
// Each returned parameter is a copy bound to the index of its action.
func (o *Operation) CommandParameters() []*parameter.Parameter {
	seen := make(map[string]bool)
	var out []*parameter.Parameter
	for i, a := range o.Actions {
		for _, p := range a.Parameters.Items() {
			if seen[p.Name] || !p.CommandParameter {
				continue
			}
			seen[p.Name] = true
			c := p.Clone()
			if _, ok := c.ActionIndex(); !ok {
				c.SetActionIndex(i)
			}
			out = append(out, c)
		}
	}
	return out
}

// DeclaredParameters returns one entry per parameter name declared by the
// operation's actions. The last declaration of a name decides its type.
func (o *Operation) DeclaredParameters() []*parameter.Parameter {
	index := make(map[string]*parameter.Parameter)
	var out []*parameter.Parameter
	for _, a := range o.Actions {
		for _, p := range a.Parameters.Items() {
			if existing, ok := index[p.Name]; ok {
				existing.Type = p.Type
				continue
			}
			np := &parameter.Parameter{Name: p.Name, Type: p.Type}
			index[p.Name] = np
			out = append(out, np)
		}
	}
	return out
}

// Tree is a loaded operation tree.
type Tree struct {
	Name            string
	Description     string
	CustomVariables map[string]string
	Operations      []*Operation
}

// Find returns the operation with the given id, searching depth first.
func (t *Tree) Find(id string) (*Operation, bool) {
	if t == nil {
		return nil, false
	}
	return find(t.Operations, id)
}

// Walk calls fn for every operation in the tree, parents before children.
func (t *Tree) Walk(fn func(op *Operation)) {
	if t == nil {
		return
	}
	walk(t.Operations, fn)
}

func find(ops []*Operation, id string) (*Operation, bool) {
	for _, op := range ops {
		if op.ID == id {
			return op, true
		}
		if found, ok := find(op.Children, id); ok {
			return found, true
		}
	}
	return nil, false
}

func walk(ops []*Operation, fn func(op *Operation)) {
	for _, op := range ops {
		fn(op)
		walk(op.Children, fn)
	}
}
