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

// Package action holds the registry of function actions that operation
// trees call by name.
//
// Actions are grouped in packs. Every action publishes a schema of the
// parameters it reads and writes, which the configuration loader checks
// operation trees against before anything runs.
package action

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// Direction tells whether an action reads or writes a parameter.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// ParameterSpec is the schema entry of one action parameter.
type ParameterSpec struct {
	Direction Direction      `json:"direction" yaml:"direction"`
	Type      parameter.Type `json:"type" yaml:"type"`
}

// In returns an input spec of type t.
func In(t parameter.Type) ParameterSpec { return ParameterSpec{Direction: Input, Type: t} }

// Out returns an output spec of type t.
func Out(t parameter.Type) ParameterSpec { return ParameterSpec{Direction: Output, Type: t} }

// Definition is a registered action.
type Definition struct {
	Name       string
	Pack       string
	Parameters map[string]ParameterSpec
	Func       operation.ActionFunc
}

// Pack is a named group of actions.
type Pack struct {
	Name    string
	Actions []Definition
}

// Registry resolves action names. It implements operation.FunctionRegistry.
type Registry struct {
	defs  map[string]*Definition
	packs []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds every action of p. Nothing is added when any action is
// invalid or its name is already taken.
func (r *Registry) Register(p Pack) error {
	if p.Name == "" {
		return fmt.Errorf("action pack has no name")
	}
	seen := make(map[string]bool, len(p.Actions))
	for _, d := range p.Actions {
		if err := validateDefinition(d); err != nil {
			return fmt.Errorf("action pack %s: %w", p.Name, err)
		}
		if seen[d.Name] {
			return fmt.Errorf("action pack %s: action %s is declared twice", p.Name, d.Name)
		}
		if existing, taken := r.defs[d.Name]; taken {
			return fmt.Errorf("action pack %s: action %s is already registered by %s", p.Name, d.Name, existing.Pack)
		}
		seen[d.Name] = true
	}
	for _, d := range p.Actions {
		d.Pack = p.Name
		r.defs[d.Name] = &d
	}
	r.packs = append(r.packs, p.Name)
	return nil
}

func validateDefinition(d Definition) error {
	if d.Name == "" {
		return fmt.Errorf("action has no name")
	}
	if d.Func == nil {
		return fmt.Errorf("action %s has no function", d.Name)
	}
	for name, spec := range d.Parameters {
		if spec.Direction != Input && spec.Direction != Output {
			return fmt.Errorf("action %s: parameter %s has direction %q, want input or output", d.Name, name, spec.Direction)
		}
		if spec.Type == parameter.TypeUndefined {
			return fmt.Errorf("action %s: parameter %s has no type", d.Name, name)
		}
	}
	return nil
}

// Lookup implements operation.FunctionRegistry.
func (r *Registry) Lookup(name string) (operation.ActionFunc, bool) {
	d, ok := r.defs[name]
	if !ok {
		return nil, false
	}
	return d.Func, true
}

// Definition returns the registered definition of name.
func (r *Registry) Definition(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Packs returns the names of the registered packs in registration order.
func (r *Registry) Packs() []string {
	return append([]string(nil), r.packs...)
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Require returns the non-empty value of name or an error naming it.
func Require(call *operation.Call, name string) (string, error) {
	v, ok := call.Value(name)
	if !ok || v == "" {
		return "", fmt.Errorf("found no %s", strings.ReplaceAll(name, "_", " "))
	}
	return v, nil
}

// DecodeJSON unmarshals value or returns an error carrying message.
func DecodeJSON(value, message string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return nil, fmt.Errorf("%s: %w", message, err)
	}
	return v, nil
}

// Failf returns a failed result with a formatted text.
func Failf(format string, args ...any) *operation.Result {
	return operation.Failed(fmt.Sprintf(format, args...))
}
