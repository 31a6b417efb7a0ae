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

// Package parameter implements the typed, string-valued parameters that
// flow between the actions of an operation, the ordered Set that holds
// them, and the {{name}} placeholder resolver.
//
// All values are stored as strings regardless of the declared Type.
// Conversion happens only when a value is validated.
package parameter

import (
	"fmt"
	"strings"
)

// Type is the declared type of a parameter.
type Type int

const (
	TypeUndefined Type = iota
	TypeString
	TypeInteger
	TypeBoolean
)

// String returns the display name used in prompts and help text.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	default:
		return "Undefined"
	}
}

// Name returns the configuration name ("STRING", "INTEGER", ...).
func (t Type) Name() string {
	return strings.ToUpper(t.String())
}

// ParseType converts a configuration name to a Type. The empty string is
// STRING, the default for declared parameters.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "STRING":
		return TypeString, nil
	case "INTEGER":
		return TypeInteger, nil
	case "BOOLEAN":
		return TypeBoolean, nil
	case "UNDEFINED":
		return TypeUndefined, nil
	}
	return TypeUndefined, fmt.Errorf("unknown parameter type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Parameter is a named value with the metadata that controls how the
// processor resolves it.
type Parameter struct {
	Name string
	Type Type

	// Value is nil until the parameter has been resolved.
	Value        *string
	DefaultValue *string
	PresetValue  *string

	// APIParameterName replaces Name as the {key} used in request templates.
	APIParameterName string
	// CustomInputName is the name looked up in the argument and accumulated
	// scopes instead of Name.
	CustomInputName string
	// OverrideParameterName makes this parameter answer lookups for a
	// different name, but only for the action index it belongs to.
	OverrideParameterName string
	// CustomText replaces the default prompt text.
	CustomText string

	NonStick                    bool
	CommandParameter            bool
	CustomParameter             bool
	OverrideOutputParameterName bool

	actionIndex *int
}

// New returns a STRING-or-other parameter holding value.
func New(name string, typ Type, value string) *Parameter {
	return &Parameter{Name: name, Type: typ, Value: &value}
}

// Output returns a parameter produced by the action at actionIndex.
func Output(name string, typ Type, value string, actionIndex int) *Parameter {
	p := New(name, typ, value)
	p.SetActionIndex(actionIndex)
	return p
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// HasValue reports whether the parameter has been given a value.
func (p *Parameter) HasValue() bool {
	return p.Value != nil
}

// StringValue returns the value, or "" when unset.
func (p *Parameter) StringValue() string {
	if p.Value == nil {
		return ""
	}
	return *p.Value
}

// SetValue stores v as the parameter value.
func (p *Parameter) SetValue(v string) {
	p.Value = &v
}

// ActionIndex returns the index of the action that owns the parameter.
func (p *Parameter) ActionIndex() (int, bool) {
	if p.actionIndex == nil {
		return 0, false
	}
	return *p.actionIndex, true
}

// SetActionIndex binds the parameter to the action at index i.
func (p *Parameter) SetActionIndex(i int) {
	p.actionIndex = &i
}

// InputName is the name used when looking the parameter up in the
// argument and accumulated scopes.
func (p *Parameter) InputName() string {
	if p.CustomInputName != "" {
		return p.CustomInputName
	}
	return p.Name
}

// TemplateKey is the name used for {key} substitution in request templates.
func (p *Parameter) TemplateKey() string {
	if p.APIParameterName != "" {
		return p.APIParameterName
	}
	return p.Name
}

// Clone returns a deep copy of p.
func (p *Parameter) Clone() *Parameter {
	if p == nil {
		return nil
	}
	c := *p
	c.Value = clonePtr(p.Value)
	c.DefaultValue = clonePtr(p.DefaultValue)
	c.PresetValue = clonePtr(p.PresetValue)
	if p.actionIndex != nil {
		i := *p.actionIndex
		c.actionIndex = &i
	}
	return &c
}

func (p *Parameter) matchesIndex(actionIndex int) bool {
	return p.actionIndex != nil && *p.actionIndex == actionIndex
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
