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

package parameter

import (
	"fmt"
	"log/slog"
)

// MaxLogValueLength bounds how much of a value LogValue prints.
const MaxLogValueLength = 400

// Set is an ordered collection of parameters. Names are not required to
// be unique; lookups return the first match. A nil *Set behaves as an
// empty set for every read method.
type Set struct {
	items []*Parameter
}

// NewSet returns a set holding params in order.
func NewSet(params ...*Parameter) *Set {
	s := &Set{}
	for _, p := range params {
		s.Add(p)
	}
	return s
}

// Len returns the number of parameters.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// HasItems reports whether the set is non-empty.
func (s *Set) HasItems() bool {
	return s.Len() > 0
}

// Items returns the parameters in order. The slice is a copy; the
// parameters are shared.
func (s *Set) Items() []*Parameter {
	if s == nil {
		return nil
	}
	out := make([]*Parameter, len(s.items))
	copy(out, s.items)
	return out
}

// Add appends p without checking for an existing name.
func (s *Set) Add(p *Parameter) {
	if p == nil {
		return
	}
	s.items = append(s.items, p)
}

// Merge upserts every parameter of other into s: the first parameter of s
// with the same name is replaced in place, otherwise the parameter is
// appended. Positions of existing names never move.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, incoming := range other.items {
		replaced := false
		for i, existing := range s.items {
			if existing.Name == incoming.Name {
				s.items[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			s.items = append(s.items, incoming)
		}
	}
}

// Find returns the first parameter named name, ignoring override names.
func (s *Set) Find(name string) (*Parameter, bool) {
	if s == nil {
		return nil, false
	}
	for _, p := range s.items {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// OverrideName returns the name of the parameter that overrides name for
// the action at actionIndex, or name itself when none does. Action packs
// use it to name their outputs.
func (s *Set) OverrideName(name string, actionIndex int) string {
	if s == nil {
		return name
	}
	for _, p := range s.items {
		if p.OverrideParameterName == name && p.matchesIndex(actionIndex) {
			return p.Name
		}
	}
	return name
}

// Get resolves name through OverrideName and returns the first parameter
// with the resulting name.
func (s *Set) Get(name string, actionIndex int) (*Parameter, bool) {
	return s.Find(s.OverrideName(name, actionIndex))
}

// Value returns the value of the parameter Get finds. ok is false when the
// parameter is missing or has no value.
func (s *Set) Value(name string, actionIndex int) (string, bool) {
	p, found := s.Get(name, actionIndex)
	if !found || p.Value == nil {
		return "", false
	}
	return *p.Value, true
}

// ValueOr returns Value, or def when it is missing or empty.
func (s *Set) ValueOr(name string, actionIndex int, def string) string {
	if v, ok := s.Value(name, actionIndex); ok && v != "" {
		return v
	}
	return def
}

// Copy returns a deep copy of the set.
func (s *Set) Copy() *Set {
	c := &Set{}
	if s == nil {
		return c
	}
	c.items = make([]*Parameter, 0, len(s.items))
	for _, p := range s.items {
		c.items = append(c.items, p.Clone())
	}
	return c
}

// LogValue implements slog.LogValuer. Long values are truncated.
func (s *Set) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, s.Len())
	for _, p := range s.Items() {
		value := "None"
		if p.Value != nil {
			value = *p.Value
			if len(value) > MaxLogValueLength {
				value = fmt.Sprintf("%s...(%d)", value[:MaxLogValueLength], len(value))
			}
		}
		group := []any{slog.String("type", p.Type.String()), slog.String("value", value)}
		if idx, ok := p.ActionIndex(); ok {
			group = append(group, slog.Int("action_index", idx))
		}
		if p.OverrideParameterName != "" {
			group = append(group, slog.String("overrides", p.OverrideParameterName))
		}
		if p.NonStick {
			group = append(group, slog.Bool("non_stick", true))
		}
		if p.CommandParameter {
			group = append(group, slog.Bool("command_parameter", true))
		}
		attrs = append(attrs, slog.Group(p.Name, group...))
	}
	return slog.GroupValue(attrs...)
}
