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
	"log/slog"
	"regexp"
)

// maxPlaceholderLogLength bounds the placeholder text quoted in warnings.
const maxPlaceholderLogLength = 50

var placeholderPattern = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)

// Resolver substitutes {{name}} tokens in parameter fields with values
// looked up in an ordered list of scopes.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver returns a Resolver that reports unresolved tokens to logger.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger}
}

// Resolve returns a copy of p with placeholders substituted in Value,
// CustomText, CustomInputName, DefaultValue and PresetValue. Scopes are
// searched in order and the first parameter with the token's name wins.
// Tokens that cannot be resolved are left in place.
func (r *Resolver) Resolve(p *Parameter, scopes ...*Set) *Parameter {
	c := p.Clone()
	if c == nil {
		return nil
	}
	c.Value = r.resolvePtr(c.Value, scopes)
	c.DefaultValue = r.resolvePtr(c.DefaultValue, scopes)
	c.PresetValue = r.resolvePtr(c.PresetValue, scopes)
	c.CustomText = r.ResolveText(c.CustomText, scopes...)
	c.CustomInputName = r.ResolveText(c.CustomInputName, scopes...)
	return c
}

// ResolveText substitutes every {{name}} token of text in a single pass.
// Substituted values are not scanned again.
func (r *Resolver) ResolveText(text string, scopes ...*Set) string {
	if text == "" {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(placeholder string) string {
		token := placeholderPattern.FindStringSubmatch(placeholder)[1]
		for _, scope := range scopes {
			found, ok := scope.Find(token)
			if !ok {
				continue
			}
			if found.Value == nil {
				r.logger.Warn("Found placeholder parameter without a value",
					slog.String("placeholder", truncate(placeholder)))
				return placeholder
			}
			return *found.Value
		}
		r.logger.Warn("Unable to resolve placeholder",
			slog.String("placeholder", truncate(placeholder)))
		return placeholder
	})
}

func (r *Resolver) resolvePtr(s *string, scopes []*Set) *string {
	if s == nil {
		return nil
	}
	v := r.ResolveText(*s, scopes...)
	return &v
}

func truncate(s string) string {
	if len(s) <= maxPlaceholderLogLength {
		return s
	}
	return s[:maxPlaceholderLogLength] + "..."
}
