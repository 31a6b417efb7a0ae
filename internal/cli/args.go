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

package cli

import (
	"fmt"
	"log/slog"
	"strings"

	omerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// ParseArgs turns name=value positional arguments into STRING parameters.
// One outer pair of matching quotes is removed from each value. Arguments
// without '=' are skipped; when none of the given arguments is valid the
// result is an error.
func ParseArgs(args []string, logger *slog.Logger) (*parameter.Set, error) {
	set := parameter.NewSet()
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			logger.Warn("ignoring argument without name=value form", slog.String("argument", arg))
			continue
		}
		set.Add(parameter.New(name, parameter.TypeString, unquote(value)))
	}
	if len(args) > 0 && !set.HasItems() {
		return nil, &omerrors.ValidationError{Field: "parameters", Message: "No valid parameters found.",
			Hint: "Pass parameters as name=value"}
	}
	return set, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// VerifyArgs checks args against the command parameters of op. Every
// command parameter must be present and valid for its declared type. The
// returned set holds only those parameters, typed as declared.
func VerifyArgs(op *operation.Operation, args *parameter.Set) (*parameter.Set, error) {
	verified := parameter.NewSet()
	if len(op.DeclaredParameters()) == 0 {
		return verified, nil
	}
	for _, want := range op.CommandParameters() {
		got, ok := args.Find(want.Name)
		if !ok || !got.HasValue() {
			return nil, &omerrors.ValidationError{
				Field:   want.Name,
				Message: fmt.Sprintf("The parameter %s of the type %s is required for %s.", want.Name, want.Type, op.ID),
			}
		}
		value, err := parameter.Validate(want.Name, got.StringValue(), want.Type)
		if err != nil {
			return nil, err
		}
		p := parameter.New(want.Name, want.Type, value)
		p.CommandParameter = true
		verified.Add(p)
	}
	return verified, nil
}
