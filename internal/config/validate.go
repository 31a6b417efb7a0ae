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
	"errors"
	"fmt"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/api"
	omerrors "github.com/tombee/omcli/pkg/errors"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// ValidateTree checks every action of tree against the registered actions
// and the API catalog. The first invalid action is reported.
func ValidateTree(tree *operation.Tree, registry *action.Registry, catalog *api.Catalog) error {
	var err error
	tree.Walk(func(op *operation.Operation) {
		if err != nil {
			return
		}
		for _, a := range op.Actions {
			if verr := validateAction(a, registry, catalog); verr != nil {
				err = &omerrors.ConfigError{
					Key: op.ID,
					Reason: fmt.Sprintf("Invalid OMTree configuration found in the action '%s' from the operation '%s'",
						a.Name, op.ID),
					Cause: verr,
				}
				return
			}
		}
	})
	return err
}

func validateAction(a *operation.Action, registry *action.Registry, catalog *api.Catalog) error {
	switch a.Type {
	case operation.ActionTypeAPIRequest:
		_, _, err := catalog.Resolve(a.Name)
		return err
	case operation.ActionTypeFunctionCall:
		def, ok := registry.Definition(a.Name)
		if !ok {
			return fmt.Errorf("No loaded Action pack action named: '%s'", a.Name)
		}
		for _, p := range a.Parameters.Items() {
			if err := validateParameter(p, def); err != nil {
				return err
			}
		}
	case operation.ActionTypeLoopStart, operation.ActionTypeLoopEnd:
		if a.LoopNumber == nil {
			return errors.New("loop markers must have a loop_number")
		}
	}
	return nil
}

func validateParameter(p *parameter.Parameter, def *action.Definition) error {
	if p.CustomParameter {
		return nil
	}
	name, text := p.Name, p.Name
	if p.OverrideParameterName != "" {
		name = p.OverrideParameterName
		text = fmt.Sprintf("%s (overridden from %s)", name, p.Name)
	}
	spec, ok := def.Parameters[name]
	if !ok {
		return fmt.Errorf("No parameter definition found for the parameter: '%s'", text)
	}
	if spec.Type != p.Type {
		return fmt.Errorf("Parameter type mismatch for parameter: '%s'. Expected: '%s', Found: '%s'",
			text, spec.Type.Name(), p.Type.Name())
	}
	return nil
}
