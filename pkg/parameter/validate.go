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
	"strings"

	omerrors "github.com/tombee/omcli/pkg/errors"
)

// Validate checks value against typ and returns the stored form. BOOLEAN
// values are normalized to lowercase "true" or "false".
func Validate(name, value string, typ Type) (string, error) {
	switch typ {
	case TypeString:
		return value, nil
	case TypeBoolean:
		lower := strings.ToLower(value)
		if lower != "true" && lower != "false" {
			return "", &omerrors.ValidationError{Field: name, Message: fmt.Sprintf("%s is not a valid boolean value.", value)}
		}
		return lower, nil
	case TypeInteger:
		if !isDigits(value) {
			return "", &omerrors.ValidationError{Field: name, Message: fmt.Sprintf("%s is not a valid integer.", value)}
		}
		return value, nil
	default:
		return "", &omerrors.ValidationError{Field: name, Message: fmt.Sprintf("The parameter type %s is currently not supported", typ)}
	}
}

// IsTrue reports whether a stored BOOLEAN value is true.
func IsTrue(value string) bool {
	return strings.EqualFold(value, "true")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
