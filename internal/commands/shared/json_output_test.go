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

package shared

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/tombee/omcli/pkg/errors"
)

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	err := EmitJSONError(&buf, "validate", &pkgerrors.ConfigError{Key: "tree.json", Reason: "invalid"})
	require.NoError(t, err)

	var got struct {
		Version string      `json:"@version"`
		Command string      `json:"command"`
		Success bool        `json:"success"`
		Errors  []JSONError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, JSONVersion, got.Version)
	assert.Equal(t, "validate", got.Command)
	assert.False(t, got.Success)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, ErrorCodeInvalidConfig, got.Errors[0].Code)
	assert.NotEmpty(t, got.Errors[0].Suggestion)
}
