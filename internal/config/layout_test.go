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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// customDir creates a complete custom directory and returns its path.
func customDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{ActionPacksDir, APIDefinitionsDir, "operation_menus"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(DefaultTreeFile)), []byte(sampleTree), 0o644))
	return dir
}

func TestNewLayout(t *testing.T) {
	dir := customDir(t)

	l, err := NewLayout(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "operation_menus", "om_tree.json"), l.Tree)
	assert.Equal(t, filepath.Join(dir, ActionPacksDir), l.ActionPacks)
	assert.Equal(t, filepath.Join(dir, APIDefinitionsDir), l.APIDefinitions)

	other := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(other, []byte("name: x"), 0o644))
	l, err = NewLayout(dir, other)
	require.NoError(t, err)
	assert.Equal(t, other, l.Tree)
}

func TestNewLayoutErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) (custom, tree string)
		want  string
	}{
		{
			name:  "no custom path",
			setup: func(*testing.T, string) (string, string) { return "", "" },
			want:  "no custom path provided",
		},
		{
			name: "missing custom path",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope"), ""
			},
			want: "The custom path provided does not exist.",
		},
		{
			name: "missing tree",
			setup: func(_ *testing.T, dir string) (string, string) {
				return dir, filepath.Join(dir, "other.json")
			},
			want: "The OMTree configuration file does not exist.",
		},
		{
			name: "missing action packs",
			setup: func(t *testing.T, dir string) (string, string) {
				require.NoError(t, os.RemoveAll(filepath.Join(dir, ActionPacksDir)))
				return dir, ""
			},
			want: "The action_packs directory is missing from the custom directory.",
		},
		{
			name: "missing api definitions",
			setup: func(t *testing.T, dir string) (string, string) {
				require.NoError(t, os.RemoveAll(filepath.Join(dir, APIDefinitionsDir)))
				return dir, ""
			},
			want: "The api_definitions directory is missing from the custom directory.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			custom, tree := tt.setup(t, customDir(t))
			_, err := NewLayout(custom, tree)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
