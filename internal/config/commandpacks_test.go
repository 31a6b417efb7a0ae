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

func TestLoadCommandPacks(t *testing.T) {
	dir := t.TempDir()
	yamlPack := `name: git
actions:
  git_status:
    command: git status --short {path}
    output_parameter: status
    parameters:
      path: {direction: input, type: STRING}
`
	jsonPack := `{"name": "disk", "actions": {"disk_usage": {"command": "du -sh {dir}", "parameters": {"dir": {"direction": "input", "type": "STRING"}}}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git.yaml"), []byte(yamlPack), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "disk.json"), []byte(jsonPack), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy_pack.py"), []byte("def x(): pass"), 0o644))

	packs, err := LoadCommandPacks(dir, nil)
	require.NoError(t, err)
	require.Len(t, packs, 2)
	assert.Equal(t, "disk", packs[0].Name)
	assert.Equal(t, "git", packs[1].Name)
	assert.Contains(t, packs[1].Actions["git_status"].Parameters, "status")
}

func TestLoadCommandPacksInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("actions: {}\n"), 0o644))

	_, err := LoadCommandPacks(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command pack has no name")
}
