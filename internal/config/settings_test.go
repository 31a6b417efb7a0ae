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

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "omcli", s.CommandPrefix)
	assert.Equal(t, "INFO", s.Log.Level)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, PromptStyleLine, s.Prompt.Style)
	assert.Zero(t, s.HTTP.RetryAttempts)
	assert.Empty(t, s.CustomPath)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
custom_path: /srv/custom
log:
  level: DEBUG
  format: json
prompt:
  style: survey
metrics:
  file: /tmp/omcli.prom
`), 0o644))
	t.Setenv("OMCLI_HTTP_RETRY_ATTEMPTS", "3")
	t.Setenv("OMCLI_COMMAND_PREFIX", "om")

	v, err := NewViper(path)
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/custom", s.CustomPath)
	assert.Equal(t, "DEBUG", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, PromptStyleSurvey, s.Prompt.Style)
	assert.Equal(t, "/tmp/omcli.prom", s.Metrics.File)
	assert.Equal(t, 3, s.HTTP.RetryAttempts)
	assert.Equal(t, "om", s.CommandPrefix)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed\n"), 0o644))

	_, err := NewViper(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading settings file")
}

func TestSettingsValidate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			CommandPrefix: "omcli",
			Log:           LogSettings{Format: "text"},
			Prompt:        PromptSettings{Style: PromptStyleLine},
		}
	}
	tests := []struct {
		name   string
		modify func(*Settings)
		want   string
	}{
		{"valid", func(*Settings) {}, ""},
		{"negative retries", func(s *Settings) { s.HTTP.RetryAttempts = -1 }, "http.retry_attempts must not be negative"},
		{"unknown prompt style", func(s *Settings) { s.Prompt.Style = "gui" }, `prompt.style must be "line" or "survey", got "gui"`},
		{"unknown log format", func(s *Settings) { s.Log.Format = "xml" }, `log.format must be text or json, got "xml"`},
		{"upper case log format", func(s *Settings) { s.Log.Format = "JSON" }, ""},
		{"blank prefix", func(s *Settings) { s.CommandPrefix = " " }, "command_prefix must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.modify(&s)
			err := s.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestWorkspaceRoot(t *testing.T) {
	assert.Equal(t, "/explicit", (&Settings{Workspace: "/explicit", CustomPath: "/a/custom"}).WorkspaceRoot())
	assert.Equal(t, "/a", (&Settings{CustomPath: "/a/custom"}).WorkspaceRoot())
	assert.Empty(t, (&Settings{}).WorkspaceRoot())
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "omcli"), dir)
}
