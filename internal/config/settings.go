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

// Package config loads omcli settings and the custom directory: the
// operation tree, API definitions, mock responses and command packs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Setting keys.
const (
	KeyCustomPath    = "custom_path"
	KeyTreePath      = "tree_path"
	KeyMockPath      = "mock_path"
	KeyWorkspace     = "workspace"
	KeyCommandPrefix = "command_prefix"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyRetryAttempts = "http.retry_attempts"
	KeyUserAgent     = "http.user_agent"
	KeyPromptStyle   = "prompt.style"
	KeyTraceFile     = "trace.file"
	KeyMetricsFile   = "metrics.file"
)

// Prompt styles.
const (
	PromptStyleLine   = "line"
	PromptStyleSurvey = "survey"
)

// Settings is the resolved omcli configuration.
type Settings struct {
	CustomPath    string `mapstructure:"custom_path"`
	TreePath      string `mapstructure:"tree_path"`
	MockPath      string `mapstructure:"mock_path"`
	Workspace     string `mapstructure:"workspace"`
	CommandPrefix string `mapstructure:"command_prefix"`

	Log     LogSettings    `mapstructure:"log"`
	HTTP    HTTPSettings   `mapstructure:"http"`
	Prompt  PromptSettings `mapstructure:"prompt"`
	Trace   FileSettings   `mapstructure:"trace"`
	Metrics FileSettings   `mapstructure:"metrics"`
}

// LogSettings configures logging.
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// HTTPSettings configures the API client.
type HTTPSettings struct {
	RetryAttempts int    `mapstructure:"retry_attempts"`
	UserAgent     string `mapstructure:"user_agent"`
}

// PromptSettings selects the prompter.
type PromptSettings struct {
	Style string `mapstructure:"style"`
}

// FileSettings names an optional output file.
type FileSettings struct {
	File string `mapstructure:"file"`
}

// ConfigDir returns the omcli configuration directory,
// $XDG_CONFIG_HOME/omcli or ~/.config/omcli. It is not created.
func ConfigDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "omcli"), nil
}

// SetDefaults registers the default value of every setting.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyCustomPath, "")
	v.SetDefault(KeyTreePath, "")
	v.SetDefault(KeyMockPath, "")
	v.SetDefault(KeyWorkspace, "")
	v.SetDefault(KeyCommandPrefix, "omcli")
	v.SetDefault(KeyLogLevel, "INFO")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyRetryAttempts, 0)
	v.SetDefault(KeyUserAgent, "omcli/dev")
	v.SetDefault(KeyPromptStyle, PromptStyleLine)
	v.SetDefault(KeyTraceFile, "")
	v.SetDefault(KeyMetricsFile, "")
}

// NewViper returns a viper instance with defaults, OMCLI_ environment
// binding and the settings file. file overrides the default location
// <ConfigDir>/config.yaml. A missing file is not an error.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("OMCLI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return v, nil
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (file != "" && errors.Is(err, os.ErrNotExist)) {
			return v, nil
		}
		return nil, fmt.Errorf("error reading settings file: %w", err)
	}
	return v, nil
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Validate checks the settings for sane values.
func (s *Settings) Validate() error {
	if s.HTTP.RetryAttempts < 0 {
		return fmt.Errorf("%s must not be negative", KeyRetryAttempts)
	}
	switch s.Prompt.Style {
	case PromptStyleLine, PromptStyleSurvey:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", KeyPromptStyle, PromptStyleLine, PromptStyleSurvey, s.Prompt.Style)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, s.Log.Format)
	}
	if strings.TrimSpace(s.CommandPrefix) == "" {
		return fmt.Errorf("%s must not be empty", KeyCommandPrefix)
	}
	return nil
}

// WorkspaceRoot returns the value substituted for $WORKSPACE: the
// workspace setting, else the parent of the custom directory.
func (s *Settings) WorkspaceRoot() string {
	if s.Workspace != "" {
		return s.Workspace
	}
	if s.CustomPath == "" {
		return ""
	}
	abs, err := filepath.Abs(s.CustomPath)
	if err != nil {
		return filepath.Dir(s.CustomPath)
	}
	return filepath.Dir(abs)
}
