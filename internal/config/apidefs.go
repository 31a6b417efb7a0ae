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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tombee/omcli/internal/api"
	omerrors "github.com/tombee/omcli/pkg/errors"
)

var apiVariablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// LoadAPIDefinitions loads every *.json file of dir into a catalog.
func LoadAPIDefinitions(dir string, logger *slog.Logger) (*api.Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	names, err := doublestar.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, &omerrors.ConfigError{Key: dir, Reason: "cannot list the API definitions", Cause: err}
	}
	sort.Strings(names)

	catalog, _ := api.NewCatalog()
	for _, name := range names {
		path := filepath.Join(dir, name)
		def, err := LoadAPIDefinition(path)
		if err != nil {
			return nil, &omerrors.ConfigError{Key: path, Reason: "Error while loading API endpoint from file", Cause: err}
		}
		if err := catalog.Add(def); err != nil {
			return nil, err
		}
		logger.Debug("loaded API definition",
			slog.String("name", def.Name),
			slog.String("id", def.ID),
			slog.Int("endpoints", len(def.Endpoints)))
	}
	return catalog, nil
}

// LoadAPIDefinition reads one API definition file.
func LoadAPIDefinition(path string) (*api.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeAPIDefinition(data)
}

// DecodeAPIDefinition validates an API definition document and replaces
// every {{VAR}} of its strings with the custom variable VAR. Unknown
// variables are left as is.
func DecodeAPIDefinition(data []byte) (*api.Definition, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("API definition must be a dictionary")
	}
	if err := validateAPIDefinition(doc); err != nil {
		return nil, err
	}

	vars := make(map[string]string)
	for k, v := range doc["custom_variables"].(map[string]any) {
		vars[k] = scalarString(v)
	}
	doc["custom_variables"] = vars

	replaced, err := json.Marshal(replaceAPIVariables(doc, vars))
	if err != nil {
		return nil, err
	}
	var def api.Definition
	if err := json.Unmarshal(replaced, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

func validateAPIDefinition(doc map[string]any) error {
	for _, key := range []string{"name", "id"} {
		if err := requireString(doc, key); err != nil {
			return err
		}
	}
	timeout := doc["request_timeout"]
	if !truthy(timeout) {
		return errors.New("API definition request_timeout is required")
	}
	if n, isNum := timeout.(json.Number); !isNum || !isInteger(n) {
		return errors.New("API definition request_timeout must be an integer")
	}
	if err := requireString(doc, "description"); err != nil {
		return err
	}
	vars, ok := doc["custom_variables"].(map[string]any)
	if !ok {
		return errors.New("API definition custom_variables must be a dictionary")
	}
	if !truthy(vars[api.BaseURLVariable]) {
		return errors.New("API definition custom_variables must have a BASE_URL")
	}
	endpoints, ok := doc["api_endpoints"].([]any)
	if !ok {
		return errors.New("The api_endpoints property must be a list")
	}
	for _, e := range endpoints {
		if err := validateEndpoint(e); err != nil {
			return err
		}
	}
	return nil
}

func requireString(doc map[string]any, key string) error {
	v := doc[key]
	if !truthy(v) {
		return fmt.Errorf("API definition %s is required", key)
	}
	if _, ok := v.(string); !ok {
		return fmt.Errorf("API definition %s must be a string", key)
	}
	return nil
}

func validateEndpoint(v any) error {
	e, ok := v.(map[string]any)
	if !ok {
		return errors.New("Each endpoint must be a dictionary")
	}
	for _, key := range []string{"name", "request_type", "url"} {
		val, present := e[key]
		if !present {
			return fmt.Errorf("Each endpoint must have a %s", key)
		}
		if _, ok := val.(string); !ok {
			return fmt.Errorf("Each endpoint %s must be a string", key)
		}
	}
	headers, present := e["headers"]
	if !present {
		return errors.New("Each endpoint must have headers")
	}
	if _, ok := headers.(map[string]any); !ok {
		return errors.New("Each endpoint headers must be a dict")
	}
	for _, key := range []string{"data", "params"} {
		val, present := e[key]
		if !present {
			return fmt.Errorf("Each endpoint must have %s", key)
		}
		if _, ok := val.(string); truthy(val) && !ok {
			return fmt.Errorf("Each endpoint %s must be a string or null", key)
		}
	}
	vars, present := e["response_variables"]
	if !present {
		return errors.New("Each endpoint must have response_variables")
	}
	if _, ok := vars.(map[string]any); truthy(vars) && !ok {
		return errors.New("Each endpoint response_variables must be a dict or null")
	}
	return nil
}

func replaceAPIVariables(v any, vars map[string]string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = replaceAPIVariables(item, vars)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, item := range t {
			out[k] = replaceAPIText(item, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = replaceAPIVariables(item, vars)
		}
		return out
	case string:
		return replaceAPIText(t, vars)
	}
	return v
}

func replaceAPIText(s string, vars map[string]string) string {
	return apiVariablePattern.ReplaceAllStringFunc(s, func(m string) string {
		name := apiVariablePattern.FindStringSubmatch(m)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		return m
	})
}

// truthy follows the JSON notion of an unset value: null, false, zero,
// empty strings and empty containers.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return true
}

func isInteger(n json.Number) bool {
	_, err := n.Int64()
	return err == nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
