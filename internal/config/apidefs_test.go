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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinition = `{
    "name": "Demo API",
    "id": "demo",
    "description": "A demo service",
    "request_timeout": 5,
    "custom_variables": {
        "BASE_URL": "https://demo.example.com",
        "VERSION": "v2"
    },
    "api_endpoints": [
        {
            "name": "list_users",
            "request_type": "GET",
            "url": "{{BASE_URL}}/{{VERSION}}/users",
            "headers": {"Accept": "application/json", "X-Trace": "{{UNKNOWN}}"},
            "data": null,
            "params": "page={page}",
            "response_variables": {"users": "items"}
        },
        {
            "name": "create_user",
            "request_type": "POST",
            "url": "{{BASE_URL}}/{{VERSION}}/users",
            "headers": {},
            "data": "{\"name\": \"{name}\"}",
            "params": null,
            "response_variables": null
        }
    ]
}`

func TestDecodeAPIDefinition(t *testing.T) {
	def, err := DecodeAPIDefinition([]byte(sampleDefinition))
	require.NoError(t, err)

	assert.Equal(t, "demo", def.ID)
	assert.Equal(t, 5, def.RequestTimeout)
	require.Len(t, def.Endpoints, 2)

	list, ok := def.Endpoint("list_users")
	require.True(t, ok)
	assert.Equal(t, "https://demo.example.com/v2/users", list.URL)
	assert.Equal(t, "{{UNKNOWN}}", list.Headers["X-Trace"])
	assert.Equal(t, "page={page}", list.Params)
	assert.Empty(t, list.Data)
	assert.Equal(t, map[string]string{"users": "items"}, list.ResponseVariables)

	create, ok := def.Endpoint("create_user")
	require.True(t, ok)
	assert.Equal(t, `{"name": "{name}"}`, create.Data)
	assert.Nil(t, create.ResponseVariables)
}

func TestDecodeAPIDefinitionValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(doc map[string]any)
		want   string
	}{
		{"missing name", func(d map[string]any) { delete(d, "name") }, "API definition name is required"},
		{"name not string", func(d map[string]any) { d["name"] = 4 }, "API definition name must be a string"},
		{"missing id", func(d map[string]any) { d["id"] = "" }, "API definition id is required"},
		{"missing timeout", func(d map[string]any) { d["request_timeout"] = 0 }, "API definition request_timeout is required"},
		{"fractional timeout", func(d map[string]any) { d["request_timeout"] = 2.5 }, "API definition request_timeout must be an integer"},
		{"string timeout", func(d map[string]any) { d["request_timeout"] = "5" }, "API definition request_timeout must be an integer"},
		{"missing description", func(d map[string]any) { delete(d, "description") }, "API definition description is required"},
		{"variables not a map", func(d map[string]any) { d["custom_variables"] = []any{} }, "API definition custom_variables must be a dictionary"},
		{"missing base url", func(d map[string]any) { d["custom_variables"] = map[string]any{"X": "y"} }, "API definition custom_variables must have a BASE_URL"},
		{"endpoints not a list", func(d map[string]any) { d["api_endpoints"] = map[string]any{} }, "The api_endpoints property must be a list"},
		{"endpoint not a map", func(d map[string]any) { d["api_endpoints"] = []any{"x"} }, "Each endpoint must be a dictionary"},
		{"endpoint without name", func(d map[string]any) { delete(endpoint(d), "name") }, "Each endpoint must have a name"},
		{"endpoint url not string", func(d map[string]any) { endpoint(d)["url"] = 1 }, "Each endpoint url must be a string"},
		{"endpoint without headers", func(d map[string]any) { delete(endpoint(d), "headers") }, "Each endpoint must have headers"},
		{"headers not a map", func(d map[string]any) { endpoint(d)["headers"] = "x" }, "Each endpoint headers must be a dict"},
		{"endpoint without data", func(d map[string]any) { delete(endpoint(d), "data") }, "Each endpoint must have data"},
		{"data not string", func(d map[string]any) { endpoint(d)["data"] = map[string]any{"a": 1} }, "Each endpoint data must be a string or null"},
		{"endpoint without params", func(d map[string]any) { delete(endpoint(d), "params") }, "Each endpoint must have params"},
		{"endpoint without response variables", func(d map[string]any) { delete(endpoint(d), "response_variables") }, "Each endpoint must have response_variables"},
		{"response variables not a map", func(d map[string]any) { endpoint(d)["response_variables"] = "x" }, "Each endpoint response_variables must be a dict or null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc map[string]any
			require.NoError(t, json.Unmarshal([]byte(sampleDefinition), &doc))
			tt.modify(doc)
			data, err := json.Marshal(doc)
			require.NoError(t, err)

			_, err = DecodeAPIDefinition(data)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func endpoint(doc map[string]any) map[string]any {
	return doc["api_endpoints"].([]any)[0].(map[string]any)
}

func TestDecodeAPIDefinitionNotObject(t *testing.T) {
	_, err := DecodeAPIDefinition([]byte(`[1, 2]`))
	require.EqualError(t, err, "API definition must be a dictionary")
}

func TestLoadAPIDefinitions(t *testing.T) {
	dir := t.TempDir()
	second := `{"name": "Other", "id": "other", "description": "d", "request_timeout": 1,
		"custom_variables": {"BASE_URL": "http://other"}, "api_endpoints": []}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_demo.json"), []byte(sampleDefinition), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_other.json"), []byte(second), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	catalog, err := LoadAPIDefinitions(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, 2, catalog.EndpointCount())
	assert.Equal(t, "other", catalog.Definitions()[0].ID)

	_, ep, err := catalog.Resolve("demo.create_user")
	require.NoError(t, err)
	assert.Equal(t, "POST", ep.Method())
}

func TestLoadAPIDefinitionsErrors(t *testing.T) {
	t.Run("duplicate id", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "one.json"), []byte(sampleDefinition), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "two.json"), []byte(sampleDefinition), 0o644))

		_, err := LoadAPIDefinitions(dir, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `duplicate API id "demo"`)
	})

	t.Run("invalid file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "x"}`), 0o644))

		_, err := LoadAPIDefinitions(dir, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Error while loading API endpoint from file")
		assert.Contains(t, err.Error(), "API definition id is required")
	})
}
