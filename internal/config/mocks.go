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
	"errors"
	"fmt"
	"os"

	"github.com/tombee/omcli/internal/api"
	omerrors "github.com/tombee/omcli/pkg/errors"
)

// LoadMocks reads the mock response file at path. An empty path returns
// no mocks.
func LoadMocks(path string) (api.Mocks, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "Error while loading mock API responses from file", Cause: err}
	}
	mocks, err := DecodeMocks(data)
	if err != nil {
		return nil, &omerrors.ConfigError{Key: path, Reason: "Error while loading mock API responses from file", Cause: err}
	}
	return mocks, nil
}

// DecodeMocks decodes a JSON object mapping URLs to a list, an object or a
// string.
func DecodeMocks(data []byte) (api.Mocks, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New("Mock API responses must be a dictionary")
	}
	mocks := make(api.Mocks, len(doc))
	for url, v := range doc {
		switch v.(type) {
		case []any, map[string]any, string:
		default:
			return nil, fmt.Errorf("Each response value must be a list, dictionary, or JSON string (%s)", url)
		}
		mocks[url] = v
	}
	return mocks, nil
}
