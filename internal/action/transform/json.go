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

// Package transform provides the json action pack: storing JSON to
// files, extracting fields and objects, and drawing parent-linked lists
// as trees.
package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/Jeffail/gabs/v2"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/action/file"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "json"

var str = parameter.TypeString

// Pack returns the json action pack.
func Pack() action.Pack {
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "store_result_to_json_file", Func: StoreResultToJSONFile, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"identifier":     action.In(str),
			"file_path":      action.Out(str),
		}},
		{Name: "store_json_string_to_json_file", Func: StoreJSONStringToJSONFile, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"identifier":     action.In(str),
			"json_string":    action.In(str),
			"file_path":      action.Out(str),
		}},
		{Name: "store_json_string_to_custom_json_file", Func: StoreJSONStringToCustomJSONFile, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"file_name":      action.In(str),
			"json_string":    action.In(str),
			"file_path":      action.Out(str),
		}},
		{Name: "extract_field_from_json_string", Func: ExtractField, Parameters: map[string]action.ParameterSpec{
			"field_name":                 action.In(str),
			"json_string":                action.In(str),
			"extracted_json_field_value": action.Out(str),
		}},
		{Name: "extract_object_from_json_list", Func: ExtractObject, Parameters: map[string]action.ParameterSpec{
			"identifier":            action.In(str),
			"id_field":              action.In(str),
			"object_field":          action.In(str),
			"json_string":           action.In(str),
			"extracted_json_object": action.Out(str),
		}},
		{Name: "present_simple_json_tree", Func: PresentTree, Parameters: map[string]action.ParameterSpec{
			"json_string":     action.In(str),
			"node_name_field": action.In(str),
			"parent_field":    action.In(str),
		}},
	}}
}

const storeFailure = "An unexpected error occurred while storing the response to JSON file: %v"

// StoreResultToJSONFile writes the previous API response to
// <directory_path>/<identifier>.json.
func StoreResultToJSONFile(_ context.Context, call *operation.Call) *operation.Result {
	if call.Prior == nil || call.Prior.Response == nil {
		return action.Failf(storeFailure, "No JSON response to store to file")
	}
	return store(call, "identifier", call.Prior.Response.Text())
}

// StoreJSONStringToJSONFile writes json_string to
// <directory_path>/<identifier>.json.
func StoreJSONStringToJSONFile(_ context.Context, call *operation.Call) *operation.Result {
	content, ok := call.Value("json_string")
	if !ok {
		return action.Failf(storeFailure, "Found no JSON string to store to file")
	}
	return store(call, "identifier", content)
}

// StoreJSONStringToCustomJSONFile writes json_string to
// <directory_path>/<file_name>.json.
func StoreJSONStringToCustomJSONFile(_ context.Context, call *operation.Call) *operation.Result {
	content, ok := call.Value("json_string")
	if !ok {
		return action.Failf(storeFailure, "Found no JSON string to store to file")
	}
	return store(call, "file_name", content)
}

func store(call *operation.Call, nameParam, content string) *operation.Result {
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return action.Failf(storeFailure, "No directory_path provided")
	}
	name, ok := call.Value(nameParam)
	if !ok {
		name = "api_response"
		call.Logger.Warn("No file name provided, storing the JSON as "+name, "parameter", nameParam)
	}
	path, err := file.Join(dir, name+".json")
	if err != nil {
		return action.Failf(storeFailure, err)
	}
	call.Logger.Debug("Storing a JSON file", "path", path)
	if err := file.Write(path, indent(content)); err != nil {
		return action.Failf(storeFailure, err)
	}
	return operation.Succeeded("Result stored as a JSON file", call.Output("file_path", str, path))
}

// indent pretty prints content when it is JSON and returns it unchanged
// otherwise.
func indent(content string) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "    "); err != nil {
		return []byte(content)
	}
	return buf.Bytes()
}

// ExtractField stores field_name of the JSON object json_string in
// extracted_json_field_value. Text that is not JSON is searched for a
// "field": "value" pair instead. A missing or empty field fails the
// action and asks for a repeat.
func ExtractField(_ context.Context, call *operation.Call) *operation.Result {
	field, _ := call.Value("field_name")
	raw, _ := call.Value("json_string")
	if field == "" || raw == "" {
		return action.Failf("An unexpected error occurred while extracting the field: Missing field name or JSON string")
	}

	var value any
	doc, err := gabs.ParseJSON([]byte(raw))
	if err == nil {
		obj, ok := doc.Data().(map[string]any)
		if !ok {
			return action.Failf("An unexpected error occurred while extracting the field: the JSON string is not an object")
		}
		value = obj[field]
	} else {
		pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"([^"]+)"`)
		if m := pattern.FindStringSubmatch(raw); m != nil {
			value = m[1]
		}
	}

	if empty(value) {
		text := fmt.Sprintf("Unable to find the field %q in the provided JSON string", field)
		call.Logger.Error(text)
		return miss(text)
	}
	return operation.Succeeded("Field extracted", call.Output("extracted_json_field_value", str, render(value)))
}

// ExtractObject finds the object in the JSON list json_string whose
// id_field equals identifier and stores its object_field in
// extracted_json_object. A miss fails the action and asks for a repeat.
func ExtractObject(_ context.Context, call *operation.Call) *operation.Result {
	identifier, _ := call.Value("identifier")
	idField, _ := call.Value("id_field")
	objectField, _ := call.Value("object_field")
	raw, _ := call.Value("json_string")
	if identifier == "" || idField == "" || objectField == "" || raw == "" {
		return action.Failf("An unexpected error occurred while extracting the object: Missing identifier, id field, object field, or JSON list")
	}
	doc, err := gabs.ParseJSON([]byte(raw))
	if err != nil {
		return action.Failf("An unexpected error occurred while extracting the object: %v", err)
	}

	if _, ok := doc.Data().([]any); !ok {
		return action.Failf("An unexpected error occurred while extracting the object: the JSON string is not a list")
	}
	var found any
	for _, child := range doc.Children() {
		if action.Stringify(child.Search(idField).Data()) == identifier {
			found = child.Search(objectField).Data()
			break
		}
	}
	if empty(found) {
		text := fmt.Sprintf("Unable to find the object with the identifier %q in the provided JSON list", identifier)
		call.Logger.Error(text)
		return miss(text)
	}
	return operation.Succeeded("Object extracted", call.Output("extracted_json_object", str, render(found)))
}

func miss(text string) *operation.Result {
	res := operation.Failed(text)
	res.RepeatAction = true
	return res
}

// empty reports whether v is null, false, zero or an empty string,
// object or list.
func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// render returns strings unchanged and indents everything else as JSON.
func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
