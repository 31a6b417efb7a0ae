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

// Package file provides actions that read, list and store local files.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "file_and_directory"

// now is replaced in tests.
var now = time.Now

var str = parameter.TypeString

// Pack returns the file and directory action pack.
func Pack() action.Pack {
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "file_path_to_file_string", Func: FilePathToFileString, Parameters: map[string]action.ParameterSpec{
			"file_path":   action.In(str),
			"file_string": action.Out(str),
		}},
		{Name: "list_local_files", Func: ListLocalFiles, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
		}},
		{Name: "get_local_files_list", Func: GetLocalFilesList, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"files_list":     action.Out(str),
		}},
		{Name: "prompt_user_to_choose_file", Func: ChooseFile, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"file_number":    action.In(parameter.TypeInteger),
			"file_path":      action.Out(str),
		}},
		{Name: "store_api_response_to_timestamped_file", Func: StoreResponseToTimestampedFile, Parameters: map[string]action.ParameterSpec{
			"directory_path":      action.In(str),
			"file_name":           action.In(str),
			"file_extension":      action.In(str),
			"result_file_path":    action.Out(str),
			"result_file_content": action.Out(str),
		}},
		{Name: "store_parameter_value_to_timestamped_file", Func: StoreParameterToTimestampedFile, Parameters: map[string]action.ParameterSpec{
			"directory_path":      action.In(str),
			"file_name":           action.In(str),
			"parameter_value":     action.In(str),
			"file_extension":      action.In(str),
			"result_file_path":    action.Out(str),
			"result_file_content": action.Out(str),
		}},
		{Name: "create_empty_file", Func: CreateEmptyFile, Parameters: map[string]action.ParameterSpec{
			"directory_path": action.In(str),
			"file_name":      action.In(str),
			"file_path":      action.Out(str),
		}},
	}}
}

// FilePathToFileString reads file_path into file_string.
func FilePathToFileString(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("converting the file path to a file string")
	path, err := action.Require(call, "file_path")
	if err != nil {
		return fail(err)
	}
	if path, err = ExpandHome(path); err != nil {
		return fail(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	return operation.Succeeded("File string read", call.Output("file_string", str, string(data)))
}

// ListLocalFiles prints the entries of directory_path numbered from 1.
func ListLocalFiles(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("printing the files from the directory")
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return fail(fmt.Errorf("Found no directory path to print files from"))
	}
	names, err := entries(dir, false)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(call.Out, "Files in the directory %s:\n\n", action.InfoStyle.Render(dir))
	for i, name := range names {
		fmt.Fprintln(call.Out, action.InfoStyle.Render(fmt.Sprintf("[%d] %s", i+1, name)))
	}
	fmt.Fprint(call.Out, "\n\n")
	return operation.Succeeded("Files printed")
}

type fileEntry struct {
	ID   int    `json:"file_id"`
	Name string `json:"file_name"`
	Path string `json:"file_path"`
}

// GetLocalFilesList stores the regular files of directory_path as a JSON
// list of {file_id, file_name, file_path} in files_list.
func GetLocalFilesList(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("getting the list of files from the directory")
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return fail(fmt.Errorf("Missing directory path"))
	}
	names, err := entries(dir, true)
	if err != nil {
		return fail(err)
	}
	list := make([]fileEntry, 0, len(names))
	for i, name := range names {
		path, err := Join(dir, name)
		if err != nil {
			return fail(err)
		}
		list = append(list, fileEntry{ID: i + 1, Name: name, Path: path})
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fail(err)
	}
	return operation.Succeeded("Files list read", call.Output("files_list", str, string(b)))
}

// ChooseFile stores the path of the file_number-th entry of directory_path
// in file_path, using the numbering of ListLocalFiles.
func ChooseFile(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("prompting the user to choose a file from the directory")
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return fail(fmt.Errorf("Found no directory path to choose a file from"))
	}
	names, err := entries(dir, false)
	if err != nil {
		return fail(err)
	}
	raw := call.ValueOr("file_number", "")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fail(fmt.Errorf("The file_number parameter is not a valid number (%s)", raw))
	}
	if n < 1 || n > len(names) {
		return fail(fmt.Errorf("Invalid file number"))
	}
	path, err := Join(dir, names[n-1])
	if err != nil {
		return fail(err)
	}
	return operation.Succeeded("User chose a file", call.Output("file_path", str, path))
}

// StoreResponseToTimestampedFile writes the previous API response, pretty
// printed, to <directory_path>/<file_name>_<UTC timestamp>.<file_extension>.
func StoreResponseToTimestampedFile(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("storing the response to JSON file")
	if call.Prior == nil || call.Prior.Response == nil {
		return fail(fmt.Errorf("No response object provided"))
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, call.Prior.Response.Body, "", "    "); err != nil {
		return fail(fmt.Errorf("the response is not JSON: %w", err))
	}
	return storeTimestamped(call, fail, "api_response", buf.String(), "Result stored as a JSON file")
}

// StoreParameterToTimestampedFile writes parameter_value to a timestamped
// file named like StoreResponseToTimestampedFile.
func StoreParameterToTimestampedFile(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("storing the parameter value to a file")
	value, err := action.Require(call, "parameter_value")
	if err != nil {
		return fail(fmt.Errorf("No parameter_value provided"))
	}
	return storeTimestamped(call, fail, "parameter_value", value, "Parameter value stored as a file")
}

func storeTimestamped(call *operation.Call, fail func(error) *operation.Result, defaultName, content, text string) *operation.Result {
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return fail(fmt.Errorf("No directory_path provided"))
	}
	name := call.ValueOr("file_name", defaultName)
	ext := call.ValueOr("file_extension", "json")
	path, err := Join(dir, name+"_"+now().UTC().Format(TimestampLayout)+"."+ext)
	if err != nil {
		return fail(err)
	}
	call.Logger.Debug("Storing a file", "path", path)
	if err := Write(path, []byte(content)); err != nil {
		return fail(err)
	}
	return operation.Succeeded(text,
		call.Output("result_file_path", str, path),
		call.Output("result_file_content", str, content))
}

// CreateEmptyFile creates <directory_path>/<file_name>, truncating any
// existing file.
func CreateEmptyFile(_ context.Context, call *operation.Call) *operation.Result {
	fail := failure("creating the empty file")
	dir, err := action.Require(call, "directory_path")
	if err != nil {
		return fail(fmt.Errorf("No directory_path provided"))
	}
	path, err := Join(dir, call.ValueOr("file_name", "empty_file"))
	if err != nil {
		return fail(err)
	}
	call.Logger.Debug("Creating an empty file", "path", path)
	if err := Write(path, nil); err != nil {
		return fail(err)
	}
	return operation.Succeeded("Empty file created", call.Output("file_path", str, path))
}

func failure(doing string) func(error) *operation.Result {
	return func(err error) *operation.Result {
		return action.Failf("An unexpected error occurred while %s: %v", doing, err)
	}
}
