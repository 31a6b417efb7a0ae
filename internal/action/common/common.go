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

// Package common provides general purpose actions: printing, prompting,
// text replacement and choosing from JSON lists.
package common

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/cli/prompt"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "common"

const defaultLimit = 10

var (
	str  = parameter.TypeString
	num  = parameter.TypeInteger
	flag = parameter.TypeBoolean
)

// Pack returns the common action pack.
func Pack() action.Pack {
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "print_response", Func: PrintResponse},
		{Name: "print_parameter", Func: PrintParameter, Parameters: map[string]action.ParameterSpec{
			"parameter_value": action.In(str),
		}},
		{Name: "prompt_for_parameters", Func: PromptForParameters},
		{Name: "prompt_for_yes_no", Func: PromptForYesNo, Parameters: map[string]action.ParameterSpec{
			"question":            action.In(str),
			"user_response_value": action.Out(flag),
		}},
		{Name: "replace_text", Func: ReplaceText, Parameters: map[string]action.ParameterSpec{
			"text":          action.In(str),
			"search_text":   action.In(str),
			"replace_text":  action.In(str),
			"replaced_text": action.Out(str),
		}},
		{Name: "list_array_with_indexes", Func: ListArrayWithIndexes, Parameters: map[string]action.ParameterSpec{
			"item_list":             action.In(str),
			"item_limit":            action.In(num),
			"list_node_fields":      action.In(str),
			"show_loop_alternative": action.In(flag),
			"loop_alternative_text": action.In(str),
		}},
		{Name: "prompt_user_to_choose_indexed_item", Func: ChooseIndexedItem, Parameters: map[string]action.ParameterSpec{
			"item_list":             action.In(str),
			"item_number":           action.In(num),
			"item_node_value":       action.In(str),
			"chosen_item_value":     action.Out(str),
			"show_loop_alternative": action.In(flag),
		}},
		{Name: "print_simple_json_list", Func: PrintSimpleJSONList, Parameters: map[string]action.ParameterSpec{
			"json_list":        action.In(str),
			"list_node_fields": action.In(str),
			"list_limit":       action.In(num),
			"list_text":        action.In(str),
		}},
	}}
}

// PrintResponse prints the response of the previous API request.
func PrintResponse(_ context.Context, call *operation.Call) *operation.Result {
	if call.Prior == nil || call.Prior.Response == nil {
		return action.Failf("An unexpected error occurred while printing the response: No response object provided")
	}
	resp := call.Prior.Response
	switch {
	case strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json"):
		if err := action.PrintJSON(call.Out, resp.Text()); err != nil {
			return action.Failf("An unexpected error occurred while printing the response: Invalid JSON response")
		}
	case resp.Text() != "":
		action.PrintInfo(call.Out, resp.Text())
	default:
		action.PrintInfo(call.Out, "The response contained no text")
	}
	return operation.Succeeded("")
}

// PrintParameter prints parameter_value, as JSON when it parses.
func PrintParameter(_ context.Context, call *operation.Call) *operation.Result {
	value, err := action.Require(call, "parameter_value")
	if err != nil {
		return action.Failf("An unexpected error occurred while printing the parameter: Found no parameter value to print")
	}
	if err := action.PrintJSON(call.Out, value); err != nil {
		call.Logger.Debug("the parameter is not JSON")
		action.PrintInfo(call.Out, value)
	}
	return operation.Succeeded("")
}

// PromptForParameters does nothing. It lets a tree ask for parameters
// before the action that uses them.
func PromptForParameters(context.Context, *operation.Call) *operation.Result {
	return operation.Succeeded("Dummy action to prompt for parameters before the action they are to be used")
}

// PromptForYesNo asks question and stores the answer as the non-stick
// BOOLEAN user_response_value.
func PromptForYesNo(ctx context.Context, call *operation.Call) *operation.Result {
	question, err := action.Require(call, "question")
	if err != nil {
		return action.Failf("An error occurred while prompting the user with a yes/no question: No question found")
	}
	if call.Prompter == nil {
		return action.Failf("An error occurred while prompting the user with a yes/no question: no prompter available")
	}
	yes, err := prompt.YesNo(ctx, call.Prompter, call.Out,
		action.PromptStyle.Render(question+" (y/n): "),
		"Invalid answer, please answer with y or n")
	if err != nil {
		if prompt.IsAborted(err) {
			return operation.Aborted()
		}
		return action.Failf("An unexpected error occurred while prompting the user with a yes/no question: %v", err)
	}
	out := call.Output("user_response_value", flag, strconv.FormatBool(yes))
	out.NonStick = true
	return operation.Succeeded("User answered the question", out)
}

// ReplaceText replaces every search_text in text with replace_text.
func ReplaceText(_ context.Context, call *operation.Call) *operation.Result {
	text, okText := call.Value("text")
	search, okSearch := call.Value("search_text")
	replacement, okReplace := call.Value("replace_text")
	if !okText || !okSearch || !okReplace {
		return action.Failf("An unexpected error occurred while replacing text: Either found no text, search text or replace text to replace")
	}
	return operation.Succeeded("", call.Output("replaced_text", str, strings.ReplaceAll(text, search, replacement)))
}

// ListArrayWithIndexes prints item_list as a table with 1-based choice ids.
// With show_loop_alternative a row 0 offers to repeat the loop.
func ListArrayWithIndexes(_ context.Context, call *operation.Call) *operation.Result {
	fail := func(format string, args ...any) *operation.Result {
		return action.Failf("An unexpected error occurred while printing the items from the list: "+format, args...)
	}
	listParam, found := call.Params.Get("item_list", call.ActionIndex)
	if !found || listParam.StringValue() == "" {
		return fail("Found no items to print")
	}
	items, err := decodeList(listParam.StringValue(), "Error decoding the item list")
	if err != nil {
		return fail("%v", err)
	}
	limit, err := intValue(call, "item_limit", defaultLimit)
	if err != nil {
		return fail("%v", err)
	}
	fields := splitFields(call.ValueOr("list_node_fields", ""))
	loopAlternative := parameter.IsTrue(call.ValueOr("show_loop_alternative", "false"))
	loopText := call.ValueOr("loop_alternative_text", "Continue searching")

	if len(items) == 0 {
		action.PrintInfo(call.Out, "The item list is empty / No results")
		return operation.Succeeded("Items printed")
	}

	headers := append([]string{"Choice ID"}, columnHeaders(fields)...)
	rows := make([][]string, 0, min(limit, len(items))+1)
	for i, item := range items {
		if i >= limit {
			break
		}
		rows = append(rows, append([]string{strconv.Itoa(i + 1)}, cells(item, fields)...))
	}
	if loopAlternative {
		rows = append(rows, []string{"0", loopText})
	}

	title := listParam.CustomText
	if title == "" {
		title = "Items in the list"
	}
	printTable(call.Out, title, caption(limit, len(items)), headers, rows)
	return operation.Succeeded("Items printed")
}

// ChooseIndexedItem stores the item_number-th item of item_list (1-based)
// in chosen_item_value. item_node_value selects a field of the item, "."
// the whole item. With show_loop_alternative, 0 replays the loop and any
// other choice leaves it.
func ChooseIndexedItem(_ context.Context, call *operation.Call) *operation.Result {
	fail := func(format string, args ...any) *operation.Result {
		return action.Failf("An unexpected error occurred while prompting the user to choose an item from the list: "+format, args...)
	}
	raw, err := action.Require(call, "item_list")
	if err != nil {
		return fail("Found no items to choose from")
	}
	items, err := decodeList(raw, "Error decoding the item list")
	if err != nil {
		return fail("%v", err)
	}
	numberText, ok := call.Value("item_number")
	if !ok || numberText == "" {
		return fail("Found no chosen item number")
	}
	n, err := strconv.Atoi(numberText)
	if err != nil {
		return fail("The item_number parameter is not a valid number (%s)", numberText)
	}

	loopAlternative := parameter.IsTrue(call.ValueOr("show_loop_alternative", "false"))
	if loopAlternative && n == 0 {
		return operation.Succeeded("User chose to continue searching").WithRepeatLoop(true)
	}
	if n < 1 || n > len(items) {
		return fail("Item number out of range (%d/%d)", n, len(items))
	}

	chosen := items[n-1]
	if field := call.ValueOr("item_node_value", "."); field != "." {
		obj, _ := chosen.(map[string]any)
		chosen = obj[field]
	}
	res := operation.Succeeded("User chose an item", call.Output("chosen_item_value", str, action.Stringify(chosen)))
	if loopAlternative {
		res.WithRepeatLoop(false)
	}
	return res
}

// PrintSimpleJSONList prints json_list as a table of list_node_fields.
func PrintSimpleJSONList(_ context.Context, call *operation.Call) *operation.Result {
	fail := func(format string, args ...any) *operation.Result {
		return action.Failf("An unexpected error occurred while printing the JSON list: "+format, args...)
	}
	raw, err := action.Require(call, "json_list")
	if err != nil {
		return fail("Found no JSON list to print")
	}
	items, err := decodeList(raw, "Error decoding the JSON list")
	if err != nil {
		return fail("%v", err)
	}
	limitName := "list_limit"
	if _, ok := call.Value(limitName); !ok {
		limitName = "item_limit"
	}
	limit, err := intValue(call, limitName, defaultLimit)
	if err != nil {
		return fail("%v", err)
	}
	fields := splitFields(call.ValueOr("list_node_fields", ""))

	if len(items) == 0 {
		action.PrintInfo(call.Out, "The JSON list is empty / No results")
		return operation.Succeeded("JSON list printed")
	}
	rows := make([][]string, 0, min(limit, len(items)))
	for i, item := range items {
		if i >= limit {
			break
		}
		rows = append(rows, cells(item, fields))
	}
	printTable(call.Out, call.ValueOr("list_text", "Items in the list"), caption(limit, len(items)), columnHeaders(fields), rows)
	return operation.Succeeded("JSON list printed")
}

func decodeList(raw, message string) ([]any, error) {
	v, err := action.DecodeJSON(raw, message)
	if err != nil {
		return nil, fmt.Errorf("%s", message)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: not a list", message)
	}
	return items, nil
}

func intValue(call *operation.Call, name string, def int) (int, error) {
	v := call.ValueOr(name, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("The %s parameter is not a valid number (%s)", name, v)
	}
	return n, nil
}

func splitFields(v string) []string {
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func columnHeaders(fields []string) []string {
	if len(fields) == 0 {
		return []string{"Item"}
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		h := strings.ReplaceAll(f, "_", " ")
		if h != "" {
			h = strings.ToUpper(h[:1]) + strings.ToLower(h[1:])
		}
		out[i] = h
	}
	return out
}

func cells(item any, fields []string) []string {
	if len(fields) == 0 {
		return []string{action.Stringify(item)}
	}
	obj, _ := item.(map[string]any)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = action.Stringify(obj[f])
	}
	return out
}

func caption(limit, total int) string {
	if total > limit {
		return fmt.Sprintf("Note: Only showing the first %d of %d items", limit, total)
	}
	return ""
}

func printTable(w io.Writer, title, caption string, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return action.HeaderStyle.Padding(0, 1)
			}
			if col == 0 && headers[0] == "Choice ID" {
				return action.HeaderStyle.Bold(false).Padding(0, 1).Align(lipgloss.Center)
			}
			return action.CellStyle
		})
	fmt.Fprintln(w, action.HeaderStyle.Render(title))
	fmt.Fprintln(w, t.Render())
	if caption != "" {
		fmt.Fprintln(w, action.InfoStyle.Render(caption))
	}
}
