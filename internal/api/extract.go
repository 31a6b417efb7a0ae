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

package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jeffail/gabs/v2"

	"github.com/tombee/omcli/internal/log"
	"github.com/tombee/omcli/pkg/parameter"
)

// Extract decodes body and returns one output parameter per response
// variable of ep, in sorted name order. A path that selects nothing yields
// a parameter without a value.
func Extract(body []byte, ep *Endpoint, params *parameter.Set, actionIndex int, logger *slog.Logger) (*parameter.Set, error) {
	logger = log.OrDiscard(logger)
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	root, err := gabs.ParseJSONDecoder(dec)
	if err != nil {
		return nil, err
	}

	out := parameter.NewSet()
	for _, name := range ep.SortedVariables() {
		path := ep.ResponseVariables[name]
		outName := params.OverrideName(name, actionIndex)
		found := Lookup(root, path)
		if found == nil {
			logger.Error("Failed to extract variable from response",
				slog.String("variable", name),
				slog.String("path", path))
			p := &parameter.Parameter{Name: outName, Type: parameter.TypeString}
			p.SetActionIndex(actionIndex)
			out.Add(p)
			continue
		}
		typ, value, err := convert(found)
		if err != nil {
			logger.Error("An error occurred while extracting values from the response", slog.String("variable", name), slog.Any("error", err))
			continue
		}
		out.Add(parameter.Output(outName, typ, value, actionIndex))
	}
	return out, nil
}

// Lookup follows a dotted path through doc. Keys descend into objects; on
// an array the key is applied to every element. "." returns the document.
func Lookup(doc *gabs.Container, path string) any {
	if path == "." {
		return doc.Data()
	}
	cur := doc
	for _, key := range strings.Split(path, ".") {
		switch cur.Data().(type) {
		case map[string]any:
			cur = cur.Search(key)
		case []any:
			children := cur.Children()
			mapped := make([]any, len(children))
			for i, child := range children {
				if _, ok := child.Data().(map[string]any); ok {
					mapped[i] = child.Search(key).Data()
				}
			}
			cur = gabs.Wrap(mapped)
		default:
			return nil
		}
	}
	return cur.Data()
}

func convert(v any) (parameter.Type, string, error) {
	switch t := v.(type) {
	case string:
		return parameter.TypeString, t, nil
	case bool:
		return parameter.TypeBoolean, strconv.FormatBool(t), nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return parameter.TypeInteger, t.String(), nil
		}
		return parameter.TypeString, t.String(), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return parameter.TypeString, "", err
		}
		return parameter.TypeString, string(b), nil
	}
}
