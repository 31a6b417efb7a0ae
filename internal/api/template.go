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
	"strings"

	"github.com/tombee/omcli/pkg/parameter"
)

// Request is an endpoint template with parameter values filled in.
type Request struct {
	URL     string
	Headers map[string]string
	Data    string
	Params  string
}

// Render replaces every {key} token of ep with the value of the parameter
// whose template key is key. Parameters without a value are skipped.
func Render(ep *Endpoint, params *parameter.Set) Request {
	pairs := make([]string, 0, 2*params.Len())
	for _, p := range params.Items() {
		if !p.HasValue() {
			continue
		}
		pairs = append(pairs, "{"+p.TemplateKey()+"}", p.StringValue())
	}
	// The replacer prefers earlier pairs, so the first parameter with a
	// given key wins.
	r := strings.NewReplacer(pairs...)

	req := Request{
		URL:     r.Replace(ep.URL),
		Headers: make(map[string]string, len(ep.Headers)),
		Data:    r.Replace(ep.Data),
		Params:  r.Replace(ep.Params),
	}
	for k, v := range ep.Headers {
		req.Headers[k] = r.Replace(v)
	}
	return req
}
