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

// Package api executes API request actions against the endpoints declared
// in API definition files.
package api

import (
	"fmt"
	"sort"
	"strings"
	"time"

	pkgerrors "github.com/tombee/omcli/pkg/errors"
)

// DefaultRequestTimeout applies when a definition sets no request timeout.
const DefaultRequestTimeout = 10 * time.Second

// BaseURLVariable must be present in the custom variables of a definition.
const BaseURLVariable = "BASE_URL"

// Definition describes one API and its endpoints.
type Definition struct {
	Name            string            `json:"name"`
	ID              string            `json:"id"`
	Description     string            `json:"description"`
	RequestTimeout  int               `json:"request_timeout"`
	CustomVariables map[string]string `json:"custom_variables"`
	Endpoints       []*Endpoint       `json:"api_endpoints"`
}

// Timeout returns the request timeout of the definition.
func (d *Definition) Timeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(d.RequestTimeout) * time.Second
}

// Endpoint returns the endpoint called name.
func (d *Definition) Endpoint(name string) (*Endpoint, bool) {
	for _, e := range d.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Endpoint is a request template. {key} tokens in URL, Headers, Data and
// Params are replaced with parameter values at request time.
type Endpoint struct {
	Name        string            `json:"name"`
	RequestType string            `json:"request_type"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers"`
	Data        string            `json:"data"`
	Params      string            `json:"params"`

	// ResponseVariables maps output parameter names to dotted paths into
	// the JSON response. "." selects the whole document.
	ResponseVariables map[string]string `json:"response_variables"`
}

// Method returns the upper-cased HTTP method.
func (e *Endpoint) Method() string {
	return strings.ToUpper(e.RequestType)
}

// Catalog indexes definitions by API id.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog indexes defs. Duplicate ids are a configuration error.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	for _, d := range defs {
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add indexes d.
func (c *Catalog) Add(d *Definition) error {
	if _, dup := c.defs[d.ID]; dup {
		return &pkgerrors.ConfigError{Key: "api_definitions", Reason: fmt.Sprintf("duplicate API id %q", d.ID)}
	}
	c.defs[d.ID] = d
	c.order = append(c.order, d.ID)
	return nil
}

// Definitions returns the definitions in the order they were added.
func (c *Catalog) Definitions() []*Definition {
	if c == nil {
		return nil
	}
	out := make([]*Definition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.defs[id])
	}
	return out
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// EndpointCount returns the number of endpoints across all definitions.
func (c *Catalog) EndpointCount() int {
	n := 0
	for _, d := range c.Definitions() {
		n += len(d.Endpoints)
	}
	return n
}

// Resolve splits "api_id.endpoint_name" and returns the matching
// definition and endpoint.
func (c *Catalog) Resolve(qualified string) (*Definition, *Endpoint, error) {
	id, name, ok := strings.Cut(qualified, ".")
	if !ok {
		return nil, nil, fmt.Errorf("the endpoint %s is not of the form api_id.endpoint_name", qualified)
	}
	var d *Definition
	if c != nil {
		d = c.defs[id]
	}
	if d == nil {
		return nil, nil, fmt.Errorf("The API %s was not found", id)
	}
	e, ok := d.Endpoint(name)
	if !ok {
		return nil, nil, fmt.Errorf("The endpoint %s was not found in the API %s", name, id)
	}
	return d, e, nil
}

// SortedVariables returns the response variable names in sorted order.
func (e *Endpoint) SortedVariables() []string {
	names := make([]string, 0, len(e.ResponseVariables))
	for name := range e.ResponseVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
