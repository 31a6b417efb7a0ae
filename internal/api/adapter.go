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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/tombee/omcli/internal/log"
	"github.com/tombee/omcli/pkg/httpclient"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// ResultParameter is the output of a 200 response with an empty body.
const ResultParameter = "api_result"

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

// transportError marks failures of the HTTP exchange itself.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// Adapter implements operation.RequestAdapter.
type Adapter struct {
	catalog *Catalog
	client  *resty.Client
	mocks   Mocks
	logger  *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithMocks answers every request from m instead of the network when m is
// not empty.
func WithMocks(m Mocks) Option {
	return func(a *Adapter) { a.mocks = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) { a.logger = log.OrDiscard(logger) }
}

// NewAdapter returns an adapter sending requests for the endpoints of
// catalog through hc. A nil hc gets a client from httpclient.DefaultConfig.
func NewAdapter(catalog *Catalog, hc *http.Client, opts ...Option) (*Adapter, error) {
	if hc == nil {
		var err error
		if hc, err = httpclient.New(httpclient.DefaultConfig()); err != nil {
			return nil, err
		}
	}
	a := &Adapter{
		catalog: catalog,
		client:  resty.NewWithClient(hc),
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Mocked reports whether requests are answered from mock responses.
func (a *Adapter) Mocked() bool {
	return len(a.mocks) > 0
}

// Execute sends the request for endpoint ("api_id.endpoint_name") with
// params substituted into its template.
func (a *Adapter) Execute(ctx context.Context, endpoint string, params *parameter.Set, actionIndex int) *operation.Result {
	logger := a.logger.With(slog.String(log.EndpointKey, endpoint))

	resp, ep, err := a.send(ctx, endpoint, params, logger)
	if err != nil {
		var te *transportError
		if errors.As(err, &te) {
			return operation.Failed(fmt.Sprintf("An error occurred during the API request: %v", te.err))
		}
		return operation.Failed(fmt.Sprintf("An unexpected error occurred while processing the request: %v", err))
	}

	res := &operation.Result{
		Success:    resp.StatusCode < 400,
		Response:   resp,
		Parameters: a.outputs(resp, ep, endpoint, params, actionIndex, logger),
	}
	if !res.Success {
		res.Text = fmt.Sprintf("%d | %s", resp.StatusCode, resp.Text())
	}
	return res
}

func (a *Adapter) send(ctx context.Context, endpoint string, params *parameter.Set, logger *slog.Logger) (*operation.Response, *Endpoint, error) {
	def, ep, err := a.catalog.Resolve(endpoint)
	if err != nil {
		return nil, nil, err
	}
	method := ep.Method()
	if !supportedMethods[method] {
		return nil, nil, fmt.Errorf("Unknown request type %s", ep.RequestType)
	}

	req := Render(ep, params)
	timeout := def.Timeout()
	logger.Debug("performing request",
		slog.String("method", method),
		slog.String("url", httpclient.SanitizeRawURL(req.URL)),
		slog.Duration("timeout", timeout))
	log.Trace(logger, "request payload",
		slog.Any("headers", redactHeaders(req.Headers)),
		slog.String("data", req.Data),
		slog.String("params", req.Params))

	if a.Mocked() {
		return a.mocks.Response(req.URL, logger), ep, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := a.client.R().SetContext(ctx).SetHeaders(req.Headers)
	if req.Params != "" {
		r.SetQueryString(req.Params)
	}
	if method == http.MethodPost || method == http.MethodPut {
		r.SetBody(req.Data)
	}
	resp, err := r.Execute(method, req.URL)
	if err != nil {
		return nil, nil, &transportError{err: err}
	}
	return &operation.Response{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, ep, nil
}

func (a *Adapter) outputs(resp *operation.Response, ep *Endpoint, endpoint string, params *parameter.Set, actionIndex int, logger *slog.Logger) *parameter.Set {
	out := parameter.NewSet()
	switch {
	case resp.StatusCode == http.StatusOK && len(resp.Body) == 0:
		logger.Debug("the request was successful with an empty response")
		out.Add(parameter.Output(params.OverrideName(ResultParameter, actionIndex), parameter.TypeString,
			fmt.Sprintf("The %s API call succeeded", endpoint), actionIndex))
	case resp.StatusCode >= 400:
	case len(ep.ResponseVariables) > 0:
		extracted, err := Extract(resp.Body, ep, params, actionIndex, logger)
		if err != nil {
			logger.Error("Failed to decode JSON from response", log.Error(err))
			break
		}
		out = extracted
	}
	return out
}

func redactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		switch strings.ToLower(k) {
		case "authorization", "proxy-authorization", "cookie", "x-api-key":
			out[k] = "[REDACTED]"
		default:
			out[k] = v
		}
	}
	return out
}

// Mocks maps exact request URLs to the JSON document returned for them.
type Mocks map[string]any

// NoMockMessage is the body returned for URLs without a mock response.
var NoMockMessage = map[string]any{"message": "No predefined response found."}

// Response returns the mock response for url.
func (m Mocks) Response(url string, logger *slog.Logger) *operation.Response {
	doc, ok := m[url]
	if ok && doc != nil {
		logger.Debug("found a predefined response", slog.String("url", url))
	} else {
		logger.Warn("No predefined response found for the URL", slog.String("url", url))
		doc = NoMockMessage
	}
	body, err := json.Marshal(doc)
	if err != nil {
		body = []byte(fmt.Sprintf("%q", fmt.Sprint(doc)))
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return &operation.Response{StatusCode: http.StatusOK, Header: header, Body: body}
}
