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
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tombee/omcli/pkg/httpclient"
	"github.com/tombee/omcli/pkg/parameter"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func registryDefinition(baseURL string) *Definition {
	return &Definition{
		Name:            "Registry",
		ID:              "registry",
		RequestTimeout:  5,
		CustomVariables: map[string]string{BaseURLVariable: baseURL},
		Endpoints: []*Endpoint{
			{
				Name:              "get",
				RequestType:       "GET",
				URL:               baseURL + "/registries/{name}",
				Headers:           map[string]string{"Authorization": "Bearer {token}"},
				Params:            "expand={expand}",
				ResponseVariables: map[string]string{"id": "data.id"},
			},
			{
				Name:        "create",
				RequestType: "post",
				URL:         baseURL + "/registries",
				Headers:     map[string]string{"Content-Type": "application/json"},
				Data:        `{"name":"{name}"}`,
			},
			{Name: "patch", RequestType: "PATCH", URL: baseURL + "/x"},
		},
	}
}

func newAdapter(t *testing.T, def *Definition, opts ...Option) *Adapter {
	t.Helper()
	catalog, err := NewCatalog(def)
	require.NoError(t, err)
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	hc, err := httpclient.New(cfg)
	require.NoError(t, err)
	t.Cleanup(hc.CloseIdleConnections)
	a, err := NewAdapter(catalog, hc, opts...)
	require.NoError(t, err)
	return a
}

func params(kv ...string) *parameter.Set {
	s := parameter.NewSet()
	for i := 0; i+1 < len(kv); i += 2 {
		s.Add(parameter.New(kv[i], parameter.TypeString, kv[i+1]))
	}
	return s
}

func TestExecute_MockResponse(t *testing.T) {
	def := registryDefinition("https://registry.example.com")
	mocks := Mocks{"https://registry.example.com/registries/main": map[string]any{
		"data": map[string]any{"id": "registry-1"},
	}}
	a := newAdapter(t, def, WithMocks(mocks))

	res := a.Execute(context.Background(), "registry.get", params("name", "main"), 2)

	require.True(t, res.Success, res.Text)
	assert.Equal(t, `{"data":{"id":"registry-1"}}`, res.Response.Text())
	assert.Equal(t, "application/json", res.Response.Header.Get("Content-Type"))
	v, ok := res.Parameters.Value("id", 2)
	require.True(t, ok)
	assert.Equal(t, "registry-1", v)
	idx, _ := res.Parameters.Items()[0].ActionIndex()
	assert.Equal(t, 2, idx)
}

func TestExecute_MissingMock(t *testing.T) {
	a := newAdapter(t, registryDefinition("https://registry.example.com"), WithMocks(Mocks{"https://other": "x"}))

	res := a.Execute(context.Background(), "registry.get", params("name", "nope"), 0)

	require.True(t, res.Success)
	assert.JSONEq(t, `{"message":"No predefined response found."}`, res.Response.Text())
	p, ok := res.Parameters.Find("id")
	require.True(t, ok)
	assert.False(t, p.HasValue(), "unresolved path yields an empty parameter")
}

func TestExecute_HTTP(t *testing.T) {
	var got *http.Request
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		switch r.URL.Path {
		case "/registries/main":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"data":{"id":"registry-7"}}`)
		case "/registries":
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()
	a := newAdapter(t, registryDefinition(server.URL))

	t.Run("get with headers and query", func(t *testing.T) {
		res := a.Execute(context.Background(), "registry.get", params("name", "main", "token", "t0k", "expand", "all"), 0)

		require.True(t, res.Success, res.Text)
		assert.Equal(t, "Bearer t0k", got.Header.Get("Authorization"))
		assert.Equal(t, "all", got.URL.Query().Get("expand"))
		assert.Equal(t, http.MethodGet, got.Method)
		v, _ := res.Parameters.Value("id", 0)
		assert.Equal(t, "registry-7", v)
	})

	t.Run("post with empty response", func(t *testing.T) {
		res := a.Execute(context.Background(), "registry.create", params("name", "main"), 1)

		require.True(t, res.Success, res.Text)
		assert.Equal(t, http.MethodPost, got.Method)
		assert.Equal(t, `{"name":"main"}`, gotBody)
		v, _ := res.Parameters.Value(ResultParameter, 1)
		assert.Equal(t, "The registry.create API call succeeded", v)
	})
}

func TestExecute_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"missing"}`)
	}))
	defer server.Close()
	a := newAdapter(t, registryDefinition(server.URL))

	res := a.Execute(context.Background(), "registry.get", params("name", "x"), 0)

	assert.False(t, res.Success)
	assert.Equal(t, `404 | {"error":"missing"}`, res.Text)
	assert.Equal(t, 0, res.Parameters.Len())
	assert.Equal(t, `{"error":"missing"}`, res.ResponseText())
}

func TestExecute_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	closedURL := server.URL
	server.Close()
	a := newAdapter(t, registryDefinition(closedURL))

	tests := []struct {
		endpoint string
		want     string
	}{
		{"registry.get", "An error occurred during the API request: "},
		{"unknown.get", "An unexpected error occurred while processing the request: The API unknown was not found"},
		{"registry.nope", "An unexpected error occurred while processing the request: The endpoint nope was not found in the API registry"},
		{"registry.patch", "An unexpected error occurred while processing the request: Unknown request type PATCH"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			res := a.Execute(context.Background(), tt.endpoint, params("name", "x"), 0)

			assert.False(t, res.Success)
			assert.Contains(t, res.Text, tt.want)
			assert.Nil(t, res.Response)
		})
	}
}

func TestRender(t *testing.T) {
	ep := &Endpoint{
		URL:     "https://x/{id}/{missing}",
		Headers: map[string]string{"X-Key": "{api_key}"},
		Data:    `{"v":"{id}"}`,
		Params:  "q={id}",
	}
	ps := params("id", "42", "id", "ignored")
	key := parameter.New("internal_key", parameter.TypeString, "k")
	key.APIParameterName = "api_key"
	ps.Add(key)
	ps.Add(&parameter.Parameter{Name: "missing"})

	req := Render(ep, ps)

	assert.Equal(t, "https://x/42/{missing}", req.URL)
	assert.Equal(t, "k", req.Headers["X-Key"])
	assert.Equal(t, `{"v":"42"}`, req.Data)
	assert.Equal(t, "q=42", req.Params)
}

func TestLookup(t *testing.T) {
	doc, err := gabs.ParseJSON([]byte(`{"a":{"b":"c"},"items":[{"id":1},{"id":2},"x"],"n":null}`))
	require.NoError(t, err)

	assert.Equal(t, "c", Lookup(doc, "a.b"))
	assert.Equal(t, []any{float64(1), float64(2), nil}, Lookup(doc, "items.id"))
	assert.Nil(t, Lookup(doc, "a.b.c"))
	assert.Nil(t, Lookup(doc, "missing.key"))
	assert.Nil(t, Lookup(doc, "n"))
	assert.Equal(t, doc.Data(), Lookup(doc, "."))
}

func TestExtract_Types(t *testing.T) {
	body := []byte(`{"s":"v","i":5,"f":1.5,"b":true,"o":{"k":"v"},"l":[1,2]}`)
	ep := &Endpoint{ResponseVariables: map[string]string{
		"s": "s", "i": "i", "f": "f", "b": "b", "o": "o", "l": "l", "renamed": "s",
	}}
	override := &parameter.Parameter{Name: "custom", OverrideParameterName: "renamed"}
	override.SetActionIndex(3)

	out, err := Extract(body, ep, parameter.NewSet(override), 3, nil)
	require.NoError(t, err)

	want := map[string]struct {
		typ   parameter.Type
		value string
	}{
		"b":      {parameter.TypeBoolean, "true"},
		"custom": {parameter.TypeString, "v"},
		"f":      {parameter.TypeString, "1.5"},
		"i":      {parameter.TypeInteger, "5"},
		"l":      {parameter.TypeString, "[1,2]"},
		"o":      {parameter.TypeString, `{"k":"v"}`},
		"s":      {parameter.TypeString, "v"},
	}
	require.Equal(t, len(want), out.Len())
	for name, w := range want {
		p, ok := out.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, w.typ, p.Type, name)
		assert.Equal(t, w.value, p.StringValue(), name)
	}
	assert.Equal(t, "b", out.Items()[0].Name, "variables are extracted in sorted order")
}

func TestExtract_InvalidJSON(t *testing.T) {
	_, err := Extract([]byte("not json"), &Endpoint{ResponseVariables: map[string]string{"a": "a"}}, nil, 0, nil)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	def := registryDefinition("https://x")
	_, err := NewCatalog(def, def)
	assert.Error(t, err)

	c, err := NewCatalog(def)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.EndpointCount())
	assert.Equal(t, DefaultRequestTimeout, (&Definition{}).Timeout())

	_, _, err = c.Resolve("registry")
	assert.Error(t, err)
}
