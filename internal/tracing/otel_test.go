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

package tracing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func TestProviderDisabled(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "omcli.operation")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestProviderWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{Writer: &buf, ServiceVersion: "1.2.3"})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	ctx, parent := p.Tracer().Start(context.Background(), "omcli.operation",
		trace.WithAttributes(attribute.String("omcli.operation_id", "list_users")))
	_, child := p.Tracer().Start(ctx, "omcli.action")
	child.End()
	parent.End()
	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"omcli.action"`)
	assert.Contains(t, out, `"Name":"omcli.operation"`)
	assert.Contains(t, out, "list_users")
	assert.Contains(t, out, "1.2.3")
}

func TestProviderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	p, err := NewProvider(Config{File: path})
	require.NoError(t, err)

	_, span := p.Tracer().Start(context.Background(), "omcli.operation")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "omcli.operation")
}

func TestProviderBadFile(t *testing.T) {
	_, err := NewProvider(Config{File: filepath.Join(t.TempDir(), "missing", "trace.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open trace file")
}
