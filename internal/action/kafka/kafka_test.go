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

package kafka

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

type recordingProducer struct {
	servers           []string
	topic, key, value string
	err               error
}

func (r *recordingProducer) Produce(_ context.Context, servers []string, topic, key, value string) error {
	r.servers, r.topic, r.key, r.value = servers, topic, key, value
	return r.err
}

func newCall(params ...*parameter.Parameter) *operation.Call {
	return &operation.Call{Params: parameter.NewSet(params...), Logger: slog.New(slog.DiscardHandler)}
}

func p(name, value string) *parameter.Parameter {
	return parameter.New(name, parameter.TypeString, value)
}

func sendFunc(t *testing.T, prod Producer) operation.ActionFunc {
	t.Helper()
	r := action.NewRegistry()
	require.NoError(t, r.Register(Pack(prod)))
	fn, ok := r.Lookup("send_message_to_kafka")
	require.True(t, ok)
	return fn
}

func TestMassageData(t *testing.T) {
	res := MassageData(context.Background(), newCall(p("data", `{"x":1}`)))
	require.True(t, res.Success)
	v, ok := res.Parameters.Find("value")
	require.True(t, ok)
	assert.Equal(t, `{"x":1}`, v.StringValue())

	assert.False(t, MassageData(context.Background(), newCall()).Success)
}

func TestSend(t *testing.T) {
	msg := []*parameter.Parameter{p("topic", "events"), p("key", "k1"), p("value", "payload")}

	t.Run("test server skips broker", func(t *testing.T) {
		prod := &recordingProducer{}
		res := sendFunc(t, prod)(context.Background(), newCall(append(msg, p("kafka_server_path", "TEST"))...))
		require.True(t, res.Success)
		assert.Equal(t, "Kafka message produced successfully", res.Text)
		assert.Empty(t, prod.topic)
	})

	t.Run("produces", func(t *testing.T) {
		prod := &recordingProducer{}
		res := sendFunc(t, prod)(context.Background(), newCall(append(msg, p("kafka_server_path", "b1:9092, b2:9092"))...))
		require.True(t, res.Success)
		assert.Equal(t, []string{"b1:9092", "b2:9092"}, prod.servers)
		assert.Equal(t, "events", prod.topic)
		assert.Equal(t, "k1", prod.key)
		assert.Equal(t, "payload", prod.value)
	})

	t.Run("producer error", func(t *testing.T) {
		prod := &recordingProducer{err: errors.New("broker down")}
		res := sendFunc(t, prod)(context.Background(), newCall(append(msg, p("kafka_server_path", "b1:9092"))...))
		assert.False(t, res.Success)
		assert.Equal(t, "Failed to produce Kafka message: broker down", res.Text)
	})

	t.Run("missing inputs", func(t *testing.T) {
		fn := sendFunc(t, &recordingProducer{})
		res := fn(context.Background(), newCall(p("topic", "events")))
		assert.Contains(t, res.Text, "Missing topic, key, or value")
		res = fn(context.Background(), newCall(msg...))
		assert.Contains(t, res.Text, "No kafka_server_path provided")
	})
}
