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

// Package kafka provides actions that publish messages to Kafka.
package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/pkg/operation"
	"github.com/tombee/omcli/pkg/parameter"
)

// PackName is the name the pack registers under.
const PackName = "kafka"

// TestServer as kafka_server_path skips the broker.
const TestServer = "TEST"

const flushTimeout = 10 * time.Second

// Producer publishes one message.
type Producer interface {
	Produce(ctx context.Context, servers []string, topic, key, value string) error
}

// WriterProducer produces through a kafka-go Writer per message.
type WriterProducer struct {
	Timeout time.Duration
}

// Produce implements Producer.
func (p WriterProducer) Produce(ctx context.Context, servers []string, topic, key, value string) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = flushTimeout
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(servers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: timeout,
		RequiredAcks: kafkago.RequireOne,
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := w.WriteMessages(ctx, kafkago.Message{Key: []byte(key), Value: []byte(value)})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

var str = parameter.TypeString

// Pack returns the kafka action pack. A nil producer uses WriterProducer.
func Pack(p Producer) action.Pack {
	if p == nil {
		p = WriterProducer{}
	}
	return action.Pack{Name: PackName, Actions: []action.Definition{
		{Name: "massage_data_to_kafka", Func: MassageData, Parameters: map[string]action.ParameterSpec{
			"topic": action.In(str),
			"key":   action.In(str),
			"data":  action.In(str),
			"value": action.Out(str),
		}},
		{Name: "send_message_to_kafka", Func: send(p), Parameters: map[string]action.ParameterSpec{
			"topic":             action.In(str),
			"key":               action.In(str),
			"value":             action.In(str),
			"kafka_server_path": action.In(str),
		}},
	}}
}

// MassageData publishes data as the message value.
func MassageData(_ context.Context, call *operation.Call) *operation.Result {
	data, err := action.Require(call, "data")
	if err != nil {
		return action.Failf("An unexpected error occurred while massaging the data: Missing data")
	}
	return operation.Succeeded("Data massaged", call.Output("value", str, data))
}

func send(p Producer) operation.ActionFunc {
	return func(ctx context.Context, call *operation.Call) *operation.Result {
		topic, _ := call.Value("topic")
		key, _ := call.Value("key")
		value, _ := call.Value("value")
		if topic == "" || key == "" || value == "" {
			return action.Failf("An unexpected error occurred while sending a message to Kafka: Missing topic, key, or value")
		}
		server, _ := call.Value("kafka_server_path")
		if server == "" {
			return action.Failf("An unexpected error occurred while sending a message to Kafka: No kafka_server_path provided")
		}
		if server != TestServer {
			call.Logger.Debug("Producing a Kafka message", "server", server, "topic", topic)
			if err := p.Produce(ctx, splitServers(server), topic, key, value); err != nil {
				return operation.Failed(fmt.Sprintf("Failed to produce Kafka message: %v", err))
			}
		}
		return operation.Succeeded("Kafka message produced successfully")
	}
}

func splitServers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
