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

// Package builtin registers the action packs shipped with omcli.
package builtin

import (
	"fmt"

	"github.com/tombee/omcli/internal/action"
	"github.com/tombee/omcli/internal/action/common"
	"github.com/tombee/omcli/internal/action/file"
	"github.com/tombee/omcli/internal/action/kafka"
	"github.com/tombee/omcli/internal/action/shell"
	"github.com/tombee/omcli/internal/action/transform"
	"github.com/tombee/omcli/internal/action/utility"
)

// Options configures the packs that have collaborators.
type Options struct {
	// Shell runs shell and command pack actions. Nil uses shell.New(nil).
	Shell *shell.Runner
	// Kafka produces messages. Nil uses kafka.WriterProducer.
	Kafka kafka.Producer
	// CommandPacks are declarative packs loaded from the custom directory.
	CommandPacks []*shell.CommandPack
}

// Packs returns every built-in pack followed by the command packs.
func Packs(opts Options) []action.Pack {
	runner := opts.Shell
	if runner == nil {
		runner = shell.New(nil)
	}
	packs := []action.Pack{
		common.Pack(),
		transform.Pack(),
		file.Pack(),
		shell.Pack(runner),
		kafka.Pack(opts.Kafka),
		utility.Pack(),
	}
	for _, cp := range opts.CommandPacks {
		packs = append(packs, cp.Pack(runner))
	}
	return packs
}

// NewRegistry returns a registry holding Packs(opts).
func NewRegistry(opts Options) (*action.Registry, error) {
	r := action.NewRegistry()
	for _, p := range Packs(opts) {
		if err := r.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register action pack %s: %w", p.Name, err)
		}
	}
	return r, nil
}
