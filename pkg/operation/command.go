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

package operation

import (
	"strings"

	"github.com/tombee/omcli/pkg/parameter"
)

// CommandConfig controls the command line generated after a run.
type CommandConfig struct {
	// Prefix is the program invocation, "omcli" when empty.
	Prefix     string
	CustomPath string
	TreePath   string
	MockPath   string
}

// BuildCommand returns the command line that replays a run of operationID
// unattended with the command parameters of history.
func BuildCommand(cfg CommandConfig, operationID string, history *parameter.Set) string {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "omcli"
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" -s")
	writeFlag(&b, "-c", cfg.CustomPath)
	writeFlag(&b, "-t", cfg.TreePath)
	writeFlag(&b, "-m", cfg.MockPath)
	writeFlag(&b, "-o", operationID)
	for _, p := range history.Items() {
		if !p.CommandParameter {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(p.Name)
		b.WriteByte('=')
		if p.Type == parameter.TypeString {
			b.WriteString(`"` + p.StringValue() + `"`)
		} else {
			b.WriteString(p.StringValue())
		}
	}
	return b.String()
}

func writeFlag(b *strings.Builder, flag, value string) {
	if value == "" {
		return
	}
	b.WriteString(" " + flag + ` "` + value + `"`)
}
