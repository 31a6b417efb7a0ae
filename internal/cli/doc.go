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

/*
Package cli provides the omcli root command.

The root command runs operations from an operation tree. Without -o it
shows the interactive menu; with -o it runs one operation and exits.
Positional arguments are name=value parameters for the run.

# Command Tree

	omcli [flags] [name=value ...]
	├── validate      Load and validate the custom directory
	├── version       Show version
	└── help          Show help

# Flags

	-l, --log-level        DEBUG, INFO, WARNING, ERROR or CRITICAL
	-c, --custom-path      custom directory
	-t, --tree-path        operation tree file
	-m, --mock-responses   mock API responses
	    --settings         settings file
	-g, --generate-tree    round-trip the tree through temp_om_tree.json
	-o, --operation        run one operation
	-s, --skip-looping     treat loop markers as no-ops

Flags override OMCLI_* environment variables, which override the settings
file.

# Exit Codes

  - 0: success
  - 1: the operation failed or was aborted
  - 2: invalid arguments
  - 3: configuration error
*/
package cli
