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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/omcli/pkg/errors"
)

// Exit codes for omcli
const (
	ExitSuccess          = 0
	ExitExecutionFailed  = 1
	ExitInvalidArguments = 2
	ExitConfigError      = 3
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewExecutionError creates an error for failed operation runs
func NewExecutionError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitExecutionFailed, Message: msg, Cause: cause}
}

// NewInvalidArgumentsError creates an error for bad command line arguments
func NewInvalidArgumentsError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidArguments, Message: msg, Cause: cause}
}

// NewConfigError creates an error for a broken custom directory or settings
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfigError, Message: msg, Cause: cause}
}

// ExitCode returns the process exit code for err. Typed errors without an
// ExitError wrapper map to their natural code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var cfgErr *pkgerrors.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var valErr *pkgerrors.ValidationError
	if errors.As(err, &valErr) {
		return ExitInvalidArguments
	}
	return ExitExecutionFailed
}

// Report writes err and any suggestion to w and returns its exit code.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(w, RenderError(msg))
	}
	printUserVisibleSuggestion(w, err)
	return ExitCode(err)
}

// HandleExitError reports err on stderr and exits with its code
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err))
}

// printUserVisibleSuggestion walks the chain to the first UserVisibleError
// and prints its suggestion.
func printUserVisibleSuggestion(w io.Writer, err error) {
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				if suggestion := userErr.Suggestion(); suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
