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

// Package errors defines the typed errors shared by the engine, the
// configuration loader and the CLI.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports an input value that failed validation, such as a
// command line argument that does not match its declared type.
type ValidationError struct {
	// Field is the parameter or setting that failed validation
	Field string

	// Message is the human-readable description
	Message string

	// Hint is optional guidance shown to the user
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// IsUserVisible implements UserVisibleError.
func (e *ValidationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ValidationError) UserMessage() string { return e.Message }

// Suggestion implements UserVisibleError.
func (e *ValidationError) Suggestion() string { return e.Hint }

// NotFoundError reports a lookup miss for a named resource (operation,
// action, API, endpoint).
type NotFoundError struct {
	// Resource is the kind of thing that was looked up
	Resource string

	// ID is the name that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigError reports a broken configuration: a missing directory, an
// invalid API definition or an operation tree that references unknown
// actions.
type ConfigError struct {
	// Key locates the problem (file path, API id, operation id)
	Key string

	// Reason explains what is wrong
	Reason string

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := "config error"
	if e.Key != "" {
		msg = fmt.Sprintf("config error at %s", e.Key)
	}
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *ConfigError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ConfigError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ConfigError) Suggestion() string {
	return "Run 'omcli validate -c <custom path>' to check the configuration"
}

// TimeoutError reports a blocking call that exceeded its deadline.
type TimeoutError struct {
	// Operation describes what timed out
	Operation string

	// Duration is the configured limit
	Duration time.Duration

	// Cause is the underlying error, if any
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Wrap annotates err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf annotates err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is wraps errors.Is from the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As from the standard library.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New wraps errors.New from the standard library.
func New(message string) error {
	return errors.New(message)
}
