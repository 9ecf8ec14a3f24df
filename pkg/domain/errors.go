package domain

import (
	"errors"
	"fmt"
)

// CodeMissingPrereq is the error code reported when a step is visited out of order.
const CodeMissingPrereq = "MISSING_PREREQ"

// ErrMissingPrereq is matched by every ProgressError through errors.Is.
var ErrMissingPrereq = errors.New("missing prerequisite step")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrStepNotFound is returned when a route is not part of the journey.
var ErrStepNotFound = errors.New("step not found")

// ProgressError is the admission decision of the progress guard.
// Redirect is empty when there is no step the user can be sent back to.
type ProgressError struct {
	Code     string
	Path     string
	Redirect string
}

func (e *ProgressError) Error() string {
	if e.Redirect == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Path)
	}
	return fmt.Sprintf("%s: %s (redirect to %s)", e.Code, e.Path, e.Redirect)
}

// Is lets errors.Is(err, ErrMissingPrereq) match.
func (e *ProgressError) Is(target error) bool {
	return target == ErrMissingPrereq && e.Code == CodeMissingPrereq
}

// NewMissingPrereq builds a MISSING_PREREQ decision for path.
func NewMissingPrereq(path, redirect string) *ProgressError {
	return &ProgressError{Code: CodeMissingPrereq, Path: path, Redirect: redirect}
}

// ConfigError reports a wiring defect in a journey definition, such as a
// named function that is not registered. It is never caused by user input.
type ConfigError struct {
	Step   string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "invalid journey configuration"
	if e.Step != "" {
		msg += fmt.Sprintf(" at step '%s'", e.Step)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ValidationError describes a rejected field value. When every error of a
// submission carries a Redirect, the first one decides where the user goes.
type ValidationError struct {
	Key      string `json:"key"`
	Type     string `json:"type,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for '%s': %s", e.Key, e.Type)
}
