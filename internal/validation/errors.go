// Package validation binds request parameters and bodies against declarative
// schemas before a handler runs. Failures are collected into Errors, which
// serialise to the {"detail":[...]} shape clients of these services expect.
package validation

import (
	"fmt"
	"strings"
)

// Location identifies where a value was read from.
type Location string

const (
	InPath  Location = "path"
	InQuery Location = "query"
	InBody  Location = "body"
)

// FieldError describes one failed constraint.
type FieldError struct {
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Type  string   `json:"type"`
	Input any      `json:"input,omitempty"`
}

// Errors aggregates field errors for a single request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Detail is the response payload for a failed validation.
type Detail struct {
	Detail Errors `json:"detail"`
}

func missing(loc ...string) FieldError {
	return FieldError{Loc: loc, Msg: "Field required", Type: "missing"}
}
