// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package eval

import (
	"fmt"

	"carvel.dev/clip/pkg/filepos"
)

// NotFoundError is returned when the requested file is not in the graph.
type NotFoundError struct {
	FilePath string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Expected file '%s' to be loaded, but it was not found", e.FilePath)
}

// IncludeNotFoundError reports an include that could not be inlined:
// its target is missing, it re-enters a file being evaluated, or
// nesting is too deep.
type IncludeNotFoundError struct {
	// FilePath is the file holding the failing include.
	FilePath string
	// Target is the resolved file the include refers to.
	Target   string
	Message  string
	Location filepos.Location
}

func (e *IncludeNotFoundError) Error() string {
	return fmt.Sprintf("Evaluating '%s': %s (%s)", e.FilePath, e.Message, e.Location.AsString())
}

// RuntimeError reports a slot or attribute expression that failed to evaluate.
type RuntimeError struct {
	FilePath string
	Message  string
	Location filepos.Location
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Evaluating '%s': %s (%s)", e.FilePath, e.Message, e.Location.AsString())
}
