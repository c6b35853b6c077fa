// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"

	"carvel.dev/clip/pkg/filepos"
)

type ParseErrorKind string

const (
	// EndOfFile means the input ended while a construct was still open.
	EndOfFile ParseErrorKind = "EndOfFile"
	// Unexpected means a token was found where it is not allowed.
	Unexpected ParseErrorKind = "Unexpected"
	// Unterminated means a slot, comment or quoted value was never closed.
	Unterminated ParseErrorKind = "Unterminated"
)

// SyntaxError is the only error returned by Parse.
type SyntaxError struct {
	Kind     ParseErrorKind
	Message  string
	Location filepos.Location
	FilePath string

	text string
}

var _ error = &SyntaxError{}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Parsing '%s': %s (%s)", e.FilePath, e.Message, e.Position().AsString())
}

// Position of the start of the offending span.
func (e *SyntaxError) Position() *filepos.Position {
	return filepos.NewPosition(e.text, e.Location.Start, e.FilePath)
}

// Snippet renders the offending source line with a caret.
func (e *SyntaxError) Snippet() string {
	return e.Position().AsSourceSnippet()
}
