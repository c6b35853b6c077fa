// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

// Location is an immutable [Start, End) byte range into one file's text.
type Location struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewLocation panics when start > end or either is negative.
func NewLocation(start, end int) Location {
	if start < 0 || end < 0 {
		panic(fmt.Sprintf("Location offsets must not be negative (%d, %d)", start, end))
	}
	if start > end {
		panic(fmt.Sprintf("Location start %d is after end %d", start, end))
	}
	return Location{Start: start, End: end}
}

// NewNonEmptyLocation widens a zero width range to a single byte so that it
// always points at something within text of length textLen.
func NewNonEmptyLocation(start, end, textLen int) Location {
	if end > textLen {
		end = textLen
	}
	if start > end {
		start = end
	}
	if start == end {
		switch {
		case end < textLen:
			end++
		case start > 0:
			start--
		}
	}
	return NewLocation(start, end)
}

func (l Location) Len() int      { return l.End - l.Start }
func (l Location) IsEmpty() bool { return l.Start == l.End }

// Contains reports whether other lies entirely within l.
func (l Location) Contains(other Location) bool {
	return l.Start <= other.Start && other.End <= l.End
}

// Text returns the slice of text covered by l, clamped to text's bounds.
func (l Location) Text(text string) string {
	start, end := l.Start, l.End
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func (l Location) AsString() string { return fmt.Sprintf("%d:%d", l.Start, l.End) }
