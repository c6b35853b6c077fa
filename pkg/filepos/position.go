// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
	"strings"
)

type Position struct {
	lineNum int // 1 based
	colNum  int // 1 based, in runes
	file    string
	line    string
	known   bool
}

// NewPosition converts a byte offset within text into a line/column Position.
// Offsets past the end of text are clamped.
func NewPosition(text string, offset int, file string) *Position {
	if offset < 0 {
		panic("Offsets are 0 based")
	}
	if offset > len(text) {
		offset = len(text)
	}

	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	lineEnd := strings.IndexByte(text[lineStart:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += lineStart
	}

	return &Position{
		lineNum: strings.Count(text[:offset], "\n") + 1,
		colNum:  len([]rune(text[lineStart:offset])) + 1,
		file:    file,
		line:    text[lineStart:lineEnd],
		known:   true,
	}
}

// NewUnknownPositionInFile produces a Position of a known file at an unknown line.
func NewUnknownPositionInFile(file string) *Position {
	return &Position{file: file}
}

func (p *Position) IsKnown() bool { return p != nil && p.known }

func (p *Position) LineNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.lineNum
}

func (p *Position) ColNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.colNum
}

func (p *Position) GetLine() string { return p.line }
func (p *Position) GetFile() string { return p.file }

func (p *Position) AsString() string {
	return "line " + p.AsCompactString()
}

func (p *Position) AsCompactString() string {
	filePrefix := p.file
	if len(filePrefix) > 0 {
		filePrefix += ":"
	}
	if p.IsKnown() {
		return fmt.Sprintf("%s%d:%d", filePrefix, p.lineNum, p.colNum)
	}
	return fmt.Sprintf("%s?", filePrefix)
}

// AsSourceSnippet renders the source line followed by a caret under the column.
func (p *Position) AsSourceSnippet() string {
	if !p.IsKnown() {
		return ""
	}
	prefix := fmt.Sprintf("%4d | ", p.lineNum)
	caret := strings.Repeat(" ", len(prefix)+p.colNum-1) + "^"
	return prefix + p.line + "\n" + caret
}
