// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos_test

import (
	"testing"

	"carvel.dev/clip/pkg/filepos"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type S struct{}

var _ = Suite(&S{})

func (s *S) TestNewLocationRejectsInvertedRange(c *C) {
	c.Assert(func() { filepos.NewLocation(3, 2) }, PanicMatches, "Location start 3 is after end 2")
	c.Assert(func() { filepos.NewLocation(-1, 2) }, PanicMatches, "Location offsets must not be negative.*")
}

func (s *S) TestNonEmptyLocationWidensZeroWidth(c *C) {
	c.Assert(filepos.NewNonEmptyLocation(2, 2, 5), Equals, filepos.Location{Start: 2, End: 3})
	c.Assert(filepos.NewNonEmptyLocation(5, 5, 5), Equals, filepos.Location{Start: 4, End: 5})
	c.Assert(filepos.NewNonEmptyLocation(4, 9, 5), Equals, filepos.Location{Start: 4, End: 5})
	c.Assert(filepos.NewNonEmptyLocation(0, 0, 0), Equals, filepos.Location{Start: 0, End: 0})
}

func (s *S) TestLocationText(c *C) {
	loc := filepos.NewLocation(1, 4)
	c.Assert(loc.Text("<div>"), Equals, "div")
	c.Assert(loc.Len(), Equals, 3)
	c.Assert(filepos.NewLocation(3, 10).Text("<div>"), Equals, "v>")
	c.Assert(loc.Contains(filepos.NewLocation(2, 3)), Equals, true)
	c.Assert(loc.Contains(filepos.NewLocation(0, 3)), Equals, false)
}

func (s *S) TestPositionFromOffset(c *C) {
	text := "<div>\n  <span>\n</div>"
	pos := filepos.NewPosition(text, 8, "a.pc")

	c.Assert(pos.LineNum(), Equals, 2)
	c.Assert(pos.ColNum(), Equals, 3)
	c.Assert(pos.GetLine(), Equals, "  <span>")
	c.Assert(pos.AsCompactString(), Equals, "a.pc:2:3")
	c.Assert(pos.AsSourceSnippet(), Equals, "   2 |   <span>\n         ^")
}

func (s *S) TestPositionClampsOffsetAndHandlesUnknown(c *C) {
	pos := filepos.NewPosition("ab", 10, "")
	c.Assert(pos.AsCompactString(), Equals, "1:3")

	unknown := filepos.NewUnknownPositionInFile("b.pc")
	c.Assert(unknown.IsKnown(), Equals, false)
	c.Assert(unknown.AsString(), Equals, "line b.pc:?")
	c.Assert(unknown.AsSourceSnippet(), Equals, "")
}
