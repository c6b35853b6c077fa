// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"strings"
)

type scanner struct {
	text string
	pos  int
}

func (s *scanner) isEOF() bool { return s.pos >= len(s.text) }

func (s *scanner) peek() byte {
	if s.isEOF() {
		return 0
	}
	return s.text[s.pos]
}

func (s *scanner) startsWith(prefix string) bool {
	return strings.HasPrefix(s.text[s.pos:], prefix)
}

func (s *scanner) eatWhitespace() {
	for !s.isEOF() && isWhitespace(s.text[s.pos]) {
		s.pos++
	}
}

// eatWhile advances while accept holds and returns the consumed text.
func (s *scanner) eatWhile(accept func(byte) bool) string {
	start := s.pos
	for !s.isEOF() && accept(s.text[s.pos]) {
		s.pos++
	}
	return s.text[start:s.pos]
}

// eatUntil advances to the next occurrence of marker (not consumed).
// Returns false, leaving the position untouched, when marker is missing.
func (s *scanner) eatUntil(marker string) (string, bool) {
	idx := strings.Index(s.text[s.pos:], marker)
	if idx < 0 {
		return "", false
	}
	start := s.pos
	s.pos += idx
	return s.text[start:s.pos], true
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isTagNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTagNameChar(c byte) bool {
	return isTagNameStart(c) || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}

func isAttrNameChar(c byte) bool {
	return !isWhitespace(c) && c != '/' && c != '>' && c != '<' && c != '=' && c != '"' && c != '\'' && c != '{' && c != '}'
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

func isIdentifier(s string) bool {
	if len(s) == 0 || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func isTextChar(c byte) bool {
	return c != '<' && c != '{'
}

var voidTagNames = map[string]struct{}{
	"area": {}, "base": {}, "basefont": {}, "bgsound": {}, "br": {}, "col": {},
	"command": {}, "embed": {}, "frame": {}, "hr": {}, "image": {}, "img": {},
	"input": {}, "isindex": {}, "keygen": {}, "link": {}, "menuitem": {},
	"meta": {}, "nextid": {}, "param": {}, "source": {}, "track": {}, "wbr": {},
}

// IsVoidTagName reports whether elements with this tag never have children or a close tag.
func IsVoidTagName(tagName string) bool {
	_, found := voidTagNames[strings.ToLower(tagName)]
	return found
}

// IsRawTextTagName reports whether elements with this tag hold a body that is not markup.
func IsRawTextTagName(tagName string) bool {
	switch tagName {
	case "style", "script":
		return true
	default:
		return false
	}
}
