// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
	"strings"

	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/orderedmap"
	"github.com/k14s/starlark-go/syntax"
)

const (
	IncludeTagName = "include"
	IncludeSrcAttr = "src"

	blockOpenPrefix  = "{#"
	blockClosePrefix = "{/"
)

type Parser struct {
	associatedName string
	s              *scanner
}

func NewParser() *Parser {
	return &Parser{}
}

// Parse is a shortcut for NewParser().Parse(text, filePath).
func Parse(text, filePath string) (Node, error) {
	return NewParser().Parse(text, filePath)
}

// Parse returns the root of the tree, or a *SyntaxError.
// A text holding exactly one top level node yields that node; anything else
// yields a Fragment spanning the whole text.
func (p *Parser) Parse(text, associatedName string) (Node, error) {
	p.associatedName = associatedName
	p.s = &scanner{text: text}

	children, err := p.parseNodes(func() bool { return p.s.isEOF() })
	if err != nil {
		return nil, err
	}

	if len(children) == 1 {
		return children[0], nil
	}
	return &Fragment{Children: children, Position: filepos.NewLocation(0, len(text))}, nil
}

func (p *Parser) parseNodes(done func() bool) ([]Node, error) {
	var children []Node

	p.s.eatWhitespace()

	for !done() {
		child, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		p.s.eatWhitespace()
	}

	return children, nil
}

func (p *Parser) parseNode() (Node, error) {
	switch {
	case p.s.startsWith("<!--"):
		return p.parseComment()
	case p.s.startsWith("</"):
		return nil, p.parseStrayCloseTag()
	case p.s.peek() == '<':
		return p.parseElement()
	case p.s.startsWith(blockOpenPrefix):
		return p.parseBlock()
	case p.s.startsWith(blockClosePrefix):
		start := p.s.pos
		return nil, p.unexpected("Block close doesn't have an open block", start, start+len(blockClosePrefix))
	case p.s.peek() == '{':
		return p.parseSlot()
	default:
		return p.parseText()
	}
}

func (p *Parser) parseText() (Node, error) {
	start := p.s.pos
	value := p.s.eatWhile(isTextChar)
	if len(value) == 0 {
		return nil, p.unexpected(fmt.Sprintf("Unexpected character '%c'", p.s.peek()), start, start+1)
	}
	return &Text{Value: value, Position: filepos.NewLocation(start, p.s.pos)}, nil
}

func (p *Parser) parseComment() (Node, error) {
	start := p.s.pos
	p.s.pos += len("<!--")

	value, found := p.s.eatUntil("-->")
	if !found {
		return nil, p.newErr(Unterminated, "Unterminated comment", start, len(p.s.text))
	}
	p.s.pos += len("-->")

	return &Comment{Value: value, Position: filepos.NewLocation(start, p.s.pos)}, nil
}

func (p *Parser) parseStrayCloseTag() error {
	start := p.s.pos
	tagName, err := p.parseCloseTag(start)
	if err != nil {
		return err
	}
	if IsVoidTagName(tagName) {
		return p.unexpected(fmt.Sprintf("Void tag '%s' shouldn't be closed", tagName), start, p.s.pos)
	}
	return p.unexpected(fmt.Sprintf("Closing tag '%s' doesn't have an open tag", tagName), start, p.s.pos)
}

// parseCloseTag consumes "</name>" starting at the current position.
func (p *Parser) parseCloseTag(constructStart int) (string, error) {
	start := p.s.pos
	p.s.pos += len("</")

	tagName, err := p.parseTagName(constructStart)
	if err != nil {
		return "", err
	}

	p.s.eatWhitespace()

	switch {
	case p.s.isEOF():
		return "", p.endOfFile(fmt.Sprintf("Expected closing tag '%s' to end with '>'", tagName), constructStart)
	case p.s.peek() != '>':
		return "", p.unexpected(fmt.Sprintf("Expected closing tag '%s' to end with '>'", tagName), start, p.s.pos+1)
	}
	p.s.pos++

	return tagName, nil
}

func (p *Parser) parseTagName(constructStart int) (string, error) {
	if p.s.isEOF() {
		return "", p.endOfFile("Expected tag name", constructStart)
	}
	start := p.s.pos
	if !isTagNameStart(p.s.peek()) {
		return "", p.unexpected(fmt.Sprintf("Unexpected character '%c' in tag name", p.s.peek()), start, start+1)
	}
	return p.s.eatWhile(isTagNameChar), nil
}

func (p *Parser) parseElement() (Node, error) {
	start := p.s.pos
	p.s.pos++ // <

	tagName, err := p.parseTagName(start)
	if err != nil {
		return nil, err
	}

	attrs, err := p.parseAttributes(tagName, start)
	if err != nil {
		return nil, err
	}

	var children []Node

	switch {
	case p.s.startsWith("/>"):
		p.s.pos += len("/>")

	case p.s.peek() == '>':
		p.s.pos++

		if !IsVoidTagName(tagName) {
			if IsRawTextTagName(tagName) {
				children, err = p.parseRawText(tagName, start)
			} else {
				children, err = p.parseNodes(func() bool {
					return p.s.isEOF() || p.s.startsWith("</")
				})
			}
			if err != nil {
				return nil, err
			}

			if p.s.isEOF() {
				return nil, p.endOfFile(fmt.Sprintf("Expected element '%s' to be closed", tagName), start)
			}

			closeStart := p.s.pos
			closeTagName, err := p.parseCloseTag(start)
			if err != nil {
				return nil, err
			}
			if closeTagName != tagName {
				return nil, p.unexpected(fmt.Sprintf(
					"Expected closing tag '%s', but found '%s'", tagName, closeTagName), closeStart, p.s.pos)
			}
		}

	default:
		panic(fmt.Sprintf("Unexpected end of attributes at offset %d", p.s.pos))
	}

	loc := filepos.NewLocation(start, p.s.pos)

	if tagName == IncludeTagName {
		return p.newInclude(attrs, children, loc)
	}

	return &Element{TagName: tagName, Attributes: attrs, Children: children, Position: loc}, nil
}

// parseRawText consumes everything up to the element's close tag as a single
// text node; style and script bodies are not markup.
func (p *Parser) parseRawText(tagName string, elementStart int) ([]Node, error) {
	start := p.s.pos

	value, found := p.s.eatUntil("</" + tagName)
	if !found {
		return nil, p.endOfFile(fmt.Sprintf("Expected element '%s' to be closed", tagName), elementStart)
	}
	if len(strings.TrimSpace(value)) == 0 {
		return nil, nil
	}
	return []Node{&Text{Value: value, Position: filepos.NewLocation(start, p.s.pos)}}, nil
}

func (p *Parser) newInclude(attrs *Attributes, children []Node, loc filepos.Location) (Node, error) {
	if len(children) > 0 {
		return nil, p.unexpected("Include can't have children", loc.Start, loc.End)
	}

	src, found := attrs.Get(IncludeSrcAttr)
	if !found || src.Kind != AttrString {
		return nil, p.unexpected(fmt.Sprintf(
			"Expected include to have a string '%s' attribute", IncludeSrcAttr), loc.Start, loc.End)
	}
	if len(strings.TrimSpace(src.Value)) == 0 {
		return nil, p.unexpected(fmt.Sprintf(
			"Expected include '%s' attribute to be non-empty", IncludeSrcAttr), src.Position.Start, src.Position.End)
	}

	return &Include{Src: src.Value, Attributes: attrs, Position: loc}, nil
}

// parseAttributes stops in front of '>' or "/>".
func (p *Parser) parseAttributes(tagName string, elementStart int) (*Attributes, error) {
	attrs := orderedmap.NewMap[string, *Attribute]()

	for {
		p.s.eatWhitespace()

		switch {
		case p.s.isEOF():
			return nil, p.endOfFile(fmt.Sprintf("Expected element '%s' to end with '>' or '/>'", tagName), elementStart)
		case p.s.peek() == '>' || p.s.startsWith("/>"):
			return attrs, nil
		}

		attr, err := p.parseAttribute(tagName, elementStart)
		if err != nil {
			return nil, err
		}

		if attrs.Has(attr.Name) {
			return nil, p.unexpected(fmt.Sprintf("Duplicate attribute '%s'", attr.Name), attr.Position.Start, attr.Position.End)
		}
		attrs.Set(attr.Name, attr)
	}
}

func (p *Parser) parseAttribute(tagName string, elementStart int) (*Attribute, error) {
	start := p.s.pos

	if p.s.peek() == '{' {
		return p.parseShorthandAttribute()
	}

	name := p.s.eatWhile(isAttrNameChar)
	if len(name) == 0 {
		return nil, p.unexpected(fmt.Sprintf(
			"Unexpected character '%c' in element '%s'", p.s.peek(), tagName), start, start+1)
	}

	if p.s.peek() != '=' {
		return &Attribute{Name: name, Kind: AttrBool, Position: filepos.NewLocation(start, p.s.pos)}, nil
	}
	p.s.pos++ // =

	attr := &Attribute{Name: name}

	switch quote := p.s.peek(); {
	case p.s.isEOF():
		return nil, p.endOfFile(fmt.Sprintf("Expected value for attribute '%s'", name), elementStart)

	case quote == '"' || quote == '\'':
		valueStart := p.s.pos
		p.s.pos++
		value, found := p.s.eatUntil(string(quote))
		if !found {
			return nil, p.newErr(Unterminated, fmt.Sprintf(
				"Unterminated value of attribute '%s'", name), valueStart, len(p.s.text))
		}
		p.s.pos++
		attr.Kind = AttrString
		attr.Value = value

	case quote == '{':
		script, err := p.parseSlotScript()
		if err != nil {
			return nil, err
		}
		attr.Kind = AttrSlot
		attr.Value = script

	default:
		value := p.s.eatWhile(func(c byte) bool { return isAttrNameChar(c) })
		if len(value) == 0 {
			return nil, p.unexpected(fmt.Sprintf(
				"Expected value for attribute '%s'", name), p.s.pos, p.s.pos+1)
		}
		attr.Kind = AttrString
		attr.Value = value
	}

	attr.Position = filepos.NewLocation(start, p.s.pos)
	return attr, nil
}

// parseShorthandAttribute handles {name}, short for name={name}.
func (p *Parser) parseShorthandAttribute() (*Attribute, error) {
	start := p.s.pos

	script, err := p.parseSlotScript()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(script)
	if !isIdentifier(name) {
		return nil, p.unexpected(fmt.Sprintf(
			"Expected shorthand attribute to reference a name, but was '%s'", name), start, p.s.pos)
	}

	return &Attribute{Name: name, Kind: AttrSlot, Value: script, Position: filepos.NewLocation(start, p.s.pos)}, nil
}

func (p *Parser) parseSlot() (Node, error) {
	start := p.s.pos
	script, err := p.parseSlotScript()
	if err != nil {
		return nil, err
	}
	return &Slot{Script: script, Position: filepos.NewLocation(start, p.s.pos)}, nil
}

// parseSlotScript consumes "{...}".
func (p *Parser) parseSlotScript() (string, error) {
	start := p.s.pos
	p.s.pos++ // {
	return p.parseScript("slot", start)
}

// parseScript consumes an expression and its closing '}', honoring nested
// braces and string literals. start is where the enclosing construct began.
func (p *Parser) parseScript(construct string, start int) (string, error) {
	scriptStart := p.s.pos

	depth := 1
	var quote byte

	for ; !p.s.isEOF(); p.s.pos++ {
		c := p.s.peek()

		if quote != 0 {
			switch c {
			case '\\':
				p.s.pos++
			case quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
		}

		if depth == 0 {
			break
		}
	}

	if p.s.isEOF() {
		return "", p.newErr(Unterminated, fmt.Sprintf("Unterminated %s", construct), start, len(p.s.text))
	}

	script := p.s.text[scriptStart:p.s.pos]
	p.s.pos++ // }

	if len(strings.TrimSpace(script)) == 0 {
		return "", p.unexpected(fmt.Sprintf("Expected %s to contain an expression", construct), start, p.s.pos)
	}

	_, err := ParseSlotExpr(p.associatedName, script)
	if err != nil {
		return "", p.unexpected(fmt.Sprintf("Invalid %s expression: %s", construct, slotErrMsg(err)), start, p.s.pos)
	}

	return script, nil
}

// parseBlock handles "{#keyword ...}". Only conditionals exist.
func (p *Parser) parseBlock() (Node, error) {
	start := p.s.pos
	p.s.pos += len(blockOpenPrefix)

	keyword := p.s.eatWhile(isIdentChar)
	if keyword != "if" {
		return nil, p.unexpected(fmt.Sprintf("Unknown block '%s'", keyword), start, p.s.pos)
	}

	cond, err := p.parseConditional(start)
	if err != nil {
		return nil, err
	}
	return cond, nil
}

// parseConditional continues after "{#if" or "{/else if" at start.
func (p *Parser) parseConditional(start int) (*Conditional, error) {
	condition, err := p.parseScript("condition", start)
	if err != nil {
		return nil, err
	}

	children, err := p.parseBlockChildren(start)
	if err != nil {
		return nil, err
	}

	elseBranch, err := p.parseBlockClose(start)
	if err != nil {
		return nil, err
	}

	return &Conditional{
		Condition: condition,
		Children:  children,
		Else:      elseBranch,
		Position:  filepos.NewLocation(start, p.s.pos),
	}, nil
}

// parseBlockChildren stops in front of "{/".
func (p *Parser) parseBlockChildren(blockStart int) ([]Node, error) {
	children, err := p.parseNodes(func() bool {
		return p.s.isEOF() || p.s.startsWith(blockClosePrefix)
	})
	if err != nil {
		return nil, err
	}
	if p.s.isEOF() {
		return nil, p.endOfFile("Expected block to be closed with '{/}'", blockStart)
	}
	return children, nil
}

// parseBlockClose consumes "{/}", "{/else if cond}..." or "{/else}...{/}",
// returning the next branch if there is one.
func (p *Parser) parseBlockClose(blockStart int) (*Conditional, error) {
	closeStart := p.s.pos
	p.s.pos += len(blockClosePrefix)
	p.s.eatWhitespace()

	if p.s.peek() == '}' {
		p.s.pos++
		return nil, nil
	}

	keywordStart := p.s.pos
	if p.s.eatWhile(isIdentChar) == "else" {
		p.s.eatWhitespace()

		if p.s.peek() == '}' {
			p.s.pos++

			children, err := p.parseBlockChildren(blockStart)
			if err != nil {
				return nil, err
			}
			finalStart := p.s.pos
			p.s.pos += len(blockClosePrefix)
			p.s.eatWhitespace()
			if p.s.peek() != '}' {
				return nil, p.unexpectedOrEOF("Expected '{/}' to close the else block", finalStart, blockStart)
			}
			p.s.pos++

			return &Conditional{Children: children, Position: filepos.NewLocation(closeStart, p.s.pos)}, nil
		}

		keywordStart = p.s.pos
		if p.s.eatWhile(isIdentChar) == "if" {
			return p.parseConditional(closeStart)
		}
	}

	return nil, p.unexpectedOrEOF("Expected '{/}', '{/else}' or '{/else if ...}'", keywordStart, blockStart)
}

// ParseSlotExpr parses the Starlark expression held by a slot.
// The script is parenthesized so that it may span lines and carry indentation.
func ParseSlotExpr(filePath, script string) (expr syntax.Expr, resultErr error) {
	// Parser reports some syntax errors by panicking
	defer func() {
		if err := recover(); err != nil {
			if typedErr, ok := err.(error); ok {
				resultErr = typedErr
			} else {
				resultErr = fmt.Errorf("(p) %s", err)
			}
		}
	}()

	return syntax.ParseExpr(filePath, "("+script+")", 0)
}

func slotErrMsg(err error) string {
	if typedErr, ok := err.(syntax.Error); ok {
		return typedErr.Msg
	}
	return err.Error()
}

func (p *Parser) endOfFile(msg string, constructStart int) *SyntaxError {
	return p.newErr(EndOfFile, "Unexpected end of file: "+msg, constructStart, len(p.s.text))
}

// unexpectedOrEOF reports the character at pos, or the end of file if
// the construct starting at constructStart was never finished.
func (p *Parser) unexpectedOrEOF(msg string, pos, constructStart int) *SyntaxError {
	if p.s.isEOF() {
		return p.endOfFile(msg, constructStart)
	}
	return p.unexpected(msg, pos, p.s.pos+1)
}

func (p *Parser) unexpected(msg string, start, end int) *SyntaxError {
	return p.newErr(Unexpected, msg, start, end)
}

func (p *Parser) newErr(kind ParseErrorKind, msg string, start, end int) *SyntaxError {
	return &SyntaxError{
		Kind:     kind,
		Message:  msg,
		Location: filepos.NewNonEmptyLocation(start, end, len(p.s.text)),
		FilePath: p.associatedName,
		text:     p.s.text,
	}
}
