// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package virt

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Printer renders a virtual tree as markup.
type Printer struct {
	writer io.Writer
	opts   PrinterOpts
}

type PrinterOpts struct {
	// Indent puts every node on its own line, indented by depth.
	Indent bool
}

func NewPrinter(writer io.Writer) Printer {
	return Printer{writer, PrinterOpts{}}
}

func NewPrinterWithOpts(writer io.Writer, opts PrinterOpts) Printer {
	return Printer{writer, opts}
}

func (p Printer) Print(node Node) error {
	_, err := io.WriteString(p.writer, p.PrintStr(node))
	return err
}

func (p Printer) PrintStr(node Node) string {
	var sb strings.Builder
	p.print(&sb, node, 0, false)
	return sb.String()
}

// print writes text of style and script elements (raw) unescaped.
func (p Printer) print(sb *strings.Builder, node Node, depth int, raw bool) {
	indent := ""
	if p.opts.Indent {
		indent = strings.Repeat("  ", depth)
	}
	newline := func() {
		if p.opts.Indent {
			sb.WriteString("\n")
		}
	}

	switch typedNode := node.(type) {
	case *Text:
		value := typedNode.Value
		if p.opts.Indent {
			value = strings.TrimSpace(value)
		}
		if !raw {
			value = html.EscapeString(value)
		}
		sb.WriteString(indent)
		sb.WriteString(value)
		newline()

	case *Fragment:
		for _, child := range typedNode.Children {
			p.print(sb, child, depth, raw)
		}

	case *Element:
		sb.WriteString(indent)
		sb.WriteString("<" + typedNode.TagName)
		typedNode.Attributes.Iterate(func(name, value string) {
			if len(value) == 0 {
				sb.WriteString(" " + name)
				return
			}
			sb.WriteString(fmt.Sprintf(" %s=\"%s\"", name, html.EscapeString(value)))
		})
		if len(typedNode.Children) == 0 {
			sb.WriteString("/>")
			newline()
			return
		}
		sb.WriteString(">")
		newline()
		for _, child := range typedNode.Children {
			p.print(sb, child, depth+1, isRawTextTagName(typedNode.TagName))
		}
		sb.WriteString(indent)
		sb.WriteString("</" + typedNode.TagName + ">")
		newline()

	default:
		panic(fmt.Sprintf("unknown virtual node type %T", typedNode))
	}
}

func isRawTextTagName(tagName string) bool {
	return tagName == "style" || tagName == "script"
}
