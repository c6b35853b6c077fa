// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
	"strings"

	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/orderedmap"
)

type Kind string

const (
	KindText     Kind = "Text"
	KindElement  Kind = "Element"
	KindInclude  Kind = "Include"
	KindFragment Kind = "Fragment"
	KindSlot     Kind = "Slot"
	KindComment  Kind = "Comment"

	KindConditional Kind = "Conditional"
)

// Node is implemented only by the types in this package.
type Node interface {
	Kind() Kind
	GetPosition() filepos.Location
	GetChildren() []Node

	node()
}

type AttributeKind int

const (
	AttrBool AttributeKind = iota
	AttrString
	AttrSlot
)

type Attribute struct {
	Name string
	Kind AttributeKind
	// Value is the literal string (AttrString) or the expression source (AttrSlot).
	Value    string
	Position filepos.Location
}

type Attributes = orderedmap.Map[string, *Attribute]

type Text struct {
	Value    string
	Position filepos.Location
}

type Element struct {
	TagName    string
	Attributes *Attributes
	Children   []Node
	Position   filepos.Location
}

type Include struct {
	Src        string
	Attributes *Attributes
	Position   filepos.Location
}

type Fragment struct {
	Children []Node
	Position filepos.Location
}

type Slot struct {
	Script   string
	Position filepos.Location
}

type Comment struct {
	Value    string
	Position filepos.Location
}

// Conditional is one branch of a {#if cond}...{/else if cond}...{/else}...{/} block.
// The final else branch has an empty Condition.
type Conditional struct {
	Condition string
	Children  []Node
	Else      *Conditional
	Position  filepos.Location
}

var _ = []Node{&Text{}, &Element{}, &Include{}, &Fragment{}, &Slot{}, &Comment{}, &Conditional{}}

func (*Text) Kind() Kind     { return KindText }
func (*Element) Kind() Kind  { return KindElement }
func (*Include) Kind() Kind  { return KindInclude }
func (*Fragment) Kind() Kind { return KindFragment }
func (*Slot) Kind() Kind     { return KindSlot }
func (*Comment) Kind() Kind  { return KindComment }

func (*Conditional) Kind() Kind { return KindConditional }

func (n *Text) GetPosition() filepos.Location     { return n.Position }
func (n *Element) GetPosition() filepos.Location  { return n.Position }
func (n *Include) GetPosition() filepos.Location  { return n.Position }
func (n *Fragment) GetPosition() filepos.Location { return n.Position }
func (n *Slot) GetPosition() filepos.Location     { return n.Position }
func (n *Comment) GetPosition() filepos.Location  { return n.Position }

func (n *Conditional) GetPosition() filepos.Location { return n.Position }

func (*Text) GetChildren() []Node       { return nil }
func (n *Element) GetChildren() []Node  { return n.Children }
func (*Include) GetChildren() []Node    { return nil }
func (n *Fragment) GetChildren() []Node { return n.Children }
func (*Slot) GetChildren() []Node       { return nil }
func (*Comment) GetChildren() []Node    { return nil }

// GetChildren returns the branch's children followed by the next branch, if any.
func (n *Conditional) GetChildren() []Node {
	if n.Else == nil {
		return n.Children
	}
	return append(append([]Node{}, n.Children...), n.Else)
}

// IsElse reports whether n is the final, unconditional branch.
func (n *Conditional) IsElse() bool { return len(n.Condition) == 0 }

func (*Text) node()     {}
func (*Element) node()  {}
func (*Include) node()  {}
func (*Fragment) node() {}
func (*Slot) node()     {}
func (*Comment) node()  {}

func (*Conditional) node() {}

// IsLeaf reports whether node can never own children.
func IsLeaf(node Node) bool {
	switch node.(type) {
	case *Element, *Fragment, *Conditional:
		return false
	case *Text, *Include, *Slot, *Comment:
		return true
	default:
		panic(fmt.Sprintf("unknown node type %T", node))
	}
}

// Describe renders a single line summary of node (children excluded).
func Describe(node Node) string {
	loc := node.GetPosition()
	prefix := fmt.Sprintf("%s [%d:%d]", node.Kind(), loc.Start, loc.End)

	switch typedNode := node.(type) {
	case *Text:
		return fmt.Sprintf("%s %q", prefix, typedNode.Value)
	case *Element:
		return fmt.Sprintf("%s <%s%s>", prefix, typedNode.TagName, describeAttrs(typedNode.Attributes))
	case *Include:
		return fmt.Sprintf("%s src=%q", prefix, typedNode.Src)
	case *Fragment:
		return fmt.Sprintf("%s (%d children)", prefix, len(typedNode.Children))
	case *Slot:
		return fmt.Sprintf("%s {%s}", prefix, strings.TrimSpace(typedNode.Script))
	case *Comment:
		return fmt.Sprintf("%s %q", prefix, typedNode.Value)
	case *Conditional:
		if typedNode.IsElse() {
			return fmt.Sprintf("%s else", prefix)
		}
		return fmt.Sprintf("%s if {%s}", prefix, strings.TrimSpace(typedNode.Condition))
	default:
		panic(fmt.Sprintf("unknown node type %T", typedNode))
	}
}

func describeAttrs(attrs *Attributes) string {
	var result string
	attrs.Iterate(func(name string, attr *Attribute) {
		switch attr.Kind {
		case AttrBool:
			result += " " + name
		case AttrString:
			result += fmt.Sprintf(" %s=%q", name, attr.Value)
		case AttrSlot:
			result += fmt.Sprintf(" %s={%s}", name, strings.TrimSpace(attr.Value))
		}
	})
	return result
}

// Dump renders node and its descendants, one Describe line each, indented by depth.
func Dump(node Node) string {
	var sb strings.Builder
	dump(&sb, node, 0)
	return sb.String()
}

func dump(sb *strings.Builder, node Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(Describe(node))
	sb.WriteString("\n")
	for _, child := range node.GetChildren() {
		dump(sb, child, depth+1)
	}
}
