// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package virt

import (
	"encoding/json"
	"fmt"

	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/orderedmap"
)

type Kind string

const (
	KindElement  Kind = "Element"
	KindText     Kind = "Text"
	KindFragment Kind = "Fragment"
)

type Node interface {
	Kind() Kind
	GetSource() Source

	node()
}

type Source struct {
	FilePath string           `json:"file_path"`
	Location filepos.Location `json:"location"`
}

type Attributes = orderedmap.Map[string, string]

type Element struct {
	TagName    string
	Attributes *Attributes
	Children   []Node
	Source     Source
}

type Text struct {
	Value  string
	Source Source
}

type Fragment struct {
	Children []Node
	Source   Source
}

var _ = []Node{&Element{}, &Text{}, &Fragment{}}

func (*Element) Kind() Kind  { return KindElement }
func (*Text) Kind() Kind     { return KindText }
func (*Fragment) Kind() Kind { return KindFragment }

func (n *Element) GetSource() Source  { return n.Source }
func (n *Text) GetSource() Source     { return n.Source }
func (n *Fragment) GetSource() Source { return n.Source }

func (*Element) node()  {}
func (*Text) node()     {}
func (*Fragment) node() {}

// Children returns the children of composite nodes (nil for text).
func Children(node Node) []Node {
	switch typedNode := node.(type) {
	case *Element:
		return typedNode.Children
	case *Fragment:
		return typedNode.Children
	case *Text:
		return nil
	default:
		panic(fmt.Sprintf("unknown virtual node type %T", typedNode))
	}
}

// Leaves returns text nodes in document order.
func Leaves(node Node) []*Text {
	var result []*Text
	Walk(node, func(n Node) {
		if text, ok := n.(*Text); ok {
			result = append(result, text)
		}
	})
	return result
}

// Walk visits node and its descendants in pre-order.
func Walk(node Node, visitFunc func(Node)) {
	visitFunc(node)
	for _, child := range Children(node) {
		Walk(child, visitFunc)
	}
}

type elementJSON struct {
	Kind       Kind        `json:"kind"`
	TagName    string      `json:"tag_name"`
	Attributes *Attributes `json:"attributes"`
	Children   []Node      `json:"children"`
	Source     Source      `json:"source"`
}

type textJSON struct {
	Kind   Kind   `json:"kind"`
	Value  string `json:"value"`
	Source Source `json:"source"`
}

type fragmentJSON struct {
	Kind     Kind   `json:"kind"`
	Children []Node `json:"children"`
	Source   Source `json:"source"`
}

var _ = []json.Marshaler{&Element{}, &Text{}, &Fragment{}}

func (n *Element) MarshalJSON() ([]byte, error) {
	attrs := n.Attributes
	if attrs == nil {
		attrs = orderedmap.NewMap[string, string]()
	}
	return json.Marshal(elementJSON{KindElement, n.TagName, attrs, nonNilChildren(n.Children), n.Source})
}

func (n *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(textJSON{KindText, n.Value, n.Source})
}

func (n *Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(fragmentJSON{KindFragment, nonNilChildren(n.Children), n.Source})
}

func nonNilChildren(children []Node) []Node {
	if children == nil {
		return []Node{}
	}
	return children
}
