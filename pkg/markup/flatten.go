// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
)

// Flatten returns node and all of its descendants in pre-order.
// Composite nodes (elements, fragments, conditionals) are kept in the result; their
// descendants are appended right after them. The tree is not modified.
func Flatten(node Node) []Node {
	return flattenDeep(node, nil)
}

// FlattenEach flattens every node of items in order.
func FlattenEach(items []Node) []Node {
	var result []Node
	for _, item := range items {
		result = flattenDeep(item, result)
	}
	return result
}

func flattenDeep(node Node, items []Node) []Node {
	items = append(items, node)

	switch typedNode := node.(type) {
	case *Element:
		for _, child := range typedNode.Children {
			items = flattenDeep(child, items)
		}
	case *Fragment:
		for _, child := range typedNode.Children {
			items = flattenDeep(child, items)
		}
	case *Conditional:
		for _, child := range typedNode.GetChildren() {
			items = flattenDeep(child, items)
		}
	case *Text, *Include, *Slot, *Comment:
	default:
		panic(fmt.Sprintf("unknown node type %T", typedNode))
	}

	return items
}

// Leaves returns the nodes of Flatten(node) that cannot own children.
func Leaves(node Node) []Node {
	var result []Node
	for _, item := range Flatten(node) {
		if IsLeaf(item) {
			result = append(result, item)
		}
	}
	return result
}

// Includes returns include nodes in document order.
func Includes(node Node) []*Include {
	var result []*Include
	for _, item := range Flatten(node) {
		if include, ok := item.(*Include); ok {
			result = append(result, include)
		}
	}
	return result
}

// CountNodes counts node and all of its descendants.
func CountNodes(node Node) int {
	count := 1
	for _, child := range node.GetChildren() {
		count += CountNodes(child)
	}
	return count
}
