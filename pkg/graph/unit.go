// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/markup"
)

// Unit is one file's parsed tree plus the include edges found in it.
// Units are replaced wholesale and never modified after creation.
type Unit struct {
	FilePath string
	Source   string
	Tree     markup.Node
	Includes []Edge
}

// Edge is a directed reference from an include node to another file.
type Edge struct {
	From string
	// Src is the include's attribute value as written.
	Src string
	// To is the resolved graph key.
	To       string
	Location filepos.Location
	Node     *markup.Include
}

// EdgeFor returns the edge created for include node.
func (u *Unit) EdgeFor(include *markup.Include) (Edge, bool) {
	for _, edge := range u.Includes {
		if edge.Node == include {
			return edge, true
		}
	}
	return Edge{}, false
}

// DependsOn lists the distinct resolved targets in document order.
func (u *Unit) DependsOn() []string {
	var result []string
	seen := map[string]struct{}{}
	for _, edge := range u.Includes {
		if _, found := seen[edge.To]; !found {
			seen[edge.To] = struct{}{}
			result = append(result, edge.To)
		}
	}
	return result
}
