// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sort"

	"carvel.dev/clip/pkg/markup"
)

type Graph struct {
	resolver PathResolver
	units    map[string]*Unit
	// dependents maps a target key to the files including it.
	dependents map[string]map[string]struct{}
}

func NewGraph(resolver PathResolver) *Graph {
	if resolver == nil {
		resolver = RelativeResolver{}
	}
	return &Graph{
		resolver:   resolver,
		units:      map[string]*Unit{},
		dependents: map[string]map[string]struct{}{},
	}
}

// Upsert parses text and replaces the unit stored under filePath.
// On a syntax error (*markup.SyntaxError) the graph is left untouched.
func (g *Graph) Upsert(filePath, text string) error {
	tree, err := markup.Parse(text, filePath)
	if err != nil {
		return err
	}

	unit := &Unit{FilePath: filePath, Source: text, Tree: tree}

	for _, include := range markup.Includes(tree) {
		unit.Includes = append(unit.Includes, Edge{
			From:     filePath,
			Src:      include.Src,
			To:       g.resolver.Resolve(filePath, include.Src),
			Location: include.Position,
			Node:     include,
		})
	}

	g.unindex(filePath)
	g.units[filePath] = unit
	g.index(unit)

	return nil
}

// Remove deletes the unit and its outgoing edges. Files including filePath
// keep their edges, which become unresolved.
func (g *Graph) Remove(filePath string) bool {
	if _, found := g.units[filePath]; !found {
		return false
	}
	g.unindex(filePath)
	delete(g.units, filePath)
	return true
}

func (g *Graph) index(unit *Unit) {
	for _, target := range unit.DependsOn() {
		dependents, found := g.dependents[target]
		if !found {
			dependents = map[string]struct{}{}
			g.dependents[target] = dependents
		}
		dependents[unit.FilePath] = struct{}{}
	}
}

func (g *Graph) unindex(filePath string) {
	unit, found := g.units[filePath]
	if !found {
		return
	}
	for _, target := range unit.DependsOn() {
		delete(g.dependents[target], filePath)
		if len(g.dependents[target]) == 0 {
			delete(g.dependents, target)
		}
	}
}

func (g *Graph) Has(filePath string) bool {
	_, found := g.units[filePath]
	return found
}

func (g *Graph) Unit(filePath string) (*Unit, bool) {
	unit, found := g.units[filePath]
	return unit, found
}

func (g *Graph) Len() int { return len(g.units) }

// FilePaths returns all keys sorted.
func (g *Graph) FilePaths() []string {
	result := make([]string, 0, len(g.units))
	for filePath := range g.units {
		result = append(result, filePath)
	}
	sort.Strings(result)
	return result
}

// Edges returns filePath's include edges in document order.
func (g *Graph) Edges(filePath string) []Edge {
	unit, found := g.units[filePath]
	if !found {
		return nil
	}
	return append([]Edge{}, unit.Includes...)
}

// UnresolvedEdges returns filePath's edges whose target is not in the graph.
func (g *Graph) UnresolvedEdges(filePath string) []Edge {
	var result []Edge
	for _, edge := range g.Edges(filePath) {
		if !g.Has(edge.To) {
			result = append(result, edge)
		}
	}
	return result
}

// Dependents returns (sorted) the files whose edges reference filePath,
// whether or not filePath itself is loaded.
func (g *Graph) Dependents(filePath string) []string {
	result := make([]string, 0, len(g.dependents[filePath]))
	for dependent := range g.dependents[filePath] {
		result = append(result, dependent)
	}
	sort.Strings(result)
	return result
}

// Snapshot returns an immutable view of the current state.
// Units are shared since they are never mutated.
func (g *Graph) Snapshot() *Snapshot {
	units := make(map[string]*Unit, len(g.units))
	for filePath, unit := range g.units {
		units[filePath] = unit
	}
	dependents := make(map[string][]string, len(g.dependents))
	for target := range g.dependents {
		dependents[target] = g.Dependents(target)
	}
	return &Snapshot{units: units, dependents: dependents}
}
