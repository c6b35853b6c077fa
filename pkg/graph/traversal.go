// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph

type view interface {
	Unit(filePath string) (*Unit, bool)
	Dependents(filePath string) []string
}

var _ = []view{&Graph{}, &Snapshot{}}

// DependentsClosure returns filePath followed by every file that transitively
// includes it. Each file appears once, after all of the files it includes
// that are also in the result. Files on a cycle fall back to discovery order.
func (g *Graph) DependentsClosure(filePath string) []string {
	return dependentsClosure(g, filePath)
}

// FindCycle returns the first include cycle reachable from filePath as a path
// starting and ending with the same file, or nil.
func (g *Graph) FindCycle(filePath string) []string {
	return findCycle(g, filePath)
}

func dependentsClosure(v view, start string) []string {
	discovered := []string{start}
	inClosure := map[string]struct{}{start: {}}

	for i := 0; i < len(discovered); i++ {
		for _, dependent := range v.Dependents(discovered[i]) {
			if _, found := inClosure[dependent]; !found {
				inClosure[dependent] = struct{}{}
				discovered = append(discovered, dependent)
			}
		}
	}

	ordered := []string{start}
	placed := map[string]struct{}{start: {}}

	isReady := func(filePath string) bool {
		unit, found := v.Unit(filePath)
		if !found {
			return true
		}
		for _, dep := range unit.DependsOn() {
			if dep == filePath {
				continue
			}
			if _, in := inClosure[dep]; !in {
				continue
			}
			if _, done := placed[dep]; !done {
				return false
			}
		}
		return true
	}

	for len(ordered) < len(discovered) {
		next := ""
		for _, filePath := range discovered {
			if _, done := placed[filePath]; done {
				continue
			}
			if next == "" {
				// cycle fallback unless something is ready
				next = filePath
			}
			if isReady(filePath) {
				next = filePath
				break
			}
		}
		ordered = append(ordered, next)
		placed[next] = struct{}{}
	}

	return ordered
}

func findCycle(v view, start string) []string {
	var stack []string
	onStack := map[string]bool{}
	visited := map[string]bool{}

	var visit func(filePath string) []string
	visit = func(filePath string) []string {
		unit, found := v.Unit(filePath)
		if !found {
			return nil
		}

		stack = append(stack, filePath)
		onStack[filePath] = true

		for _, dep := range unit.DependsOn() {
			if onStack[dep] {
				for i, item := range stack {
					if item == dep {
						return append(append([]string{}, stack[i:]...), dep)
					}
				}
			}
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		onStack[filePath] = false
		visited[filePath] = true
		return nil
	}

	return visit(start)
}
