// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"sort"
)

// Snapshot is a read-only view of a Graph, safe to share between goroutines.
type Snapshot struct {
	units      map[string]*Unit
	dependents map[string][]string
}

func (s *Snapshot) Has(filePath string) bool {
	_, found := s.units[filePath]
	return found
}

func (s *Snapshot) Unit(filePath string) (*Unit, bool) {
	unit, found := s.units[filePath]
	return unit, found
}

func (s *Snapshot) Len() int { return len(s.units) }

func (s *Snapshot) FilePaths() []string {
	result := make([]string, 0, len(s.units))
	for filePath := range s.units {
		result = append(result, filePath)
	}
	sort.Strings(result)
	return result
}

func (s *Snapshot) Dependents(filePath string) []string {
	return append([]string{}, s.dependents[filePath]...)
}

func (s *Snapshot) DependentsClosure(filePath string) []string {
	return dependentsClosure(s, filePath)
}

func (s *Snapshot) FindCycle(filePath string) []string {
	return findCycle(s, filePath)
}
