// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell

import (
	"fmt"
	"sort"

	"github.com/agext/levenshtein"
)

// Suggest returns candidates close enough to word to be a likely
// misspelling of it, closest first. Exact matches are not suggestions.
func Suggest(word string, candidates []string) []string {
	type match struct {
		candidate string
		distance  int
	}

	maxDistance := len([]rune(word)) / 3
	if maxDistance < 1 {
		maxDistance = 1
	}

	var matches []match
	for _, candidate := range candidates {
		if candidate == word {
			continue
		}
		distance := levenshtein.Distance(word, candidate, nil)
		if distance <= maxDistance {
			matches = append(matches, match{candidate, distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].candidate < matches[j].candidate
	})

	var result []string
	for _, m := range matches {
		result = append(result, m.candidate)
	}
	return result
}

// Hint formats the closest suggestion for display, or returns an empty string.
func Hint(word string, candidates []string) string {
	suggestions := Suggest(word, candidates)
	if len(suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf("did you mean '%s'?", suggestions[0])
}
