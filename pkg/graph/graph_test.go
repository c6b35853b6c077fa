// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph_test

import (
	"errors"
	"testing"

	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/graph"
	"carvel.dev/clip/pkg/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUpsert(t *testing.T, g *graph.Graph, filePath, text string) {
	t.Helper()
	require.NoError(t, g.Upsert(filePath, text))
}

func TestUpsertExtractsResolvedEdges(t *testing.T) {
	g := graph.NewGraph(nil)
	src := `<div><include src="./parts/header.pc"/><include src="../shared/footer.pc"/></div>`
	mustUpsert(t, g, "pages/home.pc", src)

	edges := g.Edges("pages/home.pc")
	require.Len(t, edges, 2)

	assert.Equal(t, "pages/home.pc", edges[0].From)
	assert.Equal(t, "./parts/header.pc", edges[0].Src)
	assert.Equal(t, "pages/parts/header.pc", edges[0].To)
	assert.Equal(t, filepos.NewLocation(5, 39), edges[0].Location)
	assert.Equal(t, "shared/footer.pc", edges[1].To)

	// Both are unresolved since nothing else is loaded, yet upsert succeeded.
	assert.Len(t, g.UnresolvedEdges("pages/home.pc"), 2)

	mustUpsert(t, g, "shared/footer.pc", `footer`)
	unresolved := g.UnresolvedEdges("pages/home.pc")
	require.Len(t, unresolved, 1)
	assert.Equal(t, "pages/parts/header.pc", unresolved[0].To)
}

func TestUpsertSyntaxErrorLeavesGraphUntouched(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)

	err := g.Upsert("a.pc", `<div>`)
	var syntaxErr *markup.SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, markup.EndOfFile, syntaxErr.Kind)

	unit, found := g.Unit("a.pc")
	require.True(t, found)
	assert.Equal(t, `<include src="b.pc"/>`, unit.Source)
	assert.Equal(t, []string{"a.pc"}, g.Dependents("b.pc"))

	assert.Error(t, g.Upsert("new.pc", `</x>`))
	assert.False(t, g.Has("new.pc"))
}

func TestUpsertReplacesEdges(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)
	assert.Equal(t, []string{"a.pc"}, g.Dependents("b.pc"))

	mustUpsert(t, g, "a.pc", `<include src="c.pc"/>`)
	assert.Empty(t, g.Dependents("b.pc"))
	assert.Equal(t, []string{"a.pc"}, g.Dependents("c.pc"))
}

func TestUpsertIsIdempotent(t *testing.T) {
	src := `<include src="b.pc"/><include src="b.pc"/>`

	g1 := graph.NewGraph(nil)
	mustUpsert(t, g1, "a.pc", src)

	g2 := graph.NewGraph(nil)
	mustUpsert(t, g2, "a.pc", src)
	mustUpsert(t, g2, "a.pc", src)

	assert.Equal(t, g1, g2)
	assert.Equal(t, []string{"b.pc"}, mustUnit(t, g2, "a.pc").DependsOn())
}

func TestRemoveKeepsDependentsOfMissingFile(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)
	mustUpsert(t, g, "b.pc", `<include src="c.pc"/>`)
	mustUpsert(t, g, "c.pc", `leaf`)

	assert.True(t, g.Remove("b.pc"))
	assert.False(t, g.Remove("b.pc"))

	assert.False(t, g.Has("b.pc"))
	// b's outgoing edge is gone ...
	assert.Empty(t, g.Dependents("c.pc"))
	// ... but a still references b, now unresolved.
	assert.Equal(t, []string{"a.pc"}, g.Dependents("b.pc"))
	require.Len(t, g.UnresolvedEdges("a.pc"), 1)
	assert.True(t, g.Has("a.pc"))
}

func TestDependentsClosureOrdersIncludedFilesFirst(t *testing.T) {
	g := graph.NewGraph(nil)
	// page includes layout and button; layout includes button.
	mustUpsert(t, g, "page.pc", `<include src="layout.pc"/><include src="button.pc"/>`)
	mustUpsert(t, g, "layout.pc", `<include src="button.pc"/>`)
	mustUpsert(t, g, "button.pc", `<button/>`)
	mustUpsert(t, g, "other.pc", `unrelated`)

	assert.Equal(t, []string{"button.pc", "layout.pc", "page.pc"}, g.DependentsClosure("button.pc"))
	assert.Equal(t, []string{"layout.pc", "page.pc"}, g.DependentsClosure("layout.pc"))
	assert.Equal(t, []string{"other.pc"}, g.DependentsClosure("other.pc"))
	assert.Equal(t, []string{"nothing.pc"}, g.DependentsClosure("nothing.pc"))
}

func TestDependentsClosureTerminatesOnCycles(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)
	mustUpsert(t, g, "b.pc", `<include src="a.pc"/>`)
	mustUpsert(t, g, "c.pc", `<include src="a.pc"/>`)

	closure := g.DependentsClosure("a.pc")
	assert.Equal(t, "a.pc", closure[0])
	assert.ElementsMatch(t, []string{"a.pc", "b.pc", "c.pc"}, closure)
}

func TestFindCycle(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)
	mustUpsert(t, g, "b.pc", `<include src="c.pc"/>`)
	mustUpsert(t, g, "c.pc", `<include src="missing.pc"/>`)
	assert.Nil(t, g.FindCycle("a.pc"))

	mustUpsert(t, g, "c.pc", `<include src="a.pc"/>`)
	assert.Equal(t, []string{"a.pc", "b.pc", "c.pc", "a.pc"}, g.FindCycle("a.pc"))
	assert.Equal(t, []string{"b.pc", "c.pc", "a.pc", "b.pc"}, g.FindCycle("b.pc"))

	mustUpsert(t, g, "self.pc", `<include src="self.pc"/>`)
	assert.Equal(t, []string{"self.pc", "self.pc"}, g.FindCycle("self.pc"))
}

func TestSnapshotIsIsolatedFromLaterWrites(t *testing.T) {
	g := graph.NewGraph(nil)
	mustUpsert(t, g, "a.pc", `<include src="b.pc"/>`)
	snap := g.Snapshot()

	mustUpsert(t, g, "b.pc", `b`)
	g.Remove("a.pc")

	assert.True(t, snap.Has("a.pc"))
	assert.False(t, snap.Has("b.pc"))
	assert.Equal(t, []string{"a.pc"}, snap.FilePaths())
	assert.Equal(t, []string{"a.pc"}, snap.Dependents("b.pc"))
	assert.Equal(t, []string{"b.pc", "a.pc"}, snap.DependentsClosure("b.pc"))
	assert.Equal(t, []string{"b.pc"}, g.FilePaths())
}

func TestResolvers(t *testing.T) {
	assert.Equal(t, "a/c.pc", graph.RelativeResolver{}.Resolve("a/b.pc", "c.pc"))
	assert.Equal(t, "c.pc", graph.RelativeResolver{}.Resolve("a/b.pc", "../c.pc"))
	assert.Equal(t, "/lib/c.pc", graph.RelativeResolver{}.Resolve("a/b.pc", "/lib//c.pc"))
	assert.Equal(t, "c.pc", graph.RelativeResolver{}.Resolve("b.pc", " ./c.pc "))
	assert.Equal(t, "./c.pc", graph.IdentityResolver{}.Resolve("a/b.pc", "./c.pc"))

	g := graph.NewGraph(graph.IdentityResolver{})
	mustUpsert(t, g, "a", `<include src="missing"/>`)
	assert.Equal(t, "missing", g.Edges("a")[0].To)
}

func mustUnit(t *testing.T, g *graph.Graph, filePath string) *graph.Unit {
	t.Helper()
	unit, found := g.Unit(filePath)
	require.True(t, found)
	return unit
}
