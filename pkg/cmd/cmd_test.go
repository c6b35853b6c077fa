// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd_test

import (
	"bytes"
	"testing"

	"carvel.dev/clip/pkg/cmd"
	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/files"
	"carvel.dev/clip/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInput(pairs ...string) cmdtpl.Input {
	var result []*files.File
	for i := 0; i < len(pairs); i += 2 {
		result = append(result, files.MustNewFileFromSource(files.NewBytesSource(pairs[i], []byte(pairs[i+1]))))
	}
	return cmdtpl.Input{Files: result}
}

func newUI() (ui.UI, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return ui.NewCustomWriterTTY(false, &stdout, &stderr), &stdout
}

func TestDeps(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewDepsOptions().RunWithFiles(newInput(
		"a.pc", "<div>\n  <include src=\"b.pc\"/>\n</div>",
		"b.pc", "<p/>",
	), testUI)
	require.NoError(t, err)

	assert.Equal(t, "a.pc\n  -> b.pc [src 'b.pc' at 2:3]\nb.pc\n", stdout.String())
}

func TestDepsReportsProblems(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewDepsOptions().RunWithFiles(newInput(
		"a.pc", `<include src="missing.pc"/>`,
		"c.pc", `<include src="d.pc"/>`,
		"d.pc", `<include src="c.pc"/>`,
	), testUI)
	require.Error(t, err)
	assert.Equal(t, "Expected dependencies to be complete, but found 2 problem(s)", err.Error())

	out := stdout.String()
	assert.Contains(t, out, "a.pc\n  -> missing.pc (unresolved) [src 'missing.pc' at 1:1]\n")
	assert.Contains(t, out, "c.pc\n  -> d.pc [src 'd.pc' at 1:1]\n")
	assert.Contains(t, out, "cycles:\n  c.pc -> d.pc -> c.pc\n")
	assert.NotContains(t, out, "d.pc -> c.pc -> d.pc")
}

func TestDepsReportsSyntaxErrors(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewDepsOptions().RunWithFiles(newInput("a.pc", `<p>{x`), testUI)
	require.Error(t, err)
	assert.Equal(t, "Expected dependencies to be complete, but found 1 problem(s)", err.Error())
	assert.Contains(t, stdout.String(), "a.pc\n  error: Unterminated: Unterminated slot (a.pc:1:4)\n")
}

func TestTree(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewTreeOptions().RunWithFiles(newInput("a.pc", `<p>{x}</p>`), testUI)
	require.NoError(t, err)
	assert.Equal(t, "# a.pc\nElement [0:10] <p>\n  Slot [3:6] {x}\n", stdout.String())
}

func TestTreeFlat(t *testing.T) {
	testUI, stdout := newUI()

	opts := cmd.NewTreeOptions()
	opts.Flat = true

	err := opts.RunWithFiles(newInput("a.pc", `<p>{x}</p>`), testUI)
	require.NoError(t, err)
	assert.Equal(t, "# a.pc\nElement [0:10] <p>\nSlot [3:6] {x}\n", stdout.String())
}

func TestTreeReportsSyntaxErrors(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewTreeOptions().RunWithFiles(newInput(
		"a.pc", `<p>`,
		"b.pc", `<p/>`,
	), testUI)
	require.Error(t, err)
	assert.Equal(t, "Parsing 1 of 2 file(s) failed", err.Error())
	assert.Contains(t, stdout.String(), "# a.pc\nerror: EndOfFile: ")
	assert.Contains(t, stdout.String(), "# b.pc\nElement [0:4] <p>\n")
}

func TestVersion(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewVersionOptions().Run(testUI)
	require.NoError(t, err)
	assert.Equal(t, "clip version "+version.Version+"\nevent protocol "+version.ProtocolVersion+"\n", stdout.String())
}

func TestClipCmdHasSubcommands(t *testing.T) {
	clipCmd := cmd.NewDefaultClipCmd()

	var names []string
	for _, child := range clipCmd.Commands() {
		names = append(names, child.Name())
	}
	assert.Subset(t, names, []string{"version", "template", "deps", "tree"})
}

func TestDepsSuggestsLoadedFiles(t *testing.T) {
	testUI, stdout := newUI()

	err := cmd.NewDepsOptions().RunWithFiles(newInput(
		"a.pc", `<include src="part/nav.pc"/>`,
		"parts/nav.pc", `<nav/>`,
	), testUI)
	require.Error(t, err)
	assert.Contains(t, stdout.String(),
		"a.pc\n  -> part/nav.pc (unresolved) [src 'part/nav.pc' at 1:1] (did you mean 'parts/nav.pc'?)\n")
}
