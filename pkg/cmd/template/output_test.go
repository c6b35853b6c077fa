// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"bytes"
	"testing"

	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/eval"
	"carvel.dev/clip/pkg/events"
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/virt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []events.Event {
	return []events.Event{
		events.NewEvaluatedEvent("a.pc", &virt.Element{
			TagName:  "p",
			Children: []virt.Node{&virt.Text{Value: "hi"}},
		}),
		events.NewErrorEvent("x.pc", &eval.NotFoundError{FilePath: "x.pc"}),
	}
}

func printEvents(t *testing.T, format string, sources map[string]string, evs []events.Event) string {
	printer, err := cmdtpl.NewEventPrinter(format, false, sources)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printer.Print(&buf, evs))
	return buf.String()
}

func TestEventPrinterText(t *testing.T) {
	assert.Equal(t, "# a.pc\n<p>hi</p>\n"+
		"# x.pc\nError: NotFound: Expected file 'x.pc' to be loaded, but it was not found\n",
		printEvents(t, cmdtpl.OutputText, nil, sampleEvents()))
}

func TestEventPrinterTextSnippets(t *testing.T) {
	ev := events.NewErrorEvent("a.pc", &eval.IncludeNotFoundError{
		FilePath: "a.pc",
		Target:   "b.pc",
		Message:  "Expected include 'b.pc' to refer to a loaded file, but 'b.pc' was not found",
		Location: filepos.NewLocation(4, 22),
	})

	withSource := printEvents(t, cmdtpl.OutputText, map[string]string{"a.pc": "<p>\n<include src=\"b.pc\"/></p>"}, []events.Event{ev})
	assert.Equal(t, "# a.pc\n"+
		"Error: IncludeNotFound: Expected include 'b.pc' to refer to a loaded file, but 'b.pc' was not found\n"+
		"  in a.pc:2:1\n"+
		"   2 | <include src=\"b.pc\"/></p>\n"+
		"       ^\n", withSource)

	withoutSource := printEvents(t, cmdtpl.OutputText, nil, []events.Event{ev})
	assert.Contains(t, withoutSource, "  in a.pc [4:22]\n")
}

func TestEventPrinterJSON(t *testing.T) {
	out := printEvents(t, cmdtpl.OutputJSON, nil, sampleEvents()[1:])
	assert.Equal(t, `{"kind":"Error","file_path":"x.pc","error_kind":"Graph","info":`+
		`{"kind":"NotFound","file_path":"x.pc","message":"Expected file 'x.pc' to be loaded, but it was not found"}}`+"\n", out)

	out = printEvents(t, cmdtpl.OutputJSON, nil, sampleEvents())
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("\n")))
	assert.Contains(t, out, `{"kind":"Evaluated","file_path":"a.pc","node":{"kind":"Element","tag_name":"p"`)
}

func TestEventPrinterYAML(t *testing.T) {
	out := printEvents(t, cmdtpl.OutputYAML, nil, sampleEvents())
	assert.Contains(t, out, "kind: Evaluated\nfile_path: a.pc\nnode:\n  kind: Element\n  tag_name: p\n")
	assert.Contains(t, out, "---\nkind: Error\nfile_path: x.pc\nerror_kind: Graph\ninfo:\n  kind: NotFound\n")
}

func TestEventPrinterUnknownFormat(t *testing.T) {
	_, err := cmdtpl.NewEventPrinter("xml", false, nil)
	require.Error(t, err)
	assert.Equal(t, "Expected output format to be one of 'text', 'json', 'yaml', but was 'xml'", err.Error())
}
