// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"carvel.dev/clip/pkg/events"
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/virt"
	"gopkg.in/yaml.v3"
)

const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

var outputFormats = []string{OutputText, OutputJSON, OutputYAML}

// EventPrinter writes events in one of the output formats.
// Sources are used to show snippets of failing lines in text output.
type EventPrinter struct {
	format  string
	indent  bool
	sources map[string]string
}

func NewEventPrinter(format string, indent bool, sources map[string]string) (EventPrinter, error) {
	for _, known := range outputFormats {
		if format == known {
			return EventPrinter{format, indent, sources}, nil
		}
	}
	return EventPrinter{}, fmt.Errorf("Expected output format to be one of '%s', but was '%s'",
		strings.Join(outputFormats, "', '"), format)
}

func (p EventPrinter) Print(w io.Writer, evs []events.Event) error {
	switch p.format {
	case OutputText:
		for _, ev := range evs {
			_, err := io.WriteString(w, p.text(ev))
			if err != nil {
				return err
			}
		}
		return nil

	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		for _, ev := range evs {
			err := encoder.Encode(ev)
			if err != nil {
				return err
			}
		}
		return nil

	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		for _, ev := range evs {
			node, err := asYAMLNode(ev)
			if err != nil {
				return err
			}
			err = encoder.Encode(node)
			if err != nil {
				return err
			}
		}
		return encoder.Close()

	default:
		panic(fmt.Sprintf("unknown output format '%s'", p.format))
	}
}

func (p EventPrinter) text(ev events.Event) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n", ev.GetFilePath()))

	switch typedEv := ev.(type) {
	case *events.EvaluatedEvent:
		printed := virt.NewPrinterWithOpts(nil, virt.PrinterOpts{Indent: p.indent}).PrintStr(typedEv.Node)
		sb.WriteString(strings.TrimSuffix(printed, "\n"))
		sb.WriteString("\n")

	case *events.ErrorEvent:
		sb.WriteString(fmt.Sprintf("Error: %s: %s\n", typedEv.Info.Kind(), typedEv.Info.GetMessage()))
		if snippet := p.snippet(typedEv.Info); len(snippet) > 0 {
			sb.WriteString(snippet)
			sb.WriteString("\n")
		}

	default:
		panic(fmt.Sprintf("unknown event type %T", typedEv))
	}

	return sb.String()
}

func (p EventPrinter) snippet(info events.GraphErrorInfo) string {
	var filePath string
	var loc filepos.Location

	switch typedInfo := info.(type) {
	case *events.SyntaxInfo:
		filePath, loc = typedInfo.FilePath, typedInfo.Location
	case *events.IncludeNotFoundInfo:
		filePath, loc = typedInfo.FilePath, typedInfo.Location
	case *events.RuntimeInfo:
		filePath, loc = typedInfo.FilePath, typedInfo.Location
	case *events.NotFoundInfo:
		return ""
	default:
		panic(fmt.Sprintf("unknown error info type %T", typedInfo))
	}

	text, found := p.sources[filePath]
	if !found {
		return fmt.Sprintf("  in %s [%s]", filePath, loc.AsString())
	}

	pos := filepos.NewPosition(text, loc.Start, filePath)
	return fmt.Sprintf("  in %s\n%s", pos.AsCompactString(), pos.AsSourceSnippet())
}

// asYAMLNode goes through JSON to keep field order of events,
// then switches JSON's flow style to block style.
func asYAMLNode(ev events.Event) (*yaml.Node, error) {
	bs, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	err = yaml.NewDecoder(bytes.NewReader(bs)).Decode(&node)
	if err != nil {
		return nil, err
	}

	resetStyle(&node)
	return &node, nil
}

func resetStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		resetStyle(child)
	}
}
