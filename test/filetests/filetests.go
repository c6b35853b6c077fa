// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filetests houses a test harness for evaluating sets of markup files
and asserting the expected output.
*/
package filetests

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/config"
	"carvel.dev/clip/pkg/engine"
	"carvel.dev/clip/pkg/events"
	"github.com/k14s/difflib"
)

const (
	fileHeaderPrefix = "--- "
	configFileName   = "clip.toml"
)

// EvaluateFiles is the processing desired from a set of source files to the final output.
type EvaluateFiles func(files []SourceFile) (string, error)

// SourceFile is one file of a test case.
type SourceFile struct {
	Path string
	Text string
}

// FileTests contain a suite of test cases, each described in a separate file.
//
// Test cases:
// - are found within the directory at "PathToTests"
// - conventionally have a .pctest extension
// - top-half holds one or more files, each starting with a `--- path` header line;
// a file named clip.toml configures the engine and data values
// - bottom-half is the expected output; divided by `+++` and a blank line
// - expected output is one text-formatted event per file (as printed by `clip -o text`)
//
// For example:
//
//	--- a.pc
//	<div><include src="b.pc"/></div>
//	--- b.pc
//	<p>{1 + 1}</p>
//	+++
//
//	# a.pc
//	<div><p>2</p></div>
//	# b.pc
//	<p>2</p>
type FileTests struct {
	PathToTests string
	EvalFunc    EvaluateFiles
}

// Run runs each test: enumerates each file within FileTests.PathToTests, splits and evaluates using FileTests.EvalFunc.
func (f FileTests) Run(t *testing.T) {
	var paths []string

	err := filepath.Walk(f.PathToTests, func(walkedPath string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		paths = append(paths, walkedPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to enumerate filetests: %s", err)
	}

	if f.EvalFunc == nil {
		f.EvalFunc = DefaultEvalFiles
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			contents, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			pieces := strings.SplitN(string(contents), "\n+++\n\n", 2)
			if len(pieces) != 2 {
				t.Fatalf("expected file %s to include +++ separator", path)
			}

			srcFiles, err := ParseSourceFiles(pieces[0])
			if err != nil {
				t.Fatalf("parsing %s: %s", path, err)
			}

			resultStr, err := f.EvalFunc(srcFiles)
			if err != nil {
				t.Fatalf("evaluating %s: %s", path, err)
			}

			resultStr = TrimTrailingMultilineWhitespace(resultStr)
			expectedStr := TrimTrailingMultilineWhitespace(pieces[1])

			if resultStr != expectedStr {
				diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
				t.Fatalf("not equal\n\n### result %d chars:\n>>>%s<<<\n###expected %d chars:\n>>>%s<<<\n### diff:\n%s",
					len(resultStr), resultStr, len(expectedStr), expectedStr, diff)
			}
		})
	}
}

// ParseSourceFiles splits the top-half of a test case into files.
func ParseSourceFiles(src string) ([]SourceFile, error) {
	var result []SourceFile
	var current *SourceFile

	for _, line := range strings.SplitAfter(src, "\n") {
		if strings.HasPrefix(line, fileHeaderPrefix) {
			path := strings.TrimSpace(strings.TrimPrefix(line, fileHeaderPrefix))
			if len(path) == 0 {
				return nil, fmt.Errorf("Expected file header to name a file")
			}
			result = append(result, SourceFile{Path: path})
			current = &result[len(result)-1]
			continue
		}
		if current == nil {
			if len(strings.TrimSpace(line)) == 0 {
				continue
			}
			return nil, fmt.Errorf("Expected content to start with a '%s<path>' header, but found '%s'",
				fileHeaderPrefix, strings.TrimSpace(line))
		}
		current.Text += line
	}

	for i := range result {
		result[i].Text = strings.TrimSuffix(result[i].Text, "\n")
	}
	return result, nil
}

// DefaultEvalFiles loads files into an engine in the given order and prints
// the result of evaluating all of them. Files that fail to parse are reported
// with their syntax error.
func DefaultEvalFiles(srcFiles []SourceFile) (string, error) {
	var cfg config.Config
	var markupFiles []SourceFile

	for _, srcFile := range srcFiles {
		if srcFile.Path == configFileName {
			var err error
			cfg, err = config.NewConfigFromBytes([]byte(srcFile.Text), srcFile.Path)
			if err != nil {
				return "", err
			}
			continue
		}
		markupFiles = append(markupFiles, srcFile)
	}

	values, err := cfg.Values()
	if err != nil {
		return "", err
	}
	resolver, err := cfg.Engine.Resolver()
	if err != nil {
		return "", err
	}

	eng := engine.New(engine.Options{
		Resolver:    resolver,
		Globals:     values.AsGlobals(),
		MaxDepth:    cfg.Engine.MaxDepth,
		Parallelism: cfg.Engine.Parallelism,
	}, ui.NoopUI{})
	defer eng.Close()

	sources := map[string]string{}
	loadErrs := map[string]events.Event{}

	for _, srcFile := range markupFiles {
		sources[srcFile.Path] = srcFile.Text
		evs := eng.LoadOrUpdate(srcFile.Path, srcFile.Text)
		if !eng.Has(srcFile.Path) {
			loadErrs[srcFile.Path] = evs[0]
		}
	}

	evs, err := eng.EvaluateAll(context.Background())
	if err != nil {
		return "", err
	}

	var ordered []events.Event
	for _, srcFile := range markupFiles {
		if ev, found := loadErrs[srcFile.Path]; found {
			ordered = append(ordered, ev)
			continue
		}
		for _, ev := range evs {
			if ev.GetFilePath() == srcFile.Path {
				ordered = append(ordered, ev)
			}
		}
	}

	printer, err := cmdtpl.NewEventPrinter(cmdtpl.OutputText, false, sources)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = printer.Print(&buf, ordered)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TrimTrailingMultilineWhitespace returns a string with trailing whitespace trimmed from every line as well
// as trimmed trailing empty lines
func TrimTrailingMultilineWhitespace(s string) string {
	var trimmedLines []string
	for _, line := range strings.Split(s, "\n") {
		trimmedLine := strings.TrimRight(line, "\t ")
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	multiline := strings.Join(trimmedLines, "\n")
	return strings.TrimRight(multiline, "\n")
}
