// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/filepos"
	"carvel.dev/clip/pkg/graph"
	"carvel.dev/clip/pkg/markup"
	"carvel.dev/clip/pkg/spell"
	"github.com/spf13/cobra"
)

type DepsOptions struct {
	Debug bool

	FileFlags   cmdtpl.FileFlags
	EngineFlags cmdtpl.EngineFlags
}

func NewDepsOptions() *DepsOptions {
	return &DepsOptions{}
}

func NewDepsCmd(o *DepsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Print include edges, unresolved includes and include cycles",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	o.FileFlags.Set(cmd)
	o.EngineFlags.Set(cmd)
	return cmd
}

func (o *DepsOptions) Run() error {
	in, err := o.FileFlags.Input()
	if err != nil {
		return err
	}
	return o.RunWithFiles(in, ui.NewTTY(o.Debug))
}

// RunWithFiles prints each file's include edges. It fails if any
// file does not parse, any include is unresolved or a cycle exists.
func (o *DepsOptions) RunWithFiles(in cmdtpl.Input, ui ui.UI) error {
	cfg, err := o.EngineFlags.Config()
	if err != nil {
		return err
	}

	resolver, err := cfg.Engine.Resolver()
	if err != nil {
		return err
	}

	g := graph.NewGraph(resolver)
	var problems int

	for _, file := range in.Files {
		bs, err := file.Bytes()
		if err != nil {
			return fmt.Errorf("Reading %s: %s", file.Description(), err)
		}

		err = g.Upsert(file.RelativePath(), string(bs))
		if err != nil {
			problems++
			ui.Printf("%s\n  error: %s\n", file.RelativePath(), syntaxErrMsg(err))
		}
	}

	snapshot := g.Snapshot()
	reportedCycles := map[string]struct{}{}
	var cycles []string

	for _, filePath := range snapshot.FilePaths() {
		unit, _ := snapshot.Unit(filePath)
		ui.Printf("%s\n", filePath)

		for _, edge := range unit.Includes {
			pos := filepos.NewPosition(unit.Source, edge.Location.Start, "")
			status, hint := "", ""
			if !snapshot.Has(edge.To) {
				status = " (unresolved)"
				if suggestion := spell.Hint(edge.To, snapshot.FilePaths()); len(suggestion) > 0 {
					hint = " (" + suggestion + ")"
				}
				problems++
			}
			ui.Printf("  -> %s%s [src '%s' at %s]%s\n", edge.To, status, edge.Src, pos.AsCompactString(), hint)
		}

		if cycle := snapshot.FindCycle(filePath); cycle != nil {
			key := cycleKey(cycle)
			if _, found := reportedCycles[key]; !found {
				reportedCycles[key] = struct{}{}
				cycles = append(cycles, strings.Join(cycle, " -> "))
			}
		}
	}

	if len(cycles) > 0 {
		ui.Printf("cycles:\n")
		for _, cycle := range cycles {
			ui.Printf("  %s\n", cycle)
		}
		problems += len(cycles)
	}

	if problems > 0 {
		return fmt.Errorf("Expected dependencies to be complete, but found %d problem(s)", problems)
	}
	return nil
}

// cycleKey identifies a cycle regardless of the file it was found from.
func cycleKey(cycle []string) string {
	members := cycle[:len(cycle)-1]
	minIdx := 0
	for i, member := range members {
		if member < members[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string{}, members[minIdx:]...), members[:minIdx]...)
	return strings.Join(rotated, "\x00")
}

func syntaxErrMsg(err error) string {
	if syntaxErr, ok := err.(*markup.SyntaxError); ok {
		return fmt.Sprintf("%s: %s (%s)\n%s", syntaxErr.Kind, syntaxErr.Message,
			syntaxErr.Position().AsCompactString(), syntaxErr.Snippet())
	}
	return err.Error()
}
