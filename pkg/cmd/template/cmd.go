// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/config"
	"carvel.dev/clip/pkg/engine"
	"carvel.dev/clip/pkg/events"
	"carvel.dev/clip/pkg/files"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Debug    bool
	Output   string
	Indent   bool
	Protocol string

	FileFlags       FileFlags
	EngineFlags     EngineFlags
	DataValuesFlags DataValuesFlags
}

type Input struct {
	Files []*files.File
}

type Output struct {
	// Events has one event per input file, sorted by file path.
	Events []events.Event
	// Sources maps file paths to their text.
	Sources map[string]string
	Values  *config.DataValues
	Err     error
}

// Failed returns the number of error events.
func (o Output) Failed() int {
	var count int
	for _, ev := range o.Events {
		if ev.Kind() == events.KindError {
			count++
		}
	}
	return count
}

func NewOptions() *Options {
	return &Options{Output: OutputText}
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"t", "tpl"},
		Short:   "Evaluate markup templates",
		RunE:    func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, "Output format (text, json, yaml)")
	cmd.Flags().BoolVar(&o.Indent, "indent", false, "Indent text output")
	cmd.Flags().StringVar(&o.Protocol, "protocol", "", "Require event protocol version to satisfy constraint (e.g. '~> 1.0')")
	o.FileFlags.Set(cmd)
	o.EngineFlags.Set(cmd)
	o.DataValuesFlags.Set(cmd)
	return cmd
}

func (o *Options) Run() error {
	ui := ui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	printer, err := NewEventPrinter(o.Output, o.Indent, nil)
	if err != nil {
		return err
	}

	in, err := o.FileFlags.Input()
	if err != nil {
		return err
	}

	out := o.RunWithFiles(in, ui)
	if out.Err != nil {
		return out.Err
	}

	if o.DataValuesFlags.Inspect {
		bs, err := yaml.Marshal(out.Values.AsGoValue())
		if err != nil {
			return err
		}
		ui.Printf("%s", bs)
		return nil
	}

	printer.sources = out.Sources

	var buf bytes.Buffer
	err = printer.Print(&buf, out.Events)
	if err != nil {
		return err
	}
	ui.Printf("%s", buf.String())

	if failed := out.Failed(); failed > 0 {
		return fmt.Errorf("Evaluating %d of %d file(s) failed", failed, len(out.Events))
	}
	return nil
}

// RunWithFiles loads every file into a new engine and evaluates all of them.
func (o *Options) RunWithFiles(in Input, ui ui.UI) Output {
	cfg, err := o.EngineFlags.Config()
	if err != nil {
		return Output{Err: err}
	}

	values, err := o.values(cfg)
	if err != nil {
		return Output{Err: err}
	}

	if o.DataValuesFlags.Inspect {
		return Output{Values: values}
	}

	resolver, err := cfg.Engine.Resolver()
	if err != nil {
		return Output{Err: err}
	}

	eng := engine.New(engine.Options{
		Resolver:    resolver,
		Globals:     values.AsGlobals(),
		MaxDepth:    cfg.Engine.MaxDepth,
		Parallelism: cfg.Engine.Parallelism,
	}, ui)
	defer eng.Close()

	sources := map[string]string{}
	// Files that never parsed are not in the graph, so EvaluateAll
	// does not cover them; their load errors are reported instead.
	var loadErrs []events.Event

	for _, file := range in.Files {
		bs, err := file.Bytes()
		if err != nil {
			return Output{Err: fmt.Errorf("Reading %s: %s", file.Description(), err)}
		}
		sources[file.RelativePath()] = string(bs)

		evs := eng.LoadOrUpdate(file.RelativePath(), string(bs))
		if !eng.Has(file.RelativePath()) {
			loadErrs = append(loadErrs, evs...)
		}
	}

	sub, err := eng.Subscribe(events.AllFiles, func(ev events.Event) {
		ui.Debugf("event: %s %s\n", ev.Kind(), ev.GetFilePath())
	}, events.WithProtocol(o.Protocol))
	if err != nil {
		return Output{Err: err}
	}
	defer eng.Unsubscribe(sub)

	evs, err := eng.EvaluateAll(context.Background())
	if err != nil {
		return Output{Err: err}
	}

	evs = append(evs, loadErrs...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].GetFilePath() < evs[j].GetFilePath() })

	return Output{Events: evs, Sources: sources, Values: values}
}

// values merges config file data values with flag data values (flags win).
func (o *Options) values(cfg config.Config) (*config.DataValues, error) {
	values, err := cfg.Values()
	if err != nil {
		return nil, err
	}

	flagValues, err := o.DataValuesFlags.Values()
	if err != nil {
		return nil, err
	}

	values.Merge(flagValues)
	return values, nil
}
