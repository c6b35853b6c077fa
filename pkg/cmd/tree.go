// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/cmd/ui"
	"carvel.dev/clip/pkg/markup"
	"github.com/spf13/cobra"
)

type TreeOptions struct {
	Flat bool

	FileFlags cmdtpl.FileFlags
}

func NewTreeOptions() *TreeOptions {
	return &TreeOptions{}
}

func NewTreeCmd(o *TreeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print parsed expression trees with source locations",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Flat, "flat", false, "Print flattened node sequence instead of a tree")
	o.FileFlags.Set(cmd)
	return cmd
}

func (o *TreeOptions) Run() error {
	in, err := o.FileFlags.Input()
	if err != nil {
		return err
	}
	return o.RunWithFiles(in, ui.NewTTY(false))
}

func (o *TreeOptions) RunWithFiles(in cmdtpl.Input, ui ui.UI) error {
	var failed int

	for _, file := range in.Files {
		bs, err := file.Bytes()
		if err != nil {
			return fmt.Errorf("Reading %s: %s", file.Description(), err)
		}

		ui.Printf("# %s\n", file.RelativePath())

		tree, err := markup.Parse(string(bs), file.RelativePath())
		if err != nil {
			failed++
			ui.Printf("error: %s\n", syntaxErrMsg(err))
			continue
		}

		if o.Flat {
			for _, node := range markup.Flatten(tree) {
				ui.Printf("%s\n", markup.Describe(node))
			}
		} else {
			ui.Printf("%s", markup.Dump(tree))
		}
	}

	if failed > 0 {
		return fmt.Errorf("Parsing %d of %d file(s) failed", failed, len(in.Files))
	}
	return nil
}
