// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	cmdtpl "carvel.dev/clip/pkg/cmd/template"
	"carvel.dev/clip/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type ClipOptions struct{}

func NewDefaultClipOptions() *ClipOptions {
	return &ClipOptions{}
}

func NewDefaultClipCmd() *cobra.Command {
	return NewClipCmd(NewDefaultClipOptions())
}

func NewClipCmd(o *ClipOptions) *cobra.Command {
	cmd := cmdtpl.NewCmd(cmdtpl.NewOptions())

	cmd.Use = "clip"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "clip evaluates markup templates"
	cmd.Long = `clip evaluates markup templates.

Files include each other with <include src="relative/path.pc"/>.
Slots ({expr}) are Starlark expressions over data values (-v key=value).`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(cmdtpl.NewCmd(cmdtpl.NewOptions()))
	cmd.AddCommand(NewDepsCmd(NewDepsOptions()))
	cmd.AddCommand(NewTreeCmd(NewTreeOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
