// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"

	"carvel.dev/clip/pkg/config"
	"carvel.dev/clip/pkg/files"
	"github.com/spf13/cobra"
)

type FileFlags struct {
	Files []string
}

func (s *FileFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.Files, "file", "f", nil, "File or directory (ie local path, -) (can be specified multiple times)")
}

func (s *FileFlags) Input() (Input, error) {
	if len(s.Files) == 0 {
		return Input{}, fmt.Errorf("Expected at least one file to be specified via --file (-f)")
	}
	filesToProcess, err := files.NewSortedFilesFromPaths(s.Files)
	if err != nil {
		return Input{}, err
	}
	return Input{Files: filesToProcess}, nil
}

type EngineFlags struct {
	ConfigPath  string
	MaxDepth    int
	Parallelism int
}

func (s *EngineFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.ConfigPath, "config", "", "Path to clip.toml configuration")
	cmd.Flags().IntVar(&s.MaxDepth, "max-depth", 0, "Maximum include nesting (overrides config; default 256)")
	cmd.Flags().IntVar(&s.Parallelism, "parallelism", 0, "Number of files evaluated concurrently (overrides config; default number of CPUs)")
}

// Config loads the configuration file (if any) and applies flag overrides.
func (s *EngineFlags) Config() (config.Config, error) {
	var cfg config.Config

	if len(s.ConfigPath) > 0 {
		var err error
		cfg, err = config.NewConfigFromFile(s.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if s.MaxDepth != 0 {
		cfg.Engine.MaxDepth = s.MaxDepth
	}
	if s.Parallelism != 0 {
		cfg.Engine.Parallelism = s.Parallelism
	}

	return cfg, cfg.Validate()
}
