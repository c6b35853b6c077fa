// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	markupExts = []string{".pc", ".html"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeMarkup
)

type File struct {
	src     Source
	relPath string
}

// NewSortedFilesFromPaths expands directories (recursively) into the
// markup files they contain. Files named directly are always kept.
// The result is sorted by relative path.
func NewSortedFilesFromPaths(paths []string) ([]*File, error) {
	var fileSrcs []Source

	for _, path := range paths {
		switch {
		case path == "-":
			fileSrcs = append(fileSrcs, NewCachedSource(NewStdinSource()))

		default:
			fileInfo, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("Checking file '%s': %s", path, err)
			}

			if fileInfo.IsDir() {
				var selectedPaths []string

				err := filepath.Walk(path, func(walkedPath string, fi os.FileInfo, err error) error {
					if err != nil || fi.IsDir() {
						return err
					}
					if matchesExt(walkedPath, markupExts) {
						selectedPaths = append(selectedPaths, walkedPath)
					}
					return nil
				})
				if err != nil {
					return nil, fmt.Errorf("Listing files '%s': %s", path, err)
				}

				for _, selectedPath := range selectedPaths {
					fileSrcs = append(fileSrcs, NewLocalSource(selectedPath, path))
				}
			} else {
				fileSrcs = append(fileSrcs, NewLocalSource(path, ""))
			}
		}
	}

	var files []*File
	seen := map[string]string{}

	for _, fileSrc := range fileSrcs {
		file, err := NewFileFromSource(fileSrc)
		if err != nil {
			return nil, err
		}
		if prevDesc, found := seen[file.RelativePath()]; found {
			return nil, fmt.Errorf("Expected unique file paths, but %s and %s are both '%s'",
				prevDesc, file.Description(), file.RelativePath())
		}
		seen[file.RelativePath()] = file.Description()
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].RelativePath() < files[j].RelativePath()
	})

	return files, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func MustNewFileFromSource(fileSrc Source) *File {
	file, err := NewFileFromSource(fileSrc)
	if err != nil {
		panic(err)
	}
	return file
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

func (r *File) Type() Type {
	if matchesExt(r.RelativePath(), markupExts) {
		return TypeMarkup
	}
	return TypeUnknown
}

func matchesExt(path string, exts []string) bool {
	filename := filepath.Base(path)
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
