// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/clip/pkg/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestNewSortedFilesFromPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "site", "pages", "index.pc"), "<include src=\"../parts/nav.pc\"/>")
	writeFile(t, filepath.Join(dir, "site", "parts", "nav.pc"), "<nav/>")
	writeFile(t, filepath.Join(dir, "site", "about.html"), "<p/>")
	writeFile(t, filepath.Join(dir, "site", "README.md"), "# skipped")
	writeFile(t, filepath.Join(dir, "extra.txt"), "kept since named directly")

	result, err := files.NewSortedFilesFromPaths([]string{
		filepath.Join(dir, "site"),
		filepath.Join(dir, "extra.txt"),
	})
	require.NoError(t, err)

	var relPaths []string
	for _, file := range result {
		relPaths = append(relPaths, file.RelativePath())
	}
	assert.Equal(t, []string{"about.html", "extra.txt", "pages/index.pc", "parts/nav.pc"}, relPaths)

	assert.Equal(t, files.TypeMarkup, result[0].Type())
	assert.Equal(t, files.TypeUnknown, result[1].Type())

	bs, err := result[3].Bytes()
	require.NoError(t, err)
	assert.Equal(t, "<nav/>", string(bs))
	assert.Equal(t, fmt.Sprintf("file '%s'", filepath.Join(dir, "site", "parts", "nav.pc")), result[3].Description())
}

func TestNewSortedFilesFromPathsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := files.NewSortedFilesFromPaths([]string{filepath.Join(dir, "missing.pc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Checking file")

	writeFile(t, filepath.Join(dir, "a", "x.pc"), "a")
	writeFile(t, filepath.Join(dir, "b", "x.pc"), "b")

	_, err = files.NewSortedFilesFromPaths([]string{filepath.Join(dir, "a"), filepath.Join(dir, "b")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected unique file paths")
}

func TestCachedSource(t *testing.T) {
	src := files.NewCachedSource(files.NewBytesSource("a.pc", []byte("<p/>")))

	file := files.MustNewFileFromSource(src)
	assert.Equal(t, "a.pc", file.RelativePath())
	assert.Equal(t, "a.pc", file.Description())

	bs, err := file.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "<p/>", string(bs))
}
