// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui_test

import (
	"bytes"
	"fmt"
	"testing"

	"carvel.dev/clip/pkg/cmd/ui"
	"github.com/stretchr/testify/assert"
)

func TestTTYWritesToStreams(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	tty := ui.NewCustomWriterTTY(false, stdout, stderr)

	tty.Printf("out %d\n", 1)
	tty.Warnf("careful %s\n", "now")
	tty.Debugf("hidden\n")
	fmt.Fprintf(tty.DebugWriter(), "also hidden\n")

	assert.Equal(t, "out 1\n", stdout.String())
	assert.Equal(t, "Warning: careful now\n", stderr.String())
}

func TestTTYDebug(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	tty := ui.NewCustomWriterTTY(true, stdout, stderr)

	tty.Debugf("shown %s\n", "a")
	fmt.Fprintf(tty.DebugWriter(), "shown b\n")
	ui.DebugTimer(tty, "step")()

	assert.Equal(t, "", stdout.String())
	assert.Contains(t, stderr.String(), "shown a\nshown b\n### step (")
}
