// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"
	"time"
)

// UI is how the engine and commands report to the user.
type UI interface {
	Printf(string, ...interface{})
	Debugf(string, ...interface{})
	Warnf(str string, args ...interface{})
	DebugWriter() io.Writer
}

// DebugTimer logs how long an operation took once the returned func is called.
func DebugTimer(ui UI, name string) func() {
	start := time.Now()
	return func() {
		ui.Debugf("### %s (%s)\n", name, time.Since(start))
	}
}

// NoopUI discards all output.
type NoopUI struct{}

var _ UI = NoopUI{}

func (NoopUI) Printf(string, ...interface{}) {}
func (NoopUI) Debugf(string, ...interface{}) {}
func (NoopUI) Warnf(string, ...interface{})  {}
func (NoopUI) DebugWriter() io.Writer        { return noopWriter{} }
