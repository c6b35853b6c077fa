// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TTY writes regular output to stdout and warnings and debug output to stderr.
// Writes are serialized since evaluations report from several goroutines.
type TTY struct {
	debug  bool
	stdout io.Writer
	stderr io.Writer
	lock   *sync.Mutex
}

var _ UI = TTY{}

func NewTTY(debug bool) TTY {
	return NewCustomWriterTTY(debug, nil, nil)
}

// NewCustomWriterTTY is used for checking what is written to stdout/stderr
func NewCustomWriterTTY(debug bool, stdout, stderr io.Writer) TTY {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return TTY{debug, stdout, stderr, &sync.Mutex{}}
}

func (t TTY) Printf(str string, args ...interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	fmt.Fprintf(t.stdout, str, args...)
}

func (t TTY) Warnf(str string, args ...interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	fmt.Fprintf(t.stderr, "Warning: "+str, args...)
}

func (t TTY) Debugf(str string, args ...interface{}) {
	if t.debug {
		t.lock.Lock()
		defer t.lock.Unlock()
		fmt.Fprintf(t.stderr, str, args...)
	}
}

func (t TTY) DebugWriter() io.Writer {
	if t.debug {
		return lockedWriter{t.stderr, t.lock}
	}
	return noopWriter{}
}

type lockedWriter struct {
	writer io.Writer
	lock   *sync.Mutex
}

func (w lockedWriter) Write(data []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.writer.Write(data)
}

type noopWriter struct{}

var _ io.Writer = noopWriter{}

func (w noopWriter) Write(data []byte) (int, error) { return len(data), nil }
