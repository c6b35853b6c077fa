// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package template implements the default command: load markup files into
an engine, evaluate every one of them and print one event per file.
*/
package template
