// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package eval turns a file's expression tree into a virtual tree.

Includes are resolved through a graph snapshot and their results spliced
in place; slots are Starlark expressions evaluated against data values.
Evaluation is all-or-nothing: any failure aborts the requested file.
*/
package eval
