// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files enumerates and reads the markup files given on the command
line. Each File's RelativePath becomes its key in the dependency graph,
so includes between files in one directory resolve against each other.
*/
package files
