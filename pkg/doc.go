// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of clip.

This codebase is intentionally organized into well-defined layers. Packages
depend on each other only to the degree required.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

Where "# of dependents" is the count of packages that import the named package
and "# of dependencies" is the count of packages that this named package
imports.

From top-down, clip code is layered in this way:

# Entry Point

clip is built as a command-line tool:

	./cmd/clip

# Commands

The most commonly used command is "template", which is also the root command.
"deps" and "tree" inspect the include graph and parsed trees.

	(1) => pkg/cmd => (7)
	(1) => pkg/cmd/template => (7)

# The Engine

The engine owns the dependency graph of loaded files. Loading, updating or
unloading a file re-evaluates it and every file that includes it (directly or
transitively), publishing one event per file to subscribers.

	(1) => pkg/engine => (4)
	(2) => pkg/events => (5)
	(1) => pkg/config => (2)

# Evaluation

Each file's expression tree is evaluated against a graph snapshot. Includes are
replaced by the evaluated tree of the included file; slots are Starlark
expressions.

	(2) => pkg/eval => (5)
	(3) => pkg/virt => (2)

# The Graph

Files are parsed into expression trees and indexed by the includes they contain.

	(4) => pkg/graph => (2)
	(4) => pkg/markup => (2)

# Utilities

The remainder are domain-agnostic utilities that provide either an
application-level capability or a specialized piece of logic.

	(7) => pkg/filepos => (0)
	(4) => pkg/orderedmap => (0)
	(3) => pkg/cmd/ui => (0)
	(2) => pkg/version => (0)
	(1) => pkg/files => (0)
	(1) => pkg/spell => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/template
	- pkg/cmd/ui
	- pkg/filepos
	- pkg/graph
	- pkg/markup
	- pkg/spell
	- pkg/version
	pkg/cmd/template:
	- pkg/cmd/ui
	- pkg/config
	- pkg/engine
	- pkg/events
	- pkg/filepos
	- pkg/files
	- pkg/virt
	pkg/engine:
	- pkg/cmd/ui
	- pkg/eval
	- pkg/events
	- pkg/graph
	pkg/events:
	- pkg/eval
	- pkg/filepos
	- pkg/markup
	- pkg/version
	- pkg/virt
	pkg/config:
	- pkg/graph
	- pkg/orderedmap
	pkg/eval:
	- pkg/filepos
	- pkg/graph
	- pkg/markup
	- pkg/orderedmap
	- pkg/virt
	pkg/virt:
	- pkg/filepos
	- pkg/orderedmap
	pkg/graph:
	- pkg/filepos
	- pkg/markup
	pkg/markup:
	- pkg/filepos
	- pkg/orderedmap
*/
package pkg
