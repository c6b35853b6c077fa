// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package graph keeps one parsed unit per file and the include edges between them.

Include targets are resolved to file path keys when a unit is upserted. An edge
whose target key is not (yet) in the graph is unresolved; that is not an error
for the graph, only for whoever evaluates through the edge.

The reverse relation (who includes a file) is an index keyed by target path.
Entries for targets that are not loaded are kept, so that loading such a file
later finds the files that were waiting for it.

Graph is not safe for concurrent use. Snapshot returns a read-only view that is.
*/
package graph
