// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package virt holds the evaluated output tree: virtual nodes.

A virtual tree mirrors the expression tree it was evaluated from except that
includes are replaced by the evaluated tree of the included file, slots are
replaced by text, comments are dropped, and fragments nested inside another
node are spliced into their parent. Only the root may be a Fragment.

Every node remembers which file and byte range it came from (Source) so that an
editor can map rendered output back to source.
*/
package virt
