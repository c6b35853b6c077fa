// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos provides the concept of Location: a byte range within a single
source text, and Position: a human readable line/column rendering of a Location.

Locations are what the engine reports to subscribers (editors highlight the
exact span). Positions exist only to make error messages readable on a terminal.

Start is inclusive and End is exclusive. A construct left open at the end of the
text spans up to len(text).
*/
package filepos
