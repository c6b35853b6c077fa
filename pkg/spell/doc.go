// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package spell suggests the intended spelling of a word from a set of known words.

In the context of clip, this is useful for includes that refer to a file
under a slightly different path than any loaded file.
*/
package spell
