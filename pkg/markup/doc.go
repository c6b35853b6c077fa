// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package markup parses template source text into an expression tree.

The tree is made of a closed set of node types (Text, Element, Include,
Fragment, Slot, Comment and Conditional). Every node carries the filepos.Location of the
source it was parsed from. A tree is never patched: reparsing a file produces
a brand new tree.

	<div class="greeting" {lang}>
	  Hello {name}!
	  {#if admin}<a href="/admin">Admin</a>{/else}<a href="/login">Login</a>{/}
	  <include src="./footer.pc"/>
	</div>

Slots ({...}), block conditions and shorthand attributes ({lang} stands for
lang={lang}) hold Starlark expressions. The parser only checks that they are
well formed; evaluation happens later (see package eval).

Bodies of style and script elements are kept as a single text node.
*/
package markup
