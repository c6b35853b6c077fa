// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package engine keeps a dependency graph of loaded files and re-evaluates
affected files whenever one is loaded, updated or unloaded. Every
evaluation produces exactly one event, which is published to subscribers.
*/
package engine
