// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package events defines the outcome of evaluating a file and a push-only
emitter that delivers outcomes to subscribers.

Discriminator values (Evaluated, Error, Graph, Syntax, IncludeNotFound,
NotFound, EndOfFile) are part of the wire format and must not change.
*/
package events
