// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads engine settings and data values from a TOML file
and converts data values into Starlark globals for slot expressions.
*/
package config
