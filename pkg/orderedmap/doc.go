// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

Element attributes are kept in one of these so that evaluated output, and the
JSON sent to subscribers, lists attributes in source order.
*/
package orderedmap
