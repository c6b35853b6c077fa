// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"path"
	"strings"
)

// PathResolver turns an include's src attribute into a graph key.
type PathResolver interface {
	Resolve(fromFilePath, src string) string
}

// RelativeResolver resolves src against the including file's directory using
// slash separated paths. Sources starting with "/" are taken as is.
type RelativeResolver struct{}

var _ PathResolver = RelativeResolver{}

func (RelativeResolver) Resolve(fromFilePath, src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "/") {
		return path.Clean(src)
	}
	return path.Join(path.Dir(fromFilePath), src)
}

// IdentityResolver uses src verbatim as the key.
type IdentityResolver struct{}

var _ PathResolver = IdentityResolver{}

func (IdentityResolver) Resolve(_, src string) string { return src }
