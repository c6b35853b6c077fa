// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	semver "github.com/hashicorp/go-version"
)

var (
	// Version is set via ldflags at build time
	Version = "develop"

	// ProtocolVersion identifies the shape of emitted events.
	// Bump the major version when a wire-visible field changes.
	ProtocolVersion = "1.0.0"
)

// CheckProtocol returns an error if ProtocolVersion does not satisfy
// constraint (e.g. ">= 1.0, < 2.0"). An empty constraint is always satisfied.
func CheckProtocol(constraint string) error {
	if len(constraint) == 0 {
		return nil
	}

	constraints, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("Parsing protocol constraint '%s': %s", constraint, err)
	}

	current, err := semver.NewVersion(ProtocolVersion)
	if err != nil {
		return fmt.Errorf("Parsing protocol version '%s': %s", ProtocolVersion, err)
	}

	if !constraints.Check(current) {
		return fmt.Errorf("Expected protocol version to satisfy '%s', but was '%s'", constraint, ProtocolVersion)
	}
	return nil
}
