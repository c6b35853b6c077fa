// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"carvel.dev/clip/pkg/graph"
	"github.com/BurntSushi/toml"
)

const (
	ResolveRelative = "relative"
	ResolveIdentity = "identity"
)

// Config is the content of a clip.toml file:
//
//	[engine]
//	max_depth = 64
//	parallelism = 4
//	resolve = "relative"
//
//	[data_values]
//	title = "Home"
//	site.name = "example"
type Config struct {
	Engine     EngineConfig           `toml:"engine"`
	DataValues map[string]interface{} `toml:"data_values"`
}

type EngineConfig struct {
	MaxDepth    int    `toml:"max_depth"`
	Parallelism int    `toml:"parallelism"`
	Resolve     string `toml:"resolve"`
}

func NewConfigFromFile(path string) (Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("Reading config file '%s': %s", path, err)
	}
	return NewConfigFromBytes(bs, path)
}

func NewConfigFromBytes(data []byte, name string) (Config, error) {
	var cfg Config

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("Parsing config file '%s': %s", name, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("Parsing config file '%s': Unknown keys: %s", name, strings.Join(keys, ", "))
	}

	err = cfg.Validate()
	if err != nil {
		return Config{}, fmt.Errorf("Validating config file '%s': %s", name, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Engine.MaxDepth < 0 {
		return fmt.Errorf("Expected engine.max_depth to be non-negative, but was %d", c.Engine.MaxDepth)
	}
	if c.Engine.Parallelism < 0 {
		return fmt.Errorf("Expected engine.parallelism to be non-negative, but was %d", c.Engine.Parallelism)
	}
	_, err := c.Engine.Resolver()
	return err
}

// Resolver returns the include path resolver named by Resolve.
func (c EngineConfig) Resolver() (graph.PathResolver, error) {
	switch c.Resolve {
	case "", ResolveRelative:
		return graph.RelativeResolver{}, nil
	case ResolveIdentity:
		return graph.IdentityResolver{}, nil
	default:
		return nil, fmt.Errorf("Expected engine.resolve to be one of '%s' or '%s', but was '%s'",
			ResolveRelative, ResolveIdentity, c.Resolve)
	}
}

// Values returns data values declared under [data_values].
func (c Config) Values() (*DataValues, error) {
	return NewDataValuesFromMap(c.DataValues)
}
