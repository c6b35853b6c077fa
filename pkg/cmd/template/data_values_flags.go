// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"
	"os"
	"strings"

	"carvel.dev/clip/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type DataValuesFlags struct {
	EnvFromStrings []string
	EnvFromYAML    []string

	KVsFromStrings []string
	KVsFromYAML    []string
	KVsFromFiles   []string

	Inspect bool
}

func (s *DataValuesFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&s.EnvFromStrings, "data-values-env", nil, "Extract data values (as strings) from prefixed env vars (format: PREFIX for PREFIX_all__key1=str) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.EnvFromYAML, "data-values-env-yaml", nil, "Extract data values (parsed as YAML) from prefixed env vars (format: PREFIX for PREFIX_all__key1=true) (can be specified multiple times)")

	cmd.Flags().StringArrayVarP(&s.KVsFromStrings, "data-value", "v", nil, "Set specific data value to given value, as string (format: all.key1.subkey=123) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromYAML, "data-value-yaml", nil, "Set specific data value to given value, parsed as YAML (format: all.key1.subkey=true) (can be specified multiple times)")
	cmd.Flags().StringArrayVar(&s.KVsFromFiles, "data-value-file", nil, "Set specific data value to given file contents, as string (format: all.key1.subkey=/file/path) (can be specified multiple times)")

	cmd.Flags().BoolVar(&s.Inspect, "data-values-inspect", false, "Inspect data values")
}

type dataValuesFlagsSource struct {
	Values        []string
	TransformFunc func(string) (interface{}, error)
}

// Values collects data values from all flags. Later sources win:
// env vars, then key-values, then files.
func (s *DataValuesFlags) Values() (*config.DataValues, error) {
	plainValFunc := func(rawVal string) (interface{}, error) { return rawVal, nil }

	yamlValFunc := func(rawVal string) (interface{}, error) {
		var val interface{}
		err := yaml.Unmarshal([]byte(rawVal), &val)
		if err != nil {
			return nil, fmt.Errorf("Deserializing YAML value: %s", err)
		}
		return val, nil
	}

	result := config.NewDataValues()

	for _, src := range []dataValuesFlagsSource{{s.EnvFromStrings, plainValFunc}, {s.EnvFromYAML, yamlValFunc}} {
		for _, envPrefix := range src.Values {
			err := s.env(result, envPrefix, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting data values from env under prefix '%s': %s", envPrefix, err)
			}
		}
	}

	for _, src := range []dataValuesFlagsSource{{s.KVsFromStrings, plainValFunc}, {s.KVsFromYAML, yamlValFunc}} {
		for _, kv := range src.Values {
			err := s.kv(result, kv, src.TransformFunc)
			if err != nil {
				return nil, fmt.Errorf("Extracting data value from KV: %s", err)
			}
		}
	}

	for _, file := range s.KVsFromFiles {
		err := s.file(result, file)
		if err != nil {
			return nil, fmt.Errorf("Extracting data value from file: %s", err)
		}
	}

	return result, nil
}

func (s *DataValuesFlags) env(result *config.DataValues, prefix string, valueFunc func(string) (interface{}, error)) error {
	for _, envVar := range os.Environ() {
		pieces := strings.SplitN(envVar, "=", 2)
		if len(pieces) != 2 {
			return fmt.Errorf("Expected env variable to be key-value pair (format: key=value)")
		}

		if !strings.HasPrefix(pieces[0], prefix+"_") {
			continue
		}

		val, err := valueFunc(pieces[1])
		if err != nil {
			return fmt.Errorf("Extracting data value from env variable '%s': %s", pieces[0], err)
		}

		// '__' gets translated into a '.' since periods may not be liked by shells
		err = result.Set(strings.Replace(strings.TrimPrefix(pieces[0], prefix+"_"), "__", ".", -1), val)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *DataValuesFlags) kv(result *config.DataValues, kv string, valueFunc func(string) (interface{}, error)) error {
	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return fmt.Errorf("Expected format key=value")
	}

	val, err := valueFunc(pieces[1])
	if err != nil {
		return fmt.Errorf("Deserializing value for key '%s': %s", pieces[0], err)
	}

	return result.Set(pieces[0], val)
}

func (s *DataValuesFlags) file(result *config.DataValues, kv string) error {
	pieces := strings.SplitN(kv, "=", 2)
	if len(pieces) != 2 {
		return fmt.Errorf("Expected format key=/file/path")
	}

	contents, err := os.ReadFile(pieces[1])
	if err != nil {
		return fmt.Errorf("Reading file '%s'", pieces[1])
	}

	return result.Set(pieces[0], string(contents))
}
