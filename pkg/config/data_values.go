// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"carvel.dev/clip/pkg/orderedmap"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
)

type valuesMap = orderedmap.Map[string, interface{}]

// DataValues is a tree of named values. Nested maps are exposed to
// slot expressions as structs, so `site.name` reads a nested value.
type DataValues struct {
	values *valuesMap
}

func NewDataValues() *DataValues {
	return &DataValues{orderedmap.NewMap[string, interface{}]()}
}

// NewDataValuesFromMap converts decoded TOML or YAML. Keys are sorted
// since the decoders do not retain order.
func NewDataValuesFromMap(val map[string]interface{}) (*DataValues, error) {
	converted, err := fromUnorderedMap(val)
	if err != nil {
		return nil, err
	}
	return &DataValues{converted}, nil
}

// Set assigns val under a dotted key (e.g. "site.name"), creating
// intermediate maps as necessary.
func (d *DataValues) Set(key string, val interface{}) error {
	keyPieces := strings.Split(key, ".")
	for _, keyPiece := range keyPieces {
		if len(keyPiece) == 0 {
			return fmt.Errorf("Expected data value key '%s' to not have empty pieces", key)
		}
	}

	val, err := normalize(val)
	if err != nil {
		return fmt.Errorf("Setting data value '%s': %s", key, err)
	}

	currMap := d.values
	for _, keyPiece := range keyPieces[:len(keyPieces)-1] {
		subMap, found := currMap.Get(keyPiece)
		if found {
			typedSubMap, ok := subMap.(*valuesMap)
			if !ok {
				return fmt.Errorf("Expected key '%s' to not conflict with other data values at piece '%s'", key, keyPiece)
			}
			currMap = typedSubMap
		} else {
			newCurrMap := orderedmap.NewMap[string, interface{}]()
			currMap.Set(keyPiece, newCurrMap)
			currMap = newCurrMap
		}
	}

	currMap.Set(keyPieces[len(keyPieces)-1], val)
	return nil
}

// Merge overlays other on top of d. Maps are merged key by key;
// any other value replaces what was there.
func (d *DataValues) Merge(other *DataValues) {
	mergeInto(d.values, other.values)
}

func mergeInto(dst, src *valuesMap) {
	src.Iterate(func(key string, srcVal interface{}) {
		dstVal, found := dst.Get(key)
		if found {
			dstMap, dstIsMap := dstVal.(*valuesMap)
			srcMap, srcIsMap := srcVal.(*valuesMap)
			if dstIsMap && srcIsMap {
				mergeInto(dstMap, srcMap)
				return
			}
		}
		dst.Set(key, deepCopy(srcVal))
	})
}

func (d *DataValues) Get(key string) (interface{}, bool) {
	return d.values.Get(key)
}

func (d *DataValues) Keys() []string { return d.values.Keys() }

// AsGlobals converts values for use by slot expressions.
func (d *DataValues) AsGlobals() starlark.StringDict {
	result := starlark.StringDict{}
	d.values.Iterate(func(key string, val interface{}) {
		result[key] = asStarlarkValue(val)
	})
	return result
}

// AsGoValue returns values as plain nested maps (e.g. for printing).
func (d *DataValues) AsGoValue() map[string]interface{} {
	return asUnorderedMap(d.values)
}

func asStarlarkValue(val interface{}) starlark.Value {
	switch typedVal := val.(type) {
	case nil:
		return starlark.None
	case bool:
		return starlark.Bool(typedVal)
	case string:
		return starlark.String(typedVal)
	case int64:
		return starlark.MakeInt64(typedVal)
	case float64:
		return starlark.Float(typedVal)
	case []interface{}:
		var items []starlark.Value
		for _, item := range typedVal {
			items = append(items, asStarlarkValue(item))
		}
		return starlark.NewList(items)
	case *valuesMap:
		fields := starlark.StringDict{}
		typedVal.Iterate(func(key string, fieldVal interface{}) {
			fields[key] = asStarlarkValue(fieldVal)
		})
		return starlarkstruct.FromStringDict(starlarkstruct.Default, fields)
	default:
		panic(fmt.Sprintf("unknown type %T for conversion to starlark value", val))
	}
}

// normalize converts decoder output into the small set of types
// understood by asStarlarkValue.
func normalize(val interface{}) (interface{}, error) {
	switch typedVal := val.(type) {
	case nil, bool, string, int64, float64:
		return typedVal, nil
	case int:
		return int64(typedVal), nil
	case int32:
		return int64(typedVal), nil
	case uint64:
		return int64(typedVal), nil
	case float32:
		return float64(typedVal), nil
	case time.Time:
		return typedVal.Format(time.RFC3339), nil
	case []interface{}:
		var result []interface{}
		for _, item := range typedVal {
			normalized, err := normalize(item)
			if err != nil {
				return nil, err
			}
			result = append(result, normalized)
		}
		return result, nil
	case []map[string]interface{}:
		var result []interface{}
		for _, item := range typedVal {
			normalized, err := fromUnorderedMap(item)
			if err != nil {
				return nil, err
			}
			result = append(result, normalized)
		}
		return result, nil
	case map[string]interface{}:
		return fromUnorderedMap(typedVal)
	case *valuesMap:
		return deepCopy(typedVal), nil
	default:
		return nil, fmt.Errorf("Unsupported data value type %T", val)
	}
}

func fromUnorderedMap(val map[string]interface{}) (*valuesMap, error) {
	var keys []string
	for key := range val {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := orderedmap.NewMap[string, interface{}]()
	for _, key := range keys {
		normalized, err := normalize(val[key])
		if err != nil {
			return nil, fmt.Errorf("Converting key '%s': %s", key, err)
		}
		result.Set(key, normalized)
	}
	return result, nil
}

func asUnorderedMap(val *valuesMap) map[string]interface{} {
	result := map[string]interface{}{}
	val.Iterate(func(key string, item interface{}) {
		result[key] = asPlain(item)
	})
	return result
}

func asPlain(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case *valuesMap:
		return asUnorderedMap(typedVal)
	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, item := range typedVal {
			result[i] = asPlain(item)
		}
		return result
	default:
		return val
	}
}

func deepCopy(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case *valuesMap:
		result := orderedmap.NewMap[string, interface{}]()
		typedVal.Iterate(func(key string, item interface{}) {
			result.Set(key, deepCopy(item))
		})
		return result
	case []interface{}:
		result := make([]interface{}, len(typedVal))
		for i, item := range typedVal {
			result[i] = deepCopy(item)
		}
		return result
	default:
		return val
	}
}
