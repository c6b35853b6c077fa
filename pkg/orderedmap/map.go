// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Map[K comparable, V any] struct {
	items []MapItem[K, V]
}

type MapItem[K comparable, V any] struct {
	Key   K
	Value V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{}
}

func NewMapWithItems[K comparable, V any](items []MapItem[K, V]) *Map[K, V] {
	m := NewMap[K, V]()
	for _, item := range items {
		m.Set(item.Key, item.Value)
	}
	return m
}

// Set replaces the value of an existing key in place, keeping its position.
func (m *Map[K, V]) Set(key K, value V) {
	for i, item := range m.items {
		if item.Key == key {
			m.items[i].Value = value
			return
		}
	}
	m.items = append(m.items, MapItem[K, V]{key, value})
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	if m != nil {
		for _, item := range m.items {
			if item.Key == key {
				return item.Value, true
			}
		}
	}
	var zero V
	return zero, false
}

func (m *Map[K, V]) Has(key K) bool {
	_, found := m.Get(key)
	return found
}

func (m *Map[K, V]) Delete(key K) bool {
	for i, item := range m.items {
		if item.Key == key {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Map[K, V]) Keys() (keys []K) {
	m.Iterate(func(k K, _ V) {
		keys = append(keys, k)
	})
	return
}

func (m *Map[K, V]) Iterate(iterFunc func(k K, v V)) {
	if m == nil {
		return
	}
	for _, item := range m.items {
		iterFunc(item.Key, item.Value)
	}
}

func (m *Map[K, V]) IterateErr(iterFunc func(k K, v V) error) error {
	if m == nil {
		return nil
	}
	for _, item := range m.items {
		err := iterFunc(item.Key, item.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

func (m *Map[K, V]) Items() []MapItem[K, V] {
	if m == nil {
		return nil
	}
	return append([]MapItem[K, V]{}, m.items...)
}

func (m *Map[K, V]) DeepCopy() *Map[K, V] {
	if m == nil {
		return nil
	}
	return &Map[K, V]{items: m.Items()}
}

var _ json.Marshaler = &Map[string, string]{}

// MarshalJSON emits a JSON object with keys in insertion order.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, item := range m.Items() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBs, err := json.Marshal(fmt.Sprint(item.Key))
		if err != nil {
			return nil, err
		}
		valBs, err := json.Marshal(item.Value)
		if err != nil {
			return nil, fmt.Errorf("Marshaling value of key '%v': %s", item.Key, err)
		}
		buf.Write(keyBs)
		buf.WriteByte(':')
		buf.Write(valBs)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
