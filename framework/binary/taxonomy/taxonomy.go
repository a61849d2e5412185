// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package taxonomy implements the ordinal<->name bijection (binary.Taxonomy)
// and the taxonomy-id -> Taxonomy lookup (binary.Resolver) that the wire
// codec in framework/binary consults during encode and decode. It plays the
// same role as framework/binary/registry's Namespace played for gapid's
// reflection-registry: a small, append-only, concurrency-safe-after-setup
// map, with fallback composition for layering generations of a taxonomy.
package taxonomy

import "fmt"

// Map is a concrete Taxonomy backed by two parallel slices of equal length.
type Map struct {
	names    []string
	ordinals []int16
	byName   map[string]int16
	byOrd    map[int16]string
}

// New builds a Map from parallel name/ordinal slices. The slices must be
// the same length; New panics otherwise, mirroring the registry package's
// panic-on-misuse convention for setup-time programmer errors.
func New(names []string, ordinals []int16) *Map {
	if len(names) != len(ordinals) {
		panic(fmt.Errorf("taxonomy: %d names but %d ordinals", len(names), len(ordinals)))
	}
	m := &Map{
		names:    append([]string(nil), names...),
		ordinals: append([]int16(nil), ordinals...),
		byName:   make(map[string]int16, len(names)),
		byOrd:    make(map[int16]string, len(names)),
	}
	for i, n := range names {
		m.byName[n] = ordinals[i]
		m.byOrd[ordinals[i]] = n
	}
	return m
}

// OrdinalForName implements binary.Taxonomy.
func (m *Map) OrdinalForName(name string) (int16, bool) {
	ord, ok := m.byName[name]
	return ord, ok
}

// NameForOrdinal implements binary.Taxonomy.
func (m *Map) NameForOrdinal(ordinal int16) (string, bool) {
	name, ok := m.byOrd[ordinal]
	return name, ok
}
