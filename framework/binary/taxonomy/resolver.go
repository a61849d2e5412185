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

package taxonomy

import "github.com/fudge-go/fudge/framework/binary"

// Resolver maps a taxonomy-id to a binary.Taxonomy. Id 0 always means "no
// taxonomy" and is never resolved.
type Resolver interface {
	Resolve(taxonomyID int16) (binary.Taxonomy, bool)
}

// MapResolver is a flat, append-only Resolver.
type MapResolver struct {
	byID map[int16]binary.Taxonomy
}

// NewMapResolver returns a resolver with no entries.
func NewMapResolver() *MapResolver {
	return &MapResolver{byID: make(map[int16]binary.Taxonomy)}
}

// Add registers tax under id. id 0 is rejected: it is reserved for "no
// taxonomy" and must never resolve.
func (r *MapResolver) Add(id int16, tax binary.Taxonomy) {
	if id == 0 {
		return
	}
	r.byID[id] = tax
}

// Resolve implements binary.Resolver.
func (r *MapResolver) Resolve(id int16) (binary.Taxonomy, bool) {
	if id == 0 {
		return nil, false
	}
	t, ok := r.byID[id]
	return t, ok
}

// ResolverChain tries each Resolver in order and returns the first match.
// It mirrors framework/binary/registry.Namespace's fallback-namespace walk,
// generalized from class lookups to taxonomy lookups: useful when a decode
// context must understand more than one generation of taxonomy-id
// assignment without the two generations being merged into one Resolver.
type ResolverChain []Resolver

// Resolve implements binary.Resolver.
func (c ResolverChain) Resolve(id int16) (binary.Taxonomy, bool) {
	if id == 0 {
		return nil, false
	}
	for _, r := range c {
		if t, ok := r.Resolve(id); ok {
			return t, true
		}
	}
	return nil, false
}
