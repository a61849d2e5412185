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

package graph

import (
	"reflect"

	"github.com/fudge-go/fudge/framework/binary"
)

// SurrogateFactory returns a new Surrogate instance. A factory, not a
// shared Surrogate value, is registered so a stateful surrogate never
// leaks state across concurrent graph encodes sharing one TypeMap.
type SurrogateFactory func() Surrogate

// TypeMap owns the registrations from a runtime type to the factory that
// builds its Surrogate. Registration is append-only; the order registered
// never affects correctness.
type TypeMap struct {
	byType map[reflect.Type]SurrogateFactory
}

// NewTypeMap returns an empty TypeMap.
func NewTypeMap() *TypeMap {
	return &TypeMap{byType: make(map[reflect.Type]SurrogateFactory)}
}

// Register associates sample's runtime type with factory. sample is only
// consulted for its type; its value is otherwise ignored.
func (m *TypeMap) Register(sample interface{}, factory SurrogateFactory) {
	m.RegisterType(reflect.TypeOf(sample), factory)
}

// RegisterType is Register for when a reflect.Type is already in hand.
func (m *TypeMap) RegisterType(t reflect.Type, factory SurrogateFactory) {
	m.byType[t] = factory
}

// GetSurrogateFactory looks up the factory registered for t.
func (m *TypeMap) GetSurrogateFactory(t reflect.Type) (SurrogateFactory, bool) {
	f, ok := m.byType[t]
	return f, ok
}

// require is GetSurrogateFactory with the encode-time hard-failure the
// object-graph serializer needs: no surrogate for a runtime type the
// surrogate under construction actually references is fatal to the encode.
func (m *TypeMap) require(t reflect.Type) (SurrogateFactory, error) {
	f, ok := m.byType[t]
	if !ok {
		return nil, binary.ErrUnregisteredObjectType{Type: reflect.Zero(t).Interface()}
	}
	return f, nil
}
