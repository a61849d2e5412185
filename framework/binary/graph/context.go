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
	"io"

	"github.com/fudge-go/fudge/framework/binary"
)

// TypeIDField is the reserved ordinal the serialization context uses to
// carry an emitted object's type information (a signed delta to a prior
// object of the same type, or a wire type-name). Surrogates must never
// write a field at this ordinal.
const TypeIDField int16 = -1

// Context bundles the collaborators needed to turn Go values into wire
// messages and back: the wire-level type dictionary, an optional taxonomy
// resolver, the surrogate TypeMap, and a MappingStrategy. It plays the same
// role one layer up that framework/binary.Envelope's (dict, resolver) pair
// plays for a single message: the per-operation state of one encode or
// decode lives in the SerializationContext or DeserializationContext it
// hands out. The context itself is not fully immutable: DefaultStrategy
// records each type name the first time GetName sees it, so every encode
// may write to the Strategy's name table, and DefaultStrategy has no
// locking around it.
type Context struct {
	Dict       *binary.TypeDictionary
	Resolver   binary.Resolver
	TaxonomyID int16
	Version    uint8

	Types    *TypeMap
	Strategy MappingStrategy
}

// NewContext returns a Context with the default wire type dictionary, no
// taxonomy, an empty TypeMap and the reflect-based DefaultStrategy.
func NewContext() *Context {
	return &Context{
		Dict:     binary.DefaultTypeDictionary,
		Version:  1,
		Types:    NewTypeMap(),
		Strategy: NewDefaultStrategy(),
	}
}

// NewSerializer starts a fresh graph encode that will write to sink once
// SerializeGraph is called.
func (c *Context) NewSerializer(sink io.Writer) *SerializationContext {
	return newSerializationContext(c, sink)
}

// NewDeserializer reads the envelope from source and returns a graph decode
// context positioned to reconstruct its top-level objects on demand.
func (c *Context) NewDeserializer(source io.Reader) (*DeserializationContext, error) {
	env, err := binary.ReadEnvelope(source, c.Resolver, c.Dict)
	if err != nil {
		return nil, err
	}
	return newDeserializationContext(c, env), nil
}
