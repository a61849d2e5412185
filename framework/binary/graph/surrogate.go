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

import "github.com/fudge-go/fudge/framework/binary"

// Surrogate is the per-type encode/decode pair the graph context dispatches
// to for every object it serializes or reconstructs. Encode populates w
// with obj's fields; Decode rebuilds an object from m's fields, resolving
// any object-valued field through dec.
type Surrogate interface {
	Encode(obj interface{}, w Writer, ctx *SerializationContext) error
	Decode(m *binary.Message, dec *Decoder) (interface{}, error)
}

// PlaceholderSurrogate is an optional extension a Surrogate implements to
// control how an object is stood in for while it is referenced by one of
// its own still-decoding descendants (see DeserializationContext's handling
// of in-progress indices). For a pointer-to-struct type the deserializer
// fabricates an equivalent placeholder by reflection on its own, so this
// only needs implementing when the default construction isn't suitable
// (a type that isn't a plain struct pointer, or one that needs its
// placeholder pre-populated with something other than its zero value).
type PlaceholderSurrogate interface {
	Surrogate
	NewPlaceholder() interface{}
}
