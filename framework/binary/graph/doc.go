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

// Package graph serializes an arbitrary object graph onto the wire format
// implemented by framework/binary. A Surrogate pair (Encode/Decode) is
// registered per Go type in a TypeMap; SerializationContext walks a root
// object through its surrogate, turning object references into either
// nested sub-messages or relative integer back-references depending on
// whether the reference has been seen before, and DeserializationContext
// reverses the process.
//
// Nothing here is reachable without going through Context, which bundles
// the wire-level type dictionary and taxonomy resolver together with the
// graph-level TypeMap and MappingStrategy.
package graph
