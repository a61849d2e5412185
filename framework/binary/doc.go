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

// Package binary implements a self-describing, tagged binary message
// format: a Message is an ordered sequence of named/ordinal-keyed Fields
// whose leaves are typed scalars or recursive sub-messages, wrapped in a
// small Envelope header.
//
// Field values above the seven fast-pathed primitives (bool, int8, int16,
// int32, int64, float32, float64) are delegated to a FieldType registered
// in a TypeDictionary, resolved by type-id. A taxonomy (package
// framework/binary/taxonomy) may be bound to an envelope to translate
// between a field's ordinal and its name; package framework/binary/graph
// builds an object-graph serializer on top of this wire format.
package binary
