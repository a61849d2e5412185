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

package binary

// Field is a single leaf (or sub-message) entry of a Message. At least one
// of Name/Ordinal may be absent; both may be absent. When a taxonomy is in
// force one is derived from the other during encode/decode (see
// WriteEnvelope in encoder.go and ReadEnvelope in decoder.go).
type Field struct {
	Name       string
	HasName    bool
	Ordinal    int16
	HasOrdinal bool

	Type *FieldType

	// Value holds the decoded/to-be-encoded payload. For TypeMessage it is
	// a *Message; for TypeString a string; for the seven primitives the
	// corresponding Go type; for an unresolved variable-width type, []byte.
	Value interface{}
}

// NewField builds a field with both name and ordinal absent; set them with
// WithName/WithOrdinal.
func NewField(t *FieldType, value interface{}) *Field {
	return &Field{Type: t, Value: value}
}

// WithName returns f with Name set.
func (f *Field) WithName(name string) *Field {
	f.Name = name
	f.HasName = true
	return f
}

// WithOrdinal returns f with Ordinal set.
func (f *Field) WithOrdinal(ordinal int16) *Field {
	f.Ordinal = ordinal
	f.HasOrdinal = true
	return f
}

// Message returns the sub-message value, or nil if this field is not a
// TypeMessage field.
func (f *Field) Message() *Message {
	m, _ := f.Value.(*Message)
	return m
}
