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

// Message is an ordered sequence of fields. Insertion order is preserved on
// the wire. Fields may share names or ordinals; scalar lookups return the
// first match, enumerating lookups return all matches.
type Message struct {
	fields []*Field
}

// NewMessage returns an empty message.
func NewMessage() *Message {
	return &Message{}
}

// Add appends f to the message and returns the message, so adds can chain.
func (m *Message) Add(f *Field) *Message {
	m.fields = append(m.fields, f)
	return m
}

// Len returns the number of fields.
func (m *Message) Len() int { return len(m.fields) }

// At returns the field at positional index i.
func (m *Message) At(i int) *Field { return m.fields[i] }

// Fields returns the full ordered field slice. Callers must not mutate it.
func (m *Message) Fields() []*Field { return m.fields }

// ByName returns the first field with the given name.
func (m *Message) ByName(name string) (*Field, bool) {
	for _, f := range m.fields {
		if f.HasName && f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// AllByName returns every field with the given name, in wire order.
func (m *Message) AllByName(name string) []*Field {
	var out []*Field
	for _, f := range m.fields {
		if f.HasName && f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// ByOrdinal returns the first field with the given ordinal.
func (m *Message) ByOrdinal(ordinal int16) (*Field, bool) {
	for _, f := range m.fields {
		if f.HasOrdinal && f.Ordinal == ordinal {
			return f, true
		}
	}
	return nil, false
}

// AllByOrdinal returns every field with the given ordinal, in wire order.
func (m *Message) AllByOrdinal(ordinal int16) []*Field {
	var out []*Field
	for _, f := range m.fields {
		if f.HasOrdinal && f.Ordinal == ordinal {
			out = append(out, f)
		}
	}
	return out
}
