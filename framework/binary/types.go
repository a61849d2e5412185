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

import (
	"io"
	"sync"
)

// Reserved type-ids for the seven primitives the wire decoder fast-paths
// directly (see readValue in decoder.go). Values above these are delegated
// to a registered FieldType's Reader/Writer.
const (
	TypeBool    uint8 = 0
	TypeInt8    uint8 = 1
	TypeInt16   uint8 = 2
	TypeInt32   uint8 = 3
	TypeInt64   uint8 = 4
	TypeFloat32 uint8 = 5
	TypeFloat64 uint8 = 6

	// TypeString and TypeMessage are not fast-pathed but are intrinsic to the
	// core: the object-graph engine needs strings for field names and
	// type-name chains, and needs sub-messages for recursion.
	TypeString  uint8 = 7
	TypeMessage uint8 = 8

	// firstFreeTypeID is the lowest type-id available for registrations by
	// collaborators outside this module (integer widths, date/time, arrays,
	// ...); this module only defines the primitives above it.
	firstFreeTypeID uint8 = 9
)

// FieldType is an immutable descriptor for a field's wire type. Readers and
// Writers for anything above the seven fast-pathed primitives are delegated
// to here.
type FieldType struct {
	TypeID    uint8
	Fixed     bool
	FixedSize int // only meaningful when Fixed is true

	// Write encodes value to w. For variable-width types the encoder
	// buffers Write's output and emits its length as the size bytes; fixed
	// types must emit exactly FixedSize bytes.
	Write func(w io.Writer, value interface{}) error

	// Read decodes a value from r. varSize is the number of bytes the field
	// declared for a variable-width value (ignored for fixed-width types,
	// which must read exactly FixedSize bytes).
	Read func(r io.Reader, varSize int, dict *TypeDictionary) (interface{}, error)

	// Size returns the number of bytes Write will emit for value, for
	// variable-width types. The encoder in this package does not call it; it
	// measures Write's buffered output instead.
	Size func(value interface{}) int
}

// TypeDictionary resolves type-ids to FieldType descriptors. The zero value
// is not usable; construct with NewTypeDictionary. A single dictionary may be
// shared across concurrently-running encode/decode operations: it is
// immutable after the registrations performed during setup.
type TypeDictionary struct {
	mu   sync.RWMutex
	byID map[uint8]*FieldType
}

// NewTypeDictionary returns an empty dictionary. Use DefaultTypeDictionary
// for one pre-loaded with the primitive, string and message descriptors.
// The opaque-unknown descriptor is never registered; any dictionary hands
// one out from GetUnknownType.
func NewTypeDictionary() *TypeDictionary {
	return &TypeDictionary{byID: make(map[uint8]*FieldType)}
}

// Register adds (or overwrites) a descriptor under its TypeID.
func (d *TypeDictionary) Register(t *FieldType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[t.TypeID] = t
}

// GetByTypeID looks up a descriptor. The seven primitive ids and the string
// and message ids are always present in DefaultTypeDictionary, but a caller
// is free to build a bare TypeDictionary that lacks them.
func (d *TypeDictionary) GetByTypeID(id uint8) (*FieldType, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.byID[id]
	return t, ok
}

// GetUnknownType returns the opaque-bytes placeholder descriptor for a
// variable-width type-id that has no registration. The returned descriptor
// round-trips its payload byte-for-byte: decode stores the raw bytes, and a
// subsequent re-encode of that same value emits them back unchanged.
func (d *TypeDictionary) GetUnknownType(id uint8) *FieldType {
	return &FieldType{
		TypeID: id,
		Fixed:  false,
		Write: func(w io.Writer, value interface{}) error {
			b, _ := value.([]byte)
			_, err := w.Write(b)
			return err
		},
		Read: func(r io.Reader, varSize int, dict *TypeDictionary) (interface{}, error) {
			buf := make([]byte, varSize)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			return buf, nil
		},
		Size: func(value interface{}) int {
			b, _ := value.([]byte)
			return len(b)
		},
	}
}

// DefaultTypeDictionary is the package-level singleton loaded with the
// primitive, string and message descriptors. It is safe
// for concurrent reads; registrations should happen during package init.
var DefaultTypeDictionary = newDefaultTypeDictionary()

func newDefaultTypeDictionary() *TypeDictionary {
	d := NewTypeDictionary()
	registerPrimitives(d)
	return d
}
