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
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// registerPrimitives installs the seven fast-pathed primitive descriptors
// plus the string and message descriptors into d. The primitive Read/Write
// functions here are the canonical (slow-path) implementations; the wire
// encoder always writes through them, while the wire decoder special-cases
// these seven type-ids with a direct switch so decoding the common case
// never goes through the interface{} boxing these functions require.
func registerPrimitives(d *TypeDictionary) {
	d.Register(&FieldType{TypeID: TypeBool, Fixed: true, FixedSize: 1,
		Write: func(w io.Writer, v interface{}) error {
			b := byte(0)
			if v.(bool) {
				b = 1
			}
			_, err := w.Write([]byte{b})
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return b[0] != 0, nil
		},
	})
	d.Register(&FieldType{TypeID: TypeInt8, Fixed: true, FixedSize: 1,
		Write: func(w io.Writer, v interface{}) error {
			_, err := w.Write([]byte{byte(v.(int8))})
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [1]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return int8(b[0]), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeInt16, Fixed: true, FixedSize: 2,
		Write: func(w io.Writer, v interface{}) error {
			var b [2]byte
			binary.BigEndian.PutUint16(b[:], uint16(v.(int16)))
			_, err := w.Write(b[:])
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [2]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return int16(binary.BigEndian.Uint16(b[:])), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeInt32, Fixed: true, FixedSize: 4,
		Write: func(w io.Writer, v interface{}) error {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(v.(int32)))
			_, err := w.Write(b[:])
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [4]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return int32(binary.BigEndian.Uint32(b[:])), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeInt64, Fixed: true, FixedSize: 8,
		Write: func(w io.Writer, v interface{}) error {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], uint64(v.(int64)))
			_, err := w.Write(b[:])
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return int64(binary.BigEndian.Uint64(b[:])), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeFloat32, Fixed: true, FixedSize: 4,
		Write: func(w io.Writer, v interface{}) error {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], math.Float32bits(v.(float32)))
			_, err := w.Write(b[:])
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [4]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return math.Float32frombits(binary.BigEndian.Uint32(b[:])), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeFloat64, Fixed: true, FixedSize: 8,
		Write: func(w io.Writer, v interface{}) error {
			var b [8]byte
			binary.BigEndian.PutUint64(b[:], math.Float64bits(v.(float64)))
			_, err := w.Write(b[:])
			return err
		},
		Read: func(r io.Reader, _ int, _ *TypeDictionary) (interface{}, error) {
			var b [8]byte
			if _, err := io.ReadFull(r, b[:]); err != nil {
				return nil, err
			}
			return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
		},
	})
	d.Register(&FieldType{TypeID: TypeString, Fixed: false,
		Write: func(w io.Writer, v interface{}) error {
			_, err := w.Write([]byte(v.(string)))
			return err
		},
		Read: func(r io.Reader, varSize int, _ *TypeDictionary) (interface{}, error) {
			b := make([]byte, varSize)
			if _, err := io.ReadFull(r, b); err != nil {
				return nil, err
			}
			return string(b), nil
		},
		Size: func(v interface{}) int { return len(v.(string)) },
	})
	d.Register(&FieldType{TypeID: TypeMessage, Fixed: false,
		// Message fields are handled specially by the encoder/decoder
		// (encodeMessage/decodeMessage recurse into the sub-message instead
		// of calling Write/Read here), but the descriptor still needs to
		// exist so prefix computation and type lookups work uniformly.
		Write: func(w io.Writer, v interface{}) error {
			return fmt.Errorf("binary: message fields are written by encodeMessage's recursion, not Write")
		},
		Read: func(r io.Reader, varSize int, _ *TypeDictionary) (interface{}, error) {
			return nil, fmt.Errorf("binary: message fields are read by decodeMessage's recursion, not Read")
		},
	})
}
