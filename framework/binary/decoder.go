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

	"github.com/pkg/errors"
)

// countingReader tracks how many bytes have been consumed from an
// underlying io.Reader so decodeMessage can detect a short or long field
// stream against the envelope's declared size.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// readFull fills buf from r. A clean or unexpected EOF is reported as the
// domain-specific ErrTruncatedInput; any other failure from the underlying
// source is wrapped with context, mirroring the errors.Cause(err)==io.EOF
// idiom used elsewhere in this codebase to distinguish expected short reads
// from real I/O failures.
func readFull(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	cause := errors.Cause(err)
	if cause == io.EOF || cause == io.ErrUnexpectedEOF {
		return ErrTruncatedInput{Expected: len(buf), Got: n}
	}
	return errors.Wrap(err, "binary: reading from source")
}

// ReadEnvelope reads an envelope header and its fields from source. If
// resolver is non-nil and resolves the envelope's taxonomy-id, every
// decoded field has its missing name/ordinal filled in from the taxonomy
// without overwriting whichever of the two was present.
func ReadEnvelope(source io.Reader, resolver Resolver, dict *TypeDictionary) (*Envelope, error) {
	if dict == nil {
		dict = DefaultTypeDictionary
	}

	var header [8]byte
	if err := readFull(source, header[:]); err != nil {
		return nil, err
	}
	version := header[1]
	taxonomyID := int16(binary.BigEndian.Uint16(header[2:4]))
	totalSize := int(int32(binary.BigEndian.Uint32(header[4:8])))
	bodySize := totalSize - 8
	if bodySize < 0 {
		return nil, ErrMalformedEnvelope{Reason: "declared size smaller than header"}
	}

	var taxonomy Taxonomy
	if resolver != nil {
		taxonomy, _ = resolver.Resolve(taxonomyID)
	}

	cr := &countingReader{r: source}
	msg, err := decodeMessage(cr, bodySize, dict)
	if err != nil {
		return nil, err
	}
	if taxonomy != nil {
		applyTaxonomyPostPass(msg, taxonomy)
	}
	return &Envelope{Version: version, TaxonomyID: taxonomyID, Message: msg}, nil
}

// decodeMessage reads fields from r until exactly size bytes have been
// consumed. A shortfall (the source ends before size bytes) surfaces as the
// read error of the field that hit the end, ErrTruncatedInput for reads
// that go through readFull; an overrun (the last field pushed total
// consumption past size) is ErrMalformedEnvelope.
func decodeMessage(r *countingReader, size int, dict *TypeDictionary) (*Message, error) {
	start := r.n
	msg := NewMessage()
	for r.n-start < size {
		f, err := readField(r, dict)
		if err != nil {
			return nil, err
		}
		msg.Add(f)
	}
	if got := r.n - start; got != size {
		return nil, ErrMalformedEnvelope{Reason: fmt.Sprintf("fields consumed %d bytes of a declared %d", got, size)}
	}
	return msg, nil
}

// readField reads a single field: prefix, type-id, optional ordinal,
// optional name, size, value.
func readField(r *countingReader, dict *TypeDictionary) (*Field, error) {
	var head [2]byte
	if err := readFull(r, head[:]); err != nil {
		return nil, err
	}
	fixed, varSizeBytes, hasOrdinal, hasName, err := DecodePrefix(Prefix(head[0]))
	if err != nil {
		return nil, err
	}
	typeID := head[1]

	f := &Field{HasOrdinal: hasOrdinal, HasName: hasName}
	if hasOrdinal {
		var b [2]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		f.Ordinal = int16(binary.BigEndian.Uint16(b[:]))
	}
	if hasName {
		name, err := ReadModifiedUTF8(r)
		if err != nil {
			return nil, err
		}
		f.Name = name
	}

	ft, ok := dict.GetByTypeID(typeID)
	if !ok {
		if fixed {
			return nil, ErrUnknownType{TypeID: typeID}
		}
		ft = dict.GetUnknownType(typeID)
	}
	f.Type = ft

	varSize := 0
	if !fixed {
		if varSize, err = readVarSize(r, varSizeBytes); err != nil {
			return nil, err
		}
	}

	value, err := readValue(r, ft, fixed, varSize, dict)
	if err != nil {
		return nil, err
	}
	f.Value = value
	return f, nil
}

func readVarSize(r *countingReader, n int) (int, error) {
	switch n {
	case 0:
		return 0, nil
	case 1:
		var b [1]byte
		if err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return int(b[0]), nil
	case 2:
		var b [2]byte
		if err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint16(b[:])), nil
	case 4:
		var b [4]byte
		if err := readFull(r, b[:]); err != nil {
			return 0, err
		}
		return int(binary.BigEndian.Uint32(b[:])), nil
	}
	return 0, ErrMalformedEnvelope{Reason: "illegal variable-size-width"}
}

// readValue dispatches to the direct fast path for the seven primitive
// type-ids, recurses for a sub-message, and otherwise defers to the
// descriptor's Reader.
func readValue(r *countingReader, ft *FieldType, fixed bool, varSize int, dict *TypeDictionary) (interface{}, error) {
	switch ft.TypeID {
	case TypeBool:
		var b [1]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return b[0] != 0, nil
	case TypeInt8:
		var b [1]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return int8(b[0]), nil
	case TypeInt16:
		var b [2]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return int16(binary.BigEndian.Uint16(b[:])), nil
	case TypeInt32:
		var b [4]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return int32(binary.BigEndian.Uint32(b[:])), nil
	case TypeInt64:
		var b [8]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b[:])), nil
	case TypeFloat32:
		var b [4]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b[:])), nil
	case TypeFloat64:
		var b [8]byte
		if err := readFull(r, b[:]); err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
	case TypeMessage:
		return decodeMessage(r, varSize, dict)
	default:
		return ft.Read(r, varSize, dict)
	}
}

// applyTaxonomyPostPass walks msg and every nested sub-message, filling in
// whichever of name/ordinal is missing from the taxonomy. It never
// overwrites a value that was actually present on the wire.
func applyTaxonomyPostPass(msg *Message, taxonomy Taxonomy) {
	for _, f := range msg.Fields() {
		if f.HasOrdinal && !f.HasName {
			if name, ok := taxonomy.NameForOrdinal(f.Ordinal); ok {
				f.Name, f.HasName = name, true
			}
		} else if f.HasName && !f.HasOrdinal {
			if ord, ok := taxonomy.OrdinalForName(f.Name); ok {
				f.Ordinal, f.HasOrdinal = ord, true
			}
		}
		if f.Type != nil && f.Type.TypeID == TypeMessage {
			if sub := f.Message(); sub != nil {
				applyTaxonomyPostPass(sub, taxonomy)
			}
		}
	}
}
