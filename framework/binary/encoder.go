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
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteEnvelope emits msg wrapped in an envelope header to sink. If
// resolver is non-nil and resolves taxonomyID to a Taxonomy, every field's
// ordinal/name is reconciled against it before being written.
func WriteEnvelope(msg *Message, taxonomyID int16, version uint8, resolver Resolver, dict *TypeDictionary, sink io.Writer) error {
	var taxonomy Taxonomy
	if resolver != nil {
		taxonomy, _ = resolver.Resolve(taxonomyID)
	}
	if dict == nil {
		dict = DefaultTypeDictionary
	}

	body := &bytes.Buffer{}
	if err := encodeMessage(body, msg, taxonomy, dict); err != nil {
		return err
	}

	var header [8]byte
	header[0] = 0 // processing-directives, reserved
	header[1] = version
	binary.BigEndian.PutUint16(header[2:4], uint16(taxonomyID))
	binary.BigEndian.PutUint32(header[4:8], uint32(8+body.Len()))

	if _, err := sink.Write(header[:]); err != nil {
		return errors.Wrap(err, "binary: writing envelope header")
	}
	if _, err := sink.Write(body.Bytes()); err != nil {
		return errors.Wrap(err, "binary: writing envelope body")
	}
	return nil
}

// encodeMessage writes every field of msg, in order, to w.
func encodeMessage(w *bytes.Buffer, msg *Message, taxonomy Taxonomy, dict *TypeDictionary) error {
	for _, f := range msg.Fields() {
		if err := writeField(w, f, taxonomy, dict); err != nil {
			return err
		}
	}
	return nil
}

// reconcileWithTaxonomy computes the effective (name, hasName, ordinal,
// hasOrdinal) for a field once a taxonomy is applied, without mutating the
// caller's Field.
func reconcileWithTaxonomy(f *Field, taxonomy Taxonomy) (name string, hasName bool, ordinal int16, hasOrdinal bool) {
	name, hasName, ordinal, hasOrdinal = f.Name, f.HasName, f.Ordinal, f.HasOrdinal
	if taxonomy == nil {
		return
	}
	if hasName && !hasOrdinal {
		if ord, ok := taxonomy.OrdinalForName(name); ok {
			ordinal, hasOrdinal = ord, true
		}
	}
	if hasName && hasOrdinal {
		if n, ok := taxonomy.NameForOrdinal(ordinal); ok && n == name {
			hasName = false
		}
	}
	return
}

func chooseVarSizeBytes(size int) int {
	switch {
	case size == 0:
		return 0
	case size <= 0xFF:
		return 1
	case size <= 0xFFFF:
		return 2
	default:
		return 4
	}
}

func writeVarSize(w *bytes.Buffer, n, size int) error {
	switch n {
	case 0:
		return nil
	case 1:
		return w.WriteByte(byte(size))
	case 2:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(size))
		_, err := w.Write(b[:])
		return err
	case 4:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(size))
		_, err := w.Write(b[:])
		return err
	}
	return ErrMalformedEnvelope{Reason: "illegal variable-size-width"}
}

// writeField writes a single field (prefix, type-id, optional ordinal,
// optional name, size, value) to w. Sub-messages are recursed into first so
// their encoded size is known before the variable-size bytes are emitted.
func writeField(w *bytes.Buffer, f *Field, taxonomy Taxonomy, dict *TypeDictionary) error {
	name, hasName, ordinal, hasOrdinal := reconcileWithTaxonomy(f, taxonomy)

	var valueBytes []byte
	if f.Type.TypeID == TypeMessage {
		sub := f.Message()
		buf := &bytes.Buffer{}
		if err := encodeMessage(buf, sub, taxonomy, dict); err != nil {
			return err
		}
		valueBytes = buf.Bytes()
	} else if !f.Type.Fixed {
		buf := &bytes.Buffer{}
		if err := f.Type.Write(buf, f.Value); err != nil {
			return err
		}
		valueBytes = buf.Bytes()
	}

	varSizeBytes := 0
	if !f.Type.Fixed {
		varSizeBytes = chooseVarSizeBytes(len(valueBytes))
	}

	prefix, err := EncodePrefix(f.Type.Fixed, varSizeBytes, hasOrdinal, hasName)
	if err != nil {
		return err
	}
	if err := w.WriteByte(byte(prefix)); err != nil {
		return err
	}
	if err := w.WriteByte(f.Type.TypeID); err != nil {
		return err
	}
	if hasOrdinal {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(ordinal))
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	if hasName {
		if err := WriteModifiedUTF8(w, name); err != nil {
			return err
		}
	}

	if f.Type.Fixed {
		return f.Type.Write(w, f.Value)
	}
	if err := writeVarSize(w, varSizeBytes, len(valueBytes)); err != nil {
		return err
	}
	_, err = w.Write(valueBytes)
	return err
}
