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

// Prefix is the one-byte header that precedes every field's type-id.
//
//	bit 7:   fixed-width (1) vs variable-width (0)
//	bits 6-5: variable-size-width code: 0,1,2,3 -> 0,1,2,4 bytes
//	bit 4:   has-ordinal
//	bit 3:   has-name
//	bits 2-0: reserved, zero
type Prefix byte

// varSizeCodeToBytes and its inverse implement the mapping between the 2-bit
// code carried in the prefix and the number of size bytes it means.
var varSizeCodeToBytes = [4]int{0, 1, 2, 4}

func varSizeBytesToCode(n int) (byte, bool) {
	switch n {
	case 0:
		return 0, true
	case 1:
		return 1, true
	case 2:
		return 2, true
	case 4:
		return 3, true
	default:
		return 0, false
	}
}

// EncodePrefix packs the four prefix flags into a single byte. varSizeBytes
// is ignored (and encoded as 0) when fixed is true.
func EncodePrefix(fixed bool, varSizeBytes int, hasOrdinal, hasName bool) (Prefix, error) {
	var p byte
	if fixed {
		p |= 1 << 7
	} else {
		code, ok := varSizeBytesToCode(varSizeBytes)
		if !ok {
			return 0, ErrMalformedEnvelope{Reason: "illegal variable-size-width"}
		}
		p |= code << 5
	}
	if hasOrdinal {
		p |= 1 << 4
	}
	if hasName {
		p |= 1 << 3
	}
	return Prefix(p), nil
}

// DecodePrefix unpacks a prefix byte. For a fixed-width field varSizeBytes is
// always 0 (the bits are defined to be zero on the wire in that case).
func DecodePrefix(p Prefix) (fixed bool, varSizeBytes int, hasOrdinal, hasName bool, err error) {
	b := byte(p)
	fixed = b&(1<<7) != 0
	hasOrdinal = b&(1<<4) != 0
	hasName = b&(1<<3) != 0
	if fixed {
		return fixed, 0, hasOrdinal, hasName, nil
	}
	code := (b >> 5) & 0x3
	if int(code) >= len(varSizeCodeToBytes) {
		return false, 0, false, false, ErrMalformedEnvelope{Reason: "illegal variable-size-width code"}
	}
	varSizeBytes = varSizeCodeToBytes[code]
	return fixed, varSizeBytes, hasOrdinal, hasName, nil
}
