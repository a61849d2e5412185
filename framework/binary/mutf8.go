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
	"unicode/utf16"

	"github.com/pkg/errors"
)

// encodeModifiedUTF8 renders s using the Java-compatible modified UTF-8
// encoding: the null code point is encoded as the two-byte sequence 0xC0
// 0x80 rather than a single zero byte, and code points outside the Basic
// Multilingual Plane are split into a UTF-16 surrogate pair, each half of
// which is then encoded with the ordinary three-byte form.
func encodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r <= 0x7F:
			out = append(out, byte(r))
		case r <= 0x7FF:
			out = append(out,
				byte(0xC0|(r>>6)),
				byte(0x80|(r&0x3F)),
			)
		case r <= 0xFFFF:
			out = append(out, encodeThreeByte(uint16(r))...)
		default:
			r1, r2 := utf16.EncodeRune(r)
			out = append(out, encodeThreeByte(uint16(r1))...)
			out = append(out, encodeThreeByte(uint16(r2))...)
		}
	}
	return out
}

func encodeThreeByte(c uint16) []byte {
	return []byte{
		byte(0xE0 | (c >> 12)),
		byte(0x80 | ((c >> 6) & 0x3F)),
		byte(0x80 | (c & 0x3F)),
	}
}

// decodeModifiedUTF8 reverses encodeModifiedUTF8.
func decodeModifiedUTF8(b []byte) string {
	var units []uint16
	i := 0
	for i < len(b) {
		c0 := b[i]
		switch {
		case c0&0x80 == 0:
			units = append(units, uint16(c0))
			i++
		case c0&0xE0 == 0xC0 && i+1 < len(b):
			c1 := b[i+1]
			units = append(units, uint16(c0&0x1F)<<6|uint16(c1&0x3F))
			i += 2
		case c0&0xF0 == 0xE0 && i+2 < len(b):
			c1, c2 := b[i+1], b[i+2]
			units = append(units, uint16(c0&0x0F)<<12|uint16(c1&0x3F)<<6|uint16(c2&0x3F))
			i += 3
		default:
			// Malformed trailing byte: consume it verbatim so decoding
			// terminates rather than looping.
			units = append(units, uint16(c0))
			i++
		}
	}
	return string(utf16.Decode(units))
}

// WriteModifiedUTF8 writes a one-byte unsigned length followed by the
// modified-UTF-8 encoding of s. It returns ErrNameTooLong if the encoded
// form exceeds 255 bytes.
func WriteModifiedUTF8(w io.Writer, s string) error {
	enc := encodeModifiedUTF8(s)
	if len(enc) > 255 {
		return ErrNameTooLong{Name: s, Size: len(enc)}
	}
	if _, err := w.Write([]byte{byte(len(enc))}); err != nil {
		return err
	}
	_, err := w.Write(enc)
	return err
}

// ReadModifiedUTF8 reads a one-byte unsigned length and that many modified
// UTF-8 bytes, returning the decoded string.
func ReadModifiedUTF8(r io.Reader) (string, error) {
	var lb [1]byte
	if _, err := io.ReadFull(r, lb[:]); err != nil {
		return "", errors.Wrap(err, "binary: reading name length")
	}
	buf := make([]byte, lb[0])
	if len(buf) > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			if cause := errors.Cause(err); cause == io.EOF || cause == io.ErrUnexpectedEOF {
				return "", ErrTruncatedInput{Expected: len(buf), Got: 0}
			}
			return "", errors.Wrap(err, "binary: reading name bytes")
		}
	}
	return decodeModifiedUTF8(buf), nil
}
