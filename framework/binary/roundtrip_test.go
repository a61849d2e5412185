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

package binary_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fudge-go/fudge/framework/binary"
	"github.com/fudge-go/fudge/framework/binary/taxonomy"
)

func stringField(name string) *binary.Field {
	ft, _ := binary.DefaultTypeDictionary.GetByTypeID(binary.TypeString)
	return binary.NewField(ft, "v"+name).WithName(name)
}

// Fields carrying only names, with no taxonomy in play, round-trip unchanged.
func TestRoundTripNamesOnlyNoTaxonomy(t *testing.T) {
	msg := binary.NewMessage()
	for _, name := range []string{"Kirk", "Wylie", "Jim", "Moores"} {
		msg.Add(stringField(name))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(msg, 0, 1, nil, nil, buf))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), nil, nil)
	require.NoError(t, err)

	for _, name := range []string{"Kirk", "Wylie", "Jim", "Moores"} {
		f, ok := env.Message.ByName(name)
		require.True(t, ok)
		require.Equal(t, "v"+name, f.Value)
		require.False(t, f.HasOrdinal)
	}
}

func tax45() *taxonomy.Map {
	return taxonomy.New(
		[]string{"Kirk", "Wylie", "Jim", "Moores"},
		[]int16{5, 14, 928, 74},
	)
}

// Fields carrying names, resolved against taxonomy 45, decode with both name
// and ordinal populated.
func TestRoundTripNamesWithTaxonomy(t *testing.T) {
	resolver := taxonomy.NewMapResolver()
	resolver.Add(45, tax45())

	msg := binary.NewMessage()
	for _, name := range []string{"Kirk", "Wylie", "Jim", "Moores"} {
		msg.Add(stringField(name))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(msg, 45, 1, resolver, nil, buf))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), resolver, nil)
	require.NoError(t, err)

	expected := map[string]int16{"Kirk": 5, "Wylie": 14, "Jim": 928, "Moores": 74}
	for name, ord := range expected {
		f, ok := env.Message.ByName(name)
		require.True(t, ok)
		require.True(t, f.HasOrdinal)
		require.Equal(t, ord, f.Ordinal)

		byOrd, ok := env.Message.ByOrdinal(ord)
		require.True(t, ok)
		require.True(t, byOrd.HasName)
		require.Equal(t, name, byOrd.Name)
	}
}

// Fields carrying ordinals, resolved against taxonomy 45, fill in names
// symmetrically to the name-first case above.
func TestRoundTripOrdinalsWithTaxonomy(t *testing.T) {
	resolver := taxonomy.NewMapResolver()
	resolver.Add(45, tax45())

	msg := binary.NewMessage()
	ft, _ := binary.DefaultTypeDictionary.GetByTypeID(binary.TypeString)
	for name, ord := range map[string]int16{"Kirk": 5, "Wylie": 14, "Jim": 928, "Moores": 74} {
		msg.Add(binary.NewField(ft, "v"+name).WithOrdinal(ord))
	}

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(msg, 45, 1, resolver, nil, buf))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), resolver, nil)
	require.NoError(t, err)

	for name, ord := range map[string]int16{"Kirk": 5, "Wylie": 14, "Jim": 928, "Moores": 74} {
		f, ok := env.Message.ByOrdinal(ord)
		require.True(t, ok)
		require.True(t, f.HasName)
		require.Equal(t, name, f.Name)
	}
}

// Size exactness: the decoder's own accounting must match the header.
func TestSizeExactness(t *testing.T) {
	msg := binary.NewMessage()
	msg.Add(stringField("Kirk"))

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(msg, 0, 1, nil, nil, buf))

	// Truncate by one byte: decode must fail rather than silently succeed.
	truncated := buf.Bytes()[:buf.Len()-1]
	_, err := binary.ReadEnvelope(bytes.NewReader(truncated), nil, nil)
	require.Error(t, err)
}

// Nested sub-messages round-trip, including size placement for recursion.
func TestRoundTripSubMessage(t *testing.T) {
	child := binary.NewMessage().Add(stringField("leaf"))
	msgFt, _ := binary.DefaultTypeDictionary.GetByTypeID(binary.TypeMessage)

	root := binary.NewMessage().Add(binary.NewField(msgFt, child).WithName("child"))

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(root, 0, 1, nil, nil, buf))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), nil, nil)
	require.NoError(t, err)

	f, ok := env.Message.ByName("child")
	require.True(t, ok)
	sub := f.Message()
	require.NotNil(t, sub)
	leaf, ok := sub.ByName("leaf")
	require.True(t, ok)
	require.Equal(t, "vleaf", leaf.Value)
}

// An unknown variable-width type-id round-trips its raw bytes unchanged.
func TestUnknownVariableWidthTypeRoundTrips(t *testing.T) {
	dict := binary.NewTypeDictionary()
	// Deliberately bare: only register what's needed to exercise the
	// string name/ordinal machinery, leaving type-id 200 unregistered.
	strFt, _ := binary.DefaultTypeDictionary.GetByTypeID(binary.TypeString)
	dict.Register(strFt)

	unknownFt := dict.GetUnknownType(200)
	msg := binary.NewMessage().Add(binary.NewField(unknownFt, []byte("opaque-payload")).WithName("blob"))

	buf := &bytes.Buffer{}
	require.NoError(t, binary.WriteEnvelope(msg, 0, 1, nil, dict, buf))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), nil, dict)
	require.NoError(t, err)

	f, ok := env.Message.ByName("blob")
	require.True(t, ok)
	require.Equal(t, []byte("opaque-payload"), f.Value)
}

// An unknown FIXED-width type-id is a hard decode error.
func TestUnknownFixedWidthTypeIsError(t *testing.T) {
	dict := binary.NewTypeDictionary()

	// Hand-craft bytes for a fixed-width field with an id the decode-side
	// dictionary doesn't know: prefix (fixed, no ordinal, no name), type-id
	// 201, then 4 junk bytes.
	body := []byte{0x80, 201, 0, 0, 0, 0}
	var header [8]byte
	header[1] = 1
	header[4], header[5], header[6], header[7] = 0, 0, 0, byte(8+len(body))

	buf := &bytes.Buffer{}
	buf.Write(header[:])
	buf.Write(body)

	_, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), nil, dict)
	require.Error(t, err)
	var unk binary.ErrUnknownType
	require.ErrorAs(t, err, &unk)
	require.EqualValues(t, 201, unk.TypeID)
}
