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

package graph_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fudge-go/fudge/framework/binary"
	"github.com/fudge-go/fudge/framework/binary/graph"
)

// leaf and node are hand-surrogated test fixtures: small enough to make the
// relative-reference and type-delta math in the assertions easy to follow
// by hand.
type leaf struct {
	Label string
}

type leafSurrogate struct{}

func (leafSurrogate) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	w.AddString("label", nil, obj.(*leaf).Label)
	return nil
}

func (leafSurrogate) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	l := &leaf{}
	if f, ok := m.ByName("label"); ok {
		l.Label = f.Value.(string)
	}
	return l, nil
}

type pair struct {
	Left, Right *leaf
}

type pairSurrogate struct{}

func (pairSurrogate) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	p := obj.(*pair)
	if err := w.WriteObject("left", nil, p.Left); err != nil {
		return err
	}
	return w.WriteObject("right", nil, p.Right)
}

func (pairSurrogate) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	p := &pair{}
	if f, ok := m.ByName("left"); ok {
		obj, err := dec.Resolve(f)
		if err != nil {
			return nil, err
		}
		p.Left = obj.(*leaf)
	}
	if f, ok := m.ByName("right"); ok {
		obj, err := dec.Resolve(f)
		if err != nil {
			return nil, err
		}
		p.Right = obj.(*leaf)
	}
	return p, nil
}

type node struct {
	Label string
	Next  *node
}

// nodeSurrogate always treats Next as reference-eligible.
type nodeSurrogate struct{}

func (nodeSurrogate) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	n := obj.(*node)
	w.AddString("label", nil, n.Label)
	if n.Next != nil {
		return w.WriteObject("next", nil, n.Next)
	}
	return nil
}

func (nodeSurrogate) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	n := &node{}
	if f, ok := m.ByName("label"); ok {
		n.Label = f.Value.(string)
	}
	if f, ok := m.ByName("next"); ok {
		obj, err := dec.Resolve(f)
		if err != nil {
			return nil, err
		}
		n.Next = obj.(*node)
	}
	return n, nil
}

// inlineNodeSurrogate always treats Next as forced-inline, so a
// self-reference is a true cycle rather than a resolvable back-reference.
type inlineNodeSurrogate struct{}

func (inlineNodeSurrogate) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	n := obj.(*node)
	w.AddString("label", nil, n.Label)
	if n.Next != nil {
		return w.WriteInline("next", nil, n.Next)
	}
	return nil
}

func (inlineNodeSurrogate) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	return &node{}, nil
}

// Shared-leaf graph: both pair fields point at the same *leaf. The second
// WriteObject call must resolve to a back-reference, so decode must
// reconstruct a single shared object, not two equal-but-distinct ones.
func TestSerializeGraphSharedReferenceBackRef(t *testing.T) {
	ctx := graph.NewContext()
	ctx.Types.Register((*leaf)(nil), func() graph.Surrogate { return leafSurrogate{} })
	ctx.Types.Register((*pair)(nil), func() graph.Surrogate { return pairSurrogate{} })

	shared := &leaf{Label: "shared"}
	root := &pair{Left: shared, Right: shared}

	buf := &bytes.Buffer{}
	require.NoError(t, ctx.NewSerializer(buf).SerializeGraph(root))

	dctx, err := ctx.NewDeserializer(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	obj, err := dctx.DeserializeGraph()
	require.NoError(t, err)

	got := obj.(*pair)
	require.Same(t, got.Left, got.Right)
	require.Equal(t, "shared", got.Left.Label)
}

// A cycle through WriteInline fails; the same cycle through WriteObject
// (reference-eligible) does not.
func TestWriteInlineCycleDetected(t *testing.T) {
	ctx := graph.NewContext()
	ctx.Types.Register((*node)(nil), func() graph.Surrogate { return inlineNodeSurrogate{} })

	n := &node{Label: "self"}
	n.Next = n

	buf := &bytes.Buffer{}
	err := ctx.NewSerializer(buf).SerializeGraph(n)
	require.Error(t, err)
	var cyc binary.ErrInlineCycle
	require.ErrorAs(t, err, &cyc)
}

// A cycle built entirely out of reference-eligible fields must round-trip:
// nodeSurrogate never implements PlaceholderSurrogate, so this also
// exercises the deserializer's own reflection-based placeholder fallback.
func TestWriteObjectCycleIsNotAnError(t *testing.T) {
	ctx := graph.NewContext()
	ctx.Types.Register((*node)(nil), func() graph.Surrogate { return nodeSurrogate{} })

	n1 := &node{Label: "n1"}
	n2 := &node{Label: "n2"}
	n1.Next = n2
	n2.Next = n1

	buf := &bytes.Buffer{}
	require.NoError(t, ctx.NewSerializer(buf).SerializeGraph(n1))

	dctx, err := ctx.NewDeserializer(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	obj, err := dctx.DeserializeGraph()
	require.NoError(t, err)

	got := obj.(*node)
	require.Equal(t, "n1", got.Label)
	require.NotNil(t, got.Next)
	require.Equal(t, "n2", got.Next.Label)
	require.Same(t, got, got.Next.Next)
}

type bag struct {
	Items []*leaf
}

// bagSurrogate defers every item to the encode queue, forcing each leaf to
// land as a top-level sibling message rather than nested inside bag's own.
type bagSurrogate struct{}

func (bagSurrogate) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	for _, it := range obj.(*bag).Items {
		if err := w.Enqueue("item", nil, it); err != nil {
			return err
		}
	}
	return nil
}

func (bagSurrogate) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	b := &bag{}
	for _, f := range m.AllByName("item") {
		obj, err := dec.Resolve(f)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, obj.(*leaf))
	}
	return b, nil
}

// After encoding three leaves of the same type, only the first carries the
// full type-name chain; the rest carry a single integer delta.
func TestTypeDeltaCompression(t *testing.T) {
	ctx := graph.NewContext()
	ctx.Types.Register((*leaf)(nil), func() graph.Surrogate { return leafSurrogate{} })
	ctx.Types.Register((*bag)(nil), func() graph.Surrogate { return bagSurrogate{} })

	root := &bag{Items: []*leaf{{Label: "a"}, {Label: "b"}, {Label: "c"}}}

	buf := &bytes.Buffer{}
	require.NoError(t, ctx.NewSerializer(buf).SerializeGraph(root))

	env, err := binary.ReadEnvelope(bytes.NewReader(buf.Bytes()), nil, ctx.Dict)
	require.NoError(t, err)
	require.Equal(t, 4, env.Message.Len()) // root bag + 3 enqueued leaves

	typeFieldAt := func(i int) *binary.Field {
		sub := env.Message.At(i).Message()
		f, ok := sub.ByOrdinal(graph.TypeIDField)
		require.True(t, ok)
		return f
	}

	_, ok := typeFieldAt(0).Value.(string)
	require.True(t, ok, "bag's type is first-seen")
	_, ok = typeFieldAt(1).Value.(string)
	require.True(t, ok, "first leaf's type is first-seen")

	d2, ok := typeFieldAt(2).Value.(int32)
	require.True(t, ok)
	require.EqualValues(t, -1, d2)

	d3, ok := typeFieldAt(3).Value.(int32)
	require.True(t, ok)
	require.EqualValues(t, -1, d3)

	dctx, err := ctx.NewDeserializer(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	obj, err := dctx.DeserializeGraph()
	require.NoError(t, err)
	got := obj.(*bag)
	require.Len(t, got.Items, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{got.Items[0].Label, got.Items[1].Label, got.Items[2].Label})
}
