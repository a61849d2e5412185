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

package graph

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/fudge-go/fudge/framework/binary"
)

// DeserializationContext reconstructs the object graph an envelope
// encodes. It maintains a vector of reconstructed objects keyed by the
// same message-index the encoder assigned them, growing it lazily as
// surrogates ask to resolve object-valued fields — in wire order this
// exactly mirrors the encoder's own counter, including the forward
// references WriteObject's Enqueue produces.
type DeserializationContext struct {
	ctx *Context

	// siblings are the envelope's top-level TypeMessage fields in wire
	// order: element 0 is the root, the rest are queue-drained objects in
	// the FIFO order they were enqueued.
	siblings []*binary.Message
	// nextSibling is the index of the first not-yet-started sibling.
	nextSibling int
	// nextIndex is the next message-index to assign to any newly
	// encountered sub-message, embedded or top-level.
	nextIndex int

	objects      map[int]interface{}
	types        map[int]reflect.Type
	inProgress   map[int]bool
	placeholders map[int]interface{}
}

func newDeserializationContext(c *Context, env *binary.Envelope) *DeserializationContext {
	n := env.Message.Len()
	siblings := make([]*binary.Message, n)
	for i := 0; i < n; i++ {
		siblings[i] = env.Message.At(i).Message()
	}
	return &DeserializationContext{
		ctx:          c,
		siblings:     siblings,
		objects:      make(map[int]interface{}),
		types:        make(map[int]reflect.Type),
		inProgress:   make(map[int]bool),
		placeholders: make(map[int]interface{}),
	}
}

// DeserializeGraph decodes the root object (message-index 0) and then
// drains any remaining top-level siblings that the root's own decode did
// not already reach via a forward reference, mirroring SerializeGraph's
// own queue-drain. It returns the root object.
func (d *DeserializationContext) DeserializeGraph() (interface{}, error) {
	if len(d.siblings) == 0 {
		return nil, binary.ErrMalformedEnvelope{Reason: "envelope carries no top-level object"}
	}
	root, err := d.decodeNextSibling()
	if err != nil {
		return nil, err
	}
	for d.nextSibling < len(d.siblings) {
		if _, err := d.decodeNextSibling(); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Object returns the already-decoded object at message-index i, if any.
// Chiefly useful after DeserializeGraph to inspect queue-drained siblings
// by position. Index 0 is always the root; every other decoded object,
// embedded or top-level, also takes an index, so index i is the (i-1)th
// enqueued object only when nothing else was emitted.
func (d *DeserializationContext) Object(i int) (interface{}, bool) {
	obj, ok := d.objects[i]
	return obj, ok
}

func (d *DeserializationContext) decodeNextSibling() (interface{}, error) {
	msg := d.siblings[d.nextSibling]
	d.nextSibling++
	return d.decodeMessageAt(msg)
}

// decodeMessageAt assigns the next message-index to msg, resolves its
// runtime type, and invokes its surrogate's Decode.
func (d *DeserializationContext) decodeMessageAt(msg *binary.Message) (interface{}, error) {
	index := d.nextIndex
	d.nextIndex++
	d.inProgress[index] = true

	t, err := d.resolveType(msg, index)
	if err != nil {
		return nil, err
	}
	factory, ok := d.ctx.Types.GetSurrogateFactory(t)
	if !ok {
		return nil, binary.ErrUnregisteredObjectType{Type: reflect.Zero(t).Interface()}
	}
	sur := factory()

	var placeholder interface{}
	if ph, ok := sur.(PlaceholderSurrogate); ok {
		placeholder = ph.NewPlaceholder()
	} else if t.Kind() == reflect.Ptr {
		// No explicit placeholder: a pointer-to-struct type can still be
		// referenced by a still-decoding descendant, so fabricate one by
		// reflection and fill it in place once Decode returns. This is what
		// lets a cycle built entirely out of reference-eligible fields
		// decode even when its surrogate never opted into PlaceholderSurrogate.
		placeholder = reflect.New(t.Elem()).Interface()
	}
	if placeholder != nil {
		d.placeholders[index] = placeholder
	}

	dec := &Decoder{d: d, index: index}
	obj, err := sur.Decode(msg, dec)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding object of type %s at message %d", t, index)
	}

	if placeholder != nil {
		pv, ov := reflect.ValueOf(placeholder), reflect.ValueOf(obj)
		if pv.Kind() != reflect.Ptr || ov.Kind() != reflect.Ptr || pv.Type() != ov.Type() {
			return nil, binary.ErrMalformedEnvelope{Reason: fmt.Sprintf("placeholder for message %d does not match decoded type", index)}
		}
		pv.Elem().Set(ov.Elem())
		obj = placeholder
	}

	d.objects[index] = obj
	delete(d.inProgress, index)
	delete(d.placeholders, index)
	return obj, nil
}

// resolve returns the object at message-index target, decoding ahead
// through not-yet-started top-level siblings as needed. A target that
// resolves to an index still being decoded (an ancestor referencing
// itself through reference-eligible fields) returns that ancestor's
// placeholder; decodeMessageAt fabricates one automatically for any
// pointer-typed object, so this only falls through to binary.ErrInlineCycle
// for a non-pointer type that cannot be stood in for ahead of time.
func (d *DeserializationContext) resolve(target int) (interface{}, error) {
	for {
		if obj, ok := d.objects[target]; ok {
			return obj, nil
		}
		if d.inProgress[target] {
			if ph, ok := d.placeholders[target]; ok {
				return ph, nil
			}
			return nil, binary.ErrInlineCycle{Type: fmt.Sprintf("message %d", target)}
		}
		if d.nextSibling >= len(d.siblings) {
			return nil, binary.ErrMalformedEnvelope{Reason: fmt.Sprintf("reference to message %d never materializes", target)}
		}
		if _, err := d.decodeNextSibling(); err != nil {
			return nil, err
		}
	}
}

// resolveType reads the TypeIDField and reverses the encoder's type-info
// compression: an integer is a non-positive delta to an already-resolved
// type; string values are tried in wire order via the strategy, and the
// first whose type has a registered surrogate is used.
func (d *DeserializationContext) resolveType(msg *binary.Message, index int) (reflect.Type, error) {
	f, ok := msg.ByOrdinal(TypeIDField)
	if !ok {
		return nil, binary.ErrMalformedEnvelope{Reason: fmt.Sprintf("message %d carries no type information", index)}
	}
	switch v := f.Value.(type) {
	case int32:
		target := index + int(v)
		t, ok := d.types[target]
		if !ok {
			return nil, binary.ErrMalformedEnvelope{Reason: fmt.Sprintf("type delta for message %d points at unresolved message %d", index, target)}
		}
		d.types[index] = t
		return t, nil
	case string:
		for _, sf := range msg.AllByOrdinal(TypeIDField) {
			name, ok := sf.Value.(string)
			if !ok {
				continue
			}
			t, ok := d.ctx.Strategy.GetType(name)
			if !ok {
				continue
			}
			if _, ok := d.ctx.Types.GetSurrogateFactory(t); ok {
				d.types[index] = t
				return t, nil
			}
		}
		return nil, binary.ErrUnregisteredObjectType{Type: v}
	default:
		return nil, binary.ErrMalformedEnvelope{Reason: fmt.Sprintf("message %d has a malformed type field", index)}
	}
}

// Decoder is the per-call view a Surrogate's Decode uses to resolve
// object-valued fields of the message it was handed. It is bound to that
// message's own message-index, which relative references are computed
// against.
type Decoder struct {
	d     *DeserializationContext
	index int
}

// Resolve returns the object f refers to: an embedded sub-message is
// decoded immediately, in place; an int32 value is a relative reference
// (back- or forward-pointing) resolved against this Decoder's own index.
func (v *Decoder) Resolve(f *binary.Field) (interface{}, error) {
	switch val := f.Value.(type) {
	case *binary.Message:
		return v.d.decodeMessageAt(val)
	case int32:
		return v.d.resolve(v.index + int(val))
	default:
		return nil, binary.ErrMalformedEnvelope{Reason: "field does not reference an object"}
	}
}
