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

import "github.com/fudge-go/fudge/framework/binary"

// Writer is the mutable-container contract a Surrogate populates while
// encoding. Every call appends directly to the sub-message currently being
// built; there is no way to read the container back. This is the streaming
// facade: surrogates never see or hold a *binary.Message of their own.
type Writer interface {
	AddBool(name string, ordinal *int16, v bool)
	AddInt8(name string, ordinal *int16, v int8)
	AddInt16(name string, ordinal *int16, v int16)
	AddInt32(name string, ordinal *int16, v int32)
	AddInt64(name string, ordinal *int16, v int64)
	AddFloat32(name string, ordinal *int16, v float32)
	AddFloat64(name string, ordinal *int16, v float64)
	AddString(name string, ordinal *int16, v string)

	// WriteInline always serializes obj as a nested sub-message here and
	// now, regardless of whether it has already been emitted elsewhere. An
	// obj that is already on the inline stack (a true cycle) fails with
	// binary.ErrInlineCycle.
	WriteInline(name string, ordinal *int16, obj interface{}) error

	// WriteObject serializes obj as a relative back-reference if it has
	// already been emitted, otherwise as a new nested sub-message (exactly
	// like WriteInline, but without the cycle check, since a reference-
	// eligible object can never recurse back into its own still-open
	// frame — it would already be in idMap by then).
	WriteObject(name string, ordinal *int16, obj interface{}) error

	// Enqueue reserves obj's message-index and writes a relative reference
	// to it immediately, deferring its actual content to a top-level
	// sibling message emitted once the current call to SerializeGraph
	// drains its encode queue.
	Enqueue(name string, ordinal *int16, obj interface{}) error
}

// messageWriter is the only implementation of Writer: it appends to msg,
// which occupies message-index index in ctx's object graph.
type messageWriter struct {
	msg   *binary.Message
	index int
	ctx   *SerializationContext
}

func (w *messageWriter) scalarField(id uint8, name string, ordinal *int16, value interface{}) *binary.Field {
	ft, _ := w.ctx.dict.GetByTypeID(id)
	f := binary.NewField(ft, value)
	if name != "" {
		f = f.WithName(name)
	}
	if ordinal != nil {
		f = f.WithOrdinal(*ordinal)
	}
	return f
}

func (w *messageWriter) AddBool(name string, ordinal *int16, v bool) {
	w.msg.Add(w.scalarField(binary.TypeBool, name, ordinal, v))
}

func (w *messageWriter) AddInt8(name string, ordinal *int16, v int8) {
	w.msg.Add(w.scalarField(binary.TypeInt8, name, ordinal, v))
}

func (w *messageWriter) AddInt16(name string, ordinal *int16, v int16) {
	w.msg.Add(w.scalarField(binary.TypeInt16, name, ordinal, v))
}

func (w *messageWriter) AddInt32(name string, ordinal *int16, v int32) {
	w.msg.Add(w.scalarField(binary.TypeInt32, name, ordinal, v))
}

func (w *messageWriter) AddInt64(name string, ordinal *int16, v int64) {
	w.msg.Add(w.scalarField(binary.TypeInt64, name, ordinal, v))
}

func (w *messageWriter) AddFloat32(name string, ordinal *int16, v float32) {
	w.msg.Add(w.scalarField(binary.TypeFloat32, name, ordinal, v))
}

func (w *messageWriter) AddFloat64(name string, ordinal *int16, v float64) {
	w.msg.Add(w.scalarField(binary.TypeFloat64, name, ordinal, v))
}

func (w *messageWriter) AddString(name string, ordinal *int16, v string) {
	w.msg.Add(w.scalarField(binary.TypeString, name, ordinal, v))
}

func (w *messageWriter) WriteInline(name string, ordinal *int16, obj interface{}) error {
	sub, err := w.ctx.emitNewMessage(obj, true, nil)
	if err != nil {
		return err
	}
	w.msg.Add(w.ctx.messageField(sub, name, ordinal))
	return nil
}

func (w *messageWriter) WriteObject(name string, ordinal *int16, obj interface{}) error {
	if prev, ok := w.ctx.idMap[obj]; ok {
		w.msg.Add(w.scalarField(binary.TypeInt32, name, ordinal, int32(prev-w.index)))
		return nil
	}
	sub, err := w.ctx.emitNewMessage(obj, false, nil)
	if err != nil {
		return err
	}
	w.msg.Add(w.ctx.messageField(sub, name, ordinal))
	return nil
}

func (w *messageWriter) Enqueue(name string, ordinal *int16, obj interface{}) error {
	id, ok := w.ctx.idMap[obj]
	if !ok {
		id = w.ctx.reserve(obj)
		w.ctx.queue = append(w.ctx.queue, queuedObject{obj: obj, id: id})
	}
	w.msg.Add(w.scalarField(binary.TypeInt32, name, ordinal, int32(id-w.index)))
	return nil
}
