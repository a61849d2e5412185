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
	"io"
	"reflect"

	"github.com/pkg/errors"

	"github.com/fudge-go/fudge/framework/binary"
)

type stackFrame struct {
	obj   interface{}
	index int
}

type queuedObject struct {
	obj interface{}
	id  int
}

// SerializationContext drives exactly one SerializeGraph call: the identity
// map, last-seen-type map, inline stack and encode queue described in the
// object-graph data model all live here, scoped to that single call and
// discarded once it returns.
type SerializationContext struct {
	ctx  *Context
	dict *binary.TypeDictionary
	sink io.Writer

	started   bool
	currentID int
	idMap     map[interface{}]int
	lastTypes map[reflect.Type]int
	stack     []stackFrame
	queue     []queuedObject

	// top is the envelope's top-level container: one TypeMessage field per
	// emitted top-level object, root first, then queue-drained siblings in
	// FIFO order.
	top *binary.Message
}

func newSerializationContext(c *Context, sink io.Writer) *SerializationContext {
	return &SerializationContext{
		ctx:       c,
		dict:      c.Dict,
		sink:      sink,
		idMap:     make(map[interface{}]int),
		lastTypes: make(map[reflect.Type]int),
		top:       binary.NewMessage(),
	}
}

// SerializeGraph registers root at message-index 0, invokes its surrogate,
// drains the encode queue as additional top-level sibling messages, and
// writes the resulting envelope to the context's sink. It may be called
// only once per SerializationContext.
func (c *SerializationContext) SerializeGraph(root interface{}) error {
	if c.started {
		return binary.ErrInvalidFacadeOperation{Op: "SerializeGraph called twice on the same context"}
	}
	c.started = true

	msg, err := c.emitNewMessage(root, false, nil)
	if err != nil {
		return err
	}
	c.top.Add(c.messageField(msg, "", nil))

	for len(c.queue) > 0 {
		q := c.queue[0]
		c.queue = c.queue[1:]
		id := q.id
		sub, err := c.emitNewMessage(q.obj, false, &id)
		if err != nil {
			return err
		}
		c.top.Add(c.messageField(sub, "", nil))
	}

	return binary.WriteEnvelope(c.top, c.ctx.TaxonomyID, c.ctx.Version, c.ctx.Resolver, c.dict, c.sink)
}

func (c *SerializationContext) nextID() int {
	id := c.currentID
	c.currentID++
	return id
}

// reserve grabs the next message-index for obj without starting its
// sub-message yet: used by Writer.Enqueue.
func (c *SerializationContext) reserve(obj interface{}) int {
	id := c.nextID()
	c.idMap[obj] = id
	return id
}

func (c *SerializationContext) messageField(sub *binary.Message, name string, ordinal *int16) *binary.Field {
	ft, _ := c.dict.GetByTypeID(binary.TypeMessage)
	f := binary.NewField(ft, sub)
	if name != "" {
		f = f.WithName(name)
	}
	if ordinal != nil {
		f = f.WithOrdinal(*ordinal)
	}
	return f
}

// emitNewMessage starts a new sub-message for obj: assigns (or consumes a
// pre-reserved) message-index, pushes the inline-stack frame used for both
// cycle detection and relative-reference math, writes type information,
// and invokes obj's surrogate against a fresh streaming facade.
//
// cycleCheck is true only for WriteInline: a reference-eligible object can
// never legitimately revisit its own open frame (it would already be in
// idMap and resolved as a back-reference instead), so only the inline path
// needs the scan.
func (c *SerializationContext) emitNewMessage(obj interface{}, cycleCheck bool, reserved *int) (*binary.Message, error) {
	if cycleCheck {
		for _, fr := range c.stack {
			if fr.obj == obj {
				return nil, binary.ErrInlineCycle{Type: obj}
			}
		}
	}

	var id int
	if reserved != nil {
		id = *reserved
	} else {
		id = c.nextID()
		c.idMap[obj] = id
	}

	c.stack = append(c.stack, stackFrame{obj: obj, index: id})
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	t := reflect.TypeOf(obj)
	factory, err := c.ctx.Types.require(t)
	if err != nil {
		return nil, err
	}

	msg := binary.NewMessage()
	c.writeTypeInfo(msg, id, t)

	w := &messageWriter{msg: msg, index: id, ctx: c}
	if err := factory().Encode(obj, w, c); err != nil {
		return nil, errors.Wrapf(err, "encoding object of type %s at message %d", t, id)
	}
	return msg, nil
}

// writeTypeInfo compresses an emitted object's type information: a single
// integer delta if an object of the exact same type was emitted before,
// otherwise a type-name string. Go has no multi-level class-inheritance
// chain to climb (structs don't inherit structs), so the type information
// collapses to the one concrete type name here.
func (c *SerializationContext) writeTypeInfo(msg *binary.Message, id int, t reflect.Type) {
	ordinal := TypeIDField
	if last, ok := c.lastTypes[t]; ok {
		intFt, _ := c.dict.GetByTypeID(binary.TypeInt32)
		msg.Add(binary.NewField(intFt, int32(last-id)).WithOrdinal(ordinal))
	} else {
		strFt, _ := c.dict.GetByTypeID(binary.TypeString)
		name := c.ctx.Strategy.GetName(t)
		msg.Add(binary.NewField(strFt, name).WithOrdinal(ordinal))
	}
	c.lastTypes[t] = id
}
