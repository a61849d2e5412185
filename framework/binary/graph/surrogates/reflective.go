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

// Package surrogates provides a reflection-based graph.Surrogate for
// ordinary Go structs, so a new object type usually never needs a
// hand-written Encode/Decode pair: register a pointer to the struct once
// via RegisterReflective and the graph engine drives it through the Tag
// struct tag (falling back to the Go field name).
package surrogates

import (
	"reflect"

	"github.com/fudge-go/fudge/framework/binary"
	"github.com/fudge-go/fudge/framework/binary/graph"
)

// Tag is the struct tag key a reflective surrogate consults for a field's
// wire name. A tag value of "-" skips the field entirely.
const Tag = "fudge"

// RegisterReflective registers a generic struct surrogate for the type of
// sample, which must be a non-nil pointer to a struct. It registers the
// type with both types and strategy so it participates in surrogate
// dispatch and in type-name (de)compression.
func RegisterReflective(types *graph.TypeMap, strategy graph.MappingStrategy, sample interface{}) {
	pt := reflect.TypeOf(sample)
	if pt == nil || pt.Kind() != reflect.Ptr || pt.Elem().Kind() != reflect.Struct {
		panic("surrogates: RegisterReflective needs a non-nil pointer-to-struct sample")
	}
	strategy.GetName(pt) // learn the name before any decode needs GetType to reverse it
	st := pt.Elem()
	types.RegisterType(pt, func() graph.Surrogate { return &reflective{t: st} })
}

// reflective is a graph.Surrogate for a single struct type t (never a
// pointer type itself; reflective always works with *t at the object-graph
// layer, since identity requires a reference type).
type reflective struct {
	t reflect.Type
}

func fieldName(f reflect.StructField) (string, bool) {
	if tag, ok := f.Tag.Lookup(Tag); ok {
		if tag == "-" {
			return "", false
		}
		return tag, true
	}
	if f.PkgPath != "" { // unexported
		return "", false
	}
	return f.Name, true
}

func (r *reflective) Encode(obj interface{}, w graph.Writer, ctx *graph.SerializationContext) error {
	v := reflect.ValueOf(obj).Elem()
	for i := 0; i < r.t.NumField(); i++ {
		sf := r.t.Field(i)
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		fv := v.Field(i)
		switch fv.Kind() {
		case reflect.Bool:
			w.AddBool(name, nil, fv.Bool())
		case reflect.Int8:
			w.AddInt8(name, nil, int8(fv.Int()))
		case reflect.Int16:
			w.AddInt16(name, nil, int16(fv.Int()))
		case reflect.Int32, reflect.Int:
			w.AddInt32(name, nil, int32(fv.Int()))
		case reflect.Int64:
			w.AddInt64(name, nil, fv.Int())
		case reflect.Float32:
			w.AddFloat32(name, nil, float32(fv.Float()))
		case reflect.Float64:
			w.AddFloat64(name, nil, fv.Float())
		case reflect.String:
			w.AddString(name, nil, fv.String())
		case reflect.Ptr:
			if fv.IsNil() {
				continue
			}
			if err := w.WriteObject(name, nil, fv.Interface()); err != nil {
				return err
			}
		case reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				elem := fv.Index(j)
				if elem.Kind() != reflect.Ptr || elem.IsNil() {
					continue
				}
				if err := w.WriteObject(name, nil, elem.Interface()); err != nil {
					return err
				}
			}
		default:
			return binary.ErrUnregisteredObjectType{Type: fv.Interface()}
		}
	}
	return nil
}

func (r *reflective) Decode(m *binary.Message, dec *graph.Decoder) (interface{}, error) {
	v := reflect.New(r.t)
	elem := v.Elem()
	for i := 0; i < r.t.NumField(); i++ {
		sf := r.t.Field(i)
		name, ok := fieldName(sf)
		if !ok {
			continue
		}
		fv := elem.Field(i)
		switch fv.Kind() {
		case reflect.Bool:
			if f, ok := m.ByName(name); ok {
				fv.SetBool(f.Value.(bool))
			}
		case reflect.Int8:
			if f, ok := m.ByName(name); ok {
				fv.SetInt(int64(f.Value.(int8)))
			}
		case reflect.Int16:
			if f, ok := m.ByName(name); ok {
				fv.SetInt(int64(f.Value.(int16)))
			}
		case reflect.Int32, reflect.Int:
			if f, ok := m.ByName(name); ok {
				fv.SetInt(int64(f.Value.(int32)))
			}
		case reflect.Int64:
			if f, ok := m.ByName(name); ok {
				fv.SetInt(f.Value.(int64))
			}
		case reflect.Float32:
			if f, ok := m.ByName(name); ok {
				fv.SetFloat(float64(f.Value.(float32)))
			}
		case reflect.Float64:
			if f, ok := m.ByName(name); ok {
				fv.SetFloat(f.Value.(float64))
			}
		case reflect.String:
			if f, ok := m.ByName(name); ok {
				fv.SetString(f.Value.(string))
			}
		case reflect.Ptr:
			if f, ok := m.ByName(name); ok {
				obj, err := dec.Resolve(f)
				if err != nil {
					return nil, err
				}
				fv.Set(reflect.ValueOf(obj))
			}
		case reflect.Slice:
			fs := m.AllByName(name)
			if len(fs) == 0 {
				continue
			}
			sl := reflect.MakeSlice(fv.Type(), 0, len(fs))
			for _, f := range fs {
				obj, err := dec.Resolve(f)
				if err != nil {
					return nil, err
				}
				sl = reflect.Append(sl, reflect.ValueOf(obj))
			}
			fv.Set(sl)
		}
	}
	return v.Interface(), nil
}
