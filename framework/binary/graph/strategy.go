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

import "reflect"

// MappingStrategy converts between a runtime type and a stable wire
// type-name string, independent of whatever surrogate TypeMap has
// registered for the type.
type MappingStrategy interface {
	GetName(t reflect.Type) string
	GetType(name string) (reflect.Type, bool)
}

// DefaultStrategy names a type by its package path plus type name
// ("pkg/path.Name"). Go has no reflect.TypeByName, so unlike a host
// language with a live class registry, the reverse direction (name->type)
// needs an explicit table; DefaultStrategy builds it lazily the first time
// each type is named.
type DefaultStrategy struct {
	byName map[string]reflect.Type
}

// NewDefaultStrategy returns a strategy with no types learned yet.
func NewDefaultStrategy() *DefaultStrategy {
	return &DefaultStrategy{byName: make(map[string]reflect.Type)}
}

// canonicalName names a type by its full package path plus type name.
// Surrogates register pointer types (e.g. *mypkg.Foo), which have no
// PkgPath of their own, so the elem's is used; t.String() is kept as the
// fallback for anything else a caller hands in directly.
func canonicalName(t reflect.Type) string {
	target := t
	prefix := ""
	if t.Kind() == reflect.Ptr {
		target = t.Elem()
		prefix = "*"
	}
	if target.PkgPath() == "" {
		return prefix + target.String()
	}
	return prefix + target.PkgPath() + "." + target.Name()
}

// Learn records t under its canonical name and returns that name, so GetType
// succeeds for t before any encode has named it. Unlike GetName it
// overwrites an existing entry under that name. (surrogates.RegisterReflective
// takes a MappingStrategy and pre-registers through GetName instead.)
func (s *DefaultStrategy) Learn(t reflect.Type) string {
	name := canonicalName(t)
	s.byName[name] = t
	return name
}

// GetName implements MappingStrategy.
func (s *DefaultStrategy) GetName(t reflect.Type) string {
	name := canonicalName(t)
	if _, ok := s.byName[name]; !ok {
		s.byName[name] = t
	}
	return name
}

// GetType implements MappingStrategy.
func (s *DefaultStrategy) GetType(name string) (reflect.Type, bool) {
	t, ok := s.byName[name]
	return t, ok
}

// Alias registers oldName as an additional wire type-name for t, so a
// message produced before a Go type was renamed still decodes: GetType
// resolves oldName to whatever t is registered under today. Mirrors
// registry.Namespace.AddAlias's fallback-on-miss semantics, adapted to a
// direct name entry since Go's canonicalName is derived rather than
// assigned by the caller.
func (s *DefaultStrategy) Alias(oldName string, t reflect.Type) {
	s.byName[oldName] = t
}
