/*
 * SPDX-FileCopyrightText: Copyright (c) 2003 NVIDIA CORPORATION & AFFILIATES. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package automock

import (
	"context"
	"reflect"
)

// registry maps declared types to instances.
// It keeps the insertion order to iterate entries deterministically.
type registry struct {
	entries map[reflect.Type]*instance
	order   []reflect.Type
}

// newRegistry returns an empty registry.
func newRegistry() *registry {
	return &registry{entries: map[reflect.Type]*instance{}}
}

// get returns the instance registered for the type.
func (r *registry) get(typ reflect.Type) (*instance, bool) {
	inst, ok := r.entries[typ]
	return inst, ok
}

// set registers the instance for the type, replacing any previous one.
// Arrays of the type swap the previous instance for the new one, or grow
// with it when the type had no entry.
func (r *registry) set(typ reflect.Type, inst *instance) {
	previous, ok := r.entries[typ]
	if ok && previous == inst {
		return
	}
	if !ok {
		r.order = append(r.order, typ)
	}
	r.entries[typ] = inst

	// Update registered arrays of the type.
	for _, entryType := range r.order {
		entry := r.entries[entryType]
		if entry == inst || entry.elemType() != typ {
			continue
		}
		if !ok || !entry.replace(previous, inst) {
			entry.add(inst)
		}
	}
}

// has returns true when the type is registered.
func (r *registry) has(typ reflect.Type) bool {
	_, ok := r.entries[typ]
	return ok
}

// types returns registered types in the registration order.
func (r *registry) types() []reflect.Type {
	result := make([]reflect.Type, len(r.order))
	copy(result, r.order)
	return result
}

// mocks returns distinct mock handles in the registration order.
// Combined types share a handle, it is returned once.
func (r *registry) mocks() []*Mock {
	seen := map[*Mock]bool{}
	result := make([]*Mock, 0, len(r.order))
	for _, typ := range r.order {
		for _, handle := range r.entries[typ].mocks() {
			if !seen[handle] {
				seen[handle] = true
				result = append(result, handle)
			}
		}
	}
	return result
}

// isNonEmptyInterface returns true when argument is an interface with methods.
func isNonEmptyInterface(typ reflect.Type) bool {
	return typ.Kind() == reflect.Interface && typ.NumMethod() > 0
}

// isEmptyInterface returns true when argument is an `any` interface.
func isEmptyInterface(typ reflect.Type) bool {
	return typ.Kind() == reflect.Interface && typ.NumMethod() == 0
}

// isContextInterface returns true when argument is a context interface.
func isContextInterface(typ reflect.Type) bool {
	var ctx context.Context
	var ctxType = reflect.TypeOf(&ctx).Elem()
	return typ.Kind() == reflect.Interface && typ.Implements(ctxType)
}

// isReferenceType returns true for kinds holding a reference, which can be nil.
func isReferenceType(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// isStructType returns true for structs and pointers to structs.
func isStructType(typ reflect.Type) bool {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ.Kind() == reflect.Struct
}

// doubleType contains reflection type for the Double interface.
var doubleType = reflect.TypeOf((*Double)(nil)).Elem()

// errorType contains reflection type for error variable.
var errorType = reflect.TypeOf((*error)(nil)).Elem()
