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
	"fmt"
	"reflect"
	"unsafe"
)

// Field describes a struct field evaluated by a FieldSelector.
type Field struct {
	reflect.StructField

	// Settable is true for exported fields.
	Settable bool

	// Applicable is true when the field passed every selector predicate.
	Applicable bool
}

// fieldPredicate reports whether the field is selected.
// The value is invalid when no instance is supplied.
type fieldPredicate[T any] func(field reflect.StructField, value reflect.Value, instance *T) bool

// FieldSelector selects struct fields of T which receive resolved values.
//
// Only fields of reference kinds are eligible: pointers, interfaces, maps,
// slices, channels and functions. Unexported fields are eligible only after
// WithUnexported. Refinements are combined with a logical AND, a selector
// without refinements selects every eligible field.
//
// Example:
//
//	selector := automock.Fields[Handler]().
//	    WithTag("inject").
//	    WithValue(nil)
type FieldSelector[T any] struct {
	predicates    []fieldPredicate[T]
	names         map[string]bool
	needsInstance bool
	unexported    bool
	err           error
}

// Fields returns a field selector over the struct type T.
func Fields[T any]() *FieldSelector[T] {
	return &FieldSelector[T]{}
}

// WithTag selects fields carrying the struct tag key.
func (s *FieldSelector[T]) WithTag(key string) *FieldSelector[T] {
	return s.with(func(field reflect.StructField, _ reflect.Value, _ *T) bool {
		_, ok := field.Tag.Lookup(key)
		return ok
	})
}

// WithTagValue selects fields carrying the struct tag key with the value.
func (s *FieldSelector[T]) WithTagValue(key, value string) *FieldSelector[T] {
	return s.with(func(field reflect.StructField, _ reflect.Value, _ *T) bool {
		tagValue, ok := field.Tag.Lookup(key)
		return ok && tagValue == value
	})
}

// WithSetters selects exported fields.
func (s *FieldSelector[T]) WithSetters() *FieldSelector[T] {
	return s.with(func(field reflect.StructField, _ reflect.Value, _ *T) bool {
		return field.IsExported()
	})
}

// WithValue selects fields whose current value equals the expected one.
// A nil expectation selects unset fields. Evaluation requires an instance.
func (s *FieldSelector[T]) WithValue(expected any) *FieldSelector[T] {
	s.needsInstance = true
	return s.with(func(_ reflect.StructField, value reflect.Value, _ *T) bool {
		return value.IsValid() && valueEquals(value, expected)
	})
}

// WithNames selects fields by name.
// Names accumulate with the ones of WithField.
func (s *FieldSelector[T]) WithNames(names ...string) *FieldSelector[T] {
	if s.names == nil {
		s.names = map[string]bool{}
	}
	for _, name := range names {
		s.names[name] = true
	}
	return s
}

// WithField selects the field referenced by the function, e.g.
// `func(h *Handler) any { return &h.Store }`.
// Names accumulate with the ones of WithNames.
func (s *FieldSelector[T]) WithField(ref func(*T) any) *FieldSelector[T] {
	name, err := fieldName(ref)
	if err != nil {
		if s.err == nil {
			s.err = err
		}
		return s
	}
	return s.WithNames(name)
}

// WithCustom selects fields accepted by the predicate.
// The instance is nil when the selector is evaluated without one.
func (s *FieldSelector[T]) WithCustom(predicate func(field reflect.StructField, instance *T) bool) *FieldSelector[T] {
	return s.with(func(field reflect.StructField, _ reflect.Value, instance *T) bool {
		return predicate(field, instance)
	})
}

// WithUnexported makes unexported fields eligible.
func (s *FieldSelector[T]) WithUnexported() *FieldSelector[T] {
	s.unexported = true
	return s
}

// Describe evaluates every field of T.
// The instance may be nil unless WithValue is used.
func (s *FieldSelector[T]) Describe(instance *T) ([]Field, error) {
	return s.describe(instance, s.unexported)
}

// Select returns applicable fields of T.
func (s *FieldSelector[T]) Select(instance *T) ([]reflect.StructField, error) {
	return s.selectFields(instance, s.unexported)
}

// IsApplicable evaluates a single field of T.
func (s *FieldSelector[T]) IsApplicable(field reflect.StructField, instance *T) (bool, error) {
	if err := s.validate(instance); err != nil {
		return false, err
	}
	return s.applicable(field, s.fieldValue(instance, field), instance, s.unexported), nil
}

// with appends a predicate.
func (s *FieldSelector[T]) with(predicate fieldPredicate[T]) *FieldSelector[T] {
	s.predicates = append(s.predicates, predicate)
	return s
}

// validate checks the selector configuration before evaluation.
func (s *FieldSelector[T]) validate(instance *T) error {
	if s.err != nil {
		return s.err
	}
	if typ := reflect.TypeOf((*T)(nil)).Elem(); typ.Kind() != reflect.Struct {
		return fmt.Errorf("%w: '%s' is not a struct", ErrTypeMismatch, typ)
	}
	if s.needsInstance && instance == nil {
		return ErrInstanceRequired
	}
	return nil
}

// describe evaluates every field of T.
func (s *FieldSelector[T]) describe(instance *T, unexported bool) ([]Field, error) {
	if err := s.validate(instance); err != nil {
		return nil, err
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	result := make([]Field, 0, typ.NumField())
	for index := 0; index < typ.NumField(); index++ {
		field := typ.Field(index)
		result = append(result, Field{
			StructField: field,
			Settable:    field.IsExported(),
			Applicable:  s.applicable(field, s.fieldValue(instance, field), instance, unexported),
		})
	}

	return result, nil
}

// selectFields returns applicable fields of T.
func (s *FieldSelector[T]) selectFields(instance *T, unexported bool) ([]reflect.StructField, error) {
	fields, err := s.describe(instance, unexported)
	if err != nil {
		return nil, err
	}

	result := make([]reflect.StructField, 0, len(fields))
	for _, field := range fields {
		if field.Applicable {
			result = append(result, field.StructField)
		}
	}

	return result, nil
}

// applicable evaluates the base filter and every predicate.
func (s *FieldSelector[T]) applicable(field reflect.StructField, value reflect.Value, instance *T, unexported bool) bool {
	// Only reference kinds are eligible.
	if !isReferenceType(field.Type) {
		return false
	}

	// Skip unexported fields unless allowed.
	if !field.IsExported() && !unexported {
		return false
	}

	// Check the names allow-list.
	if s.names != nil && !s.names[field.Name] {
		return false
	}

	for _, predicate := range s.predicates {
		if !predicate(field, value, instance) {
			return false
		}
	}

	return true
}

// fieldValue returns the current value of the instance field.
func (s *FieldSelector[T]) fieldValue(instance *T, field reflect.StructField) reflect.Value {
	if instance == nil {
		return reflect.Value{}
	}
	return structField(reflect.ValueOf(instance).Elem(), field.Index[0])
}

// fieldName returns the name of the field referenced by the function.
func fieldName[T any](ref func(*T) any) (string, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if ref == nil || typ.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w of '%s'", ErrNotFieldReference, typ)
	}

	// Evaluate the reference against a probe instance.
	probe := new(T)
	pointer := reflect.ValueOf(ref(probe))
	if pointer.Kind() != reflect.Ptr || pointer.IsNil() {
		return "", fmt.Errorf("%w of '%s': expected a field address, got '%v'", ErrNotFieldReference, typ, pointer)
	}

	// Match the address offset against the struct fields.
	base := uintptr(unsafe.Pointer(probe))
	address := pointer.Pointer()
	if address < base || address >= base+typ.Size() {
		return "", fmt.Errorf("%w of '%s': address is outside of the struct", ErrNotFieldReference, typ)
	}
	for index := 0; index < typ.NumField(); index++ {
		field := typ.Field(index)
		if field.Offset == address-base && field.Type == pointer.Type().Elem() {
			return field.Name, nil
		}
	}

	return "", fmt.Errorf("%w of '%s': no field matches '%s'", ErrNotFieldReference, typ, pointer.Type())
}

// structField returns a settable field of an addressable struct value.
// Unexported fields are accessed through their address.
func structField(structValue reflect.Value, index int) reflect.Value {
	field := structValue.Field(index)
	if field.CanSet() {
		return field
	}
	pointer := unsafe.Pointer(field.UnsafeAddr())
	return reflect.NewAt(field.Type(), pointer).Elem()
}

// valueEquals compares a field value with the expected one.
func valueEquals(value reflect.Value, expected any) bool {
	if expected == nil {
		return value.IsZero()
	}

	actual := value.Interface()
	actualType, expectedType := reflect.TypeOf(actual), reflect.TypeOf(expected)
	if actualType != nil && actualType == expectedType && actualType.Comparable() {
		return actual == expected
	}

	return reflect.DeepEqual(actual, expected)
}
