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
)

// TypeOf returns the reflection type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Use registers the value for T.
func Use[T any](m *Mocker, value T) error {
	return m.Register(TypeOf[T](), value)
}

// UseMock registers the caller built mock for T.
func UseMock[T any](m *Mocker, double Double) error {
	return m.RegisterMock(TypeOf[T](), double)
}

// UseWith registers a new mock for T configured by the setup function.
//
// Example:
//
//	automock.UseWith[Store](mocker, func(mk *automock.Mock) {
//	    mk.On("Get", "key").Return("value", nil)
//	})
func UseWith[T any](m *Mocker, setup func(mock *Mock)) error {
	return m.RegisterWith(TypeOf[T](), setup)
}

// Get returns the value registered for T, creating a missing one.
func Get[T any](m *Mocker) (T, error) {
	value, err := m.Resolve(TypeOf[T]())
	if err != nil {
		var zero T
		return zero, err
	}
	return valueOf[T](value), nil
}

// MustGet returns the value registered for T, panics on errors.
func MustGet[T any](m *Mocker) T {
	result, err := Get[T](m)
	if err != nil {
		panic(fmt.Sprintf("automock: %s", err))
	}
	return result
}

// GetMock returns the mock registered for T, creating a missing one.
func GetMock[T any](m *Mocker) (*Mock, error) {
	return m.ResolveMock(TypeOf[T]())
}

// Setup returns the mock of T, replacing a registered real value.
func Setup[T any](m *Mocker) (*Mock, error) {
	return m.Setup(TypeOf[T]())
}

// Combine2 registers one mock for T1 and T2.
func Combine2[T1, T2 any](m *Mocker) error {
	return m.Combine(TypeOf[T1](), TypeOf[T2]())
}

// Combine3 registers one mock for T1, T2 and T3.
func Combine3[T1, T2, T3 any](m *Mocker) error {
	return m.Combine(TypeOf[T1](), TypeOf[T2](), TypeOf[T3]())
}

// Combine4 registers one mock for four types.
func Combine4[T1, T2, T3, T4 any](m *Mocker) error {
	return m.Combine(TypeOf[T1](), TypeOf[T2](), TypeOf[T3](), TypeOf[T4]())
}

// Build builds a new instance of T.
func Build[T any](m *Mocker, opts ...BuildOpt) (T, error) {
	value, err := m.BuildInstance(TypeOf[T](), opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return valueOf[T](value), nil
}

// BuildSelf builds a new instance of the pointer to struct type T with
// func fields intercepted by the returned mock.
func BuildSelf[T any](m *Mocker, opts ...BuildOpt) (T, *Mock, error) {
	value, handle, err := m.BuildSelfMock(TypeOf[T](), opts...)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	return valueOf[T](value), handle, nil
}

// BuildWithFields builds a new *S and injects resolved values into the
// fields chosen by the selector. A nil selector picks unset exported fields.
func BuildWithFields[S any](m *Mocker, selector *FieldSelector[S], opts ...BuildOpt) (*S, error) {
	result, err := Build[*S](m, opts...)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: constructor of '%s' returned nil", ErrTypeMismatch, TypeOf[*S]())
	}
	if err := InjectFields(m, result, selector, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// InjectFields injects resolved values into the fields of the instance
// chosen by the selector. A nil selector picks unset exported fields.
func InjectFields[S any](m *Mocker, instance *S, selector *FieldSelector[S], opts ...BuildOpt) error {
	if instance == nil {
		return ErrInstanceRequired
	}
	if selector == nil {
		selector = Fields[S]().WithSetters().WithValue(nil)
	}

	// Select fields to inject.
	cfg := newBuildConfig(opts)
	fields, err := selector.selectFields(instance, selector.unexported || cfg.nonPublic)
	if err != nil {
		return fmt.Errorf("failed to select fields of '%s': %w", TypeOf[S](), err)
	}

	return m.injectFields(reflect.ValueOf(instance).Elem(), fields)
}

// AssertCalled asserts that the mock of T received the call.
func AssertCalled[T any](m *Mocker, methodName string, arguments ...any) bool {
	if h, ok := m.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	handle, err := GetMock[T](m)
	if err != nil {
		m.t.Errorf("automock: %s", err)
		return false
	}
	return handle.AssertCalled(m.t, methodName, arguments...)
}

// AssertNotCalled asserts that the mock of T did not receive the call.
func AssertNotCalled[T any](m *Mocker, methodName string, arguments ...any) bool {
	if h, ok := m.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	handle, err := GetMock[T](m)
	if err != nil {
		m.t.Errorf("automock: %s", err)
		return false
	}
	return handle.AssertNotCalled(m.t, methodName, arguments...)
}

// AssertNumberOfCalls asserts that the mock of T received the method
// calls the expected number of times.
func AssertNumberOfCalls[T any](m *Mocker, methodName string, expectedCalls int) bool {
	if h, ok := m.t.(interface{ Helper() }); ok {
		h.Helper()
	}
	handle, err := GetMock[T](m)
	if err != nil {
		m.t.Errorf("automock: %s", err)
		return false
	}
	return handle.AssertNumberOfCalls(m.t, methodName, expectedCalls)
}

// valueOf unboxes the reflection value to T.
func valueOf[T any](value reflect.Value) T {
	var result T
	if value.IsValid() {
		reflect.ValueOf(&result).Elem().Set(value)
	}
	return result
}
