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
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotMock is returned when a mock handle is requested for a type
	// registered with a concrete value.
	ErrNotMock = errors.New("registered service is not a mock")

	// ErrNoMock is returned when no mock can be generated for a type,
	// e.g. an interface without a matching mock prototype.
	ErrNoMock = errors.New("no mock available for type")

	// ErrNoConstructor is returned when a type has no eligible constructor.
	ErrNoConstructor = errors.New("no eligible constructor")

	// ErrInvalidConstructor is returned for constructor functions with unsupported signatures.
	ErrInvalidConstructor = errors.New("invalid constructor func")

	// ErrInstanceRequired is returned when a field selector checks field
	// values but no instance was supplied.
	ErrInstanceRequired = errors.New("instance required to check field values")

	// ErrNotFieldReference is returned when a field reference does not point
	// to a field of the selected struct.
	ErrNotFieldReference = errors.New("expression is not a field reference")

	// ErrNotForwardable is returned when a combined mock cannot satisfy a forwarded type.
	ErrNotForwardable = errors.New("mock cannot be forwarded to type")

	// ErrTypeMismatch is returned when a value is not assignable to the declared type.
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrNilTestingT is returned when the mocker is created without a test.
	ErrNilTestingT = errors.New("testing instance is nil")

	// ErrHandlerArgTypeMismatch is returned when an event argument does not
	// fit the subscribed handler parameter.
	ErrHandlerArgTypeMismatch = errors.New("handler argument type mismatch")
)

// NotMockError describes a mock request for a type that was registered
// with something other than a mock.
type NotMockError struct {
	// Type is the requested type.
	Type reflect.Type

	// Registered is the type of the registered value, if any.
	Registered reflect.Type

	// Array is true when the registration is a mock array.
	Array bool
}

// Error implements the error interface.
func (e *NotMockError) Error() string {
	if e.Array {
		return fmt.Sprintf("registered service for '%s' is a mock array, not a mock", e.Type)
	}
	return fmt.Sprintf("registered service '%v' for '%s' was not a mock", e.Registered, e.Type)
}

// Unwrap allows errors.Is(err, ErrNotMock).
func (e *NotMockError) Unwrap() error {
	return ErrNotMock
}
