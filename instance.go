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

// instanceKind enumerates registry entry variants.
type instanceKind int

const (
	// Caller supplied value.
	realInstance instanceKind = iota

	// Generated or caller supplied mock.
	mockInstance

	// Slice assembled from element entries.
	arrayInstance
)

// String returns the variant name.
func (k instanceKind) String() string {
	switch k {
	case realInstance:
		return "Real"
	case mockInstance:
		return "Mock"
	case arrayInstance:
		return "Array"
	default:
		return fmt.Sprintf("instanceKind(%d)", int(k))
	}
}

// instance is a registry entry.
type instance struct {
	kind instanceKind

	// Real value or mock object.
	object reflect.Value

	// Mock handle.
	// Only for mock instances.
	mock *Mock

	// Slice type and its elements.
	// Only for array instances.
	sliceType reflect.Type
	elements  []*instance
}

// newRealInstance wraps a caller supplied value.
func newRealInstance(value reflect.Value) *instance {
	return &instance{kind: realInstance, object: value}
}

// newMockInstance wraps a mock object with its handle.
func newMockInstance(object reflect.Value, mock *Mock) *instance {
	return &instance{kind: mockInstance, object: object, mock: mock}
}

// newArrayInstance creates an empty array of the slice type.
func newArrayInstance(sliceType reflect.Type) *instance {
	return &instance{kind: arrayInstance, sliceType: sliceType}
}

// value materializes the instance.
// Arrays are assembled into a new slice on every call.
func (i *instance) value() reflect.Value {
	switch i.kind {
	case realInstance, mockInstance:
		return i.object
	case arrayInstance:
		slice := reflect.MakeSlice(i.sliceType, len(i.elements), len(i.elements))
		for index, element := range i.elements {
			if elementValue := element.value(); elementValue.IsValid() {
				slice.Index(index).Set(elementValue)
			}
		}
		return slice
	default:
		panic(fmt.Sprintf("unexpected instance kind: %s", i.kind))
	}
}

// isMock returns true for mocks and for arrays containing a mock.
func (i *instance) isMock() bool {
	switch i.kind {
	case realInstance:
		return false
	case mockInstance:
		return true
	case arrayInstance:
		for _, element := range i.elements {
			if element.isMock() {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("unexpected instance kind: %s", i.kind))
	}
}

// elemType returns the element type of array instances.
func (i *instance) elemType() reflect.Type {
	if i.kind != arrayInstance {
		return nil
	}
	return i.sliceType.Elem()
}

// add appends an element to the array instance.
func (i *instance) add(element *instance) {
	i.elements = append(i.elements, element)
}

// replace swaps the element of the array instance.
// It returns false when the array does not hold the element.
func (i *instance) replace(previous, element *instance) bool {
	replaced := false
	for index := range i.elements {
		if i.elements[index] == previous {
			i.elements[index] = element
			replaced = true
		}
	}
	return replaced
}

// mocks returns mock handles of the instance, including array elements.
func (i *instance) mocks() []*Mock {
	switch i.kind {
	case realInstance:
		return nil
	case mockInstance:
		return []*Mock{i.mock}
	case arrayInstance:
		var result []*Mock
		for _, element := range i.elements {
			result = append(result, element.mocks()...)
		}
		return result
	default:
		panic(fmt.Sprintf("unexpected instance kind: %s", i.kind))
	}
}
