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

// Invoke calls the function with resolved arguments.
//
// Every parameter is resolved like a constructor parameter, so the
// function receives the same mocks the test configures.
//
// Example:
//
//	result, err := mocker.Invoke(func(store Store, clock func() time.Time) error {
//	    return NewReport(store, clock).Publish()
//	})
func (m *Mocker) Invoke(fn any) (InvokeResult, error) {
	// Get reflection of the fn.
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: fn must be a function, got '%T'", ErrTypeMismatch, fn)
	}

	// Resolve function arguments.
	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic fn '%s' is not supported", ErrTypeMismatch, fnType)
	}
	fnInArgs := make([]reflect.Value, 0, fnType.NumIn())
	for index := 0; index < fnType.NumIn(); index++ {
		fnArgValue, err := m.Resolve(fnType.In(index))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve argument %d: %w", index, err)
		}
		fnInArgs = append(fnInArgs, fnArgValue)
	}

	// Convert function results.
	fnOutArgs := fnValue.Call(fnInArgs)
	result := &invokeResult{
		values: make([]any, 0, len(fnOutArgs)),
	}
	for index, fnOut := range fnOutArgs {
		// The last result of the error type is the function error.
		if index == len(fnOutArgs)-1 && fnOut.Type() == errorType {
			// Ignore failed cast of nil error.
			result.err, _ = fnOut.Interface().(error)
		}

		result.values = append(result.values, fnOut.Interface())
	}

	return result, nil
}

// InvokeResult provides access to the invocation result.
type InvokeResult interface {
	// Values returns a slice of function result values.
	Values() []any

	// Error returns function result error, if any.
	Error() error
}

// invokeResult implements corresponding interface.
type invokeResult struct {
	values []any
	err    error
}

// Values implements corresponding interface method.
func (r *invokeResult) Values() []any {
	return r.values
}

// Error implements corresponding interface method.
func (r *invokeResult) Error() error {
	return r.err
}
