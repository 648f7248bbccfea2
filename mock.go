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
	"runtime"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"
)

// TestingT is the test handle used to report verification failures.
// The *testing.T satisfies it.
type TestingT = mock.TestingT

// Behavior defines how a mock answers calls without a matching expectation.
type Behavior int

const (
	// Loose mocks answer unexpected calls with zero values and record them.
	Loose Behavior = iota

	// Strict mocks fail the test on unexpected calls.
	Strict
)

// DefaultBehavior is used when no behavior option is specified.
const DefaultBehavior = Loose

// String returns the behavior name.
func (b Behavior) String() string {
	switch b {
	case Loose:
		return "Loose"
	case Strict:
		return "Strict"
	default:
		return fmt.Sprintf("Behavior(%d)", int(b))
	}
}

// FuncMethod is the method name used by mocked function values.
//
// Example:
//
//	mk, _ := automock.GetMock[func(string) error](mocker)
//	mk.On(automock.FuncMethod, "key").Return(nil)
const FuncMethod = "Call"

// Double is implemented by every type embedding Mock.
//
// Mock prototypes passed to WithMocks and doubles passed to UseMock
// must satisfy it:
//
//	type MockStore struct {
//	    automock.Mock
//	}
//
//	func (m *MockStore) Get(key string) (string, error) {
//	    ret := m.Called(key)
//	    return ret.String(0), ret.Error(1)
//	}
type Double interface {
	double() *Mock
}

// Mock is the handle of a generated test double.
//
// It embeds the testify mock, so expectations are configured with On and
// checked with the Assert* methods. Calls are dispatched according to the
// mocker behavior: strict mocks delegate every call to testify, loose mocks
// answer calls without a matching expectation with zero values.
//
// Mock methods returning interfaces should read results with comma-ok type
// assertions, since loose mocks return nil for them.
type Mock struct {
	mock.Mock

	// Mock behavior.
	behavior Behavior

	// Method signature lookup, used to build zero results.
	signature func(method string) (reflect.Type, bool)

	// Expectations checked by VerifyRecorded.
	verifiable []*mock.Call

	// Guards loose call recording.
	mutex sync.Mutex
}

// double implements Double.
func (m *Mock) double() *Mock {
	return m
}

// Behavior returns the mock behavior.
func (m *Mock) Behavior() Behavior {
	return m.behavior
}

// Called tells the mock that a method has been called and returns the
// configured results. The method name is taken from the caller frame.
func (m *Mock) Called(arguments ...any) mock.Arguments {
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		panic("automock: could not get the caller information")
	}
	return m.MethodCalled(callerMethodName(runtime.FuncForPC(pc).Name()), arguments...)
}

// MethodCalled tells the mock that the given method has been called.
// Mocks not attached to a mocker always delegate to testify.
func (m *Mock) MethodCalled(methodName string, arguments ...any) mock.Arguments {
	if m.behavior == Loose && m.bound() && !m.expects(methodName, arguments) {
		return m.record(methodName, arguments)
	}
	return m.Mock.MethodCalled(methodName, arguments...)
}

// Verifiable configures an expectation checked by VerifyRecorded.
func (m *Mock) Verifiable(methodName string, arguments ...any) *mock.Call {
	call := m.On(methodName, arguments...)
	m.verifiable = append(m.verifiable, call)
	return call
}

// VerifyAll asserts that every configured expectation was met.
// Expectations marked with Maybe are skipped.
func (m *Mock) VerifyAll(t TestingT) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	return m.AssertExpectations(t)
}

// VerifyRecorded asserts that expectations configured with Verifiable were met.
func (m *Mock) VerifyRecorded(t TestingT) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	result := true
	for _, call := range m.verifiable {
		if !m.satisfied(call) {
			t.Errorf("FAIL:\t%s(%v)\n\t\tverifiable expectation was not met", call.Method, call.Arguments)
			result = false
		}
	}

	return result
}

// bound returns true when the mock was attached to a mocker.
func (m *Mock) bound() bool {
	return m.signature != nil
}

// bind attaches the mock to a test, a behavior and a signature lookup.
func (m *Mock) bind(t TestingT, behavior Behavior, signature func(string) (reflect.Type, bool)) {
	m.behavior = behavior
	m.signature = signature
	if t != nil {
		m.Test(t)
	}
}

// expects returns true when a pending expectation matches the call.
func (m *Mock) expects(methodName string, arguments []any) bool {
	for _, call := range m.ExpectedCalls {
		// Exhausted expectations are marked with a negative repeatability.
		if call.Method != methodName || call.Repeatability < 0 {
			continue
		}
		if _, differences := call.Arguments.Diff(arguments); differences == 0 {
			return true
		}
	}
	return false
}

// record stores an unexpected call and returns zero results.
func (m *Mock) record(methodName string, arguments []any) mock.Arguments {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Calls = append(m.Calls, mock.Call{
		Parent:    &m.Mock,
		Method:    methodName,
		Arguments: arguments,
	})

	return m.zeroResults(methodName)
}

// zeroResults returns zero values for every result of the method.
func (m *Mock) zeroResults(methodName string) mock.Arguments {
	if m.signature == nil {
		return nil
	}

	funcType, ok := m.signature(methodName)
	if !ok {
		return nil
	}

	results := make(mock.Arguments, 0, funcType.NumOut())
	for index := 0; index < funcType.NumOut(); index++ {
		results = append(results, reflect.Zero(funcType.Out(index)).Interface())
	}

	return results
}

// satisfied checks a single expectation against the recorded calls.
func (m *Mock) satisfied(call *mock.Call) bool {
	switch {
	case call.Repeatability < 0:
		// Limited expectation used up.
		return true
	case call.Repeatability > 0:
		// Limited expectation with remaining calls.
		return false
	}

	for _, recorded := range m.Calls {
		if recorded.Method != call.Method {
			continue
		}
		if _, differences := call.Arguments.Diff(recorded.Arguments); differences == 0 {
			return true
		}
	}

	return false
}

// methodSignature returns a signature lookup over methods of the type.
func methodSignature(typ reflect.Type) func(string) (reflect.Type, bool) {
	return func(name string) (reflect.Type, bool) {
		method, ok := typ.MethodByName(name)
		if !ok {
			return nil, false
		}
		return method.Type, true
	}
}

// funcSignature returns a signature lookup for a single function.
func funcSignature(name string, funcType reflect.Type) func(string) (reflect.Type, bool) {
	return func(method string) (reflect.Type, bool) {
		return funcType, method == name
	}
}

// newMockFunc returns a function value dispatching calls through the mock.
// A valid base function is called for calls without a matching expectation.
func newMockFunc(m *Mock, funcType reflect.Type, name string, base reflect.Value) reflect.Value {
	return reflect.MakeFunc(funcType, func(in []reflect.Value) []reflect.Value {
		// Unbox function arguments.
		arguments := make([]any, 0, len(in))
		for _, arg := range in {
			arguments = append(arguments, arg.Interface())
		}

		// Fall back to the base function.
		if base.IsValid() && !base.IsNil() && !m.expects(name, arguments) {
			m.record(name, arguments)
			if funcType.IsVariadic() {
				return base.CallSlice(in)
			}
			return base.Call(in)
		}

		// Box configured results, filling the missing ones with zero values.
		results := m.MethodCalled(name, arguments...)
		out := make([]reflect.Value, 0, funcType.NumOut())
		for index := 0; index < funcType.NumOut(); index++ {
			outValue := reflect.New(funcType.Out(index)).Elem()
			if index < len(results) && results[index] != nil {
				resultValue := reflect.ValueOf(results[index])
				if !resultValue.Type().AssignableTo(outValue.Type()) {
					panic(fmt.Sprintf("automock: %s result %d: '%s' is not assignable to '%s'",
						name, index, resultValue.Type(), outValue.Type()))
				}
				outValue.Set(resultValue)
			}
			out = append(out, outValue)
		}

		return out
	})
}

// callerMethodName extracts a method name from a runtime function name,
// e.g. `github.com/acme/app.(*MockStore).Get` -> `Get`.
func callerMethodName(funcFullName string) string {
	_, funcName := splitFuncName(funcFullName)
	funcName = strings.TrimSuffix(funcName, "-fm")
	if index := strings.LastIndex(funcName, "."); index >= 0 {
		funcName = funcName[index+1:]
	}
	return funcName
}
