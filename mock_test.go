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
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestMockLoose tests loose mocks answer unexpected calls.
func TestMockLoose(t *testing.T) {
	double := &mockServiceA{}
	double.bind(t, Loose, methodSignature(reflect.TypeOf(double)))

	// Unexpected calls return zero values and are recorded.
	result, err := double.Do("unexpected")
	require.NoError(t, err)
	assert.Equal(t, "", result)
	double.AssertCalled(t, "Do", "unexpected")

	// Expected calls return configured values.
	double.On("Do", "key").Return("value", errors.New("failed")).Once()
	result, err = double.Do("key")
	assert.Equal(t, "value", result)
	assert.EqualError(t, err, "failed")

	// Used up expectations are not matched anymore.
	result, err = double.Do("key")
	require.NoError(t, err)
	assert.Equal(t, "", result)
	double.AssertNumberOfCalls(t, "Do", 3)
	assert.True(t, double.VerifyAll(t))
}

// TestMockStrict tests strict mocks fail unexpected calls.
func TestMockStrict(t *testing.T) {
	test := &fakeT{}
	double := &mockServiceA{}
	double.bind(test, Strict, methodSignature(reflect.TypeOf(double)))
	assert.Equal(t, Strict, double.Behavior())

	assert.PanicsWithValue(t, errFailNow, func() {
		_, _ = double.Do("unexpected")
	})
	require.Len(t, test.errors, 1)
	assert.Contains(t, test.errors[0], "unexpected")
}

// TestMockUnbound tests mocks created outside of a mocker.
func TestMockUnbound(t *testing.T) {
	double := &mockServiceA{}
	double.Test(&fakeT{})

	// Unbound mocks delegate every call to testify.
	assert.PanicsWithValue(t, errFailNow, func() {
		_, _ = double.Do("unexpected")
	})
}

// TestMockVerifiable tests verifiable expectations.
func TestMockVerifiable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(double *mockServiceA)
		calls []string
		want  bool
	}{{
		name:  "NoVerifiable",
		setup: func(double *mockServiceA) { double.On("Do", "key").Return("", nil) },
		want:  true,
	}, {
		name:  "NotCalled",
		setup: func(double *mockServiceA) { double.Verifiable("Do", "key").Return("", nil) },
		want:  false,
	}, {
		name:  "Called",
		setup: func(double *mockServiceA) { double.Verifiable("Do", "key").Return("", nil) },
		calls: []string{"key"},
		want:  true,
	}, {
		name:  "CalledWithOtherArgs",
		setup: func(double *mockServiceA) { double.Verifiable("Do", "key").Return("", nil) },
		calls: []string{"other"},
		want:  false,
	}, {
		name:  "AnyArgs",
		setup: func(double *mockServiceA) { double.Verifiable("Do", mock.Anything).Return("", nil) },
		calls: []string{"other"},
		want:  true,
	}, {
		name:  "RemainingRepeatability",
		setup: func(double *mockServiceA) { double.Verifiable("Do", "key").Return("", nil).Times(2) },
		calls: []string{"key"},
		want:  false,
	}, {
		name:  "UsedRepeatability",
		setup: func(double *mockServiceA) { double.Verifiable("Do", "key").Return("", nil).Once() },
		calls: []string{"key"},
		want:  true,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := &fakeT{}
			double := &mockServiceA{}
			double.bind(test, Loose, methodSignature(reflect.TypeOf(double)))
			tt.setup(double)
			for _, call := range tt.calls {
				_, _ = double.Do(call)
			}

			assert.Equal(t, tt.want, double.VerifyRecorded(test))
			assert.Equal(t, !tt.want, len(test.errors) > 0)
		})
	}
}

// TestMockFunc tests function mocks.
func TestMockFunc(t *testing.T) {
	funcType := reflect.TypeOf(func(string, ...int) (int, error) { return 0, nil })
	handle := &Mock{}
	handle.bind(t, Loose, funcSignature(FuncMethod, funcType))

	fn := newMockFunc(handle, funcType, FuncMethod, reflect.Value{}).Interface().(func(string, ...int) (int, error))
	handle.On(FuncMethod, "sum", []int{1, 2}).Return(3, nil)

	result, err := fn("sum", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, result)

	result, err = fn("other")
	require.NoError(t, err)
	assert.Equal(t, 0, result)

	// Results of a wrong type are reported.
	handle.On(FuncMethod, "wrong", mock.Anything).Return("three", nil)
	assert.PanicsWithValue(t, "automock: Call result 0: 'string' is not assignable to 'int'", func() {
		_, _ = fn("wrong")
	})
}

// TestMockFuncBase tests function mocks falling back to a base function.
func TestMockFuncBase(t *testing.T) {
	funcType := reflect.TypeOf(strings.ToUpper)
	handle := &Mock{}
	handle.bind(t, Strict, funcSignature("Upper", funcType))

	fn := newMockFunc(handle, funcType, "Upper", reflect.ValueOf(strings.ToUpper)).Interface().(func(string) string)
	assert.Equal(t, "KEY", fn("key"))

	handle.On("Upper", "key").Return("mocked").Once()
	assert.Equal(t, "mocked", fn("key"))
	assert.Equal(t, "KEY", fn("key"))
	handle.AssertNumberOfCalls(t, "Upper", 3)
}

// TestCallerMethodName tests method name extraction.
func TestCallerMethodName(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{arg: "github.com/acme/app.(*MockStore).Get", want: "Get"},
		{arg: "github.com/acme/app.MockStore.Get", want: "Get"},
		{arg: "github.com/acme/app.(*MockStore).Get-fm", want: "Get"},
		{arg: "main.(*MockStore).Get", want: "Get"},
		{arg: "Get", want: "Get"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, callerMethodName(tt.arg))
		})
	}
}

// TestBehaviorString tests behavior names.
func TestBehaviorString(t *testing.T) {
	assert.Equal(t, "Loose", Loose.String())
	assert.Equal(t, "Strict", Strict.String())
	assert.Equal(t, "Behavior(5)", Behavior(5).String())
	assert.Equal(t, Loose, DefaultBehavior)
}
