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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInvoker tests invoking functions with resolved arguments.
func TestInvoker(t *testing.T) {
	mocker := newTestMocker(t)
	store, err := GetMock[serviceA](mocker)
	require.NoError(t, err)
	store.On("Do", "key").Return("value", nil)

	invokeCalled := false
	result, err := mocker.Invoke(func(ctx context.Context, a serviceA, count int) string {
		invokeCalled = true
		assert.Equal(t, mocker.Context(), ctx)
		assert.Equal(t, 0, count)

		value, err := a.Do("key")
		require.NoError(t, err)
		return value
	})

	require.NoError(t, err)
	assert.True(t, invokeCalled)
	assert.Equal(t, []any{"value"}, result.Values())
	assert.NoError(t, result.Error())
	assert.True(t, mocker.VerifyAll())
}

// TestInvokerResultError tests the function error result.
func TestInvokerResultError(t *testing.T) {
	errInvoke := errors.New("invoke failed")
	mocker := newTestMocker(t)

	result, err := mocker.Invoke(func() (int, error) {
		return 1, errInvoke
	})
	require.NoError(t, err)
	assert.Same(t, errInvoke, result.Error())
	assert.Equal(t, []any{1, errInvoke}, result.Values())

	// Only the last result is the function error.
	result, err = mocker.Invoke(func() (error, int) {
		return errInvoke, 1
	})
	require.NoError(t, err)
	assert.NoError(t, result.Error())
}

// TestInvokerErrors tests invalid invocations.
func TestInvokerErrors(t *testing.T) {
	mocker := newTestMocker(t)

	_, err := mocker.Invoke("not a function")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = mocker.Invoke(func(args ...string) {})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = mocker.Invoke(func(value any) {})
	assert.ErrorIs(t, err, ErrNoMock)
}
