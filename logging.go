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
	"log/slog"
	"reflect"
)

// subscribeLogger registers event handlers writing to the logger.
func subscribeLogger(events Events, logger *slog.Logger) {
	loggerWithTag := logger.With("component", "automock")

	// Register mock created event handler.
	events.Subscribe(MockCreated, func(typ reflect.Type, mock *Mock) {
		loggerWithTag.Debug("Mock created",
			slog.String("type", typ.String()),
			slog.String("behavior", mock.Behavior().String()))
	})

	// Register instance registered event handler.
	events.Subscribe(InstanceRegistered, func(typ reflect.Type, kind string) {
		loggerWithTag.Debug("Instance registered",
			slog.String("type", typ.String()),
			slog.String("kind", kind))
	})

	// Register types combined event handler.
	events.Subscribe(TypesCombined, func(typ reflect.Type, forwardTo []reflect.Type) {
		loggerWithTag.Debug("Types combined",
			slog.String("type", typ.String()),
			slog.Any("forward", forwardTo))
	})

	// Register instance built event handler.
	events.Subscribe(InstanceBuilt, func(typ reflect.Type, constructor string) {
		loggerWithTag.Debug("Instance built",
			slog.String("type", typ.String()),
			slog.String("constructor", constructor))
	})

	// Register fields injected event handler.
	events.Subscribe(FieldsInjected, func(typ reflect.Type, fields []string) {
		loggerWithTag.Debug("Fields injected",
			slog.String("type", typ.String()),
			slog.Any("fields", fields))
	})

	// Register unhandled panic event handler.
	events.Subscribe(UnhandledPanic, func(recovered any, stack string) {
		loggerWithTag.Error("Constructor panicked",
			slog.Any("panic", recovered),
			slog.String("stack", stack))
	})
}
