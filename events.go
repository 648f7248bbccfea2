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
	"sync"
)

// Mocker events, triggered synchronously by the mocker operations.
const (
	// MockCreated is triggered with (reflect.Type, *Mock) for every generated mock.
	MockCreated = "MockCreated"

	// InstanceRegistered is triggered with (reflect.Type, string) on every
	// explicit registration, the string holds the entry kind.
	InstanceRegistered = "InstanceRegistered"

	// TypesCombined is triggered with (reflect.Type, []reflect.Type) after Combine.
	TypesCombined = "TypesCombined"

	// InstanceBuilt is triggered with (reflect.Type, string) after a build,
	// the string holds the selected constructor name.
	InstanceBuilt = "InstanceBuilt"

	// FieldsInjected is triggered with (reflect.Type, []string) after field injection.
	FieldsInjected = "FieldsInjected"

	// UnhandledPanic is triggered with (any, string) when a constructor panics,
	// the string holds the stack trace.
	UnhandledPanic = "UnhandledPanic"
)

// Events declares event broker type.
type Events interface {
	// Subscribe registers event handler.
	Subscribe(name string, handlerFn any)

	// Trigger triggers specified event handlers.
	Trigger(event Event) error
}

// events implements Events interface.
type events struct {
	mutex  sync.RWMutex
	events map[string][]handler
}

// newEvents returns an empty events broker.
func newEvents() *events {
	return &events{events: map[string][]handler{}}
}

// Subscribe subscribes event handler to the event.
//
// The handler is either `func(...any) [error]` receiving raw event
// arguments, or a function with typed parameters matching the event
// arguments, e.g. `func(typ reflect.Type, mock *automock.Mock)`.
func (em *events) Subscribe(name string, handlerFn any) {
	em.mutex.Lock()
	defer em.mutex.Unlock()

	// Validate event handler type.
	handlerValue := reflect.ValueOf(handlerFn)
	if handlerValue.Kind() != reflect.Func {
		panic(fmt.Sprintf("unexpected event handler type: %T", handlerFn))
	}

	// Validate event handler output signature.
	handlerType := handlerValue.Type()
	switch {
	case handlerType.NumOut() == 0:
	case handlerType.NumOut() == 1 && handlerType.Out(0).Implements(errorType):
	default:
		panic(fmt.Sprintf("unexpected event handler signature: %T", handlerFn))
	}

	// Register event handler function.
	if handlerType.IsVariadic() && handlerType.NumIn() == 1 && handlerType.In(0) == anySliceType {
		em.events[name] = append(em.events[name], func(event Event) error {
			return em.callAnyVarHandler(handlerValue, event.Args())
		})
	} else {
		em.events[name] = append(em.events[name], func(event Event) error {
			return em.callTypedHandler(handlerValue, event.Args())
		})
	}
}

// Trigger triggers specified event handlers.
func (em *events) Trigger(event Event) error {
	em.mutex.RLock()
	handlers := em.events[event.Name()]
	em.mutex.RUnlock()

	// Handlers are called without the lock to allow nested subscriptions.
	errs := make([]error, 0, len(handlers))
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// callTypedHandler calls `func(TypeA, TypeB, TypeC) [error]` event handler.
func (em *events) callTypedHandler(handler reflect.Value, args []any) error {
	handlerType := handler.Type()
	handlerInArgs := make([]reflect.Value, 0, handlerType.NumIn())

	// Fill handler args with provided event args.
	maxArgsLen := min(len(args), handlerType.NumIn())
	for index := 0; index < maxArgsLen; index++ {
		eventArgValue := reflect.ValueOf(args[index])
		handlerArgType := handlerType.In(index)

		// Convert untyped nil values to typed nils.
		if !eventArgValue.IsValid() && isReferenceType(handlerArgType) {
			eventArgValue = reflect.Zero(handlerArgType)
		}

		// Allow to pass only values which are not untyped nils.
		if !eventArgValue.IsValid() {
			return fmt.Errorf("%w: argument '%s' could not receive type 'nil' (index %d)",
				ErrHandlerArgTypeMismatch, handlerArgType, index)
		}

		// Allow to pass only assignable to handler arg type values.
		if !eventArgValue.Type().AssignableTo(handlerArgType) {
			return fmt.Errorf("%w: argument '%s' could not receive type '%s' (index %d)",
				ErrHandlerArgTypeMismatch, handlerArgType, eventArgValue.Type(), index)
		}

		handlerInArgs = append(handlerInArgs, eventArgValue)
	}

	// Fill handler args with default type values.
	for index := len(handlerInArgs); index < handlerType.NumIn(); index++ {
		handlerInArgs = append(handlerInArgs, reflect.Zero(handlerType.In(index)))
	}

	// Invoke original event handler function.
	return getCallOutError(handler.Call(handlerInArgs))
}

// callAnyVarHandler calls `func(...any) [error]` event handler.
func (em *events) callAnyVarHandler(handler reflect.Value, args []any) error {
	handlerInArgs := make([]reflect.Value, 0, len(args))
	for index := range args {
		// Untyped nils are passed as nil interfaces.
		argValue := reflect.ValueOf(&args[index]).Elem()
		handlerInArgs = append(handlerInArgs, argValue)
	}

	// Invoke original event handler function.
	return getCallOutError(handler.Call(handlerInArgs))
}

// getCallOutError returns the error result of a handler call, if any.
func getCallOutError(outArgs []reflect.Value) error {
	if len(outArgs) == 1 {
		// Ignore failed cast of nil error.
		err, _ := outArgs[0].Interface().(error)
		return err
	}

	return nil
}

// Event declares mocker events.
type Event interface {
	// Name returns event name.
	Name() string

	// Args returns event arguments.
	Args() []any
}

// NewEvent returns new event instance.
func NewEvent(name string, args ...any) Event {
	return &event{name: name, args: args}
}

// handler declares event handler function.
type handler func(event Event) error

// event wraps string event.
type event struct {
	name string
	args []any
}

// Name implements Event interface.
func (e *event) Name() string { return e.name }

// Args implements Event interface.
func (e *event) Args() []any { return e.args }

// anySliceType contains reflection type for any slice variable.
var anySliceType = reflect.TypeOf((*[]any)(nil)).Elem()
