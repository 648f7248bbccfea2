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
	"fmt"
	"reflect"
	"runtime/debug"
)

// New returns new mocker instance bound to the test.
//
// The test receives verification failures and, for strict mocks,
// unexpected call failures. A mocker is not safe for concurrent use,
// create one per test.
func New(t TestingT, opts ...Option) (*Mocker, error) {
	if t == nil {
		return nil, ErrNilTestingT
	}

	// Prepare mocker configuration.
	cfg := newConfig(opts)

	// Prepare mocker instance.
	mocker := &Mocker{
		t:            t,
		ctx:          cfg.ctx,
		behavior:     cfg.behavior,
		events:       newEvents(),
		registry:     newRegistry(),
		constructors: map[reflect.Type][]*Constructor{},
	}

	// Attach logger to mocker events.
	if cfg.logger != nil {
		subscribeLogger(mocker.events, cfg.logger)
	}

	// Register mock prototypes.
	for _, prototype := range cfg.prototypes {
		prototypeType := reflect.TypeOf(prototype)
		if prototypeType == nil || prototypeType.Kind() != reflect.Ptr || prototypeType.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: mock prototype '%v' must be a pointer to struct", ErrTypeMismatch, prototypeType)
		}
		mocker.prototypes = append(mocker.prototypes, prototypeType)
	}

	// Load and index provided constructors.
	for _, constructor := range cfg.constructors {
		if constructor == nil {
			return nil, fmt.Errorf("%w: nil constructor", ErrInvalidConstructor)
		}
		if err := constructor.load(); err != nil {
			return nil, fmt.Errorf("failed to load constructor '%s': %w", constructor.Name(), err)
		}
		mocker.constructors[constructor.outType] = append(mocker.constructors[constructor.outType], constructor)
	}

	return mocker, nil
}

// Mocker resolves dependencies of types under test with mocks.
//
// Every type is resolved to exactly one registry entry: a real value,
// a mock or a slice assembled from element entries. Entries are created
// on demand and reused, so the unit under test and the test code see
// the same mock.
type Mocker struct {
	t        TestingT
	ctx      context.Context
	behavior Behavior

	// Events broker.
	events *events

	// Type registry.
	registry *registry

	// Mock prototypes, in registration order.
	prototypes []reflect.Type

	// Constructors by constructed type, in registration order.
	constructors map[reflect.Type][]*Constructor
}

// Behavior returns the behavior of generated mocks.
func (m *Mocker) Behavior() Behavior {
	return m.behavior
}

// Context returns the context resolved for context.Context dependencies.
func (m *Mocker) Context() context.Context {
	return m.ctx
}

// Events returns events broker instance.
func (m *Mocker) Events() Events {
	return m.events
}

// Register stores the value for the type, replacing any previous entry.
// The value must be assignable to the type, nil is accepted for types
// which can hold it.
func (m *Mocker) Register(typ reflect.Type, value any) error {
	converted, err := convertValue(typ, reflect.ValueOf(value))
	if err != nil {
		return fmt.Errorf("failed to register '%v': %w", typ, err)
	}

	m.set(typ, newRealInstance(converted))
	return nil
}

// RegisterMock stores a caller built mock for the type, replacing any
// previous entry. A mock not yet attached to a mocker receives the
// mocker behavior.
func (m *Mocker) RegisterMock(typ reflect.Type, double Double) error {
	doubleValue := reflect.ValueOf(double)
	if !doubleValue.IsValid() || (doubleValue.Kind() == reflect.Ptr && doubleValue.IsNil()) {
		return fmt.Errorf("failed to register mock for '%v': %w: nil mock", typ, ErrTypeMismatch)
	}
	converted, err := convertValue(typ, doubleValue)
	if err != nil {
		return fmt.Errorf("failed to register mock for '%v': %w", typ, err)
	}

	// Attach the mock to the mocker.
	handle := double.double()
	if !handle.bound() {
		handle.bind(m.t, m.behavior, methodSignature(doubleValue.Type()))
	}

	m.set(typ, newMockInstance(converted, handle))
	return nil
}

// RegisterWith stores a new mock for the type configured by the setup
// function, replacing any previous entry.
func (m *Mocker) RegisterWith(typ reflect.Type, setup func(mock *Mock)) error {
	inst, err := m.createMock(typ)
	if err != nil {
		return fmt.Errorf("failed to register mock for '%v': %w", typ, err)
	}
	if setup != nil {
		setup(inst.mock)
	}

	m.set(typ, inst)
	return nil
}

// Resolve returns the value registered for the type.
// Missing entries are created and registered.
func (m *Mocker) Resolve(typ reflect.Type) (reflect.Value, error) {
	inst, err := m.resolve(typ)
	if err != nil {
		return reflect.Value{}, err
	}
	return inst.value(), nil
}

// ResolveMock returns the mock registered for the type.
// Missing entries are created and registered. It returns *NotMockError
// when the type is registered with a real value or a slice. Slices are
// never mock handles, even when their elements are mocks.
func (m *Mocker) ResolveMock(typ reflect.Type) (*Mock, error) {
	inst, err := m.resolve(typ)
	if err != nil {
		return nil, err
	}

	switch inst.kind {
	case mockInstance:
		return inst.mock, nil
	case arrayInstance:
		return nil, &NotMockError{Type: typ, Registered: inst.sliceType, Array: true}
	case realInstance:
		return nil, &NotMockError{Type: typ, Registered: dynamicType(inst.object)}
	default:
		panic(fmt.Sprintf("unexpected instance kind: %s", inst.kind))
	}
}

// Setup returns the mock registered for the type.
// A real value or a slice registered for the type is replaced by a new mock.
func (m *Mocker) Setup(typ reflect.Type) (*Mock, error) {
	if inst, ok := m.registry.get(typ); ok && inst.kind == mockInstance {
		return inst.mock, nil
	}

	inst, err := m.createMock(typ)
	if err != nil {
		return nil, fmt.Errorf("failed to set up mock for '%v': %w", typ, err)
	}

	m.set(typ, inst)
	return inst.mock, nil
}

// Combine registers one mock for the type and every forwarded type.
//
// The mock must implement all of them. Previous entries of the types are
// replaced, so types should be combined before they are resolved.
func (m *Mocker) Combine(typ reflect.Type, forwardTo ...reflect.Type) error {
	types := append([]reflect.Type{typ}, forwardTo...)
	for _, forwardType := range types {
		if forwardType == nil {
			return fmt.Errorf("failed to combine types: %w: nil type", ErrTypeMismatch)
		}
	}

	// Prepare a mock object implementing every type.
	object, handle, err := m.newCombinedMock(types)
	if err != nil {
		return fmt.Errorf("failed to combine '%s' with %v: %w", typ, forwardTo, err)
	}

	// Register the same object under every type.
	for _, forwardType := range types {
		converted, err := convertValue(forwardType, object)
		if err != nil {
			return fmt.Errorf("failed to combine '%s' with %v: %w", typ, forwardTo, err)
		}
		m.registry.set(forwardType, newMockInstance(converted, handle))
	}

	_ = m.events.Trigger(NewEvent(TypesCombined, typ, forwardTo))
	return nil
}

// VerifyAll asserts expectations of every registered mock.
// Mocks shared by combined types are verified once.
func (m *Mocker) VerifyAll() bool {
	result := true
	for _, handle := range m.registry.mocks() {
		if !handle.VerifyAll(m.t) {
			result = false
		}
	}
	return result
}

// VerifyRecorded asserts verifiable expectations of every registered mock.
func (m *Mocker) VerifyRecorded() bool {
	result := true
	for _, handle := range m.registry.mocks() {
		if !handle.VerifyRecorded(m.t) {
			result = false
		}
	}
	return result
}

// BuildInstance builds a new instance of the type with a constructor.
//
// Constructor parameters are resolved with Resolve. A constructor error
// is returned as is, a constructor panic is propagated after the
// UnhandledPanic event.
func (m *Mocker) BuildInstance(typ reflect.Type, opts ...BuildOpt) (reflect.Value, error) {
	value, _, err := m.build(typ, newBuildConfig(opts))
	return value, err
}

// BuildSelfMock builds a new instance of the pointer to struct type and
// intercepts its func fields with the returned mock.
//
// A func field set by the constructor is still called for calls without a
// matching expectation. If the struct embeds Mock, the embedded mock is used.
func (m *Mocker) BuildSelfMock(typ reflect.Type, opts ...BuildOpt) (reflect.Value, *Mock, error) {
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("%w: self mock type '%v' must be a pointer to struct", ErrTypeMismatch, typ)
	}

	cfg := newBuildConfig(opts)
	value, _, err := m.build(typ, cfg)
	if err != nil {
		return reflect.Value{}, nil, err
	}
	if value.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("%w: constructor of '%s' returned nil", ErrTypeMismatch, typ)
	}

	// Prepare the mock handle.
	handle := &Mock{}
	if double, ok := value.Interface().(Double); ok {
		handle = double.double()
	}
	handle.bind(m.t, m.behavior, selfSignature(typ))

	// Intercept func fields.
	structType := typ.Elem()
	for index := 0; index < structType.NumField(); index++ {
		field := structType.Field(index)
		if field.Type.Kind() != reflect.Func || field.Anonymous || (!field.IsExported() && !cfg.nonPublic) {
			continue
		}
		fieldValue := structField(value.Elem(), index)
		base := reflect.ValueOf(fieldValue.Interface())
		fieldValue.Set(newMockFunc(handle, field.Type, field.Name, base))
	}

	_ = m.events.Trigger(NewEvent(MockCreated, typ, handle))
	return value, handle, nil
}

// Types returns registered types in the registration order.
func (m *Mocker) Types() []reflect.Type {
	return m.registry.types()
}

// resolve returns the registry entry of the type, creating a missing one.
func (m *Mocker) resolve(typ reflect.Type) (*instance, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", ErrTypeMismatch)
	}
	if inst, ok := m.registry.get(typ); ok {
		return inst, nil
	}

	inst, err := m.create(typ)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve '%s': %w", typ, err)
	}

	m.registry.set(typ, inst)
	return inst, nil
}

// create returns a new default entry of the type.
func (m *Mocker) create(typ reflect.Type) (*instance, error) {
	switch {
	case typ.Kind() == reflect.Slice:
		// Seed the slice with the element entry.
		array := newArrayInstance(typ)
		if element, ok := m.registry.get(typ.Elem()); ok {
			array.add(element)
		}
		return array, nil
	case isContextInterface(typ) && reflect.TypeOf(m.ctx).Implements(typ):
		converted, err := convertValue(typ, reflect.ValueOf(m.ctx))
		if err != nil {
			return nil, err
		}
		return newRealInstance(converted), nil
	case isValueKind(typ):
		return newRealInstance(reflect.Zero(typ)), nil
	default:
		return m.createMock(typ)
	}
}

// createMock returns a new mock entry of the type.
func (m *Mocker) createMock(typ reflect.Type) (*instance, error) {
	if typ == nil {
		return nil, fmt.Errorf("%w: nil type", ErrTypeMismatch)
	}

	var inst *instance
	switch {
	case isEmptyInterface(typ):
		return nil, fmt.Errorf("%w: '%s' has no methods to mock", ErrNoMock, typ)
	case typ.Implements(doubleType) && typ.Kind() == reflect.Ptr && typ.Elem().Kind() == reflect.Struct:
		// The type is a mock itself.
		object, handle := m.newPrototypeMock(typ)
		inst = newMockInstance(object, handle)
	case typ.Kind() == reflect.Interface:
		prototype := m.prototypeFor(typ)
		if prototype == nil {
			return nil, fmt.Errorf("%w: no mock prototype implements '%s'", ErrNoMock, typ)
		}
		object, handle := m.newPrototypeMock(prototype)
		converted, err := convertValue(typ, object)
		if err != nil {
			return nil, err
		}
		inst = newMockInstance(converted, handle)
	case typ.Kind() == reflect.Func:
		handle := m.newHandle(funcSignature(FuncMethod, typ))
		inst = newMockInstance(newMockFunc(handle, typ, FuncMethod, reflect.Value{}), handle)
	case typ.Kind() == reflect.Ptr:
		handle := m.newHandle(methodSignature(typ))
		inst = newMockInstance(reflect.New(typ.Elem()), handle)
	case typ.Kind() == reflect.Map:
		handle := m.newHandle(methodSignature(typ))
		inst = newMockInstance(reflect.MakeMap(typ), handle)
	case typ.Kind() == reflect.Chan:
		handle := m.newHandle(methodSignature(typ))
		channel := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, typ.Elem()), 0)
		inst = newMockInstance(channel.Convert(typ), handle)
	default:
		return nil, fmt.Errorf("%w: unsupported kind '%s' of '%s'", ErrNoMock, typ.Kind(), typ)
	}

	_ = m.events.Trigger(NewEvent(MockCreated, typ, inst.mock))
	return inst, nil
}

// newCombinedMock returns a mock object implementing every type.
func (m *Mocker) newCombinedMock(types []reflect.Type) (reflect.Value, *Mock, error) {
	// The first type may be a mock itself.
	if first := types[0]; first.Kind() == reflect.Ptr && first.Implements(doubleType) && first.Elem().Kind() == reflect.Struct {
		for _, forwardType := range types[1:] {
			if !first.AssignableTo(forwardType) {
				return reflect.Value{}, nil, fmt.Errorf("%w: '%s' does not implement '%s'", ErrNotForwardable, first, forwardType)
			}
		}
		object, handle := m.newPrototypeMock(first)
		_ = m.events.Trigger(NewEvent(MockCreated, first, handle))
		return object, handle, nil
	}

	// Find a prototype implementing every type.
	if m.prototypeFor(types[0]) == nil {
		return reflect.Value{}, nil, fmt.Errorf("%w: no mock prototype implements '%s'", ErrNoMock, types[0])
	}
	prototype := m.prototypeFor(types...)
	if prototype == nil {
		return reflect.Value{}, nil, fmt.Errorf("%w: no mock prototype implements all of %v", ErrNotForwardable, types)
	}

	object, handle := m.newPrototypeMock(prototype)
	_ = m.events.Trigger(NewEvent(MockCreated, types[0], handle))
	return object, handle, nil
}

// newPrototypeMock allocates a mock of the prototype type.
func (m *Mocker) newPrototypeMock(prototype reflect.Type) (reflect.Value, *Mock) {
	object := reflect.New(prototype.Elem())
	handle := object.Interface().(Double).double()
	handle.bind(m.t, m.behavior, methodSignature(prototype))
	return object, handle
}

// newHandle returns a standalone mock handle.
func (m *Mocker) newHandle(signature func(string) (reflect.Type, bool)) *Mock {
	handle := &Mock{}
	handle.bind(m.t, m.behavior, signature)
	return handle
}

// prototypeFor returns the first prototype implementing every type.
func (m *Mocker) prototypeFor(types ...reflect.Type) reflect.Type {
	for _, prototype := range m.prototypes {
		matches := true
		for _, typ := range types {
			if prototype != typ && !(isNonEmptyInterface(typ) && prototype.Implements(typ)) {
				matches = false
				break
			}
		}
		if matches {
			return prototype
		}
	}
	return nil
}

// canResolve returns true when the type is registered or can be created.
func (m *Mocker) canResolve(typ reflect.Type) bool {
	if m.registry.has(typ) {
		return true
	}
	switch {
	case typ.Kind() == reflect.Slice:
		return true
	case isContextInterface(typ):
		return reflect.TypeOf(m.ctx).Implements(typ)
	case isEmptyInterface(typ), typ.Kind() == reflect.UnsafePointer:
		return false
	case typ.Kind() == reflect.Interface:
		return m.prototypeFor(typ) != nil
	default:
		return true
	}
}

// build selects a constructor and calls it with resolved arguments.
func (m *Mocker) build(typ reflect.Type, cfg buildConfig) (reflect.Value, *Constructor, error) {
	if typ == nil {
		return reflect.Value{}, nil, fmt.Errorf("%w: nil type", ErrTypeMismatch)
	}

	// Select the constructor.
	constructor, err := selectConstructor(constructorQuery{
		typ:            typ,
		registered:     m.registry.types(),
		satisfiable:    m.canResolve,
		allowNonPublic: cfg.nonPublic,
	}, m.constructors[typ])
	if err != nil {
		return reflect.Value{}, nil, fmt.Errorf("failed to build '%s': %w", typ, err)
	}

	// Resolve constructor arguments.
	args := make([]reflect.Value, 0, len(constructor.inTypes))
	for _, inType := range constructor.inTypes {
		arg, err := m.Resolve(inType)
		if err != nil {
			return reflect.Value{}, nil, fmt.Errorf("failed to build '%s' with '%s': %w", typ, constructor.Name(), err)
		}
		args = append(args, arg)
	}

	// Constructor errors are returned as is.
	value, err := m.call(constructor, args)
	if err != nil {
		return reflect.Value{}, nil, err
	}

	_ = m.events.Trigger(NewEvent(InstanceBuilt, typ, constructor.Name()))
	return value, constructor, nil
}

// call invokes the constructor, triggering panic events.
func (m *Mocker) call(constructor *Constructor, args []reflect.Value) (reflect.Value, error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			_ = m.events.Trigger(NewEvent(UnhandledPanic, recovered, string(debug.Stack())))
			panic(recovered)
		}
	}()

	return constructor.call(args)
}

// injectFields sets the struct fields to resolved values.
func (m *Mocker) injectFields(structValue reflect.Value, fields []reflect.StructField) error {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		value, err := m.Resolve(field.Type)
		if err != nil {
			return fmt.Errorf("failed to inject field '%s': %w", field.Name, err)
		}
		structField(structValue, field.Index[0]).Set(value)
		names = append(names, field.Name)
	}

	_ = m.events.Trigger(NewEvent(FieldsInjected, structValue.Type(), names))
	return nil
}

// set stores the explicitly registered entry.
func (m *Mocker) set(typ reflect.Type, inst *instance) {
	m.registry.set(typ, inst)
	_ = m.events.Trigger(NewEvent(InstanceRegistered, typ, inst.kind.String()))
}

// selfSignature returns a signature lookup over func fields and methods of the type.
func selfSignature(typ reflect.Type) func(string) (reflect.Type, bool) {
	methods := methodSignature(typ)
	return func(name string) (reflect.Type, bool) {
		if field, ok := typ.Elem().FieldByName(name); ok && field.Type.Kind() == reflect.Func {
			return field.Type, true
		}
		return methods(name)
	}
}

// convertValue returns the value as a value of the type.
func convertValue(typ reflect.Type, value reflect.Value) (reflect.Value, error) {
	if typ == nil {
		return reflect.Value{}, fmt.Errorf("%w: nil type", ErrTypeMismatch)
	}

	result := reflect.New(typ).Elem()
	switch {
	case !value.IsValid() && isReferenceType(typ):
		// Keep the nil value.
	case !value.IsValid():
		return reflect.Value{}, fmt.Errorf("%w: nil is not assignable to '%s'", ErrTypeMismatch, typ)
	case !value.Type().AssignableTo(typ):
		return reflect.Value{}, fmt.Errorf("%w: '%s' is not assignable to '%s'", ErrTypeMismatch, value.Type(), typ)
	default:
		result.Set(value)
	}

	return result, nil
}

// dynamicType returns the type of the value stored in an interface value.
func dynamicType(value reflect.Value) reflect.Type {
	if value.Kind() == reflect.Interface && !value.IsNil() {
		return value.Elem().Type()
	}
	return value.Type()
}

// isValueKind returns true for kinds which are not references.
func isValueKind(typ reflect.Type) bool {
	return !isReferenceType(typ) && typ.Kind() != reflect.UnsafePointer
}
