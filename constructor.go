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
	"go/token"
	"reflect"
	"runtime"
	"strings"
)

// ConstructorFunc declares the type for a constructor function.
// A constructor function may accept dependencies as input parameters and
// must return exactly one instance, optionally followed by an error.
// The mocker validates its signature at runtime using reflection.
//
// Valid example signatures:
//
//	// No dependencies.
//	func() *Service
//
//	// One dependency, an error.
//	func(db Database) (*Repo, error)
//
//	// Multiple dependencies, including a slice of services.
//	func(log Logger, handlers []Handler) *Router
type ConstructorFunc any

// constructorVisibility configures constructor eligibility.
type constructorVisibility int

const (
	visibilityAuto constructorVisibility = iota
	visibilityPublic
	visibilityNonPublic
)

// Constructor declares a constructor definition used by the mocker to build instances.
//
// It is created using NewConstructor and registered with WithConstructors
// or WithConstructor. Several constructors may produce the same type,
// the mocker selects one of them on every build.
type Constructor struct {
	// Constructor function.
	fn ConstructorFunc

	// Constructor function name.
	name string

	// Constructor function location.
	source string

	// Constructor visibility.
	visibility constructorVisibility

	// Constructor function type.
	funcType reflect.Type

	// Constructor function value.
	funcValue reflect.Value

	// Constructor input types.
	inTypes []reflect.Type

	// Constructor output type.
	outType reflect.Type

	// Constructor output error.
	outError bool

	// Implicit parameterless constructor.
	implicit bool

	// Constructor is loaded.
	loaded bool
}

// Name returns constructor function name.
func (c *Constructor) Name() string {
	return c.name
}

// Source returns constructor function source.
func (c *Constructor) Source() string {
	return c.source
}

// Type returns the constructed type.
// It returns nil before the constructor is loaded.
func (c *Constructor) Type() reflect.Type {
	return c.outType
}

// Params returns the constructor parameter types.
func (c *Constructor) Params() []reflect.Type {
	return c.inTypes
}

// Public returns true when the constructor is eligible without WithNonPublic.
func (c *Constructor) Public() bool {
	switch c.visibility {
	case visibilityPublic:
		return true
	case visibilityNonPublic:
		return false
	default:
		return isExportedFuncName(c.name)
	}
}

// load initializes constructor definition internal values.
func (c *Constructor) load() error {
	if c.loaded {
		return nil
	}

	// Check constructor configured.
	if c.fn == nil {
		return fmt.Errorf("%w: no func specified", ErrInvalidConstructor)
	}

	// Validate constructor type and signature.
	c.funcType = reflect.TypeOf(c.fn)
	c.funcValue = reflect.ValueOf(c.fn)
	if c.funcType.Kind() != reflect.Func {
		return fmt.Errorf("%w: not a function: %s", ErrInvalidConstructor, c.funcType)
	}

	// Index constructor input types from the function signature.
	c.inTypes = make([]reflect.Type, 0, c.funcType.NumIn())
	for index := 0; index < c.funcType.NumIn(); index++ {
		c.inTypes = append(c.inTypes, c.funcType.In(index))
	}

	// Index constructor output type from the function signature.
	switch {
	case c.funcType.NumOut() == 1 && c.funcType.Out(0) != errorType:
	case c.funcType.NumOut() == 2 && c.funcType.Out(1) == errorType:
		c.outError = true
	default:
		return fmt.Errorf("%w: unexpected signature: %s", ErrInvalidConstructor, c.funcType)
	}
	c.outType = c.funcType.Out(0)

	// Save the constructor load status.
	c.loaded = true
	return nil
}

// call invokes the constructor with resolved arguments.
// The constructor error is returned as is.
func (c *Constructor) call(args []reflect.Value) (reflect.Value, error) {
	if c.implicit {
		return newZeroInstance(c.outType), nil
	}

	results := c.funcValue.Call(args)
	if c.outError && !results[1].IsNil() {
		err, _ := results[1].Interface().(error)
		return reflect.Value{}, err
	}

	return results[0], nil
}

// ConstructorOpt defines a functional option for configuring a constructor.
type ConstructorOpt func(*Constructor)

// NewConstructor creates a new constructor definition using the provided function.
//
// The constructor is public (eligible by default) when its function is
// declared with an exported name. Closures take the visibility of the
// enclosing function. Use AsPublic or AsNonPublic to override it.
//
// Example:
//
//	automock.NewConstructor(newReportService, automock.AsPublic())
func NewConstructor(fn ConstructorFunc, opts ...ConstructorOpt) *Constructor {
	constructor := &Constructor{fn: fn}
	if fn != nil {
		funcValue := reflect.ValueOf(fn)
		constructor.name = fmt.Sprintf("Constructor[%s]", funcValue.Type())
		if funcValue.Kind() == reflect.Func {
			constructor.name = getFuncName(funcValue)
			constructor.source = getFuncSource(funcValue)
		}
	}
	for _, opt := range opts {
		opt(constructor)
	}
	return constructor
}

// AsPublic marks the constructor eligible for every build.
func AsPublic() ConstructorOpt {
	return func(constructor *Constructor) {
		constructor.visibility = visibilityPublic
	}
}

// AsNonPublic marks the constructor eligible only for builds with WithNonPublic.
func AsNonPublic() ConstructorOpt {
	return func(constructor *Constructor) {
		constructor.visibility = visibilityNonPublic
	}
}

// newImplicitConstructor returns a parameterless constructor of the struct type.
func newImplicitConstructor(typ reflect.Type) *Constructor {
	return &Constructor{
		name:       fmt.Sprintf("Implicit[%s]", typ),
		source:     typ.PkgPath(),
		visibility: visibilityPublic,
		outType:    typ,
		implicit:   true,
		loaded:     true,
	}
}

// newZeroInstance allocates a zero value of the type.
// Pointer types receive a pointer to a zero element.
func newZeroInstance(typ reflect.Type) reflect.Value {
	if typ.Kind() == reflect.Ptr {
		return reflect.New(typ.Elem())
	}
	return reflect.New(typ).Elem()
}

// getFuncName returns func full name.
func getFuncName(funcValue reflect.Value) string {
	return runtime.FuncForPC(funcValue.Pointer()).Name()
}

// getFuncSource returns func source path.
func getFuncSource(funcValue reflect.Value) string {
	funcPackage, _ := splitFuncName(getFuncName(funcValue))
	return funcPackage
}

// isExportedFuncName returns true when the top-level identifier of the
// function name is exported, e.g. `pkg.NewService.func1`.
// Pointer receiver methods use the method name, e.g. `pkg.(*Type).New-fm`.
func isExportedFuncName(funcFullName string) bool {
	_, funcName := splitFuncName(funcFullName)
	chunks := strings.Split(funcName, ".")
	identifier := chunks[0]
	if strings.HasPrefix(identifier, "(") && len(chunks) > 1 {
		identifier = chunks[1]
	}
	identifier = strings.TrimSuffix(identifier, "-fm")
	if index := strings.IndexByte(identifier, '['); index >= 0 {
		identifier = identifier[:index]
	}
	return token.IsExported(identifier)
}

// splitFuncName splits specified func name to package and a name.
func splitFuncName(funcFullName string) (string, string) {
	// Split the full function name with package by dots.
	fullNameChunks := strings.Split(funcFullName, ".")
	if len(fullNameChunks) < 2 {
		return "", funcFullName
	}

	// Find the index of the last element containing "/".
	lastPackageChunkIndex := len(fullNameChunks) - 1
	for ; lastPackageChunkIndex >= 0; lastPackageChunkIndex-- {
		// Is this chunk the rightest part of a package name with dots?
		if strings.Contains(fullNameChunks[lastPackageChunkIndex], "/") {
			break
		}
	}

	// If the name contains no package path.
	if lastPackageChunkIndex == -1 {
		packageName := fullNameChunks[0]
		funcName := strings.Join(fullNameChunks[1:], ".")
		return packageName, funcName
	}

	// Prepare package name and function name.
	packageName := strings.Join(fullNameChunks[:lastPackageChunkIndex+1], ".")
	funcName := strings.Join(fullNameChunks[lastPackageChunkIndex+1:], ".")
	return packageName, funcName
}
