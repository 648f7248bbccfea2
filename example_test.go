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

package automock_test

import (
	"fmt"
	"strings"

	"github.com/NVIDIA/automock"
)

// Greeter greets people by name.
type Greeter interface {
	Greet(name string) string
}

// MockGreeter mocks Greeter.
type MockGreeter struct {
	automock.Mock
}

func (m *MockGreeter) Greet(name string) string {
	return m.Called(name).String(0)
}

// Welcome prints greetings.
type Welcome struct {
	greeter Greeter
	format  func(string) string
}

// NewWelcome returns welcome with the greeter.
func NewWelcome(greeter Greeter, format func(string) string) *Welcome {
	return &Welcome{greeter: greeter, format: format}
}

func (w *Welcome) Say(name string) string {
	return w.format(w.greeter.Greet(name))
}

// printT prints test failures.
type printT struct{}

func (printT) Logf(format string, args ...any)   { fmt.Printf(format+"\n", args...) }
func (printT) Errorf(format string, args ...any) { fmt.Printf(format+"\n", args...) }
func (printT) FailNow()                          { panic("test failed") }

func Example() {
	// Create the mocker with a Greeter mock prototype.
	mocker, err := automock.New(printT{},
		automock.WithMocks(&MockGreeter{}),
		automock.WithConstructors(NewWelcome),
	)
	if err != nil {
		panic(err)
	}

	// Set up the mocks before building the instance.
	greeter, err := automock.GetMock[Greeter](mocker)
	if err != nil {
		panic(err)
	}
	greeter.On("Greet", "gopher").Return("hello, gopher")

	format, err := automock.GetMock[func(string) string](mocker)
	if err != nil {
		panic(err)
	}
	format.On(automock.FuncMethod, "hello, gopher").Return("HELLO, GOPHER")

	// Build the instance with the mocked dependencies.
	welcome, err := automock.Build[*Welcome](mocker)
	if err != nil {
		panic(err)
	}

	fmt.Println(welcome.Say("gopher"))
	fmt.Println(mocker.VerifyAll())

	// Output:
	// HELLO, GOPHER
	// true
}

func ExampleMocker_Combine() {
	mocker, err := automock.New(printT{}, automock.WithMocks(&MockGreeter{}))
	if err != nil {
		panic(err)
	}

	// Loose mocks return zero values for calls without expectations.
	greeter := automock.MustGet[Greeter](mocker)
	fmt.Printf("%q\n", greeter.Greet("gopher"))

	// Mocks are shared by every combined type.
	if err := automock.Combine2[Greeter, *MockGreeter](mocker); err != nil {
		panic(err)
	}
	combined := automock.MustGet[*MockGreeter](mocker)
	combined.On("Greet", "gopher").Return("hi")

	fmt.Println(automock.MustGet[Greeter](mocker).Greet("gopher"))

	// Output:
	// ""
	// hi
}

func ExampleMocker_BuildSelfMock() {
	mocker, err := automock.New(printT{},
		automock.WithConstructors(func() *Welcome {
			return &Welcome{format: strings.ToUpper}
		}),
	)
	if err != nil {
		panic(err)
	}

	value, handle, err := mocker.BuildSelfMock(automock.TypeOf[*Welcome](), automock.WithNonPublic())
	if err != nil {
		panic(err)
	}
	welcome := value.Interface().(*Welcome)

	// Calls without expectations reach the original function.
	fmt.Println(welcome.format("gopher"))

	handle.On("format", "gopher").Return("mocked")
	fmt.Println(welcome.format("gopher"))

	// Output:
	// GOPHER
	// mocked
}

func ExampleFields() {
	type Handler struct {
		Greeter Greeter `inject:"mock"`
		Backup  Greeter
		Name    string
	}

	fields, err := automock.Fields[Handler]().WithTag("inject").Select(nil)
	if err != nil {
		panic(err)
	}
	for _, field := range fields {
		fmt.Println(field.Name)
	}

	// Output:
	// Greeter
}
