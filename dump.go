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
	"io"
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

// Entry describes a registry entry.
type Entry struct {
	// Type is the registered type.
	Type reflect.Type

	// Kind is one of "Real", "Mock" or "Array".
	Kind string

	// Mock is true for mocks and slices containing a mock.
	Mock bool

	// Value is the materialized value.
	Value reflect.Value

	// Calls is the number of calls received by the mock.
	Calls int
}

// Entries returns registry entries in the registration order.
func (m *Mocker) Entries() []Entry {
	types := m.registry.types()
	result := make([]Entry, 0, len(types))
	for _, typ := range types {
		inst, _ := m.registry.get(typ)
		entry := Entry{
			Type:  typ,
			Kind:  inst.kind.String(),
			Mock:  inst.isMock(),
			Value: inst.value(),
		}
		for _, handle := range inst.mocks() {
			entry.Calls += len(handle.Calls)
		}
		result = append(result, entry)
	}
	return result
}

// dumpConfig renders entry values.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                3,
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes registry entries to the writer.
func (m *Mocker) Dump(w io.Writer) error {
	for _, entry := range m.Entries() {
		if _, err := fmt.Fprintf(w, "%s [%s, calls: %d]\n", entry.Type, entry.Kind, entry.Calls); err != nil {
			return fmt.Errorf("failed to dump entry '%s': %w", entry.Type, err)
		}

		// Skip values of mocks, their state is the calls count.
		if entry.Kind != realInstance.String() {
			continue
		}
		if !entry.Value.CanInterface() {
			continue
		}
		dumpConfig.Fdump(w, entry.Value.Interface())
	}
	return nil
}
