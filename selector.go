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

// constructorQuery describes a constructor selection request.
type constructorQuery struct {
	// Type to build.
	typ reflect.Type

	// Types present in the registry.
	registered []reflect.Type

	// Reports whether a parameter type can be resolved.
	satisfiable func(reflect.Type) bool

	// Non-public constructors are eligible.
	allowNonPublic bool
}

// constructorScore ranks eligible constructors.
type constructorScore struct {
	// Parameters include every relevant registered type.
	covers bool

	// Every parameter can be resolved.
	satisfiable bool

	// Parameters count.
	arity int
}

// better compares scores in the order of significance.
func (s constructorScore) better(other constructorScore) bool {
	if s.covers != other.covers {
		return s.covers
	}
	if s.satisfiable != other.satisfiable {
		return s.satisfiable
	}
	return s.arity > other.arity
}

// selectConstructor picks the constructor used to build the requested type.
//
// Candidates whose parameters include every relevant registered type win,
// then candidates whose parameters can all be resolved, then the widest
// ones. Remaining ties keep the registration order. The resolvability rank
// sits between the coverage and the arity ranks, so a wider constructor
// with an unresolvable parameter loses to a narrower resolvable one.
func selectConstructor(query constructorQuery, constructors []*Constructor) (*Constructor, error) {
	// Collect eligible constructors.
	eligible := make([]*Constructor, 0, len(constructors)+1)
	for _, constructor := range constructors {
		if constructor.Public() || query.allowNonPublic {
			eligible = append(eligible, constructor)
		}
	}

	// Structs without declared constructors have an implicit one.
	if len(constructors) == 0 && isStructType(query.typ) {
		eligible = append(eligible, newImplicitConstructor(query.typ))
	}

	switch len(eligible) {
	case 0:
		return nil, fmt.Errorf("%w for type '%s'", ErrNoConstructor, query.typ)
	case 1:
		return eligible[0], nil
	}

	// Registered types consumed by any eligible constructor.
	consumed := map[reflect.Type]bool{}
	for _, constructor := range eligible {
		for _, inType := range constructor.inTypes {
			consumed[inType] = true
		}
	}
	relevant := make([]reflect.Type, 0, len(query.registered))
	for _, registeredType := range query.registered {
		if consumed[registeredType] {
			relevant = append(relevant, registeredType)
		}
	}

	// Pick the best scored constructor.
	best := eligible[0]
	bestScore := scoreConstructor(best, relevant, query.satisfiable)
	for _, constructor := range eligible[1:] {
		score := scoreConstructor(constructor, relevant, query.satisfiable)
		if score.better(bestScore) {
			best, bestScore = constructor, score
		}
	}

	return best, nil
}

// scoreConstructor computes the constructor score.
func scoreConstructor(constructor *Constructor, relevant []reflect.Type, satisfiable func(reflect.Type) bool) constructorScore {
	params := make(map[reflect.Type]bool, len(constructor.inTypes))
	for _, inType := range constructor.inTypes {
		params[inType] = true
	}

	score := constructorScore{
		covers:      true,
		satisfiable: true,
		arity:       len(constructor.inTypes),
	}
	for _, registeredType := range relevant {
		if !params[registeredType] {
			score.covers = false
			break
		}
	}
	if satisfiable != nil {
		for _, inType := range constructor.inTypes {
			if !satisfiable(inType) {
				score.satisfiable = false
				break
			}
		}
	}

	return score
}
