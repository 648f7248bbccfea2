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
	"log/slog"
)

// Option defines a functional option for configuring a mocker.
type Option func(*config)

// config holds mocker settings collected from options.
type config struct {
	behavior     Behavior
	prototypes   []Double
	constructors []*Constructor
	ctx          context.Context
	logger       *slog.Logger
}

// newConfig applies options over the defaults.
func newConfig(opts []Option) *config {
	cfg := &config{
		behavior: DefaultBehavior,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithBehavior sets the behavior of generated mocks.
func WithBehavior(behavior Behavior) Option {
	return func(cfg *config) {
		cfg.behavior = behavior
	}
}

// WithMocks registers mock prototypes.
//
// A prototype is a pointer to a struct embedding Mock. The mocker
// allocates a new prototype instance for every interface it implements,
// the first registered prototype wins.
//
// Example:
//
//	automock.New(t, automock.WithMocks(&MockStore{}, &MockClock{}))
func WithMocks(prototypes ...Double) Option {
	return func(cfg *config) {
		cfg.prototypes = append(cfg.prototypes, prototypes...)
	}
}

// WithConstructors registers constructor functions.
func WithConstructors(fns ...ConstructorFunc) Option {
	return func(cfg *config) {
		for _, fn := range fns {
			cfg.constructors = append(cfg.constructors, NewConstructor(fn))
		}
	}
}

// WithConstructor registers configured constructor definitions.
func WithConstructor(constructors ...*Constructor) Option {
	return func(cfg *config) {
		cfg.constructors = append(cfg.constructors, constructors...)
	}
}

// WithContext sets the context resolved for context.Context dependencies.
func WithContext(ctx context.Context) Option {
	return func(cfg *config) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

// WithLogger logs mocker events to the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// BuildOpt defines a functional option for configuring a build.
type BuildOpt func(*buildConfig)

// buildConfig holds build settings.
type buildConfig struct {
	nonPublic bool
}

// newBuildConfig applies build options.
func newBuildConfig(opts []BuildOpt) buildConfig {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithNonPublic makes unexported constructors and fields eligible.
func WithNonPublic() BuildOpt {
	return func(cfg *buildConfig) {
		cfg.nonPublic = true
	}
}
