//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the pass options a driver threads through the core
// (PTAOption, TaintConfigOption) plus non-user-configurable tuning
// parameters, for development and testing purposes only.
package config

// PTAOption names the inter-procedural constant-propagation pass's option
// key: the id of the points-to result it should consume.
const PTAOption = "pta"

// TaintConfigOption names the taint pass's option key: a path to a document
// listing sources, sinks, and transfers (see taint.LoadConfig).
const TaintConfigOption = "taint-config"

// WorklistInitialCapacity seeds the points-to solver's worklist slice
// (package pointer) to avoid repeated growth on the common case of a
// medium-sized entry method. Purely a performance tuning knob; 0 is also
// correct, just slower to warm up.
const WorklistInitialCapacity = 64

// DefaultCallSiteSensitivityK is the k a driver defaults to for
// KCallSiteSelector when selecting the context-sensitive points-to variant
// (L5) without an explicit override. 1-call-site sensitivity is the depth
// the worked scenarios assume.
const DefaultCallSiteSensitivityK = 1
