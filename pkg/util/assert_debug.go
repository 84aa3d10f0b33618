// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build debug

package util

// DebugAssertFunc panics when b is false, but only in builds tagged
// "debug". Used for preconditions that are too expensive to check on
// every call in production (e.g. MinMaxOnSorted's sortedness
// precondition, spec.md "checked only in debug builds").
func DebugAssertFunc(b bool, msg string) {
	if !b {
		panic("debug assertion failed: " + msg)
	}
}
