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

package common

import "errors"

// Sentinel error kinds surfaced by the columnar batch and the join core.
// None of these are retried locally: the kernel is deterministic and a
// retry would only repeat the failure.
var (
	ErrNoSuchColumn         = errors.New("no such column")
	ErrArityMismatch        = errors.New("row width does not match schema")
	ErrUnsupportedPredicate = errors.New("predicate is not a supported inequality")
	ErrTypeMismatch         = errors.New("column types are incompatible across sides")
	ErrCancelled            = errors.New("join cancelled")
	ErrOutOfMemory          = errors.New("out of memory allocating join bitset")
)
