// Copyright 2025 The Chainhash Authors
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

package dict

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Ready-made type policies for the common key shapes, so a Dict is usable
// without writing a vtable by hand.

// StringType returns a policy for string keys hashed with the seeded
// byte-buffer hash. Strings are immutable in Go, so no key copying or
// destruction is needed.
func StringType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash: func(key string) uint64 {
			return GenHashFunction([]byte(key))
		},
	}
}

// CaseInsensitiveStringType returns a policy for string keys where "Key" and
// "key" are the same key: the case-folding hash paired with EqualFold
// comparison.
func CaseInsensitiveStringType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash: func(key string) uint64 {
			return GenCaseHashFunction([]byte(key))
		},
		KeyCompare: func(_ any, a, b string) bool {
			return strings.EqualFold(a, b)
		},
	}
}

// Uint64Type returns a policy for integer keys hashed with xxHash over the
// key's fixed-width encoding. Unseeded: integer-keyed tables are typically
// internal indices, not exposed to attacker-chosen keys.
func Uint64Type[V any]() *Type[uint64, V] {
	return &Type[uint64, V]{
		Hash: func(key uint64) uint64 {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], key)
			return xxhash.Sum64(b[:])
		},
	}
}

// Int64Type is Uint64Type for signed keys.
func Int64Type[V any]() *Type[int64, V] {
	return &Type[int64, V]{
		Hash: func(key int64) uint64 {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], uint64(key))
			return xxhash.Sum64(b[:])
		},
	}
}
