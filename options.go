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

import "golang.org/x/exp/rand"

// Type is the per-dictionary policy bundle: how keys hash and compare, how
// keys and values are copied in and destroyed, and whether the table may
// grow. Hash is the only required field. The priv argument passed to the
// callbacks is the dictionary's private data (see WithPrivdata).
type Type[K comparable, V any] struct {
	// Hash maps a key to a 64-bit hash. Required. Equal keys must hash
	// equally.
	Hash func(key K) uint64

	// KeyDup, when non-nil, produces the owned copy of a key stored on
	// insertion. When nil, keys are stored as passed.
	KeyDup func(priv any, key K) K

	// ValDup, when non-nil, produces the owned copy of a value stored by
	// Add, Replace and SetVal. When nil, values are stored as passed.
	ValDup func(priv any, val V) V

	// KeyCompare, when non-nil, decides key equality. When nil, == is used.
	KeyCompare func(priv any, a, b K) bool

	// KeyDestructor, when non-nil, is invoked on a key when its entry is
	// destroyed.
	KeyDestructor func(priv any, key K)

	// ValDestructor, when non-nil, is invoked on a value when its entry is
	// destroyed or its value replaced.
	ValDestructor func(priv any, val V)

	// ExpandAllowed, when non-nil, is consulted before an automatic
	// expansion with the extra memory the new bucket array would take and
	// the current load factor. Returning false declines the expansion
	// without failing the triggering insertion.
	ExpandAllowed func(moreMem uintptr, usedRatio float64) bool
}

// option configures a Dict while it is being created.
type option[K comparable, V any] interface {
	apply(d *Dict[K, V])
}

type privdataOption[K comparable, V any] struct {
	priv any
}

func (op privdataOption[K, V]) apply(d *Dict[K, V]) { d.priv = op.priv }

// WithPrivdata attaches opaque private data to the dictionary; it is handed
// back to every Type callback that takes a priv argument (all but Hash and
// ExpandAllowed).
func WithPrivdata[K comparable, V any](priv any) option[K, V] {
	return privdataOption[K, V]{priv}
}

type randOption[K comparable, V any] struct {
	rnd *rand.Rand
}

func (op randOption[K, V]) apply(d *Dict[K, V]) { d.rnd = op.rnd }

// WithRandSource overrides the process-wide PRNG used by the random
// sampling operations, mainly so tests can pin a deterministic source.
func WithRandSource[K comparable, V any](rnd *rand.Rand) option[K, V] {
	return randOption[K, V]{rnd}
}

// Allocator specifies an interface for allocating and releasing the memory
// used by a Dict: the bucket arrays and the individual entries. The default
// allocator uses Go's builtin make and new and lets the GC reclaim memory.
//
// AllocBuckets may return nil to signal allocation failure; TryExpand
// reports it as ErrNoMemory while the other paths treat it as fatal.
type Allocator[K comparable, V any] interface {
	// AllocBuckets should return a slice equivalent to make([]*Entry[K,V], n),
	// or nil if the allocation cannot be satisfied.
	AllocBuckets(n int) []*Entry[K, V]

	// FreeBuckets can optionally release a slice previously returned by
	// AllocBuckets. The slice no longer holds live entries.
	FreeBuckets(buckets []*Entry[K, V])

	// AllocEntry should return a zeroed entry.
	AllocEntry() *Entry[K, V]

	// FreeEntry can optionally release an entry that has been unlinked and
	// whose key and value have been destroyed.
	FreeEntry(e *Entry[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocBuckets(n int) []*Entry[K, V] {
	return make([]*Entry[K, V], n)
}

func (defaultAllocator[K, V]) FreeBuckets(buckets []*Entry[K, V]) {
}

func (defaultAllocator[K, V]) AllocEntry() *Entry[K, V] {
	return &Entry[K, V]{}
}

func (defaultAllocator[K, V]) FreeEntry(e *Entry[K, V]) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(d *Dict[K, V]) { d.alloc = op.allocator }

// WithAllocator is an option to specify the Allocator to use for a Dict.
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}
