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

import "unsafe"

// Iterator walks a dictionary bucket by bucket, chain by chain.
//
// A safe iterator (SafeIterator) suspends incremental rehashing for its
// lifetime, so the dictionary may be freely mutated while iterating. An
// unsafe iterator (Iterator) permits no mutation: the dictionary's shape is
// fingerprinted on the first Next and verified on Release, and a mismatch
// panics. Either flavor caches the successor of the entry it yields, so
// with a safe iterator deleting the yielded entry is allowed; with an unsafe
// iterator any deletion is a mutation and panics at Release.
type Iterator[K comparable, V any] struct {
	d         *Dict[K, V]
	index     int64
	table     int
	safe      bool
	entry     *Entry[K, V]
	nextEntry *Entry[K, V]
	// fingerprint captures the dictionary shape when an unsafe iterator
	// starts; see Dict.fingerprint.
	fingerprint uint64
}

// Iterator returns an unsafe iterator over d. Only Next and Release may be
// called on the dictionary's behalf until the iterator is released.
func (d *Dict[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{d: d, index: -1}
}

// SafeIterator returns a safe iterator over d. Incremental rehashing is
// paused between the first Next and Release.
func (d *Dict[K, V]) SafeIterator() *Iterator[K, V] {
	it := d.Iterator()
	it.safe = true
	return it
}

// Next returns the next entry, or nil when the iteration is complete.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	for {
		if it.entry == nil {
			if it.index == -1 && it.table == 0 {
				if it.safe {
					it.d.PauseRehashing()
				} else {
					it.fingerprint = it.d.fingerprint()
				}
			}
			it.index++
			if uint64(it.index) >= it.d.ht[it.table].size {
				if it.d.isRehashing() && it.table == 0 {
					it.table = 1
					it.index = 0
				} else {
					return nil
				}
			}
			it.entry = it.d.ht[it.table].buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}
		if it.entry != nil {
			// Cache the successor now: the caller may delete the entry we
			// are about to yield.
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
}

// Release ends the iteration. For a safe iterator it resumes incremental
// rehashing; for an unsafe iterator it verifies the fingerprint and panics
// if the dictionary was mutated while the iterator was live.
func (it *Iterator[K, V]) Release() {
	if !(it.index == -1 && it.table == 0) {
		if it.safe {
			it.d.ResumeRehashing()
		} else if it.fingerprint != it.d.fingerprint() {
			panic("dict: dictionary was modified during unsafe iteration")
		}
	}
}

// fingerprint hashes the dictionary's observable shape: both bucket array
// base addresses, sizes and used counts. Any insertion, deletion or resize
// perturbs at least one of the six inputs, and the xor-and-multiply mix
// (Tomas Wang's 64-bit integer hash applied in sequence) makes a
// single-field change flip the result.
func (d *Dict[K, V]) fingerprint() uint64 {
	integers := [6]uint64{
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[0].buckets)))),
		d.ht[0].size,
		d.ht[0].used,
		uint64(uintptr(unsafe.Pointer(unsafe.SliceData(d.ht[1].buckets)))),
		d.ht[1].size,
		d.ht[1].used,
	}
	var hash uint64
	for _, n := range integers {
		hash += n
		hash = ^hash + hash<<21
		hash ^= hash >> 24
		hash = hash + hash<<3 + hash<<8
		hash ^= hash >> 14
		hash = hash + hash<<2 + hash<<4
		hash ^= hash >> 28
		hash += hash << 31
	}
	return hash
}
