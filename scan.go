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

import "math/bits"

// Scan performs one step of a full traversal of the dictionary.
//
// The traversal starts by calling Scan with cursor 0, and continues by
// feeding the returned cursor back into the next call; it is complete when
// Scan returns 0. fn is invoked for every entry of the visited buckets.
// bucketfn, when non-nil, is invoked once per visited bucket with the bucket
// slot itself before its entries are reported, so a caller may rewrite the
// whole chain in place (an active-expiration sweep, say); any replacement
// chain must hold the same entries reachable from the slot.
//
// Unlike Iterator, Scan keeps no state inside the dictionary, and the
// guarantee it offers survives resizes between calls: every element present
// in the dictionary for the whole duration of the traversal is reported at
// least once. Elements added or removed mid-traversal may or may not be
// seen, and an element can be reported more than once.
//
// The cursor is a reversed-bit counter, an algorithm originally designed by
// Pieter Noordhuis. Instead of incrementing the cursor's low bits, each step
// sets the bits above the table mask, reverses the cursor, increments it,
// and reverses it back:
//
//	v |= ^sizemask
//	v = rev(rev(v) + 1)
//
// Iterating the masked counter's HIGH bits first is what makes the cursor
// stable across resizes. Because tables are power-of-two sized and a bucket
// index is hash & sizemask, the buckets that bucket B of a small table
// splits into in a larger table all share B as their low bits. Walking the
// index space in reversed-bit order means those related buckets are visited
// adjacently, so a cursor saved against one table size never needs to
// revisit the part of the keyspace already covered when the table size
// changes: buckets already reported map onto already-counted prefixes of the
// reversed counter.
//
// While a rehash is in progress both tables are visited: the bucket of the
// smaller table first, then every bucket of the larger table whose low bits
// equal the small-table bucket index. The cursor advances using the larger
// mask, and rehashing is paused for the duration of the call so the bucket
// pair cannot migrate mid-step.
func (d *Dict[K, V]) Scan(
	v uint64,
	fn func(e *Entry[K, V]),
	bucketfn func(bucket **Entry[K, V]),
) uint64 {
	if d.Len() == 0 {
		return 0
	}

	// A bucket callback may rewrite chains; the auto-rehash hook must not
	// move them mid-call.
	d.PauseRehashing()

	if !d.isRehashing() {
		t0 := &d.ht[0]
		m0 := t0.sizemask

		if bucketfn != nil {
			bucketfn(&t0.buckets[v&m0])
		}
		for de := t0.buckets[v&m0]; de != nil; {
			next := de.next
			fn(de)
			de = next
		}

		v |= ^m0
		v = rev(rev(v) + 1)
	} else {
		t0, t1 := &d.ht[0], &d.ht[1]
		// Make t0 the smaller table. A shrink rehashes into a smaller
		// ht[1].
		if t0.size > t1.size {
			t0, t1 = t1, t0
		}
		m0, m1 := t0.sizemask, t1.sizemask

		if bucketfn != nil {
			bucketfn(&t0.buckets[v&m0])
		}
		for de := t0.buckets[v&m0]; de != nil; {
			next := de.next
			fn(de)
			de = next
		}

		// Visit the (m1+1)/(m0+1) buckets of the larger table that expand
		// the current small-table bucket, advancing with the larger mask.
		for {
			if bucketfn != nil {
				bucketfn(&t1.buckets[v&m1])
			}
			for de := t1.buckets[v&m1]; de != nil; {
				next := de.next
				fn(de)
				de = next
			}

			v |= ^m1
			v = rev(rev(v) + 1)

			if v&(m0^m1) == 0 {
				break
			}
		}
	}

	d.ResumeRehashing()
	return v
}

func rev(v uint64) uint64 { return bits.Reverse64(v) }
