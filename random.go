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
	"time"

	"golang.org/x/exp/rand"
)

// globalRand is the process-wide PRNG behind the sampling operations:
// uniform over 64 bits, seedable, not cryptographic. Dictionaries share it
// unless overridden with WithRandSource.
var globalRand = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

// SeedRandom reseeds the process-wide PRNG used for bucket sampling.
func SeedRandom(seed uint64) { globalRand.Seed(seed) }

// fairSampleSize is how many candidate entries GetFairRandomKey draws before
// picking one, trading bias for sampling cost.
const fairSampleSize = 15

// GetRandomKey returns a random entry, or nil if the dictionary is empty.
//
// The distribution is only approximately uniform: a random non-empty bucket
// is drawn first and then a random position along its chain, so entries in
// short chains are more likely than entries in long ones. Callers needing
// less bias should use GetFairRandomKey.
func (d *Dict[K, V]) GetRandomKey() *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}

	var he *Entry[K, V]
	if d.isRehashing() {
		s0 := d.ht[0].size
		for he == nil {
			// Buckets below rehashidx in ht[0] have already been migrated
			// and are empty, so draw from the remaining span of both
			// tables.
			h := uint64(d.rehashidx) + d.rnd.Uint64n(d.Slots()-uint64(d.rehashidx))
			if h >= s0 {
				he = d.ht[1].buckets[h-s0]
			} else {
				he = d.ht[0].buckets[h]
			}
		}
	} else {
		m := d.ht[0].sizemask
		for he == nil {
			he = d.ht[0].buckets[d.rnd.Uint64()&m]
		}
	}

	// A random position along the chain is the only sane way to pick
	// fairly within the bucket.
	listlen := uint64(0)
	orighe := he
	for he != nil {
		he = he.next
		listlen++
	}
	listele := d.rnd.Uint64n(listlen)
	he = orighe
	for ; listele > 0; listele-- {
		he = he.next
	}
	return he
}

// GetFairRandomKey returns a random entry with less chain-length bias than
// GetRandomKey: a small window of entries is sampled with GetSomeKeys and
// one is picked uniformly from it. It is not perfectly fair either, but the
// distribution is much closer to uniform.
func (d *Dict[K, V]) GetFairRandomKey() *Entry[K, V] {
	entries := d.GetSomeKeys(fairSampleSize)
	if len(entries) == 0 {
		return d.GetRandomKey()
	}
	return entries[d.rnd.Uint64n(uint64(len(entries)))]
}

// GetSomeKeys samples up to count entries from random locations of the
// dictionary. It walks a window of consecutive buckets starting at a random
// index, across both tables while rehashing, and gives up after a number of
// steps proportional to count, so it may return fewer entries than
// requested. Returned entries may contain duplicates across calls and make
// no uniformity guarantee; the operation is meant for sampling-based
// algorithms, not enumeration.
func (d *Dict[K, V]) GetSomeKeys(count uint64) []*Entry[K, V] {
	if d.Len() < count {
		count = d.Len()
	}
	if count == 0 {
		return nil
	}
	maxSteps := count * 10

	// Do a proportional bit of rehash work so heavy samplers also drive
	// migration forward.
	for j := uint64(0); j < count && d.isRehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	if d.isRehashing() {
		tables = 2
	}
	maxSizeMask := d.ht[0].sizemask
	if tables > 1 && maxSizeMask < d.ht[1].sizemask {
		maxSizeMask = d.ht[1].sizemask
	}

	entries := make([]*Entry[K, V], 0, count)
	i := d.rnd.Uint64() & maxSizeMask
	emptyLen := uint64(0)
	for uint64(len(entries)) < count && maxSteps > 0 {
		maxSteps--
		for j := 0; j < tables; j++ {
			// While rehashing there are no populated buckets below
			// rehashidx in ht[0], so that span can be skipped.
			if tables == 2 && j == 0 && i < uint64(d.rehashidx) {
				// If i is also out of range for ht[1], jump straight to
				// the rehash cursor (this happens when shrinking, where
				// ht[1] is the smaller table).
				if i >= d.ht[1].size {
					i = uint64(d.rehashidx)
				} else {
					continue
				}
			}
			if i >= d.ht[j].size {
				continue
			}
			he := d.ht[j].buckets[i]

			// Count contiguous empty buckets and jump to a fresh random
			// location once the streak outgrows the sample size (with a
			// minimum of 5).
			if he == nil {
				emptyLen++
				if emptyLen >= 5 && emptyLen > count {
					i = d.rnd.Uint64() & maxSizeMask
					emptyLen = 0
				}
			} else {
				emptyLen = 0
				for he != nil {
					entries = append(entries, he)
					he = he.next
					if uint64(len(entries)) == count {
						return entries
					}
				}
			}
		}
		i = (i + 1) & maxSizeMask
	}
	return entries
}
