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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanEmpty(t *testing.T) {
	d := New[string, int](StringType[int]())
	v := d.Scan(0, func(e *Entry[string, int]) {
		t.Fatal("callback on empty dictionary")
	}, nil)
	require.EqualValues(t, 0, v)
}

func TestScanCoverage(t *testing.T) {
	const count = 1000
	d := New[string, int](StringType[int]())
	expected := make(map[string]int)
	for i := 0; i < count; i++ {
		k := fmt.Sprintf("k%d", i)
		require.NoError(t, d.Add(k, i))
		expected[k] = i
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}

	// With no intervening mutation every element is reported exactly once.
	seen := make(map[string]int)
	steps := 0
	v := uint64(0)
	for {
		v = d.Scan(v, func(e *Entry[string, int]) {
			_, dup := seen[e.Key()]
			require.False(t, dup, "key %q reported twice", e.Key())
			seen[e.Key()] = e.Value()
		}, nil)
		steps++
		if v == 0 {
			break
		}
	}
	require.Equal(t, expected, seen)
	require.EqualValues(t, d.ht[0].size, steps)
}

func TestScanDuringRehash(t *testing.T) {
	const count = 1000
	d := New[string, int](StringType[int]())
	for i := 0; i < count; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("k%d", i), i))
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}
	require.NoError(t, d.Expand(d.ht[0].size * 2))

	// Drive the rehash forward between scan steps; elements present for
	// the whole traversal must still each be reported at least once.
	seen := make(map[string]bool)
	v := uint64(0)
	for {
		v = d.Scan(v, func(e *Entry[string, int]) {
			seen[e.Key()] = true
		}, nil)
		if v == 0 {
			break
		}
		d.Rehash(1)
	}
	require.Len(t, seen, count)
}

func TestScanWithExpandMidway(t *testing.T) {
	const count = 1000
	d := New[string, int](StringType[int]())
	for i := 0; i < count; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("k%d", i), i))
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}

	// Kick off an expansion partway through the traversal and let the
	// remaining steps run against the rehashing table pair.
	seen := make(map[string]bool)
	steps := 0
	v := uint64(0)
	for {
		v = d.Scan(v, func(e *Entry[string, int]) {
			seen[e.Key()] = true
		}, nil)
		if v == 0 {
			break
		}
		steps++
		if steps == 100 {
			require.NoError(t, d.Expand(d.ht[0].size*2))
		}
	}
	require.Len(t, seen, count)
}

func TestScanShrinkingRehash(t *testing.T) {
	d := New[string, int](StringType[int]())
	const count = 300
	for i := 0; i < count; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("k%d", i), i))
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}
	for i := 20; i < count; i++ {
		require.True(t, d.Delete(fmt.Sprintf("k%d", i)))
	}
	// Arm a shrink: ht[1] is now the smaller table.
	require.NoError(t, d.Resize())
	require.True(t, d.IsRehashing())
	require.Less(t, d.ht[1].size, d.ht[0].size)

	seen := make(map[string]bool)
	v := uint64(0)
	for {
		v = d.Scan(v, func(e *Entry[string, int]) {
			seen[e.Key()] = true
		}, nil)
		if v == 0 {
			break
		}
	}
	require.Len(t, seen, 20)
}

func TestScanBucketFunction(t *testing.T) {
	const count = 200
	d := New[string, int](StringType[int]())
	for i := 0; i < count; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("k%d", i), i))
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}

	// Rewrite every visited bucket in place by reversing its chain, the
	// shape of an active-expiration sweep that relinks entries.
	buckets := 0
	v := uint64(0)
	for {
		v = d.Scan(v, func(e *Entry[string, int]) {}, func(bucket **Entry[string, int]) {
			buckets++
			var rev *Entry[string, int]
			he := *bucket
			for he != nil {
				next := he.next
				he.next = rev
				rev = he
				he = next
			}
			*bucket = rev
		})
		if v == 0 {
			break
		}
	}
	require.EqualValues(t, d.ht[0].size, buckets)

	// The rewrite preserved every entry.
	require.EqualValues(t, count, d.Len())
	for i := 0; i < count; i++ {
		v, ok := d.FetchValue(fmt.Sprintf("k%d", i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}
