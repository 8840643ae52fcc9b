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
	"golang.org/x/exp/rand"
)

func newSampleDict(t *testing.T, count int) (*Dict[string, int], map[string]int) {
	t.Helper()
	d := New[string, int](StringType[int](),
		WithRandSource[string, int](rand.New(rand.NewSource(42))))
	expected := make(map[string]int)
	for i := 0; i < count; i++ {
		k := fmt.Sprintf("k%d", i)
		require.NoError(t, d.Add(k, i))
		expected[k] = i
	}
	return d, expected
}

func TestGetRandomKeyEmpty(t *testing.T) {
	d := New[string, int](StringType[int]())
	require.Nil(t, d.GetRandomKey())
	require.Nil(t, d.GetFairRandomKey())
	require.Nil(t, d.GetSomeKeys(10))
}

func TestGetRandomKey(t *testing.T) {
	d, expected := newSampleDict(t, 100)
	for i := 0; i < 200; i++ {
		e := d.GetRandomKey()
		require.NotNil(t, e)
		require.Equal(t, expected[e.Key()], e.Value())
	}
}

func TestGetRandomKeyEventuallyCoversAll(t *testing.T) {
	d, expected := newSampleDict(t, 10)
	seen := make(map[string]bool)
	for i := 0; i < 2000 && len(seen) < len(expected); i++ {
		seen[d.GetRandomKey().Key()] = true
	}
	require.Len(t, seen, len(expected))
}

func TestGetRandomKeyDuringRehash(t *testing.T) {
	d, expected := newSampleDict(t, 100)
	for d.IsRehashing() {
		d.Rehash(1)
	}
	require.NoError(t, d.Expand(d.ht[0].size*2))
	require.True(t, d.IsRehashing())

	for i := 0; i < 200; i++ {
		e := d.GetRandomKey()
		require.NotNil(t, e)
		require.Equal(t, expected[e.Key()], e.Value())
	}
}

func TestGetFairRandomKey(t *testing.T) {
	d, expected := newSampleDict(t, 100)
	for i := 0; i < 200; i++ {
		e := d.GetFairRandomKey()
		require.NotNil(t, e)
		require.Equal(t, expected[e.Key()], e.Value())
	}
}

func TestGetSomeKeys(t *testing.T) {
	d, expected := newSampleDict(t, 100)

	entries := d.GetSomeKeys(20)
	require.NotEmpty(t, entries)
	require.LessOrEqual(t, len(entries), 20)
	for _, e := range entries {
		require.Equal(t, expected[e.Key()], e.Value())
	}

	// Requesting more keys than exist clamps to the dictionary size.
	entries = d.GetSomeKeys(10000)
	require.LessOrEqual(t, len(entries), 100)
}

func TestGetSomeKeysDuringRehash(t *testing.T) {
	d, expected := newSampleDict(t, 100)
	for d.IsRehashing() {
		d.Rehash(1)
	}
	require.NoError(t, d.Expand(d.ht[0].size*2))

	entries := d.GetSomeKeys(30)
	for _, e := range entries {
		require.Equal(t, expected[e.Key()], e.Value())
	}
}

func TestSeedRandom(t *testing.T) {
	// Reseeding the process-wide PRNG makes the sampling sequence
	// reproducible.
	d := New[string, int](StringType[int]())
	for i := 0; i < 100; i++ {
		require.NoError(t, d.Add(fmt.Sprintf("k%d", i), i))
	}
	for d.IsRehashing() {
		d.Rehash(1)
	}

	SeedRandom(7)
	var first []string
	for i := 0; i < 20; i++ {
		first = append(first, d.GetRandomKey().Key())
	}
	SeedRandom(7)
	var second []string
	for i := 0; i < 20; i++ {
		second = append(second, d.GetRandomKey().Key())
	}
	require.Equal(t, first, second)
}
