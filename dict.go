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

// Package dict implements an in-memory hash table with incremental
// rehashing. Collisions are handled by chaining, and table sizes are always
// powers of two.
//
// The defining property of a Dict is that growing or shrinking the table
// never stops the world: when a resize is needed a second bucket array is
// installed alongside the first, and entries migrate from the old array to
// the new one a bucket at a time, piggybacked on subsequent operations (or
// driven explicitly via Rehash and RehashMilliseconds). This makes the
// structure suitable as the primary key-value index of a latency-sensitive
// single-threaded server, where a stop-the-world rehash of a few million
// entries would blow the response-time budget.
//
// # Representation
//
// A Dict owns two bucket arrays, ht[0] and ht[1]. Normally only ht[0] is
// populated. While a rehash is in progress both are: rehashidx points at the
// next ht[0] bucket to migrate, lookups probe both arrays, and insertions go
// to ht[1] so that ht[0] only ever shrinks. When the last entry has moved,
// ht[1] is renamed to ht[0] and the dictionary goes back to its steady
// state.
//
// # Type policy
//
// Per-table behavior (hashing, key/value copying, equality, destruction,
// permission to grow) is supplied through a Type value, the Go rendition of
// a vtable of function pointers. Only Hash is required; every other field
// falls back to a sensible default (== for equality, store-by-value for
// copies, no-op destructors).
//
// # Iteration
//
// Two cursor styles are provided. Iterator walks buckets in order; in safe
// mode it suspends incremental rehashing so the dictionary may be mutated
// while iterating, and in unsafe mode it fingerprints the dictionary's shape
// and panics at release time if the shape changed. Scan is a stateless
// reversed-bit cursor that tolerates a rehash happening between calls and
// still visits every element at least once.
//
// A Dict is NOT goroutine-safe.
package dict

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

const (
	debug = false

	// initialSize is the size of the first bucket array allocated for a
	// dictionary.
	initialSize = 4

	// forceResizeRatio is the used/size ratio at which an expansion is
	// performed even while resizing is globally disabled. With chains this
	// deep, lookups degrade enough that a background persistence pass is no
	// longer worth protecting from copy-on-write churn.
	forceResizeRatio = 5

	// rehashMaxEmptyVisits bounds, per requested bucket, how many empty
	// buckets a single Rehash call may skip before yielding. Without it a
	// Rehash(1) against a sparse table could touch an unbounded span of
	// empty buckets.
	rehashMaxEmptyVisits = 10
)

var (
	// ErrKeyExists is returned by Add when the key is already present.
	ErrKeyExists = errors.New("dict: key already exists")
	// ErrNoMemory is returned by TryExpand when the Allocator declines the
	// bucket array.
	ErrNoMemory = errors.New("dict: allocation failed")
	// ErrRehashing is returned by Expand and Resize while a rehash is in
	// progress.
	ErrRehashing = errors.New("dict: rehash in progress")
	// ErrInvalidSize is returned by Expand when the requested size cannot
	// hold the current entries, or would not change the table.
	ErrInvalidSize = errors.New("dict: invalid table size")
	// ErrResizeDisabled is returned by Resize while resizing is globally
	// disabled.
	ErrResizeDisabled = errors.New("dict: resizing is disabled")
)

// canResize is the process-wide resize switch. Long-lived routines that want
// a stable view of memory (a fork-based persistence pass, say) disable it;
// expansion then only happens once the load factor reaches forceResizeRatio.
var canResize = true

// EnableResize allows automatic resizing of all dictionaries.
func EnableResize() { canResize = true }

// DisableResize prevents automatic resizing of all dictionaries, except when
// the load factor of a table reaches forceResizeRatio.
func DisableResize() { canResize = false }

// Entry is a single key-value pair. Entries are linked into per-bucket
// chains and have no stable identity across a rehash: the pair survives, the
// chain position does not.
type Entry[K comparable, V any] struct {
	key   K
	value V
	next  *Entry[K, V]
}

// Key returns the entry's key.
func (e *Entry[K, V]) Key() K { return e.key }

// Value returns the entry's value.
func (e *Entry[K, V]) Value() V { return e.value }

// SetValue stores val into the entry directly, without consulting the
// dictionary's ValDup or ValDestructor. Use Dict.SetVal when the type policy
// must be honored.
func (e *Entry[K, V]) SetValue(val V) { e.value = val }

// Next returns the next entry in the same bucket chain, or nil. Useful to
// callers holding a bucket reference from a Scan bucket callback.
func (e *Entry[K, V]) Next() *Entry[K, V] { return e.next }

// table is one bucket array: a power-of-two sized slice of chain heads.
type table[K comparable, V any] struct {
	buckets  []*Entry[K, V]
	size     uint64
	sizemask uint64
	used     uint64
}

func (t *table[K, V]) reset() {
	t.buckets = nil
	t.size = 0
	t.sizemask = 0
	t.used = 0
}

// Dict is a hash table mapping keys of type K to values of type V, with
// incremental rehashing. The zero value is not usable; construct with New.
type Dict[K comparable, V any] struct {
	typ   *Type[K, V]
	priv  any
	alloc Allocator[K, V]
	rnd   *rand.Rand
	ht    [2]table[K, V]
	// rehashidx is the rehash state machine: -1 when idle, otherwise the
	// next ht[0] bucket index to migrate. Transitions happen only in
	// startRehash and finishRehash, except that Empty and Release reset it
	// to -1 directly.
	rehashidx int64
	// pauserehash suspends the single-step rehash hook while positive. A
	// negative value is a programming error.
	pauserehash int64
}

// New constructs an empty dictionary governed by the given type policy.
// typ.Hash is required; New panics without it.
func New[K comparable, V any](typ *Type[K, V], options ...option[K, V]) *Dict[K, V] {
	if typ == nil || typ.Hash == nil {
		panic("dict: Type with a Hash function is required")
	}
	d := &Dict[K, V]{
		typ:       typ,
		alloc:     defaultAllocator[K, V]{},
		rnd:       globalRand,
		rehashidx: -1,
	}
	for _, op := range options {
		op.apply(d)
	}
	return d
}

// Len returns the number of entries across both tables.
func (d *Dict[K, V]) Len() uint64 { return d.ht[0].used + d.ht[1].used }

// Slots returns the total number of buckets across both tables.
func (d *Dict[K, V]) Slots() uint64 { return d.ht[0].size + d.ht[1].size }

// IsRehashing reports whether an incremental rehash is in progress.
func (d *Dict[K, V]) IsRehashing() bool { return d.isRehashing() }

func (d *Dict[K, V]) isRehashing() bool { return d.rehashidx != -1 }

// PauseRehashing suspends the automatic single-step rehash performed by
// lookup and mutation paths. Pauses nest; each must be matched by a
// ResumeRehashing.
func (d *Dict[K, V]) PauseRehashing() { d.pauserehash++ }

// ResumeRehashing undoes one PauseRehashing. Resuming more times than
// pausing is a programming error and panics.
func (d *Dict[K, V]) ResumeRehashing() {
	d.pauserehash--
	if d.pauserehash < 0 {
		panic("dict: rehashing resumed more times than paused")
	}
}

// nextPower returns the first power of two >= size, with a floor of
// initialSize.
func nextPower(size uint64) uint64 {
	i := uint64(initialSize)
	if size >= 1<<63 {
		return 1 << 63
	}
	for i < size {
		i <<= 1
	}
	return i
}

// Expand grows (or pre-sizes) the dictionary so that at least size entries
// fit without further reallocation. The new bucket array is installed as
// ht[1] and the rehash engine armed, unless ht[0] was still unallocated in
// which case it is installed directly.
func (d *Dict[K, V]) Expand(size uint64) error {
	return d.expand(size, false)
}

// TryExpand is Expand, except that an Allocator refusing the bucket array is
// reported as ErrNoMemory instead of panicking.
func (d *Dict[K, V]) TryExpand(size uint64) error {
	return d.expand(size, true)
}

func (d *Dict[K, V]) expand(size uint64, try bool) error {
	// An expansion while another is being rehashed would need a third
	// table; callers must wait for the rehash to drain.
	if d.isRehashing() {
		return errors.Wrap(ErrRehashing, "expand")
	}
	if d.ht[0].used > size {
		return errors.Wrapf(ErrInvalidSize, "expand to %d with %d entries", size, d.ht[0].used)
	}

	realsize := nextPower(size)
	if realsize == d.ht[0].size {
		return errors.Wrapf(ErrInvalidSize, "table already sized %d", realsize)
	}

	buckets := d.alloc.AllocBuckets(int(realsize))
	if buckets == nil {
		if try {
			return errors.Wrapf(ErrNoMemory, "%d buckets", realsize)
		}
		panic("dict: Allocator failed to allocate buckets")
	}
	n := table[K, V]{
		buckets:  buckets,
		size:     realsize,
		sizemask: realsize - 1,
	}

	if debug {
		fmt.Printf("expand: %d -> %d (used=%d)\n", d.ht[0].size, realsize, d.ht[0].used)
	}

	// First allocation: install directly, nothing to migrate.
	if d.ht[0].buckets == nil {
		d.ht[0] = n
		return nil
	}

	d.ht[1] = n
	d.startRehash()
	d.checkInvariants()
	return nil
}

// Resize shrinks the bucket array to the smallest power of two containing
// all entries. Disallowed while rehashing or while resizing is globally
// disabled.
func (d *Dict[K, V]) Resize() error {
	if !canResize {
		return errors.Wrap(ErrResizeDisabled, "resize")
	}
	if d.isRehashing() {
		return errors.Wrap(ErrRehashing, "resize")
	}
	minimal := d.ht[0].used
	if minimal < initialSize {
		minimal = initialSize
	}
	return d.expand(minimal, false)
}

// expandIfNeeded arms an expansion before an insertion would overload ht[0].
func (d *Dict[K, V]) expandIfNeeded() error {
	// An incremental rehash is already draining ht[0]; insertions go to
	// ht[1].
	if d.isRehashing() {
		return nil
	}

	if d.ht[0].size == 0 {
		return d.expand(initialSize, false)
	}

	// Grow at load factor 1, or at forceResizeRatio when resizing is
	// globally disabled, provided the type policy permits the allocation.
	if d.ht[0].used >= d.ht[0].size &&
		(canResize || d.ht[0].used/d.ht[0].size >= forceResizeRatio) &&
		d.expandAllowed(d.ht[0].used+1) {
		return d.expand(d.ht[0].used+1, false)
	}
	return nil
}

func (d *Dict[K, V]) expandAllowed(size uint64) bool {
	if d.typ.ExpandAllowed == nil {
		return true
	}
	moreMem := uintptr(nextPower(size)) * unsafe.Sizeof((*Entry[K, V])(nil))
	return d.typ.ExpandAllowed(moreMem, float64(d.ht[0].used)/float64(d.ht[0].size))
}

// keyIndex locates key. If present, the entry is returned. Otherwise the
// bucket index and table that a new entry for key must go to is returned:
// ht[1] while rehashing, ht[0] otherwise. May arm an expansion, in which
// case err reports its failure.
func (d *Dict[K, V]) keyIndex(key K, hash uint64) (idx uint64, tbl int, existing *Entry[K, V], err error) {
	if err := d.expandIfNeeded(); err != nil {
		return 0, 0, nil, err
	}
	target := 0
	if d.isRehashing() {
		target = 1
	}
	for tbl := 0; tbl <= target; tbl++ {
		idx := hash & d.ht[tbl].sizemask
		for he := d.ht[tbl].buckets[idx]; he != nil; he = he.next {
			if d.keyCompare(key, he.key) {
				return 0, 0, he, nil
			}
		}
	}
	return hash & d.ht[target].sizemask, target, nil, nil
}

// AddRaw inserts key with an unset value and returns the new entry, so the
// caller can populate it with Dict.SetVal or Entry.SetValue. If the key is
// already present nil is returned and, when existing is non-nil, *existing
// is pointed at the occupying entry.
//
// Insertion is head insertion: recently added entries are found first, on
// the theory that recently created keys are the most frequently accessed.
func (d *Dict[K, V]) AddRaw(key K, existing **Entry[K, V]) *Entry[K, V] {
	if d.isRehashing() {
		d.rehashStep()
	}

	idx, tbl, found, err := d.keyIndex(key, d.hashKey(key))
	if found != nil {
		if existing != nil {
			*existing = found
		}
		return nil
	}
	if err != nil {
		return nil
	}

	ht := &d.ht[tbl]
	e := d.alloc.AllocEntry()
	e.next = ht.buckets[idx]
	ht.buckets[idx] = e
	ht.used++
	e.key = d.dupKey(key)
	d.checkInvariants()
	return e
}

// Add inserts the key-value pair, failing with ErrKeyExists if the key is
// already present.
func (d *Dict[K, V]) Add(key K, val V) error {
	var existing *Entry[K, V]
	e := d.AddRaw(key, &existing)
	if e == nil {
		if existing != nil {
			return errors.WithStack(ErrKeyExists)
		}
		return errors.Wrap(ErrNoMemory, "add")
	}
	d.setVal(e, val)
	return nil
}

// AddOrFind returns the entry for key, inserting one with an unset value if
// absent.
func (d *Dict[K, V]) AddOrFind(key K) *Entry[K, V] {
	var existing *Entry[K, V]
	e := d.AddRaw(key, &existing)
	if e != nil {
		return e
	}
	return existing
}

// Replace sets key to val, inserting the key if needed. It reports whether
// the key was inserted (true) or an existing value was updated (false).
func (d *Dict[K, V]) Replace(key K, val V) bool {
	var existing *Entry[K, V]
	e := d.AddRaw(key, &existing)
	if e != nil {
		d.setVal(e, val)
		return true
	}
	// Install the new value before destroying the old one: with reference
	// counted values the two may alias, and the destructor must not run
	// against the value being stored.
	old := *existing
	d.setVal(existing, val)
	d.freeVal(&old)
	return false
}

// Find returns the entry for key, or nil.
func (d *Dict[K, V]) Find(key K) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}
	h := d.hashKey(key)
	for tbl := 0; tbl <= 1; tbl++ {
		idx := h & d.ht[tbl].sizemask
		for he := d.ht[tbl].buckets[idx]; he != nil; he = he.next {
			if d.keyCompare(key, he.key) {
				return he
			}
		}
		if !d.isRehashing() {
			return nil
		}
	}
	return nil
}

// FetchValue returns the value stored for key and whether the key was
// present.
func (d *Dict[K, V]) FetchValue(key K) (V, bool) {
	if e := d.Find(key); e != nil {
		return e.value, true
	}
	var zero V
	return zero, false
}

// genericDelete unlinks the entry for key from its chain. With nofree the
// entry is handed back intact for the caller to read before freeing;
// otherwise key, value and entry are destroyed here.
func (d *Dict[K, V]) genericDelete(key K, nofree bool) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}
	h := d.hashKey(key)
	for tbl := 0; tbl <= 1; tbl++ {
		idx := h & d.ht[tbl].sizemask
		var prev *Entry[K, V]
		for he := d.ht[tbl].buckets[idx]; he != nil; he = he.next {
			if d.keyCompare(key, he.key) {
				if prev != nil {
					prev.next = he.next
				} else {
					d.ht[tbl].buckets[idx] = he.next
				}
				if !nofree {
					d.freeKey(he)
					d.freeVal(he)
					d.alloc.FreeEntry(he)
				}
				d.ht[tbl].used--
				d.checkInvariants()
				return he
			}
			prev = he
		}
		if !d.isRehashing() {
			break
		}
	}
	return nil
}

// Delete removes key, reporting whether it was present.
func (d *Dict[K, V]) Delete(key K) bool {
	return d.genericDelete(key, false) != nil
}

// Unlink removes key from the dictionary without destroying the entry, and
// returns it so the caller can read the key and value after removal without
// a second lookup. The caller must eventually pass the entry to
// FreeUnlinkedEntry.
func (d *Dict[K, V]) Unlink(key K) *Entry[K, V] {
	return d.genericDelete(key, true)
}

// FreeUnlinkedEntry destroys an entry previously returned by Unlink. Calling
// it with nil is a no-op.
func (d *Dict[K, V]) FreeUnlinkedEntry(e *Entry[K, V]) {
	if e == nil {
		return
	}
	d.freeKey(e)
	d.freeVal(e)
	d.alloc.FreeEntry(e)
}

// Empty removes every entry and releases both bucket arrays, leaving the
// dictionary usable. callback, if non-nil, is invoked with the private data
// every 65536 buckets, so callers emptying a huge dictionary can keep
// serving events.
func (d *Dict[K, V]) Empty(callback func(priv any)) {
	d.clearTable(0, callback)
	d.clearTable(1, callback)
	d.rehashidx = -1
	d.pauserehash = 0
}

// Release destroys the dictionary. The Dict must not be used afterwards;
// Release itself is idempotent.
func (d *Dict[K, V]) Release() {
	d.clearTable(0, nil)
	d.clearTable(1, nil)
	d.rehashidx = -1
	d.pauserehash = 0
}

func (d *Dict[K, V]) clearTable(tbl int, callback func(priv any)) {
	ht := &d.ht[tbl]
	for i := uint64(0); i < ht.size && ht.used > 0; i++ {
		if callback != nil && i&65535 == 0 {
			callback(d.priv)
		}
		for he := ht.buckets[i]; he != nil; {
			next := he.next
			d.freeKey(he)
			d.freeVal(he)
			d.alloc.FreeEntry(he)
			ht.used--
			he = next
		}
	}
	if ht.buckets != nil {
		d.alloc.FreeBuckets(ht.buckets)
	}
	ht.reset()
}

// SetVal stores val into e, applying the type policy's ValDup.
func (d *Dict[K, V]) SetVal(e *Entry[K, V], val V) { d.setVal(e, val) }

// Hash returns the hash of key under the dictionary's type policy. Useful
// with FindEntryByPtrAndHash.
func (d *Dict[K, V]) Hash(key K) uint64 { return d.hashKey(key) }

// FindEntryByPtrAndHash locates old by pointer identity, given the
// precomputed hash of its key. It exists for secondary indices keyed on the
// entry pointer: the entry is found without hashing or comparing its key,
// which may no longer be safe to touch.
func (d *Dict[K, V]) FindEntryByPtrAndHash(old *Entry[K, V], hash uint64) *Entry[K, V] {
	if d.Len() == 0 {
		return nil
	}
	for tbl := 0; tbl <= 1; tbl++ {
		idx := hash & d.ht[tbl].sizemask
		for he := d.ht[tbl].buckets[idx]; he != nil; he = he.next {
			if he == old {
				return he
			}
		}
		if !d.isRehashing() {
			break
		}
	}
	return nil
}

// startRehash and finishRehash are the transitions of the rehash state
// machine: idle (rehashidx == -1) to rehashing (rehashidx >= 0) and back.
// Empty and Release bypass them and reset the machine to idle.

func (d *Dict[K, V]) startRehash() {
	d.rehashidx = 0
}

func (d *Dict[K, V]) finishRehash() {
	d.alloc.FreeBuckets(d.ht[0].buckets)
	d.ht[0] = d.ht[1]
	d.ht[1].reset()
	d.rehashidx = -1
}

// Rehash performs up to n bucket migrations from ht[0] to ht[1], visiting at
// most rehashMaxEmptyVisits*n empty buckets before yielding. It reports
// whether migration work remains.
func (d *Dict[K, V]) Rehash(n int) bool {
	emptyVisits := n * rehashMaxEmptyVisits
	if !d.isRehashing() {
		return false
	}

	for n > 0 && d.ht[0].used != 0 {
		n--

		// rehashidx cannot run off the table while ht[0].used != 0.
		if invariants && uint64(d.rehashidx) >= d.ht[0].size {
			panic(fmt.Sprintf("dict: rehashidx %d out of range (size %d)", d.rehashidx, d.ht[0].size))
		}

		for d.ht[0].buckets[d.rehashidx] == nil {
			d.rehashidx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}

		// Move every entry of this bucket to its slot in ht[1].
		for he := d.ht[0].buckets[d.rehashidx]; he != nil; {
			next := he.next
			idx := d.hashKey(he.key) & d.ht[1].sizemask
			he.next = d.ht[1].buckets[idx]
			d.ht[1].buckets[idx] = he
			d.ht[0].used--
			d.ht[1].used++
			he = next
		}
		d.ht[0].buckets[d.rehashidx] = nil
		d.rehashidx++

		if debug {
			fmt.Printf("rehash: bucket %d migrated, %d left in ht[0]\n", d.rehashidx-1, d.ht[0].used)
		}
	}

	if d.ht[0].used == 0 {
		d.finishRehash()
		d.checkInvariants()
		return false
	}
	return true
}

// RehashMilliseconds rehashes in batches of 100 buckets until the wall-clock
// budget is exhausted or the rehash completes. It returns 100 for every
// batch after which migration work remained; the batch that completes the
// rehash is not counted.
func (d *Dict[K, V]) RehashMilliseconds(ms int) int {
	start := time.Now()
	budget := time.Duration(ms) * time.Millisecond
	rehashes := 0
	for d.Rehash(100) {
		rehashes += 100
		if time.Since(start) >= budget {
			break
		}
	}
	return rehashes
}

// rehashStep is the auto-rehash hook on insertion, lookup and deletion
// paths: one bucket of migration, but only while no safe iterator or scan
// needs the shape stable.
func (d *Dict[K, V]) rehashStep() {
	if d.pauserehash == 0 {
		d.Rehash(1)
	}
}

func (d *Dict[K, V]) hashKey(key K) uint64 { return d.typ.Hash(key) }

func (d *Dict[K, V]) keyCompare(a, b K) bool {
	if d.typ.KeyCompare != nil {
		return d.typ.KeyCompare(d.priv, a, b)
	}
	return a == b
}

func (d *Dict[K, V]) dupKey(key K) K {
	if d.typ.KeyDup != nil {
		return d.typ.KeyDup(d.priv, key)
	}
	return key
}

func (d *Dict[K, V]) setVal(e *Entry[K, V], val V) {
	if d.typ.ValDup != nil {
		e.value = d.typ.ValDup(d.priv, val)
	} else {
		e.value = val
	}
}

func (d *Dict[K, V]) freeKey(e *Entry[K, V]) {
	if d.typ.KeyDestructor != nil {
		d.typ.KeyDestructor(d.priv, e.key)
	}
}

func (d *Dict[K, V]) freeVal(e *Entry[K, V]) {
	if d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.priv, e.value)
	}
}

// checkInvariants validates the dictionary's structural invariants. It
// compiles away unless the invariants build tag is set.
func (d *Dict[K, V]) checkInvariants() {
	if !invariants {
		return
	}

	if d.pauserehash < 0 {
		panic(fmt.Sprintf("invariant failed: pauserehash is %d", d.pauserehash))
	}

	for tbl := 0; tbl <= 1; tbl++ {
		ht := &d.ht[tbl]
		if ht.size != 0 {
			if ht.size&(ht.size-1) != 0 {
				panic(fmt.Sprintf("invariant failed: ht[%d].size %d is not a power of two", tbl, ht.size))
			}
			if ht.sizemask != ht.size-1 {
				panic(fmt.Sprintf("invariant failed: ht[%d].sizemask %d != size-1 %d", tbl, ht.sizemask, ht.size-1))
			}
		} else if ht.sizemask != 0 || ht.buckets != nil {
			panic(fmt.Sprintf("invariant failed: empty ht[%d] with sizemask %d", tbl, ht.sizemask))
		}

		var used uint64
		for i := uint64(0); i < ht.size; i++ {
			for he := ht.buckets[i]; he != nil; he = he.next {
				if got := d.hashKey(he.key) & ht.sizemask; got != i {
					panic(fmt.Sprintf("invariant failed: ht[%d] entry hashed to bucket %d found in %d", tbl, got, i))
				}
				used++
			}
		}
		if used != ht.used {
			panic(fmt.Sprintf("invariant failed: ht[%d] used count %d, found %d entries", tbl, ht.used, used))
		}
	}

	if d.isRehashing() {
		if d.ht[1].size == 0 {
			panic("invariant failed: rehashing with empty ht[1]")
		}
		for i := int64(0); i < d.rehashidx && uint64(i) < d.ht[0].size; i++ {
			if d.ht[0].buckets[i] != nil {
				panic(fmt.Sprintf("invariant failed: non-empty migrated bucket %d", i))
			}
		}
	} else if d.ht[1].size != 0 {
		panic("invariant failed: populated ht[1] while not rehashing")
	}
}
