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

	"github.com/dchest/siphash"
)

// hashSeed keys the byte-buffer hash helpers. Process-wide: embedders that
// want per-run hash randomization set it once at startup, before any
// dictionary keyed on these helpers exists.
var hashSeed [16]byte

// SetHashFunctionSeed sets the 16-byte key of GenHashFunction and
// GenCaseHashFunction. Changing the seed while dictionaries hashed with the
// old seed are live makes their keys unfindable.
func SetHashFunctionSeed(seed [16]byte) { hashSeed = seed }

// GetHashFunctionSeed returns the current 16-byte hash key.
func GetHashFunctionSeed() [16]byte { return hashSeed }

// GenHashFunction hashes an arbitrary byte buffer with SipHash-2-4, keyed by
// the process-wide seed. The dictionary itself never calls this; it is the
// building block for Type.Hash implementations over byte-string keys.
func GenHashFunction(buf []byte) uint64 {
	k0 := binary.LittleEndian.Uint64(hashSeed[0:8])
	k1 := binary.LittleEndian.Uint64(hashSeed[8:16])
	return siphash.Hash(k0, k1, buf)
}

// GenCaseHashFunction is GenHashFunction over the ASCII-lowercased input,
// for case-insensitive tables. Bytes outside 'A'..'Z' pass through
// untouched, so it agrees with GenHashFunction on already-lowercase input.
func GenCaseHashFunction(buf []byte) uint64 {
	h := siphash.New(hashSeed[:])
	var tmp [64]byte
	for len(buf) > 0 {
		n := copy(tmp[:], buf)
		for i := 0; i < n; i++ {
			if c := tmp[i]; c >= 'A' && c <= 'Z' {
				tmp[i] = c - 'A' + 'a'
			}
		}
		h.Write(tmp[:n])
		buf = buf[n:]
	}
	return h.Sum64()
}
