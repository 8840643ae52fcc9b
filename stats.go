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
	"strings"
)

// statsVectLen is the number of chain-length histogram slots in Stats
// output; chains of statsVectLen-1 or longer share the last slot.
const statsVectLen = 50

// Stats returns a human-readable summary of the dictionary: table sizes,
// element counts, bucket occupancy and the chain-length distribution, for
// both tables while a rehash is in progress.
func (d *Dict[K, V]) Stats() string {
	var buf strings.Builder
	d.tableStats(&buf, 0, "main hash table")
	if d.isRehashing() {
		d.tableStats(&buf, 1, "rehashing target")
	}
	return buf.String()
}

func (d *Dict[K, V]) tableStats(buf *strings.Builder, tbl int, name string) {
	ht := &d.ht[tbl]
	if ht.used == 0 {
		fmt.Fprintf(buf, "Hash table %d stats (%s):\nNo stats available for empty dictionaries\n", tbl, name)
		return
	}

	var (
		slots       uint64
		maxChainLen uint64
		totChainLen uint64
		clvector    [statsVectLen]uint64
	)
	for i := uint64(0); i < ht.size; i++ {
		if ht.buckets[i] == nil {
			clvector[0]++
			continue
		}
		slots++
		chainLen := uint64(0)
		for he := ht.buckets[i]; he != nil; he = he.next {
			chainLen++
		}
		if chainLen < statsVectLen {
			clvector[chainLen]++
		} else {
			clvector[statsVectLen-1]++
		}
		if chainLen > maxChainLen {
			maxChainLen = chainLen
		}
		totChainLen += chainLen
	}

	fmt.Fprintf(buf, "Hash table %d stats (%s):\n", tbl, name)
	fmt.Fprintf(buf, " table size: %d\n", ht.size)
	fmt.Fprintf(buf, " number of elements: %d\n", ht.used)
	fmt.Fprintf(buf, " different slots: %d\n", slots)
	fmt.Fprintf(buf, " max chain length: %d\n", maxChainLen)
	fmt.Fprintf(buf, " avg chain length (counted): %.02f\n", float64(totChainLen)/float64(slots))
	fmt.Fprintf(buf, " avg chain length (computed): %.02f\n", float64(ht.used)/float64(slots))
	fmt.Fprintf(buf, " Chain length distribution:\n")
	for i, count := range clvector {
		if count == 0 {
			continue
		}
		label := fmt.Sprintf("%d", i)
		if i == statsVectLen-1 {
			label = fmt.Sprintf(">= %d", i)
		}
		fmt.Fprintf(buf, "   %s: %d (%.02f%%)\n", label, count, float64(count)/float64(ht.size)*100)
	}
}
