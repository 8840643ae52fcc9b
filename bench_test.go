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
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	var cases = []int{
		16,
		128,
		1024,
		8192,
		1 << 16,
	}

	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n) })
		}
	}
}

func benchDict(n int) *Dict[int64, int64] {
	d := New[int64, int64](Int64Type[int64]())
	for i := 0; i < n; i++ {
		d.Replace(int64(i), int64(i))
	}
	for d.IsRehashing() {
		d.Rehash(100)
	}
	return d
}

func BenchmarkDictGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = m[int64(i%n)]
		}
		cs.Stop()
	}))
	b.Run("impl=dict", benchSizes(func(b *testing.B, n int) {
		d := benchDict(n)
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = d.Find(int64(i % n))
		}
		cs.Stop()
	}))
}

func BenchmarkDictGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = m[int64(-1-i%n)]
		}
		cs.Stop()
	}))
	b.Run("impl=dict", benchSizes(func(b *testing.B, n int) {
		d := benchDict(n)
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = d.Find(int64(-1 - i%n))
		}
		cs.Stop()
	}))
}

func BenchmarkDictPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		cs := perfbench.Open(b)
		for i := 0; i < b.N; i++ {
			m := make(map[int64]int64)
			for j := 0; j < n; j++ {
				m[int64(j)] = int64(j)
			}
		}
		cs.Stop()
	}))
	b.Run("impl=dict", benchSizes(func(b *testing.B, n int) {
		cs := perfbench.Open(b)
		for i := 0; i < b.N; i++ {
			d := New[int64, int64](Int64Type[int64]())
			for j := 0; j < n; j++ {
				d.Replace(int64(j), int64(j))
			}
		}
		cs.Stop()
	}))
}

func BenchmarkDictPutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", benchSizes(func(b *testing.B, n int) {
		m := make(map[int64]int64, n)
		for i := 0; i < n; i++ {
			m[int64(i)] = int64(i)
		}
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := int64(i % n)
			delete(m, k)
			m[k] = k
		}
		cs.Stop()
	}))
	b.Run("impl=dict", benchSizes(func(b *testing.B, n int) {
		d := benchDict(n)
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := int64(i % n)
			d.Delete(k)
			d.Replace(k, k)
		}
		cs.Stop()
	}))
}

func BenchmarkDictScan(b *testing.B) {
	benchSizes(func(b *testing.B, n int) {
		d := benchDict(n)
		cs := perfbench.Open(b)
		b.ResetTimer()
		var sum int64
		for i := 0; i < b.N; i++ {
			v := uint64(0)
			for {
				v = d.Scan(v, func(e *Entry[int64, int64]) {
					sum += e.Value()
				}, nil)
				if v == 0 {
					break
				}
			}
		}
		cs.Stop()
	})(b)
}

func BenchmarkDictRehash(b *testing.B) {
	benchSizes(func(b *testing.B, n int) {
		d := benchDict(n)
		cs := perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			if err := d.Expand(d.ht[0].size * 2); err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
			for d.Rehash(100) {
			}
			b.StopTimer()
			if err := d.Resize(); err != nil {
				b.Fatal(err)
			}
			for d.Rehash(100) {
			}
			b.StartTimer()
		}
		cs.Stop()
	})(b)
}
