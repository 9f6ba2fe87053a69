// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package qsort

import (
	"testing"

	"github.com/valyala/fastrand"
)

// returns a random permutation of 1..n
func permutation(rng *fastrand.RNG, n int) []uint16 {
	arr := make([]uint16, n)
	for j := 0; j < len(arr); j++ {
		arr[j] = uint16(j + 1)
	}
	for j := 0; j < len(arr); j++ {
		k := rng.Uint32n(uint32(len(arr)))
		arr[j], arr[k] = arr[k], arr[j]
	}
	return arr
}

// returns n random values drawn from a small range, so there are many duplicates
func withDuplicates(rng *fastrand.RNG, n int, levels uint32) []uint16 {
	arr := make([]uint16, n)
	for j := range arr {
		arr[j] = uint16(rng.Uint32n(levels))
	}
	return arr
}

func isSorted(a []uint16) bool {
	for i := 1; i < len(a); i++ {
		if a[i-1] > a[i] {
			return false
		}
	}
	return true
}

func histogramOf(a []uint16) map[uint16]int {
	h := map[uint16]int{}
	for _, v := range a {
		h[v]++
	}
	return h
}

func sameElements(a, b []uint16) bool {
	ha, hb := histogramOf(a), histogramOf(b)
	if len(ha) != len(hb) {
		return false
	}
	for k, v := range ha {
		if hb[k] != v {
			return false
		}
	}
	return true
}

func TestMedian(t *testing.T) {
	rng := fastrand.RNG{}
	for i := 1; i < 1000; i += 2 {
		arr := permutation(&rng, i)
		expect := uint16((i + 1) / 2)
		res := QSelectMedianUint16(arr)
		if res != expect {
			t.Errorf("median(1..%d) got %d expect %d", i, res, expect)
		}
	}
}

func TestSelectAllRanks(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 1; n < 60; n++ {
		for k := 1; k <= n; k++ {
			arr := permutation(&rng, n)
			if res := QSelectUint16(arr, k); res != uint16(k) {
				t.Errorf("select(1..%d, k=%d) got %d", n, k, res)
			}
		}
	}
}

func TestQSort(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 0; n < 300; n++ {
		for _, levels := range []uint32{2, 17, 65536} {
			arr := withDuplicates(&rng, n, levels)
			orig := append([]uint16(nil), arr...)
			QSortUint16(arr)
			if !isSorted(arr) {
				t.Fatalf("n=%d levels=%d: not sorted: %v", n, levels, arr)
			}
			if !sameElements(arr, orig) {
				t.Fatalf("n=%d levels=%d: elements changed", n, levels)
			}
		}
	}
}

func TestBitonicSort(t *testing.T) {
	rng := fastrand.RNG{}
	for n := 0; n < 300; n++ {
		for _, levels := range []uint32{2, 17, 65536} {
			arr := withDuplicates(&rng, n, levels)
			orig := append([]uint16(nil), arr...)
			BitonicSortUint16(arr, 0, len(arr))
			if !isSorted(arr) {
				t.Fatalf("n=%d levels=%d: not sorted: %v", n, levels, arr)
			}
			if !sameElements(arr, orig) {
				t.Fatalf("n=%d levels=%d: elements changed", n, levels)
			}
		}
	}
}

func TestBitonicSortSubrange(t *testing.T) {
	arr := []uint16{9, 8, 7, 6, 5, 4, 3, 2, 1}
	BitonicSortUint16(arr, 2, 7)
	want := []uint16{9, 8, 3, 4, 5, 6, 7, 2, 1}
	for i := range arr {
		if arr[i] != want[i] {
			t.Fatalf("arr=%v; want %v", arr, want)
		}
	}
}

func TestMedian9(t *testing.T) {
	rng := fastrand.RNG{}
	for i := 0; i < 10000; i++ {
		arr := withDuplicates(&rng, 9, uint32(2+i%200))
		sorted := append([]uint16(nil), arr...)
		QSortUint16(sorted)
		if res := MedianUint16Slice9(arr); res != sorted[4] {
			t.Fatalf("median9(%v) got %d; want %d", sorted, res, sorted[4])
		}
	}
}
