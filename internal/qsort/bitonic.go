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

// Sorts a[from:to] ascending with a bitonic sorting network. Works for any length,
// not just powers of two. Performs the same sequence of compare-exchanges
// regardless of the data
func BitonicSortUint16(a []uint16, from, to int) {
	if to-from > 1 {
		bitonicSort(a, from, to-from, true)
	}
}

func bitonicSort(a []uint16, lo, n int, up bool) {
	if n <= 1 {
		return
	}
	m := n / 2
	bitonicSort(a, lo, m, !up)
	bitonicSort(a, lo+m, n-m, up)
	bitonicMerge(a, lo, n, up)
}

func bitonicMerge(a []uint16, lo, n int, up bool) {
	if n <= 1 {
		return
	}
	m := greatestPowerOfTwoBelow(n)
	for i := lo; i < lo+n-m; i++ {
		if (a[i] > a[i+m]) == up {
			a[i], a[i+m] = a[i+m], a[i]
		}
	}
	bitonicMerge(a, lo, m, up)
	bitonicMerge(a, lo+m, n-m, up)
}

// largest power of two strictly less than n, for n>=2
func greatestPowerOfTwoBelow(n int) int {
	k := 1
	for k < n {
		k <<= 1
	}
	return k >> 1
}

// Calculates the median of a slice of length nine with an optimal median network.
// Modifies the elements in place.
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
func MedianUint16Slice9(a []uint16) uint16 { // 30x min/max
	_ = a[8] // bounds check hint

	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0] // swap(a,0,1)
	}
	if a[3] > a[4] {
		a[3], a[4] = a[4], a[3] // swap(a,3,4)
	}
	if a[6] > a[7] {
		a[6], a[7] = a[7], a[6] // swap(a,6,7)
	}
	if a[1] > a[2] {
		a[1], a[2] = a[2], a[1] // swap(a,1,2)
	}
	if a[4] > a[5] {
		a[4], a[5] = a[5], a[4] // swap(a,4,5)
	}
	if a[7] > a[8] {
		a[7], a[8] = a[8], a[7] // swap(a,7,8)
	}
	if a[0] > a[1] {
		a[0], a[1] = a[1], a[0] // swap(a,0,1)
	}
	if a[3] > a[4] {
		a[3], a[4] = a[4], a[3] // swap(a,3,4)
	}
	if a[6] > a[7] {
		a[6], a[7] = a[7], a[6] // swap(a,6,7)
	}
	if a[0] > a[3] {
		a[3] = a[0] // max (a,0,3)
	}
	if a[3] > a[6] {
		a[6] = a[3] // max (a,3,6)
	}
	if a[1] > a[4] {
		a[1], a[4] = a[4], a[1] // swap(a,1,4)
	}
	if a[4] > a[7] {
		a[4] = a[7] // min (a,4,7)
	}
	if a[1] > a[4] {
		a[4] = a[1] // max (a,1,4)
	}
	if a[5] > a[8] {
		a[5] = a[8] // min (a,5,8)
	}
	if a[2] > a[5] {
		a[2] = a[5] // min (a,2,5)
	}
	if a[2] > a[4] {
		a[2], a[4] = a[4], a[2] // swap(a,2,4)
	}
	if a[4] > a[6] {
		a[4] = a[6] // min (a,4,6)
	}
	if a[2] > a[4] {
		a[4] = a[2] // max (a,2,4)
	}
	return a[4]
}
