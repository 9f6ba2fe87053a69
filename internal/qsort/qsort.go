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

// Sorts the given slice of 16-bit samples in place, using quicksort with Hoare partitioning
func QSortUint16(a []uint16) {
	for len(a) > 1 {
		index := QPartitionUint16(a)
		// recurse into the smaller half, loop on the larger one to bound stack depth
		if index+1 < len(a)-index-1 {
			QSortUint16(a[:index+1])
			a = a[index+1:]
		} else {
			QSortUint16(a[index+1:])
			a = a[:index+1]
		}
	}
}

// Partitions the slice around its middle element. Returns index i such that
// a[:i+1] holds values <= pivot and a[i+1:] holds values >= pivot
func QPartitionUint16(a []uint16) int {
	left, right := 0, len(a)-1
	mid := (left + right) >> 1
	pivot := a[mid]
	l := left - 1
	r := right + 1
	for {
		for {
			l++
			if a[l] >= pivot {
				break
			}
		}
		for {
			r--
			if a[r] <= pivot {
				break
			}
		}
		if l >= r {
			return r
		}
		a[l], a[r] = a[r], a[l]
	}
}

// Returns the median of a slice of odd length, i.e. the element at index len(a)/2 after sorting.
// For even lengths, returns the upper of the two middle elements. Reorders the slice
func QSelectMedianUint16(a []uint16) uint16 {
	return QSelectUint16(a, (len(a)>>1)+1)
}

// Returns the k-th smallest element of the slice, counting from k=1. Reorders the slice
func QSelectUint16(a []uint16, k int) uint16 {
	left, right := 0, len(a)-1
	for left < right {
		// partition
		mid := (left + right) >> 1
		pivot := a[mid]
		l, r := left-1, right+1
		for {
			for {
				l++
				if a[l] >= pivot {
					break
				}
			}
			for {
				r--
				if a[r] <= pivot {
					break
				}
			}
			if l >= r {
				break
			} // index in r
			a[l], a[r] = a[r], a[l]
		}
		index := r

		offset := index - left + 1
		if k <= offset {
			right = index
		} else {
			left = index + 1
			k = k - offset
		}
	}
	return a[left]
}
