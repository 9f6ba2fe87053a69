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

package stats

import (
	"math"
)

// Calculate histogram of 16-bit data over the full value range into given bins
func Histogram(data []uint16, bins []int32) {
	for i := range bins {
		bins[i] = 0
	}
	scale := float64(len(bins)) / (math.MaxUint16 + 1)
	for _, d := range data {
		bins[int(float64(d)*scale)]++
	}
}

// Returns the sample value at the center of the fullest bin. Ties go to the lowest bin
func GetPeak(bins []int32) uint16 {
	maxIndex, maxValue := 0, int32(math.MinInt32)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	width := (math.MaxUint16 + 1) / float64(len(bins))
	return uint16((float64(maxIndex) + 0.5) * width)
}
