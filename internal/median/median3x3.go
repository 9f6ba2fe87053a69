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

package median

import (
	"image"

	"github.com/mlnoga/parlab/internal/qsort"
)

// Applies a 3x3 median filter to all pixels of the given tile, which must lie in the interior.
// Unrolled gathering and a median network, no scratch buffer from the pool
func filterTile3x3(output, data []uint16, width int, tile image.Rectangle) {
	var gathered [9]uint16
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		for x := tile.Min.X; x < tile.Max.X; x++ {
			ioff := (y-1)*width + x - 1
			gathered[0] = data[ioff]
			gathered[1] = data[ioff+1]
			gathered[2] = data[ioff+2]
			ioff += width
			gathered[3] = data[ioff]
			gathered[4] = data[ioff+1]
			gathered[5] = data[ioff+2]
			ioff += width
			gathered[6] = data[ioff]
			gathered[7] = data[ioff+1]
			gathered[8] = data[ioff+2]
			output[y*width+x] = qsort.MedianUint16Slice9(gathered[:])
		}
	}
}
