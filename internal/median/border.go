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
	"context"
	"fmt"
	"image"
	"strings"
)

// Treatment of the border band of width r, where the window does not fit into the image
type BorderMode int

const (
	BorderKeep   BorderMode = iota // leave the output untouched
	BorderCopy                     // copy input samples unchanged
	BorderClamp                    // median with window coordinates clamped to the image
	BorderMirror                   // median with window coordinates reflected at the image edge
)

var borderNames = []string{"keep", "copy", "clamp", "mirror"}

func (b BorderMode) String() string {
	if b < 0 || int(b) >= len(borderNames) {
		return fmt.Sprintf("BorderMode(%d)", int(b))
	}
	return borderNames[b]
}

// Parses a border mode from its name. The empty name selects BorderKeep
func ParseBorderMode(name string) (BorderMode, error) {
	if name == "" {
		return BorderKeep, nil
	}
	for i, n := range borderNames {
		if strings.EqualFold(n, name) {
			return BorderMode(i), nil
		}
	}
	return BorderKeep, fmt.Errorf("unknown border mode '%s', expecting one of %s", name, strings.Join(borderNames, ", "))
}

// Returns the four rectangles forming the border band: top, bottom, left, right
func BorderBand(width, height, radius int) []image.Rectangle {
	return []image.Rectangle{
		image.Rect(0, 0, width, radius),
		image.Rect(0, height-radius, width, height),
		image.Rect(0, radius, radius, height-radius),
		image.Rect(width-radius, radius, width, height-radius),
	}
}

func applyBorder(ctx context.Context, output, input []uint16, width, height int, opts Options) error {
	if opts.Border == BorderKeep {
		return nil
	}
	if opts.Border != BorderCopy && opts.Border != BorderClamp && opts.Border != BorderMirror {
		return fmt.Errorf("unknown border mode %v", opts.Border)
	}
	for _, band := range BorderBand(width, height, opts.Radius) {
		err := opts.Executor.For(ctx, band, func(tile image.Rectangle) {
			if opts.Border == BorderCopy {
				for y := tile.Min.Y; y < tile.Max.Y; y++ {
					copy(output[y*width+tile.Min.X:y*width+tile.Max.X], input[y*width+tile.Min.X:y*width+tile.Max.X])
				}
				return
			}
			buf, release := getScratch(WindowSize(opts.Radius))
			defer release()
			for y := tile.Min.Y; y < tile.Max.Y; y++ {
				for x := tile.Min.X; x < tile.Max.X; x++ {
					output[y*width+x] = AtEdge(input, width, height, opts.Radius, x, y, opts.Border, buf, opts.Selector)
				}
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Returns the median of the window around any pixel (x,y), remapping window coordinates
// outside the image with the given mode. BorderKeep and BorderCopy are treated as BorderClamp.
// Requires width>radius and height>radius. For interior pixels, equals At
func AtEdge(input []uint16, width, height, radius, x, y int, mode BorderMode, buf []uint16, sel Selector) uint16 {
	remap := clamp
	if mode == BorderMirror {
		remap = mirror
	}
	side := 2*radius + 1
	buf = buf[:side*side]
	j := 0
	for dy := -radius; dy <= radius; dy++ {
		row := remap(y+dy, height) * width
		for dx := -radius; dx <= radius; dx++ {
			buf[j] = input[row+remap(x+dx, width)]
			j++
		}
	}
	return sel.Median(buf)
}

// replicates the edge sample
func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// reflects at the edge without repeating it, e.g. -1 -> 1 and n -> n-2
func mirror(i, n int) int {
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*(n-1) - i
	}
	return i
}
