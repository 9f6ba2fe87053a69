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

// Package median implements a windowed median filter for 16-bit grayscale images.
//
// Every interior pixel, i.e. every pixel whose (2r+1)x(2r+1) neighborhood lies fully
// inside the image, is replaced by the median of that neighborhood. The input is never
// written, so results do not depend on traversal order, tiling or parallelism.
// The border band of width r is handled according to a BorderMode.
package median

import (
	"context"
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/mlnoga/parlab/internal/sched"
)

var (
	// Radius or image dimensions leave no interior region
	ErrInvalidGeometry = errors.New("invalid geometry")

	// A sample buffer does not hold exactly width*height samples
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")
)

// Options for the median filter
type Options struct {
	Radius   int            // Window radius r, window side is 2r+1. Must be >=1
	Border   BorderMode     // Treatment of the border band of width r
	Selector Selector       // Median selection strategy, nil for the default
	Executor sched.Executor // Execution strategy, nil for parallel on all CPUs
}

func (o Options) withDefaults() Options {
	if o.Selector == nil {
		o.Selector = NewNetwork()
	}
	if o.Executor == nil {
		o.Executor = sched.NewParallel(0, 0)
	}
	return o
}

// Number of samples in a window of the given radius
func WindowSize(radius int) int {
	side := 2*radius + 1
	return side * side
}

// Returns the interior region for the given geometry, i.e. all pixels whose
// full neighborhood lies inside the image
func Interior(width, height, radius int) image.Rectangle {
	return image.Rect(radius, radius, width-radius, height-radius)
}

// Checks that the radius is positive and the interior region is non-empty
func CheckGeometry(width, height, radius int) error {
	if radius < 1 {
		return fmt.Errorf("%w: radius %d must be at least 1", ErrInvalidGeometry, radius)
	}
	if width <= 2*radius || height <= 2*radius {
		return fmt.Errorf("%w: image %dx%d has no interior for radius %d, need width and height above %d",
			ErrInvalidGeometry, width, height, radius, 2*radius)
	}
	return nil
}

// Reports whether the backing storage of a and b shares at least one sample
func overlaps(a, b []uint16) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	const size = unsafe.Sizeof(uint16(0))
	aStart, bStart := uintptr(unsafe.Pointer(&a[0])), uintptr(unsafe.Pointer(&b[0]))
	aEnd, bEnd := aStart+uintptr(len(a))*size, bStart+uintptr(len(b))*size
	return aStart < bEnd && bStart < aEnd
}

func checkBuffer(name string, buf []uint16, width, height int) error {
	if len(buf) != width*height {
		return fmt.Errorf("%w: %s has %d samples, want %dx%d=%d",
			ErrBufferSizeMismatch, name, len(buf), width, height, width*height)
	}
	return nil
}

// Applies the median filter to input and stores results in output. Both buffers
// hold width*height samples in row-major order. Interior pixels are always written,
// border pixels as per opts.Border. If output and input overlap in memory, the input
// is snapshotted first so that all medians are computed from the original samples
func Apply(ctx context.Context, output, input []uint16, width, height int, opts Options) error {
	opts = opts.withDefaults()
	if err := CheckGeometry(width, height, opts.Radius); err != nil {
		return err
	}
	if err := checkBuffer("input", input, width, height); err != nil {
		return err
	}
	if err := checkBuffer("output", output, width, height); err != nil {
		return err
	}
	if overlaps(output, input) {
		input = append([]uint16(nil), input...)
	}

	radius, sel := opts.Radius, opts.Selector
	_, isNetwork := sel.(*Network)
	err := opts.Executor.For(ctx, Interior(width, height, radius), func(tile image.Rectangle) {
		if radius == 1 && isNetwork {
			filterTile3x3(output, input, width, tile)
		} else {
			filterTile(output, input, width, radius, tile, sel)
		}
	})
	if err != nil {
		return err
	}
	return applyBorder(ctx, output, input, width, height, opts)
}

// Allocates a new output buffer and applies the median filter to it. Border pixels
// not written by the border mode are zero
func NewFiltered(ctx context.Context, input []uint16, width, height int, opts Options) ([]uint16, error) {
	output := make([]uint16, width*height)
	if err := Apply(ctx, output, input, width, height, opts); err != nil {
		return nil, err
	}
	return output, nil
}

// Computes the medians for all pixels of the given interior tile.
// Uses one scratch buffer for the whole tile
func filterTile(output, input []uint16, width, radius int, tile image.Rectangle, sel Selector) {
	buf, release := getScratch(WindowSize(radius))
	defer release()
	for y := tile.Min.Y; y < tile.Max.Y; y++ {
		row := y * width
		for x := tile.Min.X; x < tile.Max.X; x++ {
			output[row+x] = At(input, width, radius, x, y, buf, sel)
		}
	}
}

// Returns the median of the window around interior pixel (x,y). buf must hold
// WindowSize(radius) samples and is overwritten. Pure function of its inputs
func At(input []uint16, width, radius, x, y int, buf []uint16, sel Selector) uint16 {
	return sel.Median(Gather(buf, input, width, radius, x, y))
}

// Gathers the window around interior pixel (x,y) into buf, row by row.
// Each window sample lands in exactly one slot of buf. Returns buf
func Gather(buf, input []uint16, width, radius, x, y int) []uint16 {
	side := 2*radius + 1
	buf = buf[:side*side]
	start := (y-radius)*width + x - radius
	for k := 0; k < side; k++ {
		copy(buf[k*side:(k+1)*side], input[start:start+side])
		start += width
	}
	return buf
}
