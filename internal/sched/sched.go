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

// Package sched runs data-parallel kernels over 2D index ranges.
// An Executor hands out disjoint tiles of a rectangle to a kernel body, either on the
// calling goroutine, on a bounded pool of worker goroutines, or following a CUDA-style
// grid/block launch shape emulated on goroutines.
package sched

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"strings"
)

// A kernel body. Receives a tile that is disjoint from all other tiles of the same launch.
// May be called concurrently from several goroutines
type Body func(tile image.Rectangle)

// Executes a kernel body over all tiles of a rectangle. When For returns nil,
// the union of all tiles passed to body is exactly r, and every pixel of r was
// covered by exactly one tile. When the context is cancelled, remaining tiles are
// skipped, tiles already started run to completion, and the context error is returned
type Executor interface {
	Name() string
	For(ctx context.Context, r image.Rectangle, body Body) error
}

// Names of the available strategies
const (
	NameSequential = "sequential"
	NameParallel   = "parallel"
	NameGrid       = "grid"
)

// Launch dimensions, as in CUDA. Only X and Y are used for 2D launches
type Dim3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Number of elements covered by the dimensions. Z=0 counts as 1
func (d Dim3) Size() int {
	z := d.Z
	if z == 0 {
		z = 1
	}
	return d.X * d.Y * z
}

func (d Dim3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", d.X, d.Y, d.Z)
}

// Number of worker goroutines to use by default
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Builds an executor from its configuration name. workers<=0 selects the default,
// grid and block give the square launch shape for the grid strategy
func Parse(name string, workers, grid, block int) (Executor, error) {
	switch strings.ToLower(name) {
	case NameSequential, "seq":
		return NewSequential(), nil
	case NameParallel, "par", "":
		return NewParallel(workers, 0), nil
	case NameGrid:
		if grid <= 0 || block <= 0 {
			return nil, fmt.Errorf("grid executor needs positive grid and block sizes, got grid=%d block=%d", grid, block)
		}
		return NewGrid(Dim3{X: grid, Y: grid, Z: 1}, Dim3{X: block, Y: block, Z: 1}, workers), nil
	}
	return nil, fmt.Errorf("unknown executor '%s', expecting one of %s, %s, %s", name, NameSequential, NameParallel, NameGrid)
}

// Runs the whole rectangle as a single tile on the calling goroutine
type Sequential struct{}

var _ Executor = (*Sequential)(nil) // Compile time assertion: type implements the interface

func NewSequential() *Sequential { return &Sequential{} }

func (s *Sequential) Name() string { return NameSequential }

func (s *Sequential) For(ctx context.Context, r image.Rectangle, body Body) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	body(r)
	return nil
}
