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

package sched

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
)

// Emulates a CUDA-style launch with a fixed grid of blocks on goroutines.
// The rectangle is cut into Block-sized tiles. Block (bx,by) processes the tiles
// (bx+i*Grid.X, by+j*Grid.Y) for all i, j >= 0 in a grid-stride loop, so any
// rectangle is covered regardless of the grid size
type Grid struct {
	Grid    Dim3 `json:"grid"`
	Block   Dim3 `json:"block"`
	Workers int  `json:"workers"` // maximum concurrently running blocks, <=0 for default
}

var _ Executor = (*Grid)(nil) // Compile time assertion: type implements the interface

func NewGrid(grid, block Dim3, workers int) *Grid {
	return &Grid{Grid: grid, Block: block, Workers: workers}
}

// Returns the launch shape used by the denoising lab: 16x16 blocks of 16x16 threads
func NewGridDefault() *Grid {
	return NewGrid(Dim3{X: 16, Y: 16, Z: 1}, Dim3{X: 16, Y: 16, Z: 1}, 0)
}

func (g *Grid) Name() string { return NameGrid }

func (g *Grid) For(ctx context.Context, r image.Rectangle, body Body) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	gx, gy := g.Grid.X, g.Grid.Y
	bx, by := g.Block.X, g.Block.Y
	if gx < 1 {
		gx = 1
	}
	if gy < 1 {
		gy = 1
	}
	if bx < 1 {
		bx = 1
	}
	if by < 1 {
		by = 1
	}
	tilesX := (r.Dx() + bx - 1) / bx
	tilesY := (r.Dy() + by - 1) / by

	// blocks beyond the tile count would idle, so do not launch them
	if gx > tilesX {
		gx = tilesX
	}
	if gy > tilesY {
		gy = tilesY
	}

	workers := g.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > gx*gy {
		workers = gx * gy
	}

	var cancelled atomic.Bool
	runBlock := func(blockX, blockY int) {
		for ty := blockY; ty < tilesY; ty += gy {
			for tx := blockX; tx < tilesX; tx += gx {
				if ctx.Err() != nil {
					cancelled.Store(true)
					return
				}
				x0, y0 := r.Min.X+tx*bx, r.Min.Y+ty*by
				tile := image.Rect(x0, y0, x0+bx, y0+by).Intersect(r)
				body(tile)
			}
		}
	}

	// blocks are queued on a channel and drained by a fixed set of workers
	blocks := make(chan [2]int, workers*2)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for b := range blocks {
				runBlock(b[0], b[1])
			}
		}()
	}
	for blockY := 0; blockY < gy; blockY++ {
		for blockX := 0; blockX < gx; blockX++ {
			blocks <- [2]int{blockX, blockY}
		}
	}
	close(blocks)
	wg.Wait()

	if cancelled.Load() {
		return ctx.Err()
	}
	return nil
}
