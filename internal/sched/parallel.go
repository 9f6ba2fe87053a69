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
)

// Splits the rectangle into bands and runs them on a bounded number of goroutines.
// Bands run along the longer axis, so thin vectors and tall images both spread out
type Parallel struct {
	Workers int `json:"workers"` // maximum concurrent goroutines, <=0 for default
	Tiles   int `json:"tiles"`   // number of bands, <=0 for 4 per worker
}

var _ Executor = (*Parallel)(nil) // Compile time assertion: type implements the interface

func NewParallel(workers, tiles int) *Parallel {
	return &Parallel{Workers: workers, Tiles: tiles}
}

func (p *Parallel) Name() string { return NameParallel }

func (p *Parallel) workers() int {
	if p.Workers <= 0 {
		return DefaultWorkers()
	}
	return p.Workers
}

func (p *Parallel) For(ctx context.Context, r image.Rectangle, body Body) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.Empty() {
		return nil
	}
	workers := p.workers()
	tiles := p.Tiles
	if tiles <= 0 {
		tiles = 4 * workers
	}
	bands := Split(r, tiles)
	if workers > len(bands) {
		workers = len(bands)
	}
	if workers == 1 {
		for _, band := range bands {
			if err := ctx.Err(); err != nil {
				return err
			}
			body(band)
		}
		return nil
	}

	limiter := make(chan bool, workers)
	skipped := false
	for _, band := range bands {
		select {
		case limiter <- true:
		case <-ctx.Done():
			skipped = true
		}
		if skipped {
			break
		}
		go func(b image.Rectangle) {
			defer func() { <-limiter }()
			body(b)
		}(band)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	if skipped {
		return ctx.Err()
	}
	return nil
}

// Splits r into at most n non-empty bands of near-equal size along its longer axis.
// Prefers horizontal bands (whole rows) as long as there are at least n rows
func Split(r image.Rectangle, n int) []image.Rectangle {
	if r.Empty() {
		return nil
	}
	if n < 1 {
		n = 1
	}
	rows := r.Dy() >= n || r.Dy() >= r.Dx()
	length := r.Dx()
	if rows {
		length = r.Dy()
	}
	if n > length {
		n = length
	}

	bands := make([]image.Rectangle, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := (i + 1) * length / n
		if end == start {
			continue
		}
		if rows {
			bands = append(bands, image.Rect(r.Min.X, r.Min.Y+start, r.Max.X, r.Min.Y+end))
		} else {
			bands = append(bands, image.Rect(r.Min.X+start, r.Min.Y, r.Min.X+end, r.Max.Y))
		}
		start = end
	}
	return bands
}
