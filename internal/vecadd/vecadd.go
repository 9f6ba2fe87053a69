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

// Package vecadd implements elementwise vector addition over an executor,
// with the fill and verification steps of the vector addition lab.
package vecadd

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/mlnoga/parlab/internal/sched"
)

var ErrLengthMismatch = errors.New("vector length mismatch")

// Reports the first element which does not hold the expected sum
type MismatchError struct {
	Index int
	Got   float32
	Want  float32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("ERROR at %d -- %v != %v", e.Index, e.Got, e.Want)
}

// Computes dst[i]=a[i]+b[i] for all i. The vector is laid out as a single row of pixels,
// so each tile handed out by the executor is a contiguous index range
func Add(ctx context.Context, ex sched.Executor, dst, a, b []float32) error {
	if len(dst) != len(a) || len(dst) != len(b) {
		return fmt.Errorf("%w: dst %d, a %d, b %d", ErrLengthMismatch, len(dst), len(a), len(b))
	}
	if len(dst) == 0 {
		return nil
	}
	return ex.For(ctx, image.Rect(0, 0, len(dst), 1), func(tile image.Rectangle) {
		addRange(dst[tile.Min.X:tile.Max.X], a[tile.Min.X:tile.Max.X], b[tile.Min.X:tile.Max.X])
	})
}

func addRange(dst, a, b []float32) {
	b = b[:len(dst)]
	a = a[:len(dst)]
	for i := range dst {
		dst[i] = a[i] + b[i]
	}
}

// Fills a[i]=i and b[i]=1
func Fill(a, b []float32) {
	for i := range a {
		a[i] = float32(i)
	}
	for i := range b {
		b[i] = 1
	}
}

// Checks dst[i]==float32(i)+1 for the inputs produced by Fill. Returns the first mismatch, or nil
func Verify(dst []float32) *MismatchError {
	for i, v := range dst {
		if want := float32(i) + 1; v != want {
			return &MismatchError{Index: i, Got: v, Want: want}
		}
	}
	return nil
}

// Allocates, fills, adds and verifies vectors of length n. Returns ErrLengthMismatch
// wrapped for n<0, a *MismatchError if verification fails, or the context error
func Run(ctx context.Context, ex sched.Executor, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrLengthMismatch, n)
	}
	a, b, dst := make([]float32, n), make([]float32, n), make([]float32, n)
	Fill(a, b)
	if err := Add(ctx, ex, dst, a, b); err != nil {
		return err
	}
	if m := Verify(dst); m != nil {
		return m
	}
	return nil
}
