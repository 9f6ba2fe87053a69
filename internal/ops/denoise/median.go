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

// Package denoise provides operators which add and remove impulse noise.
package denoise

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/mlnoga/parlab/internal/median"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/mlnoga/parlab/internal/sched"
)

// Applies a windowed median filter. Takes one input, produces one output
type OpMedian struct {
	ops.OpUnaryBase
	Radius  int    `json:"radius"`
	Exec    string `json:"exec"`    // sequential, parallel or grid
	Workers int    `json:"workers"` // <=0 for GOMAXPROCS
	Grid    int    `json:"grid"`    // square grid of blocks, for exec grid
	Block   int    `json:"block"`   // square block of pixels, for exec grid
	Sorter  string `json:"sorter"`  // qsort, bitonic, qselect or network
	Border  string `json:"border"`  // keep, copy, clamp or mirror
}

var _ ops.Operator = (*OpMedian)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpMedianDefault() }) } // register the operator for JSON decoding

func NewOpMedianDefault() *OpMedian {
	return NewOpMedian(3, sched.NameParallel, 0, 16, 16, median.SelectorNetwork, median.BorderKeep.String())
}

func NewOpMedian(radius int, exec string, workers, grid, block int, sorter, border string) *OpMedian {
	op := OpMedian{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "median", Active: radius != 0}},
		Radius:      radius,
		Exec:        exec,
		Workers:     workers,
		Grid:        grid,
		Block:       block,
		Sorter:      sorter,
		Border:      border,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpMedian) UnmarshalJSON(data []byte) error {
	type defaults OpMedian
	def := defaults(*NewOpMedianDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpMedian(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

// Builds the filter options from the configuration strings
func (op *OpMedian) Options() (opts median.Options, err error) {
	opts.Radius = op.Radius
	if op.Radius < 0 {
		return opts, fmt.Errorf("%w: negative radius %d", median.ErrInvalidGeometry, op.Radius)
	}
	if opts.Executor, err = sched.Parse(op.Exec, op.Workers, op.Grid, op.Block); err != nil {
		return opts, err
	}
	if opts.Selector, err = median.ParseSelector(op.Sorter); err != nil {
		return opts, err
	}
	if opts.Border, err = median.ParseBorderMode(op.Border); err != nil {
		return opts, err
	}
	return opts, nil
}

// Validates the configuration before any image is loaded
func (op *OpMedian) MakePromises(ins []ops.Promise, c *ops.Context) (outs []ops.Promise, err error) {
	if _, err := op.Options(); err != nil {
		return nil, fmt.Errorf("%s operator: %w", op.Type, err)
	}
	return op.OpUnaryBase.MakePromises(ins, c)
}

func (op *OpMedian) Apply(img *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	if !op.Active {
		return img, nil
	}
	opts, err := op.Options()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(c.Log, "%d: Median filtering %s pixels with radius %d, %s selection and %s border ...\n",
		img.ID, img.DimensionsToString(), op.Radius, opts.Selector.Name(), opts.Border)

	start := time.Now()
	data, err := median.NewFiltered(c.Context(), img.Data, img.Width, img.Height, opts)
	if err != nil {
		return nil, fmt.Errorf("%d: %w", img.ID, err)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(c.Log, "%d: Parallel2D %s time : %.2f\n", img.ID, opts.Executor.Name(), elapsed.Seconds())
	c.Logger.Info().Str("op", op.Type).Int("id", img.ID).Str("exec", opts.Executor.Name()).
		Str("sorter", opts.Selector.Name()).Int("radius", op.Radius).Dur("elapsed", elapsed).Msg("filtered")

	result = gray.NewImage(img.Width, img.Height, data)
	result.ID, result.FileName = img.ID, img.FileName
	return result, nil
}
