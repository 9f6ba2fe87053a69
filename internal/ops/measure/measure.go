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

// Package measure reports image statistics and the quality of a result against a reference.
package measure

import (
	"encoding/json"
	"fmt"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/mlnoga/parlab/internal/stats"
)

// Logs statistics of each image, and optionally MSE and PSNR against a reference image.
// Takes one input, produces one output (the unchanged input)
type OpMeasure struct {
	ops.OpUnaryBase
	Reference string `json:"reference"` // file name of the reference image, with %d expanded to the image ID. Optional
}

var _ ops.Operator = (*OpMeasure)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpMeasureDefault() }) } // register the operator for JSON decoding

func NewOpMeasureDefault() *OpMeasure { return NewOpMeasure("") }

func NewOpMeasure(reference string) *OpMeasure {
	op := OpMeasure{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "measure", Active: true}},
		Reference:   reference,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpMeasure) UnmarshalJSON(data []byte) error {
	type defaults OpMeasure
	def := defaults(*NewOpMeasureDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpMeasure(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpMeasure) Apply(img *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	if !op.Active {
		return img, nil
	}
	s := stats.CalcImage(img.Data, img.Width)
	if s == nil {
		return nil, fmt.Errorf("%d: cannot measure empty image", img.ID)
	}
	fmt.Fprintf(c.Log, "%d: %s\n", img.ID, s)
	ev := c.Logger.Info().Str("op", op.Type).Int("id", img.ID).
		Uint16("min", s.Min).Uint16("max", s.Max).Float64("mean", s.Mean).Float64("stdDev", s.StdDev).
		Uint16("median", s.Median).Int("impulses", s.Impulses).Float64("noise", s.Noise)

	if op.Reference != "" {
		refName := ops.NewOpSave(op.Reference).FileName(img.ID)
		if err := c.CheckPath(refName); err != nil {
			return nil, err
		}
		ref, err := gray.NewImageFromFile(refName, img.ID)
		if err != nil {
			return nil, err
		}
		if ref.Width != img.Width || ref.Height != img.Height {
			return nil, fmt.Errorf("%d: reference %s has size %s, want %s", img.ID, refName,
				ref.DimensionsToString(), img.DimensionsToString())
		}
		mse, psnr, err := stats.Compare(img.Data, ref.Data)
		if err != nil {
			return nil, fmt.Errorf("%d: %w", img.ID, err)
		}
		fmt.Fprintf(c.Log, "%d: MSE %.6g PSNR %.2f dB against %s\n", img.ID, mse, psnr, refName)
		ev = ev.Float64("mse", mse).Float64("psnr", psnr)
	}
	ev.Msg("measured")
	return img, nil
}
