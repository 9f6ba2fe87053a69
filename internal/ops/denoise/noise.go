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

package denoise

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/valyala/fastrand"
)

// Adds salt and pepper noise in place. Takes one input, produces one output
type OpNoise struct {
	ops.OpUnaryBase
	Probability float64 `json:"probability"` // chance of a sample being replaced, in [0,1]
	Seed        uint32  `json:"seed"`        // combined with the image ID. 0 seeds randomly
}

var _ ops.Operator = (*OpNoise)(nil) // this type is an Operator
func init() { ops.SetOperatorFactory(func() ops.Operator { return NewOpNoiseDefault() }) } // register the operator for JSON decoding

func NewOpNoiseDefault() *OpNoise { return NewOpNoise(0.05, 1) }

func NewOpNoise(probability float64, seed uint32) *OpNoise {
	op := OpNoise{
		OpUnaryBase: ops.OpUnaryBase{OpBase: ops.OpBase{Type: "noise", Active: probability != 0}},
		Probability: probability,
		Seed:        seed,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpNoise) UnmarshalJSON(data []byte) error {
	type defaults OpNoise
	def := defaults(*NewOpNoiseDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpNoise(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

func (op *OpNoise) Apply(img *gray.Image, c *ops.Context) (result *gray.Image, err error) {
	if !op.Active {
		return img, nil
	}
	if op.Probability < 0 || op.Probability > 1 || math.IsNaN(op.Probability) {
		return nil, fmt.Errorf("%d: noise probability %g outside [0,1]", img.ID, op.Probability)
	}
	seed := uint32(0)
	if op.Seed != 0 {
		seed = op.Seed + uint32(img.ID)
	}
	n := SaltAndPepper(img.Data, op.Probability, seed)
	fmt.Fprintf(c.Log, "%d: Added salt and pepper noise to %d of %d samples (p=%.3g)\n", img.ID, n, len(img.Data), op.Probability)
	return img, nil
}

// Resolution of the replacement probability
const probabilityBits = 24

// Replaces each sample with probability p by 0 or 65535 with equal odds.
// Deterministic for a non-zero seed. Returns the number of replaced samples
func SaltAndPepper(data []uint16, p float64, seed uint32) (replaced int) {
	var rng fastrand.RNG
	rng.Seed(seed)
	threshold := uint32(p * (1 << probabilityBits))
	if p >= 1 {
		threshold = 1 << probabilityBits
	}
	for i := range data {
		if rng.Uint32n(1<<probabilityBits) >= threshold {
			continue
		}
		if rng.Uint32()&1 == 0 {
			data[i] = 0
		} else {
			data[i] = math.MaxUint16
		}
		replaced++
	}
	return replaced
}
