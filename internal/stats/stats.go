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

// Package stats calculates sample statistics and image quality metrics.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlnoga/parlab/internal/qsort"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistics on a 16-bit sample array
type Stats struct {
	Count    int     `json:"count"`
	Min      uint16  `json:"min"`
	Max      uint16  `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stdDev"`   // sample standard deviation
	Median   uint16  `json:"median"`   // upper middle element for even counts
	Mode     uint16  `json:"mode"`     // center of the fullest histogram bin
	Impulses int     `json:"impulses"` // samples at 0 or 65535, i.e. salt and pepper candidates
	Noise    float64 `json:"noise"`    // estimated standard deviation of gaussian noise, 0 if unknown
}

// Number of histogram bins used for the mode
const ModeBins = 256

// Pretty print stats to string
func (s *Stats) String() string {
	return fmt.Sprintf("Min %d Max %d Mean %.6g StdDev %.6g Median %d Mode %d Impulses %d (%.3g%%) Noise %.4g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Mode, s.Impulses, 100*float64(s.Impulses)/float64(s.Count), s.Noise)
}

// Calculates statistics for the given data. Returns nil for empty data
func Calc(data []uint16) *Stats {
	if len(data) == 0 {
		return nil
	}
	s := &Stats{Count: len(data), Min: data[0], Max: data[0]}
	xs := toFloat64(data)
	s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
	if s.Count < 2 {
		s.StdDev = 0 // sample deviation is undefined for a single value
	}
	for _, v := range data {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		if v == 0 || v == math.MaxUint16 {
			s.Impulses++
		}
	}

	tmp := append([]uint16(nil), data...)
	s.Median = qsort.QSelectMedianUint16(tmp)

	bins := make([]int32, ModeBins)
	Histogram(data, bins)
	s.Mode = GetPeak(bins)
	return s
}

// Calculates statistics for an image of the given width, including the noise estimate
func CalcImage(data []uint16, width int) *Stats {
	s := Calc(data)
	if s != nil {
		s.Noise = EstimateNoise(data, width)
	}
	return s
}

// Mean squared error and peak signal to noise ratio in dB between two sample arrays
// of equal length. PSNR is +Inf for identical arrays
func Compare(a, b []uint16) (mse, psnr float64, err error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("cannot compare %d samples to %d samples", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, 0, errors.New("cannot compare empty sample arrays")
	}
	d := floats.Distance(toFloat64(a), toFloat64(b), 2)
	mse = d * d / float64(len(a))
	if mse == 0 {
		return 0, math.Inf(1), nil
	}
	peak := float64(math.MaxUint16)
	psnr = 10 * math.Log10(peak*peak/mse)
	return mse, psnr, nil
}

func toFloat64(data []uint16) []float64 {
	xs := make([]float64, len(data))
	for i, v := range data {
		xs[i] = float64(v)
	}
	return xs
}
