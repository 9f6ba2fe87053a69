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

package stats

import (
	"math"
	"strings"
	"testing"
)

func TestCalc(t *testing.T) {
	data := []uint16{0, 10, 20, 30, 65535}
	s := Calc(data)
	if s.Min != 0 || s.Max != 65535 {
		t.Errorf("min=%d max=%d; want 0, 65535", s.Min, s.Max)
	}
	if s.Median != 20 {
		t.Errorf("median=%d; want 20", s.Median)
	}
	if want := float64(65595) / 5; math.Abs(s.Mean-want) > 1e-9 {
		t.Errorf("mean=%f; want %f", s.Mean, want)
	}
	if s.Impulses != 2 {
		t.Errorf("impulses=%d; want 2", s.Impulses)
	}
	if s.Mode != 128 {
		t.Errorf("mode=%d; want 128", s.Mode)
	}
	if data[1] != 10 || data[4] != 65535 {
		t.Errorf("Calc modified its input: %v", data)
	}
	if Calc(nil) != nil {
		t.Errorf("Calc(nil) != nil")
	}
}

func TestStdDev(t *testing.T) {
	data := []uint16{2, 4, 4, 4, 5, 5, 7, 9}
	s := Calc(data)
	want := math.Sqrt(32.0 / 7.0) // sample standard deviation
	if math.Abs(s.StdDev-want) > 1e-9 {
		t.Errorf("stddev=%f; want %f", s.StdDev, want)
	}
}

func TestSingleSample(t *testing.T) {
	s := Calc([]uint16{42})
	if s.Mean != 42 || s.Median != 42 || s.Min != 42 || s.Max != 42 {
		t.Errorf("stats=%v; want all 42", s)
	}
	if s.StdDev != 0 || math.IsNaN(s.StdDev) {
		t.Errorf("stddev=%f; want 0", s.StdDev)
	}
	if strings.Contains(s.String(), "NaN") {
		t.Errorf("string=%q contains NaN", s.String())
	}
}

func TestCompare(t *testing.T) {
	a := []uint16{100, 200, 300, 400}
	mse, psnr, err := Compare(a, a)
	if err != nil || mse != 0 || !math.IsInf(psnr, 1) {
		t.Errorf("identical: mse=%f psnr=%f err=%v; want 0, +Inf, nil", mse, psnr, err)
	}

	b := []uint16{102, 198, 302, 398}
	mse, psnr, err = Compare(a, b)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if math.Abs(mse-4) > 1e-9 {
		t.Errorf("mse=%f; want 4", mse)
	}
	want := 10 * math.Log10(65535.0*65535.0/4)
	if math.Abs(psnr-want) > 1e-9 {
		t.Errorf("psnr=%f; want %f", psnr, want)
	}

	if _, _, err := Compare(a, b[:3]); err == nil {
		t.Errorf("length mismatch err=nil; want error")
	}
}

func TestHistogram(t *testing.T) {
	bins := make([]int32, 4)
	Histogram([]uint16{0, 16383, 16384, 65535, 65535}, bins)
	want := []int32{2, 1, 0, 2}
	for i := range want {
		if bins[i] != want[i] {
			t.Fatalf("bins=%v; want %v", bins, want)
		}
	}
	if p := GetPeak(bins); p != 8192 {
		t.Errorf("peak=%d; want 8192", p)
	}
}

func TestEstimateNoise(t *testing.T) {
	// planes have no second derivative, so the estimate is exactly zero
	width, height := 20, 10
	plane := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			plane[y*width+x] = uint16(500 + 30*x + 7*y)
		}
	}
	if n := EstimateNoise(plane, width); n != 0 {
		t.Errorf("plane noise=%f; want 0", n)
	}

	// one impulse in the interior touches nine laplacian sums
	plane[5*width+5] += 1000
	if n := EstimateNoise(plane, width); n <= 0 {
		t.Errorf("impulse noise=%f; want >0", n)
	}

	if n := EstimateNoise(plane[:2*width], width); n != 0 {
		t.Errorf("two rows noise=%f; want 0", n)
	}
}
