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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/mlnoga/parlab/internal/median"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/mlnoga/parlab/internal/stats"
	"github.com/rs/zerolog"
)

func newTestContext(log io.Writer) *ops.Context {
	return ops.NewContext(context.Background(), log, zerolog.Nop())
}

// 7x7 image with samples 1..49 in row-major order
func ramp7x7() *gray.Image {
	img := gray.NewImage(7, 7, nil)
	for i := range img.Data {
		img.Data[i] = uint16(i + 1)
	}
	return img
}

func gradient(width, height int) *gray.Image {
	img := gray.NewImage(width, height, nil)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Data[y*width+x] = uint16(1000 + 200*x + 150*y)
		}
	}
	return img
}

func TestMedianKnownValue(t *testing.T) {
	for _, exec := range []string{"sequential", "parallel", "grid"} {
		var log bytes.Buffer
		op := NewOpMedian(3, exec, 2, 2, 2, "bitonic", "keep")
		out, err := op.Apply(ramp7x7(), newTestContext(&log))
		if err != nil {
			t.Fatalf("%s: %v", exec, err)
		}
		if got := out.Data[3*7+3]; got != 25 {
			t.Errorf("%s: center=%d; want 25", exec, got)
		}
		if got := out.Data[0]; got != 0 {
			t.Errorf("%s: corner=%d; want 0 for border keep", exec, got)
		}
		if !strings.Contains(log.String(), "Parallel2D "+exec+" time : ") {
			t.Errorf("%s: log=%q lacks timing line", exec, log.String())
		}
	}
}

func TestMedianInputUnchanged(t *testing.T) {
	in := ramp7x7()
	want := in.Clone()
	if _, err := NewOpMedianDefault().Apply(in, newTestContext(io.Discard)); err != nil {
		t.Fatal(err)
	}
	for i := range want.Data {
		if in.Data[i] != want.Data[i] {
			t.Fatalf("input[%d] changed from %d to %d", i, want.Data[i], in.Data[i])
		}
	}
}

func TestMedianJSONDefaults(t *testing.T) {
	var op OpMedian
	if err := json.Unmarshal([]byte(`{"type":"median","active":true,"radius":1,"exec":"grid"}`), &op); err != nil {
		t.Fatal(err)
	}
	if op.Radius != 1 || op.Exec != "grid" || op.Sorter != "network" || op.Border != "keep" || op.Grid != 16 || op.Block != 16 {
		t.Errorf("op=%+v; want radius 1 grid with defaults", op)
	}

	// a 3x3 window on a 3x3 image has exactly one interior pixel
	in := gray.NewImage(3, 3, []uint16{9, 8, 7, 6, 5, 4, 3, 2, 1})
	out, err := op.OpUnaryBase.Apply(in, newTestContext(io.Discard))
	if err != nil {
		t.Fatalf("unmarshaled op with radius 1: %v", err)
	}
	if out.Data[4] != 5 {
		t.Errorf("center=%d; want 5", out.Data[4])
	}
}

func TestMedianInvalidConfig(t *testing.T) {
	promise := func() (*gray.Image, error) { return ramp7x7(), nil }
	for _, op := range []*OpMedian{
		NewOpMedian(1, "warp", 0, 16, 16, "network", "keep"),
		NewOpMedian(1, "grid", 0, 0, 16, "network", "keep"),
		NewOpMedian(1, "parallel", 0, 16, 16, "bogosort", "keep"),
		NewOpMedian(1, "parallel", 0, 16, 16, "network", "wrap"),
	} {
		if _, err := op.MakePromises([]ops.Promise{promise}, newTestContext(io.Discard)); err == nil {
			t.Errorf("op=%+v: err=nil; want error", op)
		}
	}

	// radius too large for the image
	if _, err := NewOpMedian(4, "parallel", 0, 16, 16, "network", "keep").Apply(ramp7x7(), newTestContext(io.Discard)); err == nil {
		t.Errorf("radius 4 on 7x7: err=nil; want error")
	}

	// negative radius is rejected, only zero disables the filter
	neg := NewOpMedian(-1, "sequential", 0, 16, 16, "network", "keep")
	if !neg.Active {
		t.Fatalf("radius -1 is inactive; want active")
	}
	if _, err := neg.MakePromises([]ops.Promise{promise}, newTestContext(io.Discard)); !errors.Is(err, median.ErrInvalidGeometry) {
		t.Errorf("radius -1 promises: err=%v; want %v", err, median.ErrInvalidGeometry)
	}
	if _, err := neg.Apply(ramp7x7(), newTestContext(io.Discard)); !errors.Is(err, median.ErrInvalidGeometry) {
		t.Errorf("radius -1 apply: err=%v; want %v", err, median.ErrInvalidGeometry)
	}
	if NewOpMedian(0, "sequential", 0, 16, 16, "network", "keep").Active {
		t.Errorf("radius 0 is active; want inactive")
	}
}

func TestSaltAndPepper(t *testing.T) {
	a, b := gradient(100, 100), gradient(100, 100)
	na := SaltAndPepper(a.Data, 0.1, 42)
	nb := SaltAndPepper(b.Data, 0.1, 42)
	if na != nb {
		t.Fatalf("replaced %d and %d; want equal for equal seeds", na, nb)
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("data[%d]=%d and %d; want equal for equal seeds", i, a.Data[i], b.Data[i])
		}
	}
	if na < 700 || na > 1300 {
		t.Errorf("replaced %d of 10000 samples; want about 1000", na)
	}
	if s := stats.Calc(a.Data); s.Impulses != na {
		t.Errorf("impulses=%d; want %d", s.Impulses, na)
	}

	c := gradient(10, 10)
	if n := SaltAndPepper(c.Data, 1, 7); n != 100 {
		t.Errorf("p=1 replaced %d; want 100", n)
	}
	if n := SaltAndPepper(c.Data, 0, 7); n != 0 {
		t.Errorf("p=0 replaced %d; want 0", n)
	}
}

func TestNoiseInvalidProbability(t *testing.T) {
	op := NewOpNoise(1.5, 1)
	if _, err := op.Apply(gradient(4, 4), newTestContext(io.Discard)); err == nil {
		t.Errorf("p=1.5: err=nil; want error")
	}
	if NewOpNoise(0, 1).Active {
		t.Errorf("p=0 is active; want inactive")
	}
	if _, err := NewOpNoise(-0.1, 1).Apply(gradient(4, 4), newTestContext(io.Discard)); err == nil {
		t.Errorf("p=-0.1: err=nil; want error")
	}
}

func TestDenoisePipeline(t *testing.T) {
	clean := gradient(64, 48)
	noisy := clean.Clone()
	before := SaltAndPepper(noisy.Data, 0.05, 3)

	op := NewOpMedian(1, "grid", 0, 4, 8, "network", "clamp")
	out, err := op.Apply(noisy, newTestContext(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	after := stats.Calc(out.Data).Impulses
	if before == 0 || after*10 > before {
		t.Errorf("impulses before=%d after=%d; want at least a tenfold reduction", before, after)
	}

	_, psnrNoisy, _ := stats.Compare(noisy.Data, clean.Data)
	_, psnrOut, _ := stats.Compare(out.Data, clean.Data)
	if psnrOut <= psnrNoisy {
		t.Errorf("psnr after=%.2f; want above noisy %.2f", psnrOut, psnrNoisy)
	}
}

func TestSequenceFromJSON(t *testing.T) {
	job := `{"type":"seq","steps":[{"type":"noise","probability":0.2,"seed":5},{"type":"median","radius":1,"exec":"sequential"}]}`
	op, err := ops.ReadJob(strings.NewReader(job))
	if err != nil {
		t.Fatal(err)
	}
	in := func() (*gray.Image, error) { return gradient(20, 20), nil }
	promises, err := op.MakePromises([]ops.Promise{in}, newTestContext(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	outs, err := ops.MaterializeAll(promises, 1, false)
	if err != nil || len(outs) != 1 {
		t.Fatalf("outs=%v err=%v", outs, err)
	}
	if outs[0].Data[0] != 0 {
		t.Errorf("corner=%d; want 0 for border keep", outs[0].Data[0])
	}
}
