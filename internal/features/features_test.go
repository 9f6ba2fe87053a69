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

package features

import (
	"runtime"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	f := Detect()
	if f.Arch != runtime.GOARCH {
		t.Errorf("arch=%s; want %s", f.Arch, runtime.GOARCH)
	}
	if f.LogicalCores < 1 || f.PhysicalCores < 1 {
		t.Errorf("logical=%d physical=%d; want >=1", f.LogicalCores, f.PhysicalCores)
	}
	if f.MaxProcs != runtime.GOMAXPROCS(0) {
		t.Errorf("maxProcs=%d; want %d", f.MaxProcs, runtime.GOMAXPROCS(0))
	}
	if !strings.Contains(f.String(), runtime.GOARCH) {
		t.Errorf("String()=%q lacks arch", f.String())
	}
}

func TestHas(t *testing.T) {
	f := Features{SIMD: []string{"SSE2", "AVX2"}}
	if !f.Has("avx2") || f.Has("AVX512F") {
		t.Errorf("Has mismatch for %v", f.SIMD)
	}
}
