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

// Package features reports the host's processor and memory resources.
package features

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pbnjay/memory"
)

// Processor and memory resources available to the executors
type Features struct {
	Arch          string   `json:"arch"`
	Brand         string   `json:"brand"`
	PhysicalCores int      `json:"physicalCores"`
	LogicalCores  int      `json:"logicalCores"`
	MaxProcs      int      `json:"maxProcs"`
	CacheLine     int      `json:"cacheLine"`
	SIMD          []string `json:"simd"`
	MemoryMB      int      `json:"memoryMB"`
}

// Detects features of the current host
func Detect() Features {
	f := Features{
		Arch:     runtime.GOARCH,
		MaxProcs: runtime.GOMAXPROCS(0),
		MemoryMB: int(memory.TotalMemory() / 1024 / 1024),
	}
	detectCPU(&f)
	if f.LogicalCores == 0 {
		f.LogicalCores = runtime.NumCPU()
	}
	if f.PhysicalCores == 0 {
		f.PhysicalCores = f.LogicalCores
	}
	return f
}

// Checks for a named SIMD extension, case insensitive
func (f Features) Has(simd string) bool {
	for _, s := range f.SIMD {
		if strings.EqualFold(s, simd) {
			return true
		}
	}
	return false
}

func (f Features) String() string {
	brand := f.Brand
	if brand == "" {
		brand = "unknown CPU"
	}
	return fmt.Sprintf("%s (%s), %d physical / %d logical cores, GOMAXPROCS %d, cache line %dB, SIMD [%s], %d MB RAM",
		brand, f.Arch, f.PhysicalCores, f.LogicalCores, f.MaxProcs, f.CacheLine, strings.Join(f.SIMD, " "), f.MemoryMB)
}
