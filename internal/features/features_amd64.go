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
	"github.com/klauspost/cpuid"
)

func detectCPU(f *Features) {
	f.Brand = cpuid.CPU.BrandName
	f.PhysicalCores = cpuid.CPU.PhysicalCores
	f.LogicalCores = cpuid.CPU.LogicalCores
	f.CacheLine = cpuid.CPU.CacheLine
	if cpuid.CPU.SSE2() {
		f.SIMD = append(f.SIMD, "SSE2")
	}
	if cpuid.CPU.SSE4() {
		f.SIMD = append(f.SIMD, "SSE4.1")
	}
	if cpuid.CPU.AVX() {
		f.SIMD = append(f.SIMD, "AVX")
	}
	if cpuid.CPU.AVX2() {
		f.SIMD = append(f.SIMD, "AVX2")
	}
	if cpuid.CPU.AVX512F() {
		f.SIMD = append(f.SIMD, "AVX512F")
	}
}
