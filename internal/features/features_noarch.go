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

//go:build !amd64

package features

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

func detectCPU(f *Features) {
	f.CacheLine = int(unsafe.Sizeof(cpu.CacheLinePad{}))
	switch {
	case cpu.ARM64.HasASIMD:
		f.SIMD = append(f.SIMD, "NEON")
		if cpu.ARM64.HasFPHP && cpu.ARM64.HasASIMDHP {
			f.SIMD = append(f.SIMD, "FP16")
		}
		if cpu.ARM64.HasSVE {
			f.SIMD = append(f.SIMD, "SVE")
		}
	case cpu.ARM.HasNEON:
		f.SIMD = append(f.SIMD, "NEON")
	}
}
