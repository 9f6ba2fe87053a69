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

package median

import (
	"sync"
)

// Windows up to this many samples (radius 7) use a fixed array instead of the pool
const maxArrayWindow = 225

// Pool of constant sized arrays of given type, to reduce memory allocation overhead
var poolUint16 = struct {
	sync.RWMutex
	m map[int]*sync.Pool
}{m: make(map[int]*sync.Pool)}

// Returns a pool for []uint16 arrays of the given size
func getSizedPoolUint16(size int) *sync.Pool {
	poolUint16.RLock()
	pool := poolUint16.m[size]
	poolUint16.RUnlock()
	if pool == nil {
		poolUint16.Lock()
		if pool = poolUint16.m[size]; pool == nil {
			pool = &sync.Pool{
				New: func() interface{} {
					arr := make([]uint16, size)
					return &arr
				},
			}
			poolUint16.m[size] = pool
		}
		poolUint16.Unlock()
	}
	return pool
}

// Returns a scratch buffer of the given size, and a function to release it after use.
// Small windows get a fixed array, larger ones are recycled through a size-keyed pool
func getScratch(size int) (buf []uint16, release func()) {
	if size <= maxArrayWindow {
		arr := new([maxArrayWindow]uint16)
		return arr[:size], func() {}
	}
	pool := getSizedPoolUint16(size)
	p := pool.Get().(*[]uint16)
	return *p, func() { pool.Put(p) }
}

// Clears all memory pools
func ClearPools() {
	poolUint16.Lock()
	poolUint16.m = make(map[int]*sync.Pool)
	poolUint16.Unlock()
}
