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
	"fmt"
	"strings"

	"github.com/mlnoga/parlab/internal/qsort"
)

// Sorts data[from:to] ascending in place
type Sorter interface {
	Sort(data []uint16, from, to int)
}

// Returns the median of an odd-length buffer, i.e. the element at index len(buf)/2
// after sorting. May reorder the buffer
type Selector interface {
	Name() string
	Median(buf []uint16) uint16
}

// Names of the available selection strategies
const (
	SelectorQSort   = "qsort"
	SelectorBitonic = "bitonic"
	SelectorQSelect = "qselect"
	SelectorNetwork = "network"
)

// Builds a selector from its configuration name. The empty name selects the default
func ParseSelector(name string) (Selector, error) {
	switch strings.ToLower(name) {
	case SelectorQSort:
		return NewSortSelector(SelectorQSort, QSorter{}), nil
	case SelectorBitonic:
		return NewSortSelector(SelectorBitonic, BitonicSorter{}), nil
	case SelectorQSelect:
		return NewQSelect(), nil
	case SelectorNetwork, "":
		return NewNetwork(), nil
	}
	return nil, fmt.Errorf("unknown selector '%s', expecting one of %s, %s, %s, %s",
		name, SelectorQSort, SelectorBitonic, SelectorQSelect, SelectorNetwork)
}

// Quicksort
type QSorter struct{}

func (QSorter) Sort(data []uint16, from, to int) { qsort.QSortUint16(data[from:to]) }

// Bitonic sorting network. Data-independent sequence of compare-exchanges,
// the shape an accelerator-native sort takes
type BitonicSorter struct{}

func (BitonicSorter) Sort(data []uint16, from, to int) { qsort.BitonicSortUint16(data, from, to) }

// Fully sorts the buffer and picks the middle element
type SortSelector struct {
	name   string
	sorter Sorter
}

func NewSortSelector(name string, sorter Sorter) *SortSelector {
	return &SortSelector{name: name, sorter: sorter}
}

func (s *SortSelector) Name() string { return s.name }

func (s *SortSelector) Median(buf []uint16) uint16 {
	s.sorter.Sort(buf, 0, len(buf))
	return buf[len(buf)/2]
}

// Quickselect of the middle order statistic, without fully sorting
type QSelect struct{}

func NewQSelect() *QSelect { return &QSelect{} }

func (*QSelect) Name() string { return SelectorQSelect }

func (*QSelect) Median(buf []uint16) uint16 { return qsort.QSelectMedianUint16(buf) }

// Optimal median network for nine elements, quickselect for all other lengths
type Network struct{}

func NewNetwork() *Network { return &Network{} }

func (*Network) Name() string { return SelectorNetwork }

func (*Network) Median(buf []uint16) uint16 {
	if len(buf) == 9 {
		return qsort.MedianUint16Slice9(buf)
	}
	return qsort.QSelectMedianUint16(buf)
}
