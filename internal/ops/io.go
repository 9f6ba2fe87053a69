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

package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/mlnoga/parlab/internal/stats"
)

// Load a single image from a single filename. Takes zero inputs, produces one output
type OpLoad struct {
	OpBase
	ID       int    `json:"id"`
	FileName string `json:"fileName"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadDefault() }) } // register the operator for JSON decoding

func NewOpLoadDefault() *OpLoad { return NewOpLoad(0, "") }

func NewOpLoad(id int, fileName string) *OpLoad {
	return &OpLoad{
		OpBase:   OpBase{Type: "load", Active: true},
		ID:       id,
		FileName: fileName,
	}
}

// Load image from a file. Takes no inputs
func (op *OpLoad) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, fmt.Errorf("%s operator with non-zero input", op.Type)
	}
	if err := c.CheckPath(op.FileName); err != nil {
		return nil, err
	}
	out := func() (img *gray.Image, err error) {
		return op.Apply(nil, c)
	}
	return []Promise{out}, nil
}

func (op *OpLoad) Apply(img *gray.Image, c *Context) (result *gray.Image, err error) {
	start := time.Now()
	img, err = gray.NewImageFromFile(op.FileName, op.ID)
	if err != nil {
		return nil, err
	}

	s := stats.Calc(img.Data)
	warning := ""
	if s.Max == s.Min {
		warning = "; WARNING low dynamic range"
	}
	fmt.Fprintf(c.Log, "%d: Loaded %s image with %v from %s%s\n",
		img.ID, img.DimensionsToString(), s, img.FileName, warning)
	c.Logger.Debug().Str("op", op.Type).Int("id", img.ID).Str("file", img.FileName).
		Dur("elapsed", time.Since(start)).Msg("loaded")
	return img, nil
}

// Load many images from a slice of filename patterns with wildcards.
// Takes zero inputs, produces n outputs
type OpLoadMany struct {
	OpBase
	FilePatterns []string `json:"filePatterns"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadManyDefault() }) } // register the operator for JSON decoding

func NewOpLoadManyDefault() *OpLoadMany { return NewOpLoadMany(nil) }

func NewOpLoadMany(filePatterns []string) *OpLoadMany {
	return &OpLoadMany{
		OpBase:       OpBase{Type: "loadMany", Active: true},
		FilePatterns: filePatterns,
	}
}

// Turn filename wildcards into list of file load operators
func (op *OpLoadMany) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, fmt.Errorf("%s operator with non-zero input", op.Type)
	}
	first := ""
	for _, pattern := range op.FilePatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if err := c.CheckPath(match); err != nil {
				fmt.Fprintf(c.Log, "Pattern match outside current directory tree, skipping\n")
				continue
			}
			if first == "" {
				first = match
			}
			opLoad := NewOpLoad(len(outs), match)
			promises, err := opLoad.MakePromises(nil, c)
			if err != nil {
				return nil, err
			}
			outs = append(outs, promises...)
		}
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("%s operator with no files to load from pattern %v", op.Type, op.FilePatterns)
	}
	fmt.Fprintf(c.Log, "Found %d files.\n", len(outs))
	if w, h, err := gray.ReadConfig(first); err == nil {
		c.PixelHint = w * h
	}
	return outs, nil
}

// Saves given promise under a given filename, with pattern expansion for %d based on the image id.
// Takes one input, produces one output (the materialized but unchanged input)
type OpSave struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveDefault() }) } // register the operator for JSON decoding

func NewOpSaveDefault() *OpSave { return NewOpSave("") }

func NewOpSave(filePattern string) *OpSave {
	op := OpSave{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "save", Active: filePattern != ""}},
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries.
// Without an explicit active flag, the operator is active iff it has a file pattern
func (op *OpSave) UnmarshalJSON(data []byte) error {
	type defaults OpSave
	def := defaults(*NewOpSaveDefault())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	var flags struct {
		Active *bool `json:"active"`
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	if flags.Active == nil {
		def.Active = def.FilePattern != ""
	}
	*op = OpSave(def)
	op.OpUnaryBase.Apply = op.Apply
	return nil
}

// Expands %d in the pattern with the image ID
func (op *OpSave) FileName(id int) string {
	if strings.Contains(op.FilePattern, "%d") {
		return fmt.Sprintf(op.FilePattern, id)
	}
	return op.FilePattern
}

func (op *OpSave) Apply(img *gray.Image, c *Context) (result *gray.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return img, nil
	}
	fileName := op.FileName(img.ID)
	if err := c.CheckPath(fileName); err != nil {
		return nil, err
	}
	if !gray.IsSupported(fileName) {
		return nil, fmt.Errorf("%d: error writing to file %s: %w", img.ID, fileName, errors.New("unknown suffix"))
	}
	fmt.Fprintf(c.Log, "%d: Writing %s pixel image to %s\n", img.ID, img.DimensionsToString(), fileName)
	if err = img.WriteFile(fileName); err != nil {
		return nil, err
	}
	return img, nil
}
