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

// Package ops provides a promise-based pipeline of image operators, which can be
// composed in code or deserialized from JSON job descriptions.
package ops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog"
)

// An execution context for operators
type Context struct {
	Ctx          context.Context `json:"-"`
	Log          io.Writer       `json:"-"` // progress text
	Logger       zerolog.Logger  `json:"-"` // structured events
	MemoryMB     int             `json:"memoryMB"`     // memory.TotalMemory()/1024/1024
	WorkMemoryMB int             `json:"workMemoryMB"` // MemoryMB*7/10
	MaxThreads   int             `json:"maxThreads"`
	Sandboxed    bool            `json:"sandboxed"` // restrict file access to relative paths inside the working directory
	PixelHint    int             `json:"-"`         // pixels per image of the current job, 0 if unknown
}

func NewContext(ctx context.Context, log io.Writer, logger zerolog.Logger) *Context {
	memoryMB := int(memory.TotalMemory() / 1024 / 1024)
	return &Context{
		Ctx:          ctx,
		Log:          log,
		Logger:       logger,
		MemoryMB:     memoryMB,
		WorkMemoryMB: memoryMB * 7 / 10,
		MaxThreads:   runtime.GOMAXPROCS(0),
	}
}

// Bytes needed per pixel while filtering one image: input, output and the in-place snapshot
const bytesPerPixelInFlight = 3 * 2

// Number of images of the given size which can be processed concurrently,
// bounded by the thread count and the working memory. At least 1
func (c *Context) ImageParallelism(pixels int) int {
	n := c.MaxThreads
	if pixels > 0 && c.WorkMemoryMB > 0 {
		byMem := int(int64(c.WorkMemoryMB) * 1024 * 1024 / (int64(pixels) * bytesPerPixelInFlight))
		if byMem < n {
			n = byMem
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// The cancellation context, never nil
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// A promise for a gray image. Returns a materialized image, or an error
type Promise func() (img *gray.Image, err error)

// Materializes all promises with given concurrency limit
func MaterializeAll(ins []Promise, maxThreads int, forget bool) (outs []*gray.Image, err error) {
	if len(ins) == 0 {
		return nil, nil
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	if !forget {
		outs = make([]*gray.Image, len(ins))
	}
	limiter := make(chan bool, maxThreads)
	errs := make(chan error, len(ins))
	for i, in := range ins {
		limiter <- true
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			img, err := theIn() // materialize the promise
			if err != nil {
				errs <- err
				return
			}
			if !forget {
				outs[i] = img
			}
			errs <- nil
		}(i, in)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	var all []error
	for i := 0; i < len(ins); i++ { // collect errors
		if e := <-errs; e != nil {
			all = append(all, e)
		}
	}
	return RemoveNils(outs), errors.Join(all...)
}

// Remove nils from an array of images, editing the underlying array in place
func RemoveNils(imgs []*gray.Image) []*gray.Image {
	o := 0
	for i := 0; i < len(imgs); i++ {
		if imgs[i] != nil {
			imgs[o] = imgs[i]
			o++
		}
	}
	for i := o; i < len(imgs); i++ {
		imgs[i] = nil
	}
	return imgs[:o]
}

// An general image processing operator: takes n promises as inputs,
// and produces m promises as output or an error
type Operator interface {
	GetType() string
	IsActive() bool
	MakePromises(ins []Promise, c *Context) (outs []Promise, err error)
}

// Base type for operators, including type information for JSON serializing/deserializing
type OpBase struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool  { return op.Active }

// Factory method for operators. For JSON serializing/deserializing
type OperatorFactory func() Operator

// Mapping from operator type strings to factory method for the type
var operatorFactories = map[string]OperatorFactory{}

// Returns the operator factory for a given type string
func GetOperatorFactory(t string) OperatorFactory {
	return operatorFactories[t]
}

// Registers a given type string for a given type of Operator, identified via an exemplar generator
func SetOperatorFactory(f OperatorFactory) {
	op := f()
	t := op.GetType()
	if GetOperatorFactory(t) != nil {
		panic(fmt.Sprintf("error: re-registering operator key %s\n", t))
	}
	operatorFactories[t] = f
}

// A unary image processing operator: given n promises as inputs,
// applies itself to each of them individually and returns n output promises or an error
type OperatorUnary interface {
	Operator
	Apply(img *gray.Image, c *Context) (out *gray.Image, err error)
}

// Abstract base type for unary operators. Subtypes assign their Apply method
// to the Apply field on construction, and again after unmarshaling
type OpUnaryBase struct {
	OpBase
	Apply func(img *gray.Image, c *Context) (out *gray.Image, err error) `json:"-"`
}

func (op *OpUnaryBase) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("%s operator with %d inputs", op.Type, len(ins))
	}
	outs = make([]Promise, len(ins))
	for i, in := range ins {
		outs[i] = op.MakePromise(in, c)
	}
	return outs, nil
}

func (op *OpUnaryBase) MakePromise(in Promise, c *Context) (out Promise) {
	return func() (img *gray.Image, err error) {
		if img, err = in(); err != nil { // materialize input promise
			return nil, err
		}
		if err = c.Context().Err(); err != nil {
			return nil, err
		}
		return op.Apply(img, c) // apply unary operator
	}
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory
func isPathAllowed(p string) bool {
	if filepath.IsAbs(p) {
		return false
	}
	if strings.Contains(p, "..") {
		return false
	}
	return true
}

// Checks a path against the context's sandboxing policy
func (c *Context) CheckPath(p string) error {
	if c.Sandboxed && !isPathAllowed(p) {
		return fmt.Errorf("file name %s outside current directory tree, aborting", p)
	}
	return nil
}
