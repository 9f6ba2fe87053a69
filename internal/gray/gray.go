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

// Package gray holds 16-bit grayscale images and thin adapters to image file formats.
package gray

import (
	"fmt"
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// A 16-bit grayscale image with row-major samples
type Image struct {
	ID       int      // Sequential ID number, for log output. Counted upwards from 0
	FileName string   // Original file name, if any, for log output
	Width    int      // Width in pixels
	Height   int      // Height in pixels
	Data     []uint16 // Samples, index y*Width+x
}

// Creates an image of given size. Data is not copied, allocated if nil
func NewImage(width, height int, data []uint16) *Image {
	if data == nil {
		data = make([]uint16, width*height)
	}
	return &Image{Width: width, Height: height, Data: data}
}

// Creates an image with the same metadata as the given one. New zeroed data will be allocated
func NewImageFromImage(img *Image) *Image {
	return &Image{
		ID:       img.ID,
		FileName: img.FileName,
		Width:    img.Width,
		Height:   img.Height,
		Data:     make([]uint16, len(img.Data)),
	}
}

// Returns a deep copy of the image
func (img *Image) Clone() *Image {
	c := *img
	c.Data = append([]uint16(nil), img.Data...)
	return &c
}

func (img *Image) DimensionsToString() string {
	return fmt.Sprintf("%dx%d", img.Width, img.Height)
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// Converts a golang image into a grayscale image. Gray and neutral pixels keep their value.
// Colored pixels become their relative luminance, encoded with the sRGB transfer curve
// like the neutral ones, so a gray pixel and its luminance-equivalent color map to
// the same sample
func NewImageFromGoImage(src image.Image) *Image {
	b := src.Bounds()
	img := NewImage(b.Dx(), b.Dy(), nil)
	switch s := src.(type) {
	case *image.Gray16:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				img.Data[y*img.Width+x] = s.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
	case *image.Gray:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				img.Data[y*img.Width+x] = uint16(s.GrayAt(b.Min.X+x, b.Min.Y+y).Y) * 257
			}
		}
	default:
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				img.Data[y*img.Width+x] = luminance16(src.At(b.Min.X+x, b.Min.Y+y))
			}
		}
	}
	return img
}

// Returns the 16-bit gray value for a color
func luminance16(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	if r == g && g == b {
		return uint16(r)
	}
	col, _ := colorful.MakeColor(c)
	lr, lg, lb := col.LinearRgb()
	l := 0.2126*lr + 0.7152*lg + 0.0722*lb
	v := colorful.LinearRgb(l, l, l).R
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 65535
	}
	return uint16(v*65535 + 0.5)
}

// Returns a golang image sharing no storage with this one
func (img *Image) ToGray16() *image.Gray16 {
	g := image.NewGray16(img.Bounds())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			g.SetGray16(x, y, color.Gray16{Y: img.Data[y*img.Width+x]})
		}
	}
	return g
}

// Returns an 8-bit golang image, keeping the most significant bits of each sample
func (img *Image) ToGray() *image.Gray {
	g := image.NewGray(img.Bounds())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			g.SetGray(x, y, color.Gray{Y: uint8(img.Data[y*img.Width+x] >> 8)})
		}
	}
	return g
}
