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

package gray

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Reads a grayscale image from the file with the given name. The format follows the suffix:
// .bmp, .tif/.tiff, .png or .jpg/.jpeg
func NewImageFromFile(fileName string, id int) (img *Image, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err = Read(bufio.NewReader(f), path.Ext(fileName))
	if err != nil {
		return nil, fmt.Errorf("%d: error reading %s: %w", id, fileName, err)
	}
	img.ID, img.FileName = id, fileName
	return img, nil
}

// Decodes a grayscale image in the format given by the file name suffix
func Read(r io.Reader, ext string) (*Image, error) {
	var decoded image.Image
	var err error
	switch strings.ToLower(ext) {
	case ".bmp":
		decoded, err = bmp.Decode(r)
	case ".tif", ".tiff":
		decoded, err = tiff.Decode(r)
	case ".png":
		decoded, err = png.Decode(r)
	case ".jpg", ".jpeg":
		decoded, err = jpeg.Decode(r)
	default:
		return nil, fmt.Errorf("unknown image suffix '%s'", ext)
	}
	if err != nil {
		return nil, err
	}
	return NewImageFromGoImage(decoded), nil
}

// Reads only the dimensions of the image file with the given name
func ReadConfig(fileName string) (width, height int, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return 0, 0, fmt.Errorf("error reading header of %s: %w", fileName, err)
	}
	return cfg.Width, cfg.Height, nil
}
