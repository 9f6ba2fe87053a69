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
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Quality setting for JPEG output
const JPEGQuality = 95

// Writes the image to a file. The format follows the suffix: .bmp and .jpg/.jpeg are 8 bits,
// .tif/.tiff and .png keep all 16 bits
func (img *Image) WriteFile(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err = img.Write(writer, path.Ext(fileName)); err != nil {
		return fmt.Errorf("%d: error writing %s: %w", img.ID, fileName, err)
	}
	if err = writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// Encodes the image in the format given by the file name suffix
func (img *Image) Write(w io.Writer, ext string) error {
	switch strings.ToLower(ext) {
	case ".bmp":
		return bmp.Encode(w, img.ToGray())
	case ".tif", ".tiff":
		return tiff.Encode(w, img.ToGray16(), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case ".png":
		return png.Encode(w, img.ToGray16())
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img.ToGray(), &jpeg.Options{Quality: JPEGQuality})
	}
	return fmt.Errorf("unknown image suffix '%s'", ext)
}

// Returns true if the file name carries a suffix that Write supports
func IsSupported(fileName string) bool {
	switch strings.ToLower(path.Ext(fileName)) {
	case ".bmp", ".tif", ".tiff", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
