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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlnoga/parlab/internal/gray"
	"github.com/rs/zerolog"
)

func newTestContext() *Context {
	return NewContext(context.Background(), io.Discard, zerolog.Nop())
}

func writeTestImage(t *testing.T, fileName string, width, height int) *gray.Image {
	t.Helper()
	img := gray.NewImage(width, height, nil)
	for i := range img.Data {
		img.Data[i] = uint16(i * 37)
	}
	if err := img.WriteFile(fileName); err != nil {
		t.Fatalf("writing %s: %v", fileName, err)
	}
	return img
}

func TestImageParallelism(t *testing.T) {
	c := &Context{MaxThreads: 8, WorkMemoryMB: 60}
	if got := c.ImageParallelism(0); got != 8 {
		t.Errorf("unknown size=%d; want 8", got)
	}
	if got := c.ImageParallelism(1000); got != 8 {
		t.Errorf("small=%d; want 8", got)
	}
	if got := c.ImageParallelism(5 * 1024 * 1024); got != 2 { // 30 MB in flight per image
		t.Errorf("large=%d; want 2", got)
	}
	if got := c.ImageParallelism(100 * 1024 * 1024); got != 1 {
		t.Errorf("huge=%d; want 1", got)
	}
}

func TestMaterializeAll(t *testing.T) {
	errBoom := errors.New("boom")
	ins := []Promise{
		func() (*gray.Image, error) { return gray.NewImage(1, 1, nil), nil },
		func() (*gray.Image, error) { return nil, errBoom },
		func() (*gray.Image, error) { return gray.NewImage(2, 1, nil), nil },
	}
	outs, err := MaterializeAll(ins, 2, false)
	if !errors.Is(err, errBoom) {
		t.Errorf("err=%v; want boom", err)
	}
	if len(outs) != 2 || outs[0].Width != 1 || outs[1].Width != 2 {
		t.Errorf("outs=%v; want two images in order", outs)
	}

	outs, err = MaterializeAll(ins[:1], 1, true)
	if err != nil || len(outs) != 0 {
		t.Errorf("forget: outs=%v err=%v; want none, nil", outs, err)
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out%d.tif")
	want := writeTestImage(t, in, 7, 5)

	var log bytes.Buffer
	c := newTestContext()
	c.Log = &log
	outs, err := Execute(NewOpSequence(NewOpLoad(3, in), NewOpSave(out)), c, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 1 || outs[0].ID != 3 {
		t.Fatalf("outs=%v; want one image with ID 3", outs)
	}
	got, err := gray.NewImageFromFile(filepath.Join(dir, "out3.tif"), 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want.Data {
		if got.Data[i] != want.Data[i] {
			t.Fatalf("data[%d]=%d; want %d", i, got.Data[i], want.Data[i])
		}
	}
	if !strings.Contains(log.String(), "3: Loaded 7x5 image") {
		t.Errorf("log=%q lacks load message", log.String())
	}
}

func TestLoadMany(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "c.txt"} {
		if strings.HasSuffix(n, ".png") {
			writeTestImage(t, filepath.Join(dir, n), 4, 4)
		} else if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0666); err != nil {
			t.Fatal(err)
		}
	}
	c := newTestContext()
	promises, err := NewOpLoadMany([]string{filepath.Join(dir, "*.png")}).MakePromises(nil, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(promises) != 2 {
		t.Errorf("promises=%d; want 2", len(promises))
	}
	if c.PixelHint != 16 {
		t.Errorf("pixelHint=%d; want 16", c.PixelHint)
	}
	if _, err := NewOpLoadMany([]string{filepath.Join(dir, "*.bmp")}).MakePromises(nil, c); err == nil {
		t.Errorf("no matches: err=nil; want error")
	}
}

func TestSandbox(t *testing.T) {
	c := newTestContext()
	c.Sandboxed = true
	for _, p := range []string{"/etc/passwd", "../secret.png", "a/../../b.png"} {
		if _, err := NewOpLoad(0, p).MakePromises(nil, c); err == nil {
			t.Errorf("sandboxed load of %s: err=nil; want error", p)
		}
	}
	if err := c.CheckPath("images/in.png"); err != nil {
		t.Errorf("relative path: %v", err)
	}
}

func TestSaveUnknownSuffix(t *testing.T) {
	op := NewOpSave(filepath.Join(t.TempDir(), "out.xyz"))
	if _, err := op.Apply(gray.NewImage(2, 2, nil), newTestContext()); err == nil {
		t.Errorf("err=nil; want error")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeTestImage(t, in, 3, 3)
	out := filepath.Join(dir, "copy%d.png")

	seq := NewOpSequence(NewOpLoadMany([]string{in}), NewOpForEach(NewOpSave(out)))
	b, err := json.Marshal(seq)
	if err != nil {
		t.Fatal(err)
	}
	op, err := ReadJob(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("ReadJob(%s): %v", b, err)
	}
	got, ok := op.(*OpSequence)
	if !ok || len(got.Steps) != 2 {
		t.Fatalf("op=%#v; want sequence of two", op)
	}
	fe, ok := got.Steps[1].(*OpForEach)
	if !ok {
		t.Fatalf("step 1=%T; want *OpForEach", got.Steps[1])
	}
	if save, ok := fe.Operation.(*OpSave); !ok || save.FilePattern != out {
		t.Fatalf("forEach operation=%#v; want save to %s", fe.Operation, out)
	}

	// the unmarshaled save must write with its own pattern
	if _, err := Execute(op, newTestContext(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "copy0.png")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestSaveActiveFromPattern(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "saved%d.png")
	writeTestImage(t, in, 4, 3)

	job := `{"type":"seq","steps":[{"type":"load","id":2,"fileName":` + quoteJSON(in) + `},{"type":"save","filePattern":` + quoteJSON(out) + `}]}`
	op, err := ReadJob(strings.NewReader(job))
	if err != nil {
		t.Fatal(err)
	}
	if save := op.(*OpSequence).Steps[1]; !save.IsActive() {
		t.Errorf("save with pattern and no active flag is inactive")
	}
	if _, err := Execute(op, newTestContext(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved2.png")); err != nil {
		t.Errorf("output missing: %v", err)
	}

	for _, tc := range []struct {
		json   string
		active bool
	}{
		{`{"type":"save"}`, false},
		{`{"type":"save","filePattern":"a.png","active":false}`, false},
		{`{"type":"save","filePattern":"a.png"}`, true},
	} {
		var save OpSave
		if err := json.Unmarshal([]byte(tc.json), &save); err != nil {
			t.Fatal(err)
		}
		if save.Active != tc.active {
			t.Errorf("%s: active=%v; want %v", tc.json, save.Active, tc.active)
		}
	}
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestUnknownOperator(t *testing.T) {
	_, err := ReadJob(strings.NewReader(`{"type":"seq","steps":[{"type":"frobnicate"}]}`))
	if err == nil || !strings.Contains(err.Error(), "frobnicate") {
		t.Errorf("err=%v; want unknown operator type", err)
	}
}

func TestRemoveNils(t *testing.T) {
	a, b := gray.NewImage(1, 1, nil), gray.NewImage(2, 2, nil)
	got := RemoveNils([]*gray.Image{nil, a, nil, b})
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("got=%v; want [a b]", got)
	}
}
