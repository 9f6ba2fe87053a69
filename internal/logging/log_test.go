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

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestTeeToFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "run.log")
	if err := LogAlsoToFile(fileName); err != nil {
		t.Fatalf("LogAlsoToFile: %v", err)
	}
	var out bytes.Buffer
	w := Writer(&out)
	w.Write([]byte("hello "))
	w.Write([]byte("world\n"))
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	w.Write([]byte("after close\n"))

	if got, want := out.String(), "hello world\nafter close\n"; got != want {
		t.Errorf("out=%q; want %q", got, want)
	}
	b, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "hello world\n"; got != want {
		t.Errorf("file=%q; want %q", got, want)
	}
}

func TestStructured(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.InfoLevel)
	l.Debug().Msg("dropped")
	l.Info().Str("component", "median").Int("radius", 3).Msg("done")

	var ev map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if ev["message"] != "done" || ev["component"] != "median" || ev["radius"] != float64(3) {
		t.Errorf("event=%v", ev)
	}
	if _, ok := ev["time"]; !ok {
		t.Errorf("event without timestamp: %v", ev)
	}
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]zerolog.Level{"": zerolog.InfoLevel, "DEBUG": zerolog.DebugLevel, "warn": zerolog.WarnLevel} {
		got, err := ParseLevel(s)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q)=%v, %v; want %v", s, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Errorf("ParseLevel(loud) err=nil; want error")
	}
}
