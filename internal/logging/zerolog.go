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
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Creates a structured logger with timestamps at the given level
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Creates a human-readable structured logger on stderr, for terminals
func NewConsole(level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// Parses a level name like "debug" or "warn". The empty string yields info
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(s))
}
