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

// Package logging provides the progress log writer and the structured event logger.
//
// Progress text goes to stdout, and optionally to a file. It does not add prefixes,
// or force newlines. Structured events go through zerolog.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// Singleton log writer, with an optional additional file to log into
var (
	mu        sync.Mutex
	logFile   *bufio.Writer
	logFileOS *os.File
)

// Enables logging to file. Closes any previous log file
func LogAlsoToFile(fileName string) (err error) {
	mu.Lock()
	defer mu.Unlock()
	if err = closeLocked(); err != nil {
		return err
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	logFileOS, logFile = f, bufio.NewWriter(f)
	return nil
}

func closeLocked() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Flush()
	if errClose := logFileOS.Close(); err == nil {
		err = errClose
	}
	logFile, logFileOS = nil, nil
	return err
}

// Flushes and closes the log file, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLocked()
}

// Flushes the log file to disk
func LogSync() {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return
	}
	logFile.Flush()
	logFileOS.Sync()
}

type teeWriter struct {
	out io.Writer
}

func (t teeWriter) Write(p []byte) (n int, err error) {
	mu.Lock()
	defer mu.Unlock()
	n, err = t.out.Write(p)
	if err != nil || logFile == nil {
		return n, err
	}
	return logFile.Write(p)
}

// Returns a writer for progress text. Writes to out, and to the log file if enabled
func Writer(out io.Writer) io.Writer {
	return teeWriter{out: out}
}

// Default progress writer to stdout
var Stdout = Writer(os.Stdout)

func LogPrintf(format string, args ...interface{}) (n int, err error) {
	return fmt.Fprintf(Stdout, format, args...)
}

func LogPrintln(args ...interface{}) (n int, err error) {
	return fmt.Fprintln(Stdout, args...)
}

func LogFatalf(format string, args ...interface{}) {
	fmt.Fprintf(Stdout, format, args...)
	Close()
	os.Exit(1)
}
