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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/mlnoga/parlab/internal/features"
	"github.com/mlnoga/parlab/internal/logging"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/mlnoga/parlab/internal/ops/denoise"
	"github.com/mlnoga/parlab/internal/ops/measure"
	"github.com/mlnoga/parlab/internal/rest"
	"github.com/mlnoga/parlab/internal/sched"
	"github.com/mlnoga/parlab/internal/vecadd"
)

const version = "0.1.0"

// Exit status when vector addition produces a wrong element
const exitMismatch = 6

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "denoised.bmp", "save output to `file`. Use a pattern like `out%d.png` for many inputs")
var logFile = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var logLevel = flag.String("loglevel", "warn", "structured log level on stderr, one of debug, info, warn, error")

var radius = flag.Int("radius", 3, "median window radius r, the window is (2r+1)x(2r+1). 0=no op, negative is an error")
var execName = flag.String("exec", sched.NameParallel, "execution strategy, one of sequential, parallel, grid")
var workers = flag.Int("workers", 0, "number of worker goroutines, 0=GOMAXPROCS")
var grid = flag.Int("grid", 16, "grid size in blocks per axis, for -exec grid")
var block = flag.Int("block", 16, "block size in pixels per axis, for -exec grid")
var sorter = flag.String("sorter", "network", "median selection, one of qsort, bitonic, qselect, network")
var border = flag.String("border", "keep", "border treatment, one of keep, copy, clamp, mirror")

var noise = flag.Float64("noise", 0.05, "salt and pepper noise probability per sample")
var seed = flag.Uint("seed", 1, "noise seed, combined with the image ID. 0=random")
var ref = flag.String("ref", "", "compare results against reference image `file`, with %d expanded to the image ID")

var vecLen = flag.Int("n", 1<<24, "vector length for vecadd")

var job = flag.String("job", "", "run the operator graph from JSON `file`")

var addr = flag.String("addr", ":8080", "listen address for serve")
var chroot = flag.String("chroot", "", "chroot to `dir` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "set user id before serving, -1=keep")

func main() {
	logWriter := logging.Stdout
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(os.Stdout, `parlab Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (median|noise|stats|vecadd|job|serve|info|legal|version) (img0.bmp ... imgn.bmp)

Commands:
  median  Remove impulse noise from input images with a windowed median filter
  noise   Add salt and pepper noise to input images
  stats   Show input image statistics, optionally against a reference image
  vecadd  Add two vectors and verify the result
  job     Run the operator graph from the JSON file given with -job
  serve   Serve the REST API
  info    Show processor and memory information
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}
	cmd, args := args[0], args[1:]

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		logging.LogFatalf("Error: %s\n", err.Error())
	}
	logger := logging.NewConsole(level)

	// Initialize logging to file in addition to stdout, if selected
	if *logFile == "%auto" {
		if *out != "" && (cmd == "median" || cmd == "noise") {
			*logFile = strings.TrimSuffix(strings.ReplaceAll(*out, "%d", ""), filepath.Ext(*out)) + ".log"
		} else {
			*logFile = ""
		}
	}
	if *logFile != "" {
		if err := logging.LogAlsoToFile(*logFile); err != nil {
			logging.LogFatalf("Unable to open logfile '%s'\n", *logFile)
		}
	}
	defer logging.Close()

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			logging.LogFatalf("Could not create CPU profile: %s\n", err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logging.LogFatalf("Could not start CPU profile: %s\n", err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c := ops.NewContext(ctx, logWriter, logger)

	// run actions
	switch cmd {
	case "median":
		err = cmdMedian(args, c)

	case "noise":
		err = cmdNoise(args, c)

	case "stats":
		err = run(ops.NewOpSequence(ops.NewOpLoadMany(args), ops.NewOpForEach(measure.NewOpMeasure(*ref))), c)

	case "vecadd":
		err = cmdVecAdd(ctx, logWriter)

	case "job":
		err = cmdJob(c)

	case "serve":
		if err = rest.MakeSandbox(*chroot, *setuid, logger); err == nil {
			err = rest.Serve(*addr, logger, rest.Options{Sandboxed: true})
		}

	case "info":
		fmt.Fprintf(logWriter, "%v\n", features.Detect())

	case "legal":
		cmdLegal(logWriter)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", cmd)
		flag.Usage()
		return
	}

	elapsed := time.Since(start)
	fmt.Fprintf(logWriter, "\nDone after %v\n", elapsed)

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			logging.LogFatalf("Could not create memory profile: %s\n", err.Error())
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			logging.LogFatalf("Could not write allocation profile: %s\n", err.Error())
		}
	}

	if err != nil {
		var mismatch *vecadd.MismatchError
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		pprof.StopCPUProfile()
		logging.Close()
		if errors.As(err, &mismatch) {
			os.Exit(exitMismatch)
		}
		os.Exit(1)
	}
	logging.LogSync()
}

// Expands the output file name to a %d pattern when several inputs would overwrite each other
func outputPattern(args []string) (string, error) {
	if *out == "" || strings.Contains(*out, "%d") {
		return *out, nil
	}
	n := 0
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return "", err
		}
		n += len(matches)
	}
	if n <= 1 {
		return *out, nil
	}
	ext := filepath.Ext(*out)
	return strings.TrimSuffix(*out, ext) + "%d" + ext, nil
}

func newOpMedian() *denoise.OpMedian {
	return denoise.NewOpMedian(*radius, *execName, *workers, *grid, *block, *sorter, *border)
}

// Denoise images with the median filter, report statistics and save them
func cmdMedian(args []string, c *ops.Context) error {
	pattern, err := outputPattern(args)
	if err != nil {
		return err
	}
	perImage := ops.NewOpSequence(newOpMedian(), measure.NewOpMeasure(*ref), ops.NewOpSave(pattern))
	return run(ops.NewOpSequence(ops.NewOpLoadMany(args), ops.NewOpForEach(perImage)), c)
}

// Add noise to images and save them
func cmdNoise(args []string, c *ops.Context) error {
	pattern, err := outputPattern(args)
	if err != nil {
		return err
	}
	perImage := ops.NewOpSequence(denoise.NewOpNoise(*noise, uint32(*seed)), measure.NewOpMeasure(""), ops.NewOpSave(pattern))
	return run(ops.NewOpSequence(ops.NewOpLoadMany(args), ops.NewOpForEach(perImage)), c)
}

// Run an operator graph from a JSON file
func cmdJob(c *ops.Context) error {
	if *job == "" {
		return errors.New("missing -job file")
	}
	op, err := ops.ReadJobFile(*job)
	if err != nil {
		return err
	}
	return run(op, c)
}

// Prints the operator graph, then runs it
func run(op ops.Operator, c *ops.Context) error {
	m, err := json.MarshalIndent(op, "", "  ")
	if err != nil {
		return err
	}
	c.Logger.Debug().RawJSON("op", m).Msg("running")
	fmt.Fprintf(c.Log, "Running with these settings:\n%s\n\n", string(m))
	_, err = ops.Execute(op, c, true)
	return err
}

// Adds two vectors of length -n with the selected executor, and verifies the result
func cmdVecAdd(ctx context.Context, logWriter io.Writer) error {
	ex, err := sched.Parse(*execName, *workers, *grid, *block)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := vecadd.Run(ctx, ex, *vecLen); err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "VectorAdd %s time : %.2f\n", ex.Name(), time.Since(start).Seconds())
	fmt.Fprintln(logWriter, "OK")
	return nil
}

