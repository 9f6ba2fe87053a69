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

// Package rest exposes the median filter, vector addition and operator jobs over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/parlab/internal/features"
	"github.com/mlnoga/parlab/internal/ops"
	"github.com/mlnoga/parlab/internal/ops/denoise"
	"github.com/mlnoga/parlab/internal/ops/measure"
	"github.com/mlnoga/parlab/internal/sched"
	"github.com/mlnoga/parlab/internal/vecadd"
	"github.com/mlnoga/parlab/web"
	"github.com/rs/zerolog"
)

// Largest vector length accepted by the vecadd endpoint
const MaxVecAddLength = 1 << 24

// Options for the HTTP server
type Options struct {
	Sandboxed bool // restrict file access to relative paths below the working directory
}

// Builds the router with all API endpoints
func NewRouter(logger zerolog.Logger, opts Options) *gin.Engine {
	s := &server{logger: logger, opts: opts}
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/info", getInfo)
			v1.POST("/median", s.postMedian)
			v1.POST("/vecadd", s.postVecAdd)
			v1.POST("/job", s.postJob)
		}
	}
	return r
}

// Listens and serves on the given address until the listener fails
func Serve(addr string, logger zerolog.Logger, opts Options) error {
	logger.Info().Str("addr", addr).Bool("sandboxed", opts.Sandboxed).Msg("serving")
	return NewRouter(logger, opts).Run(addr)
}

type server struct {
	logger zerolog.Logger
	opts   Options
}

// Logs each request as a structured event
func (s *server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).Dur("elapsed", time.Since(start)).Msg("request")
}

func (s *server) newContext(c *gin.Context, log io.Writer) *ops.Context {
	oc := ops.NewContext(c.Request.Context(), log, s.logger)
	oc.Sandboxed = s.opts.Sandboxed
	return oc
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, features.Detect())
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

// Starts a plain text response into which the progress log is streamed
func startLog(c *gin.Context) io.Writer {
	logWriter := c.Writer
	logWriter.Header().Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)
	return logWriter
}

// Runs an operator, streaming its progress log, and flushes the response
func (s *server) runStreaming(c *gin.Context, logWriter io.Writer, op ops.Operator) {
	if _, err := ops.Execute(op, s.newContext(c, logWriter), true); err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	}
	c.Writer.Flush()
}

type postMedianArgs struct {
	FilePatterns []string           `json:"filePatterns" binding:"required"`
	Noise        *denoise.OpNoise   `json:"noise"`
	Median       *denoise.OpMedian  `json:"median"`
	Measure      *measure.OpMeasure `json:"measure"`
	Save         *ops.OpSave        `json:"save"`
}

func (s *server) postMedian(c *gin.Context) {
	var args postMedianArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.Median == nil {
		args.Median = denoise.NewOpMedianDefault()
	}
	if _, err := args.Median.Options(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logWriter := startLog(c)
	if err := printArgs(logWriter, "Arguments:\n", "\n", args); err != nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	perImage := ops.NewOpSequence()
	if args.Noise != nil {
		perImage.Append(args.Noise)
	}
	perImage.Append(args.Median)
	if args.Measure != nil {
		perImage.Append(args.Measure)
	}
	if args.Save != nil {
		perImage.Append(args.Save)
	}
	s.runStreaming(c, logWriter, ops.NewOpSequence(ops.NewOpLoadMany(args.FilePatterns), ops.NewOpForEach(perImage)))
}

type postVecAddArgs struct {
	N       int    `json:"n" binding:"required"`
	Exec    string `json:"exec"`
	Workers int    `json:"workers"`
	Grid    int    `json:"grid"`
	Block   int    `json:"block"`
}

func (s *server) postVecAdd(c *gin.Context) {
	args := postVecAddArgs{Exec: sched.NameParallel, Grid: 16, Block: 16}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.N < 0 || args.N > MaxVecAddLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("n=%d outside [0,%d]", args.N, MaxVecAddLength)})
		return
	}
	ex, err := sched.Parse(args.Exec, args.Workers, args.Grid, args.Block)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	err = vecadd.Run(c.Request.Context(), ex, args.N)
	elapsed := time.Since(start)
	var mismatch *vecadd.MismatchError
	switch {
	case errors.As(err, &mismatch):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "index": mismatch.Index})
	case err != nil:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "OK", "n": args.N, "exec": ex.Name(), "seconds": elapsed.Seconds()})
	}
}

func (s *server) postJob(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, err := ops.UnmarshalOperator(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logWriter := startLog(c)
	if err := printArgs(logWriter, "Job:\n", "\n", op); err != nil {
		fmt.Fprintf(logWriter, "Error printing job: %s\n", err.Error())
		return
	}
	s.runStreaming(c, logWriter, op)
}
