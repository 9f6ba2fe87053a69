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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mlnoga/parlab/internal/gray"
)

// Reads a polymorphic operator from a JSON job description
func ReadJob(r io.Reader) (Operator, error) {
	var raw json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return UnmarshalOperator(raw)
}

// Reads a JSON job description from the file with the given name
func ReadJobFile(fileName string) (Operator, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	op, err := ReadJob(f)
	if err != nil {
		return nil, fmt.Errorf("error reading job %s: %w", fileName, err)
	}
	return op, nil
}

// Runs an operator without inputs and materializes its outputs, with as many
// images in flight as threads and memory allow. Returns the outputs unless forget is set
func Execute(op Operator, c *Context, forget bool) ([]*gray.Image, error) {
	start := time.Now()
	c.Logger.Info().Str("op", op.GetType()).Msg("job started")
	promises, err := op.MakePromises(nil, c)
	if err != nil {
		c.Logger.Error().Str("op", op.GetType()).Err(err).Msg("job failed")
		return nil, err
	}
	outs, err := MaterializeAll(promises, c.ImageParallelism(c.PixelHint), forget)
	if err != nil {
		c.Logger.Error().Str("op", op.GetType()).Err(err).Msg("job failed")
		return outs, err
	}
	c.Logger.Info().Str("op", op.GetType()).Int("images", len(promises)).
		Dur("elapsed", time.Since(start)).Msg("job finished")
	return outs, nil
}
