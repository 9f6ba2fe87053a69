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

//go:build windows

package rest

import (
	"github.com/rs/zerolog"
)

// Chroot and setuid are not available on Windows. Logs a warning for each requested step
func MakeSandbox(chroot string, setuid int, logger zerolog.Logger) error {
	if len(chroot) > 0 {
		logger.Warn().Str("chroot", chroot).Msg("ignoring chroot argument on Windows")
	}
	if setuid >= 0 {
		logger.Warn().Int("setuid", setuid).Msg("ignoring setuid argument on Windows")
	}
	return nil
}
