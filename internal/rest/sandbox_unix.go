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

//go:build linux || darwin

package rest

import (
	"fmt"
	"os"
	"syscall"

	"github.com/rs/zerolog"
)

// Secures the current process by creating a chroot environment
// (requires root) and changing the user ID to something without
// elevated rights. An empty chroot or a negative setuid skips the step
func MakeSandbox(chroot string, setuid int, logger zerolog.Logger) error {
	if len(chroot) > 0 {
		logger.Info().Str("chroot", chroot).Msg("changing filesystem root")
		if err := os.Chdir(chroot); err != nil {
			return fmt.Errorf("error chdir(%s): %w", chroot, err)
		}
		if err := syscall.Chroot("."); err != nil {
			return fmt.Errorf("error chroot(%s): %w", chroot, err)
		}
	}
	if setuid >= 0 {
		logger.Info().Int("uid", syscall.Getuid()).Int("euid", syscall.Geteuid()).Int("setuid", setuid).Msg("setting user id")
		if err := syscall.Setuid(setuid); err != nil {
			return fmt.Errorf("error setuid(%d): %w", setuid, err)
		}
	}
	return nil
}
