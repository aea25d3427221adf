// This file is part of linkcable.
//
// linkcable is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// linkcable is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with linkcable.  If not, see <https://www.gnu.org/licenses/>.

// Package emulation defines the interfaces a deterministic emulator core must
// implement to take part in a link cable session.
//
// The core executes the emulated program on a single goroutine. Traps are
// installed with SetTraps() and are called synchronously, on that goroutine,
// when the program counter reaches the trap address. A trap may read and
// write registers and memory and may call SaveState() and LoadState().
//
// A state saved from inside a trap captures the program counter at the trap
// address. Loading that state resumes execution at the trap, which means that
// the trap will be called again.
package emulation
