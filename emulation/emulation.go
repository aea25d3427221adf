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

package emulation

import (
	"github.com/jetsetilly/linkcable/curated"
)

// State is an opaque snapshot of a core.
type State []byte

// CPU gives access to the registers of the emulated CPU.
type CPU interface {
	GPR(r int) uint32
	SetGPR(r int, v uint32)
	ThumbPC() uint32
	SetThumbPC(pc uint32)
}

// Memory gives access to the address space of the emulated machine. Values
// are little-endian.
type Memory interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, v uint32)
	ReadRange(addr uint32, n int) []byte
	WriteRange(addr uint32, data []byte)
}

// Core is a deterministic emulator core.
type Core interface {
	// RunFrame runs the core until the end of the next video frame
	RunFrame() error

	SaveState() (State, error)
	LoadState(State) error

	CPU() CPU
	Memory() Memory

	// SetTraps replaces the current set of traps
	SetTraps(Traps)

	// Frame returns the number of frames run since the core was created
	Frame() int
}

// Trap is called when the program counter reaches the address the trap is
// installed at.
type Trap func(Core)

// Traps maps instruction addresses to trap functions.
type Traps map[uint32]Trap

// DuplicateTrap is returned by Join() when more than one set of traps claims
// the same address.
const DuplicateTrap = "emulation: duplicate trap at %#08x"

// Join returns a new set of traps containing all traps in the arguments.
func Join(sets ...Traps) (Traps, error) {
	j := make(Traps)
	for _, s := range sets {
		for addr, t := range s {
			if _, ok := j[addr]; ok {
				return nil, curated.Errorf(DuplicateTrap, addr)
			}
			j[addr] = t
		}
	}
	return j, nil
}

// Keys is implemented by cores that read input from an emulated keypad. In a
// match the joyflags are injected by the hooks and the keypad is ignored.
type Keys interface {
	SetKeys(joyflags uint16)
}
