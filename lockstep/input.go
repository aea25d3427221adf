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

package lockstep

import (
	"fmt"

	"github.com/jetsetilly/linkcable/curated"
)

// Sentinal error patterns for pair checking.
const (
	LocalRemoteTickMismatch = "lockstep: local tick != remote tick: %d != %d"
	InputTickMismatch       = "lockstep: input tick != current tick: %d != %d"
)

// Input is the joyflags submitted for a tick.
type Input struct {
	LocalTick uint32
	Joyflags  uint16
}

func (in Input) String() string {
	return fmt.Sprintf("%d:%04x", in.LocalTick, in.Joyflags)
}

// Packet is the opaque link cable data exchanged by the title for a tick.
type Packet struct {
	Tick uint32
	Data []byte
}

// Pair is the local and remote input for the same tick.
type Pair struct {
	Local  Input
	Remote Input
}

// Tick returns the tick of the local half of the pair.
func (p Pair) Tick() uint32 {
	return p.Local.LocalTick
}

// Check returns an error if the two halves of the pair are for different
// ticks or if the pair is not for the current tick.
func (p Pair) Check(current uint32) error {
	if p.Local.LocalTick != p.Remote.LocalTick {
		return curated.Errorf(LocalRemoteTickMismatch, p.Local.LocalTick, p.Remote.LocalTick)
	}
	if p.Local.LocalTick != current {
		return curated.Errorf(InputTickMismatch, p.Local.LocalTick, current)
	}
	return nil
}

// Reversed returns the pair with the local and remote halves swapped.
func (p Pair) Reversed() Pair {
	return Pair{Local: p.Remote, Remote: p.Local}
}
