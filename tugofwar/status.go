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

package tugofwar

import (
	"fmt"
)

// Mode of the title.
type Mode int

// List of valid Mode values.
const (
	CommMenu Mode = iota
	Battle
	Intermission
	Over
)

func (md Mode) String() string {
	switch md {
	case CommMenu:
		return "comm menu"
	case Battle:
		return "battle"
	case Intermission:
		return "intermission"
	case Over:
		return "over"
	}
	return "unknown"
}

// Status of the title, read from the machine's memory.
type Status struct {
	Mode   Mode
	Tick   uint32
	Rope   int32
	Ending bool

	// player index the title believes it is playing as
	Self int

	Wins   [2]int
	Rounds int

	// the tick on which the most recent round ended
	LastRoundTick uint32

	MatchType  uint8
	Setting    uint8
	Background uint8
}

func (s Status) String() string {
	return fmt.Sprintf("%s: round %d tick %d rope %+d [%d-%d] P%d", s.Mode, s.Rounds+1, s.Tick, s.Rope, s.Wins[0], s.Wins[1], s.Self+1)
}

// Status returns the status of the title.
func (m *Machine) Status() Status {
	return Status{
		Mode:          Mode(m.Read32(addrMode)),
		Tick:          m.Read32(addrTick),
		Rope:          m.rope(),
		Ending:        m.Read32(addrEndingFlag) != 0,
		Self:          int(m.Read32(addrSelf) & 0x01),
		Wins:          [2]int{int(m.Read32(addrWins)), int(m.Read32(addrWins + 4))},
		Rounds:        int(m.Read32(addrRounds)),
		LastRoundTick: m.Read32(addrLastRoundTick),
		MatchType:     uint8(m.Read32(addrMatchType)),
		Setting:       uint8(m.Read32(addrSetting)),
		Background:    uint8(m.Read32(addrBackground)),
	}
}
