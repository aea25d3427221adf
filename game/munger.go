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

package game

import (
	"github.com/jetsetilly/linkcable/emulation"
)

// values for the copy data input state.
const (
	CopyDataInputLinked = 2
	CopyDataInputLocal  = 4
)

// the value of the upper bits of the joyflags register. the title expects
// these to be set.
const joyflagsMask = 0xfc00

// Munger manipulates the memory and registers of a core at the locations
// given by Offsets.
type Munger struct {
	offsets Offsets
}

// NewMunger is the preferred method of initialisation for the Munger type.
func NewMunger(offsets Offsets) Munger {
	return Munger{offsets: offsets}
}

// Offsets returns the offsets the Munger was created with.
func (m Munger) Offsets() Offsets {
	return m.offsets
}

func (m Munger) RNG1State(core emulation.Core) uint32 {
	return core.Memory().Read32(m.offsets.RNG1State)
}

func (m Munger) SetRNG1State(core emulation.Core, v uint32) {
	core.Memory().Write32(m.offsets.RNG1State, v)
}

func (m Munger) RNG2State(core emulation.Core) uint32 {
	return core.Memory().Read32(m.offsets.RNG2State)
}

func (m Munger) SetRNG2State(core emulation.Core, v uint32) {
	core.Memory().Write32(m.offsets.RNG2State, v)
}

func (m Munger) RNG3State(core emulation.Core) uint32 {
	return core.Memory().Read32(m.offsets.RNG3State)
}

func (m Munger) SetRNG3State(core emulation.Core, v uint32) {
	core.Memory().Write32(m.offsets.RNG3State, v)
}

// InjectRNGStates writes the RNG states into the core. RNG1 is the state for
// the role given by offerer. RNG3 is given the same value as RNG2.
func (m Munger) InjectRNGStates(core emulation.Core, s RNGStates, offerer bool) {
	m.SetRNG1State(core, s.RNG1(offerer))
	m.SetRNG2State(core, s.RNG2)
	m.SetRNG3State(core, s.RNG2)
}

// TxPacket returns a copy of the packet the title wants to send.
func (m Munger) TxPacket(core emulation.Core) []byte {
	return core.Memory().ReadRange(m.offsets.TxPacket, m.offsets.PacketSize)
}

// SetRxPacket sets the received packet for the player. Data longer than the
// packet size is truncated.
func (m Munger) SetRxPacket(core emulation.Core, player int, data []byte) {
	if len(data) > m.offsets.PacketSize {
		data = data[:m.offsets.PacketSize]
	}
	addr := m.offsets.RxPackets + uint32(player*m.offsets.PacketSize)
	core.Memory().WriteRange(addr, data)
}

func (m Munger) SetCopyDataInputState(core emulation.Core, v uint32) {
	core.Memory().Write32(m.offsets.CopyDataInputState, v)
}

// SettingAndBackgroundCount returns the number of battle settings and
// backgrounds available for the match type.
func (m Munger) SettingAndBackgroundCount(core emulation.Core, matchType uint8) (uint8, uint8) {
	b := core.Memory().ReadRange(m.offsets.BattleSettingsCounts+uint32(matchType)*2, 2)
	return b[0], b[1]
}

// StartBattleFromCommMenu instructs the title to leave the comm menu and to
// start a battle.
func (m Munger) StartBattleFromCommMenu(core emulation.Core, matchType uint8, setting uint8, background uint8) {
	core.Memory().WriteRange(m.offsets.BattleStart, []byte{matchType, setting, background, 1})
}

// SetJoyflags sets the joyflags register as the title expects to find it
// after reading the keypad.
func (m Munger) SetJoyflags(core emulation.Core, joyflags uint16) {
	core.CPU().SetGPR(4, uint32(joyflags)|joyflagsMask)
}

// SetPlayerIndex sets the return value of the is-player-two checks.
func (m Munger) SetPlayerIndex(core emulation.Core, idx int) {
	core.CPU().SetGPR(0, uint32(idx))
}

// SkipCall steps over the branch-with-link instruction at the program
// counter.
func (m Munger) SkipCall(core emulation.Core) {
	pc := core.CPU().ThumbPC()
	core.CPU().SetThumbPC(pc + 4)
}

// SkipLinkCableInput steps over the call to the link cable input handler
// and sets the handler's return values to zero.
func (m Munger) SkipLinkCableInput(core emulation.Core) {
	m.SkipCall(core)
	core.CPU().SetGPR(0, 0)
	core.CPU().SetGPR(1, 0)
}
