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
	"encoding/binary"
)

// the machine's work RAM.
const (
	ramBase uint32 = 0x02000000
	ramSize uint32 = 0x400
)

// data addresses. the first group is published through game.Offsets.
const (
	addrRNG1State            = ramBase + 0x000
	addrRNG2State            = ramBase + 0x004
	addrRNG3State            = ramBase + 0x008
	addrTxPacket             = ramBase + 0x010
	addrRxPackets            = ramBase + 0x020
	addrCopyDataInputState   = ramBase + 0x030
	addrBattleSettingsCounts = ramBase + 0x040
	addrBattleStart          = ramBase + 0x048

	addrMode          = ramBase + 0x100
	addrTick          = ramBase + 0x104
	addrRope          = ramBase + 0x108
	addrWins          = ramBase + 0x10c
	addrRounds        = ramBase + 0x114
	addrEndingFlag    = ramBase + 0x118
	addrEndingFrames  = ramBase + 0x11c
	addrJudge         = ramBase + 0x120
	addrResult        = ramBase + 0x124
	addrJoy           = ramBase + 0x128
	addrSelf          = ramBase + 0x12c
	addrLinkP2        = ramBase + 0x130
	addrValid         = ramBase + 0x134
	addrEndPending    = ramBase + 0x138
	addrInterFrames   = ramBase + 0x13c
	addrCommInit      = ramBase + 0x140
	addrWinner        = ramBase + 0x144
	addrMatchType     = ramBase + 0x148
	addrSetting       = ramBase + 0x14c
	addrBackground    = ramBase + 0x150
	addrInputs        = ramBase + 0x160
	addrLastRoundTick = ramBase + 0x170
)

// size of a link cable packet. the layout of a packet is:
//
//	0-3	tick (LE)
//	4-5	joyflags (LE)
//	6	pull
//	7	check
const packetSize = 8

// values of the mode variable.
const (
	modeCommMenu uint32 = iota
	modeBattle
	modeIntermission
	modeOver
)

// values of the result variable.
const (
	resultNone uint32 = iota
	resultWin
	resultLoss
	resultDraw
)

// the winner variable when nobody won.
const noWinner = 0xffffffff

// mapped reports whether the range is entirely inside RAM and returns the
// offset of the start of the range.
func mapped(addr uint32, n int) (uint32, bool) {
	if addr < ramBase || n < 0 {
		return 0, false
	}
	o := addr - ramBase
	if o >= ramSize || uint32(n) > ramSize-o {
		return 0, false
	}
	return o, true
}

// Read32 implements the emulation.Memory interface. Reads outside of RAM
// return zero.
func (m *Machine) Read32(addr uint32) uint32 {
	o, ok := mapped(addr, 4)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(m.ram[o:])
}

// Write32 implements the emulation.Memory interface. Writes outside of RAM
// are ignored.
func (m *Machine) Write32(addr uint32, v uint32) {
	o, ok := mapped(addr, 4)
	if !ok {
		return
	}
	binary.LittleEndian.PutUint32(m.ram[o:], v)
}

// ReadRange implements the emulation.Memory interface. Bytes outside of RAM
// are read as zero.
func (m *Machine) ReadRange(addr uint32, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		if o, ok := mapped(addr+uint32(i), 1); ok {
			b[i] = m.ram[o]
		}
	}
	return b
}

// WriteRange implements the emulation.Memory interface.
func (m *Machine) WriteRange(addr uint32, data []byte) {
	for i, v := range data {
		if o, ok := mapped(addr+uint32(i), 1); ok {
			m.ram[o] = v
		}
	}
}
