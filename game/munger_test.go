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

package game_test

import (
	"encoding/binary"
	"testing"

	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/test"
)

type flatCPU struct {
	gpr [16]uint32
	pc  uint32
}

func (c *flatCPU) GPR(r int) uint32       { return c.gpr[r] }
func (c *flatCPU) SetGPR(r int, v uint32) { c.gpr[r] = v }
func (c *flatCPU) ThumbPC() uint32        { return c.pc }
func (c *flatCPU) SetThumbPC(pc uint32)   { c.pc = pc }

type flatMemory []byte

func (m flatMemory) Read32(addr uint32) uint32 {
	return binary.LittleEndian.Uint32(m[addr:])
}

func (m flatMemory) Write32(addr uint32, v uint32) {
	binary.LittleEndian.PutUint32(m[addr:], v)
}

func (m flatMemory) ReadRange(addr uint32, n int) []byte {
	return append([]byte{}, m[addr:addr+uint32(n)]...)
}

func (m flatMemory) WriteRange(addr uint32, data []byte) {
	copy(m[addr:], data)
}

// flatCore is the minimum needed to exercise the Munger.
type flatCore struct {
	cpu flatCPU
	mem flatMemory
}

func (c *flatCore) RunFrame() error                     { return nil }
func (c *flatCore) SaveState() (emulation.State, error) { return nil, nil }
func (c *flatCore) LoadState(emulation.State) error     { return nil }
func (c *flatCore) CPU() emulation.CPU                  { return &c.cpu }
func (c *flatCore) Memory() emulation.Memory            { return c.mem }
func (c *flatCore) SetTraps(emulation.Traps)            {}
func (c *flatCore) Frame() int                          { return 0 }

var offsets = game.Offsets{
	RNG1State:            0x00,
	RNG2State:            0x04,
	RNG3State:            0x08,
	TxPacket:             0x10,
	RxPackets:            0x20,
	CopyDataInputState:   0x40,
	BattleSettingsCounts: 0x44,
	BattleStart:          0x50,
	PacketSize:           8,
}

func TestMungerRNG(t *testing.T) {
	core := &flatCore{mem: make(flatMemory, 0x100)}
	m := game.NewMunger(offsets)

	m.InjectRNGStates(core, game.RNGStates{OffererRNG1: 1, AnswererRNG1: 2, RNG2: 3}, false)
	test.ExpectEquality(t, m.RNG1State(core), 2)
	test.ExpectEquality(t, m.RNG2State(core), 3)
	test.ExpectEquality(t, m.RNG3State(core), 3)

	m.InjectRNGStates(core, game.RNGStates{OffererRNG1: 1, AnswererRNG1: 2, RNG2: 3}, true)
	test.ExpectEquality(t, m.RNG1State(core), 1)
}

func TestMungerPackets(t *testing.T) {
	core := &flatCore{mem: make(flatMemory, 0x100)}
	m := game.NewMunger(offsets)

	copy(core.mem[0x10:], []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})
	test.ExpectBytes(t, m.TxPacket(core), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	m.SetRxPacket(core, 1, []byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9})
	test.ExpectBytes(t, core.mem[0x28:0x31], []byte{9, 9, 9, 9, 9, 9, 9, 9, 0})
	test.ExpectBytes(t, core.mem[0x20:0x28], make([]byte, 8))
}

func TestMungerCommMenu(t *testing.T) {
	core := &flatCore{mem: make(flatMemory, 0x100)}
	m := game.NewMunger(offsets)

	copy(core.mem[0x44:], []byte{3, 2, 6, 4})
	s, b := m.SettingAndBackgroundCount(core, 1)
	test.ExpectEquality(t, s, 6)
	test.ExpectEquality(t, b, 4)

	m.StartBattleFromCommMenu(core, 1, 5, 3)
	test.ExpectBytes(t, core.mem[0x50:0x54], []byte{1, 5, 3, 1})
}

func TestMungerRegisters(t *testing.T) {
	core := &flatCore{mem: make(flatMemory, 0x100)}
	m := game.NewMunger(offsets)

	m.SetJoyflags(core, 0x0021)
	test.ExpectEquality(t, core.cpu.gpr[4], 0xfc21)

	m.SetPlayerIndex(core, 1)
	test.ExpectEquality(t, core.cpu.gpr[0], 1)

	core.cpu.pc = 0x1000
	core.cpu.gpr[1] = 5
	m.SkipLinkCableInput(core)
	test.ExpectEquality(t, core.cpu.pc, 0x1004)
	test.ExpectEquality(t, core.cpu.gpr[0], 0)
	test.ExpectEquality(t, core.cpu.gpr[1], 0)
}
