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
	"bytes"
	"encoding/binary"
	"sync/atomic"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
)

// Sentinal error patterns.
const (
	InvalidState = "tugofwar: invalid state: %s"
	IllegalPC    = "tugofwar: no instruction at %#08x"
	RunawayFrame = "tugofwar: frame did not end after %d instructions"
)

// the maximum number of instructions in one frame.
const maxFrameSteps = 100000

// Config for a new machine. Both peers of a match must use the same
// configuration, with the exception of PlayerID.
type Config struct {
	// the player index reported by the link routine when it is not hooked
	PlayerID int

	// the rope position at which a round is won
	RopeLimit int32

	// the number of ticks after which the judge decides the round
	TimeLimit uint32

	// number of frames in the round ending sequence
	EndingFrames int

	// number of frames between rounds
	IntermissionFrames int
}

// DefaultConfig is the configuration used for any field left at the zero
// value in the config given to NewMachine().
var DefaultConfig = Config{
	RopeLimit:          48,
	TimeLimit:          300,
	EndingFrames:       30,
	IntermissionFrames: 20,
}

// Machine is the tug-of-war machine. It implements the emulation.Core,
// emulation.CPU and emulation.Memory interfaces.
type Machine struct {
	cfg Config

	regs [16]uint32
	pc   uint32
	ram  [ramSize]byte

	// the keypad. not part of the saved state
	keys atomic.Uint32

	traps emulation.Traps
	frame int

	// set by branch() during the execution of an instruction
	branched bool
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The machine starts at the beginning of a frame in the comm menu.
func NewMachine(cfg Config) *Machine {
	if cfg.RopeLimit <= 0 {
		cfg.RopeLimit = DefaultConfig.RopeLimit
	}
	if cfg.TimeLimit == 0 {
		cfg.TimeLimit = DefaultConfig.TimeLimit
	}
	if cfg.EndingFrames <= 0 {
		cfg.EndingFrames = DefaultConfig.EndingFrames
	}
	if cfg.IntermissionFrames <= 0 {
		cfg.IntermissionFrames = DefaultConfig.IntermissionFrames
	}
	return &Machine{
		cfg: cfg,
		pc:  addrMain,
	}
}

// SetKeys sets the state of the keypad. The title reads the keypad once per
// frame, at the extension point published as MainReadJoyflags.
func (m *Machine) SetKeys(joyflags uint16) {
	m.keys.Store(uint32(joyflags))
}

// CPU implements the emulation.Core interface.
func (m *Machine) CPU() emulation.CPU {
	return m
}

// Memory implements the emulation.Core interface.
func (m *Machine) Memory() emulation.Memory {
	return m
}

// SetTraps implements the emulation.Core interface.
func (m *Machine) SetTraps(traps emulation.Traps) {
	m.traps = traps
}

// Frame implements the emulation.Core interface.
func (m *Machine) Frame() int {
	return m.frame
}

// GPR implements the emulation.CPU interface.
func (m *Machine) GPR(r int) uint32 {
	return m.regs[r&0x0f]
}

// SetGPR implements the emulation.CPU interface.
func (m *Machine) SetGPR(r int, v uint32) {
	m.regs[r&0x0f] = v
}

// ThumbPC implements the emulation.CPU interface.
func (m *Machine) ThumbPC() uint32 {
	return m.pc
}

// SetThumbPC implements the emulation.CPU interface.
func (m *Machine) SetThumbPC(pc uint32) {
	m.pc = pc
}

// branch to the address. only to be called by instructions
func (m *Machine) branch(addr uint32) {
	m.pc = addr
	m.branched = true
}

// call the subroutine at the address. only to be called by instructions
func (m *Machine) call(addr uint32) {
	m.regs[14] = m.pc + 4
	m.branch(addr)
}

// return from the current subroutine. only to be called by instructions
func (m *Machine) ret() {
	m.branch(m.regs[14])
}

// RunFrame implements the emulation.Core interface.
func (m *Machine) RunFrame() error {
	for steps := 0; steps < maxFrameSteps; steps++ {
		// traps may move the program counter, in which case the traps at the
		// new address are run too
		for {
			t, ok := m.traps[m.pc]
			if !ok {
				break
			}
			pc := m.pc
			t(m)
			if m.pc == pc {
				break
			}
		}

		ins, ok := program[m.pc]
		if !ok {
			return curated.Errorf(IllegalPC, m.pc)
		}

		m.branched = false
		endOfFrame := ins.exec(m)
		if !m.branched {
			m.pc += ins.size
		}

		if endOfFrame {
			m.frame++
			return nil
		}
	}

	return curated.Errorf(RunawayFrame, maxFrameSteps)
}

// the saved state is the magic string and version byte followed by the
// registers, the program counter and the contents of RAM.
const (
	stateMagic   = "TOWS"
	stateVersion = 1
	stateSize    = len(stateMagic) + 1 + 16*4 + 4 + int(ramSize)
)

// SaveState implements the emulation.Core interface.
func (m *Machine) SaveState() (emulation.State, error) {
	b := make([]byte, 0, stateSize)
	b = append(b, stateMagic...)
	b = append(b, stateVersion)
	for _, r := range m.regs {
		b = binary.LittleEndian.AppendUint32(b, r)
	}
	b = binary.LittleEndian.AppendUint32(b, m.pc)
	b = append(b, m.ram[:]...)
	return emulation.State(b), nil
}

// LoadState implements the emulation.Core interface.
func (m *Machine) LoadState(state emulation.State) error {
	if len(state) != stateSize {
		return curated.Errorf(InvalidState, "wrong size")
	}
	if !bytes.HasPrefix(state, []byte(stateMagic)) {
		return curated.Errorf(InvalidState, "bad magic")
	}
	b := state[len(stateMagic):]
	if b[0] != stateVersion {
		return curated.Errorf(InvalidState, "unsupported version")
	}
	b = b[1:]

	pc := binary.LittleEndian.Uint32(b[16*4:])
	if _, ok := program[pc]; !ok {
		return curated.Errorf(InvalidState, "bad program counter")
	}

	for i := range m.regs {
		m.regs[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	m.pc = pc
	copy(m.ram[:], b[16*4+4:])

	return nil
}
