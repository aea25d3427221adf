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

package tugofwar_test

import (
	"testing"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/test"
	"github.com/jetsetilly/linkcable/tugofwar"
)

// run the machine until the condition is met or the frame limit is reached.
func runUntil(t *testing.T, m *tugofwar.Machine, limit int, done func(tugofwar.Status) bool) {
	t.Helper()
	for range limit {
		if done(m.Status()) {
			return
		}
		test.DemandSuccess(t, m.RunFrame())
	}
	t.Fatalf("condition not met after %d frames: %s", limit, m.Status())
}

func TestSinglePlayerMatch(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	m.SetKeys(0x0001)

	runUntil(t, m, 5000, func(s tugofwar.Status) bool {
		return s.Mode == tugofwar.Over
	})

	s := m.Status()
	test.ExpectEquality(t, s.Rounds >= 2, true)
	test.ExpectEquality(t, s.Rounds <= 3, true)
	test.ExpectEquality(t, s.Wins[0]+s.Wins[1] <= s.Rounds, true)
	test.ExpectEquality(t, s.Self, 0)
}

func TestStartsInCommMenu(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	test.ExpectEquality(t, m.Status().Mode, tugofwar.CommMenu)

	// the loopback link routine finds a partner straight away
	test.DemandSuccess(t, m.RunFrame())
	test.ExpectEquality(t, m.Status().Mode, tugofwar.Battle)
	test.ExpectEquality(t, m.Frame(), 1)
}

func TestDeterminism(t *testing.T) {
	a := tugofwar.NewMachine(tugofwar.Config{})
	b := tugofwar.NewMachine(tugofwar.Config{})

	for i := range 500 {
		keys := uint16(i/7) & 0x0003
		a.SetKeys(keys)
		b.SetKeys(keys)
		test.DemandSuccess(t, a.RunFrame())
		test.DemandSuccess(t, b.RunFrame())
	}

	sa, err := a.SaveState()
	test.DemandSuccess(t, err)
	sb, err := b.SaveState()
	test.DemandSuccess(t, err)
	test.ExpectBytes(t, sa, sb)
}

func TestSaveStateInTrap(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	offsets := tugofwar.Offsets()

	var calls int
	var saved emulation.State
	m.SetTraps(emulation.Traps{
		offsets.MainReadJoyflags: func(core emulation.Core) {
			calls++
			if saved == nil && calls == 3 {
				var err error
				saved, err = core.SaveState()
				test.DemandSuccess(t, err)
			}
		},
	})

	for range 5 {
		test.DemandSuccess(t, m.RunFrame())
	}
	test.ExpectEquality(t, calls, 5)
	tick := m.Status().Tick

	// loading the state resumes at the trap address and so the trap fires
	// again
	test.DemandSuccess(t, m.LoadState(saved))
	test.ExpectEquality(t, m.ThumbPC(), offsets.MainReadJoyflags)
	test.DemandSuccess(t, m.RunFrame())
	test.ExpectEquality(t, calls, 6)

	// the frame after the third frame is the same as it was the first time
	// round. the tick is two behind where it was
	test.ExpectEquality(t, m.Status().Tick+2, tick)
}

func TestSkipLinkCableCall(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	munger := game.NewMunger(tugofwar.Offsets())

	m.SetTraps(emulation.Traps{
		tugofwar.Offsets().InBattleCallHandleLinkCableInput: func(core emulation.Core) {
			munger.SkipCall(core)
		},
	})

	// without the link cable routine the received packets are never for the
	// current tick and the battle stalls
	for range 10 {
		test.DemandSuccess(t, m.RunFrame())
	}
	test.ExpectEquality(t, m.Status().Mode, tugofwar.Battle)
	test.ExpectEquality(t, m.Status().Tick, uint32(0))
}

func TestRxPacketsDriveBattle(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	offsets := tugofwar.Offsets()
	munger := game.NewMunger(offsets)

	// the title's own packet is received for player one and a packet that
	// always pulls hard is received for player two
	m.SetTraps(emulation.Traps{
		offsets.InBattleCallHandleLinkCableInput: func(core emulation.Core) {
			munger.SkipCall(core)
			munger.SetCopyDataInputState(core, game.CopyDataInputLinked)
		},
		offsets.CopyInputDataEntry: func(core emulation.Core) {
			tx := munger.TxPacket(core)
			munger.SetRxPacket(core, 0, tx)
			p := append([]byte{}, tx...)
			p[6] = 6
			munger.SetRxPacket(core, 1, p)
		},
	})

	runUntil(t, m, 200, func(s tugofwar.Status) bool {
		return s.Ending
	})

	// player two pulls six and player one pulls at most one each tick
	s := m.Status()
	test.ExpectEquality(t, s.Rope >= tugofwar.DefaultConfig.RopeLimit, true)
	test.ExpectEquality(t, s.LastRoundTick <= 10, true)
}

func TestTrapChain(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	offsets := tugofwar.Offsets()
	munger := game.NewMunger(offsets)

	var linkSkipped, commMenuInit bool
	m.SetTraps(emulation.Traps{
		offsets.CommMenuInitRet: func(core emulation.Core) {
			commMenuInit = true
		},
		offsets.CommMenuHandleLinkCableInput: func(core emulation.Core) {
			linkSkipped = true
			munger.SkipLinkCableInput(core)
		},
	})

	// with the link cable routine skipped there is no partner and the comm
	// menu waits for a battle to be started
	for range 3 {
		test.DemandSuccess(t, m.RunFrame())
	}
	test.ExpectEquality(t, commMenuInit, true)
	test.ExpectEquality(t, linkSkipped, true)
	test.ExpectEquality(t, m.Status().Mode, tugofwar.CommMenu)

	settings, backgrounds := munger.SettingAndBackgroundCount(m, 1)
	test.ExpectEquality(t, settings, uint8(2))
	test.ExpectEquality(t, backgrounds, uint8(3))

	munger.StartBattleFromCommMenu(m, 1, 1, 2)
	test.DemandSuccess(t, m.RunFrame())
	s := m.Status()
	test.ExpectEquality(t, s.Mode, tugofwar.Battle)
	test.ExpectEquality(t, s.MatchType, uint8(1))
	test.ExpectEquality(t, s.Setting, uint8(1))
	test.ExpectEquality(t, s.Background, uint8(2))
}

func TestPlayerID(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{PlayerID: 1})
	test.DemandSuccess(t, m.RunFrame())
	test.ExpectEquality(t, m.Status().Self, 1)
}

func TestLoadBadState(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{})
	err := m.LoadState(emulation.State("hello"))
	test.ExpectEquality(t, curated.Is(err, tugofwar.InvalidState), true)

	s, err := m.SaveState()
	test.DemandSuccess(t, err)
	s[0] = 'X'
	err = m.LoadState(s)
	test.ExpectEquality(t, curated.Is(err, tugofwar.InvalidState), true)
}

func TestEndingFlag(t *testing.T) {
	m := tugofwar.NewMachine(tugofwar.Config{EndingFrames: 3, IntermissionFrames: 3})
	m.SetKeys(0x0003)

	runUntil(t, m, 2000, func(s tugofwar.Status) bool {
		return s.Ending
	})
	test.ExpectEquality(t, m.Status().Mode, tugofwar.Battle)

	// the flag is lowered when the round ends
	runUntil(t, m, 100, func(s tugofwar.Status) bool {
		return s.Mode != tugofwar.Battle
	})
	s := m.Status()
	test.ExpectEquality(t, s.Ending, false)
	test.ExpectEquality(t, s.Rounds, 1)
}
