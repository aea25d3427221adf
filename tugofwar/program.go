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

	"github.com/jetsetilly/linkcable/game"
)

// instruction addresses.
const (
	addrVBlank uint32 = 0x080000f0

	addrMain             uint32 = 0x08000100
	addrMainReadJoyflags uint32 = 0x08000104
	addrMainDispatch     uint32 = 0x08000108

	addrComm                         uint32 = 0x08000200
	addrCommCallInit                 uint32 = 0x08000204
	addrCommMenuInitRet              uint32 = 0x08000208
	addrCommMenuHandleLinkCableInput uint32 = 0x0800020c
	addrCommPartner                  uint32 = 0x08000210
	addrCommStart                    uint32 = 0x08000214

	addrRoundStart        uint32 = 0x08000300
	addrRoundStartRet     uint32 = 0x08000304
	addrRoundCallLinkIsP2 uint32 = 0x08000308
	addrLinkIsP2Ret       uint32 = 0x0800030c
	addrBattleIsP2Tst     uint32 = 0x08000310
	addrRoundStartDone    uint32 = 0x08000314

	addrBattle                           uint32 = 0x08000400
	addrInBattleCallHandleLinkCableInput uint32 = 0x08000404
	addrBattleCallCopyInputData          uint32 = 0x08000408
	addrBattleCallJumpTable              uint32 = 0x0800040c
	addrRoundCallJumpTableRet            uint32 = 0x08000410
	addrRoundSetEnding                   uint32 = 0x08000414

	addrEnding                     uint32 = 0x08000500
	addrEndingDecide               uint32 = 0x08000504
	addrEndingRope                 uint32 = 0x08000508
	addrEndingJudge                uint32 = 0x0800050c
	addrRoundEndSetWin             uint32 = 0x08000520
	addrRoundEndSetLoss            uint32 = 0x08000524
	addrRoundEndDamageJudgeSetWin  uint32 = 0x08000528
	addrRoundEndDamageJudgeSetLoss uint32 = 0x0800052c
	addrRoundEndDamageJudgeSetDraw uint32 = 0x08000530
	addrEndingCallRoundEnd         uint32 = 0x08000540
	addrEndingDone                 uint32 = 0x08000544

	addrIntermission        uint32 = 0x08000600
	addrIntermissionCallEnd uint32 = 0x08000604
	addrMatchEndRet         uint32 = 0x08000608
	addrOver                uint32 = 0x08000700

	// subroutines
	addrHandleSIOEntry        uint32 = 0x08000800
	addrLinkCableInput        uint32 = 0x08000880
	addrCommMenuInit          uint32 = 0x08000900
	addrLinkIsP2              uint32 = 0x08000980
	addrRoundInit             uint32 = 0x08000a00
	addrCopyInputDataEntry    uint32 = 0x08000b00
	addrCopyInputDataTx       uint32 = 0x08000b04
	addrCopyInputDataRetValid uint32 = 0x08000b08
	addrCopyInputDataRetStall uint32 = 0x08000b0c
	addrJumpTable             uint32 = 0x08000c00
	addrRoundEndEntry         uint32 = 0x08000d00
	addrMatchEnd              uint32 = 0x08000e00
)

// the best of three is over after this many rounds, even if nobody has won
// two rounds.
const maxRounds = 3

// the number of rounds a player must win to win the match.
const roundsToWin = 2

// joyflags bits that pull the rope.
const (
	joyA = 1 << 0
	joyB = 1 << 1
)

type instruction struct {
	size uint32

	// returns true if the instruction ends the frame
	exec func(m *Machine) bool
}

// op is a four byte instruction.
func op(f func(m *Machine) bool) instruction {
	return instruction{size: 4, exec: f}
}

// bl is a four byte branch-with-link.
func bl(target uint32) instruction {
	return instruction{size: 4, exec: func(m *Machine) bool {
		m.call(target)
		return false
	}}
}

// bx returns from a subroutine.
func bx() instruction {
	return op(func(m *Machine) bool {
		m.ret()
		return false
	})
}

// jump unconditionally.
func jump(target uint32) instruction {
	return op(func(m *Machine) bool {
		m.branch(target)
		return false
	})
}

func (m *Machine) rope() int32 {
	return int32(m.Read32(addrRope))
}

func (m *Machine) setRope(v int32) {
	m.Write32(addrRope, uint32(v))
}

// the pull of a packet for the sending player's joyflags and RNG states.
func pull(joyflags uint16, rng1 uint32, rng2 uint32) uint8 {
	var p uint8
	if joyflags&joyA == joyA {
		p += 3
	}
	if joyflags&joyB == joyB {
		p += 2
	}
	p += uint8(((rng1 >> 16) ^ (rng2 >> 24)) & 0x01)
	return p
}

func makePacket(tick uint32, joyflags uint16, p uint8, rng2 uint32, self uint32) []byte {
	b := make([]byte, packetSize)
	binary.LittleEndian.PutUint32(b[0:], tick)
	binary.LittleEndian.PutUint16(b[4:], joyflags)
	b[6] = p
	b[7] = uint8(rng2>>8) ^ uint8(tick) ^ uint8(self)
	return b
}

// the packet of the computer opponent used when the link cable loops back.
func (m *Machine) opponentPacket(tick uint32, self uint32) []byte {
	rng3 := game.StepRNG(m.Read32(addrRNG3State))
	m.Write32(addrRNG3State, rng3)

	var joy uint16
	switch (rng3 >> 20) & 0x03 {
	case 1:
		joy = joyA
	case 2:
		joy = joyB
	case 3:
		joy = joyA | joyB
	}
	return makePacket(tick, joy, pull(joy, rng3, rng3), rng3, self)
}

var program map[uint32]instruction

func init() {
	program = map[uint32]instruction{
		addrVBlank: op(func(m *Machine) bool {
			m.branch(addrMain)
			return true
		}),

		// main loop
		addrMain: op(func(m *Machine) bool {
			m.regs[4] = m.keys.Load() | 0xfc00
			return false
		}),
		addrMainReadJoyflags: op(func(m *Machine) bool {
			m.Write32(addrJoy, m.regs[4]&0x03ff)
			return false
		}),
		addrMainDispatch: op(func(m *Machine) bool {
			switch m.Read32(addrMode) {
			case modeCommMenu:
				m.branch(addrComm)
			case modeBattle:
				m.branch(addrBattle)
			case modeIntermission:
				m.branch(addrIntermission)
			default:
				m.branch(addrOver)
			}
			return false
		}),

		// comm menu
		addrComm: op(func(m *Machine) bool {
			if m.Read32(addrCommInit) != 0 {
				m.branch(addrCommMenuHandleLinkCableInput)
			}
			return false
		}),
		addrCommCallInit:                 bl(addrCommMenuInit),
		addrCommMenuInitRet:              op(func(m *Machine) bool { return false }),
		addrCommMenuHandleLinkCableInput: bl(addrLinkCableInput),
		addrCommPartner: op(func(m *Machine) bool {
			start := m.ReadRange(addrBattleStart, 4)
			if m.regs[0] == 1 && start[3] == 0 {
				m.WriteRange(addrBattleStart, []byte{0, 0, 0, 1})
			}
			return false
		}),
		addrCommStart: op(func(m *Machine) bool {
			start := m.ReadRange(addrBattleStart, 4)
			if start[3] != 1 {
				m.branch(addrVBlank)
				return false
			}
			m.Write32(addrMatchType, uint32(start[0]))
			m.Write32(addrSetting, uint32(start[1]))
			m.Write32(addrBackground, uint32(start[2]))
			m.WriteRange(addrBattleStart, []byte{0, 0, 0, 0})
			m.Write32(addrMode, modeBattle)
			m.Write32(addrWins, 0)
			m.Write32(addrWins+4, 0)
			m.Write32(addrRounds, 0)
			m.branch(addrRoundStart)
			return false
		}),

		// round start
		addrRoundStart:        bl(addrRoundInit),
		addrRoundStartRet:     op(func(m *Machine) bool { return false }),
		addrRoundCallLinkIsP2: bl(addrLinkIsP2),
		addrLinkIsP2Ret: op(func(m *Machine) bool {
			m.Write32(addrLinkP2, m.regs[0])
			return false
		}),
		addrBattleIsP2Tst: op(func(m *Machine) bool {
			if m.regs[0] != 0 {
				m.Write32(addrSelf, 1)
			} else {
				m.Write32(addrSelf, 0)
			}
			return false
		}),
		addrRoundStartDone: jump(addrVBlank),

		// battle
		addrBattle: op(func(m *Machine) bool {
			if m.Read32(addrEndingFlag) != 0 {
				m.branch(addrEnding)
			}
			return false
		}),
		addrInBattleCallHandleLinkCableInput: bl(addrHandleSIOEntry),
		addrBattleCallCopyInputData:          bl(addrCopyInputDataEntry),
		addrBattleCallJumpTable:              bl(addrJumpTable),
		addrRoundCallJumpTableRet: op(func(m *Machine) bool {
			if m.Read32(addrEndPending) == 0 {
				m.branch(addrVBlank)
			}
			return false
		}),
		addrRoundSetEnding: op(func(m *Machine) bool {
			m.Write32(addrEndPending, 0)
			m.Write32(addrEndingFlag, 1)
			m.Write32(addrEndingFrames, uint32(m.cfg.EndingFrames))
			m.Write32(addrLastRoundTick, m.Read32(addrTick))
			m.branch(addrVBlank)
			return false
		}),

		// round ending sequence
		addrEnding: op(func(m *Machine) bool {
			n := m.Read32(addrEndingFrames)
			if n > 0 {
				n--
				m.Write32(addrEndingFrames, n)
			}
			if n > 0 {
				m.branch(addrVBlank)
			}
			return false
		}),
		addrEndingDecide: op(func(m *Machine) bool {
			switch r := m.rope(); {
			case r > 0:
				m.Write32(addrWinner, 1)
			case r < 0:
				m.Write32(addrWinner, 0)
			default:
				m.Write32(addrWinner, noWinner)
			}
			if m.Read32(addrJudge) != 0 {
				m.branch(addrEndingJudge)
			}
			return false
		}),
		addrEndingRope: op(func(m *Machine) bool {
			if m.Read32(addrWinner) == m.Read32(addrSelf) {
				m.branch(addrRoundEndSetWin)
			} else {
				m.branch(addrRoundEndSetLoss)
			}
			return false
		}),
		addrEndingJudge: op(func(m *Machine) bool {
			switch m.Read32(addrWinner) {
			case noWinner:
				m.branch(addrRoundEndDamageJudgeSetDraw)
			case m.Read32(addrSelf):
				m.branch(addrRoundEndDamageJudgeSetWin)
			default:
				m.branch(addrRoundEndDamageJudgeSetLoss)
			}
			return false
		}),
		addrRoundEndSetWin:             setResult(resultWin),
		addrRoundEndSetLoss:            setResult(resultLoss),
		addrRoundEndDamageJudgeSetWin:  setResult(resultWin),
		addrRoundEndDamageJudgeSetLoss: setResult(resultLoss),
		addrRoundEndDamageJudgeSetDraw: setResult(resultDraw),
		addrEndingCallRoundEnd:         bl(addrRoundEndEntry),
		addrEndingDone:                 jump(addrVBlank),

		// between rounds
		addrIntermission: op(func(m *Machine) bool {
			n := m.Read32(addrInterFrames)
			if n > 0 {
				n--
				m.Write32(addrInterFrames, n)
			}
			if n > 0 {
				m.branch(addrVBlank)
				return false
			}

			w0 := m.Read32(addrWins)
			w1 := m.Read32(addrWins + 4)
			if w0 >= roundsToWin || w1 >= roundsToWin || m.Read32(addrRounds) >= maxRounds {
				m.Write32(addrMode, modeOver)
				return false
			}

			m.Write32(addrMode, modeBattle)
			m.branch(addrRoundStart)
			return false
		}),
		addrIntermissionCallEnd: bl(addrMatchEnd),
		addrMatchEndRet:         jump(addrVBlank),
		addrOver:                jump(addrVBlank),

		// link cable routine used during battle. loops back the local
		// player's packet and supplies a packet for the computer opponent
		addrHandleSIOEntry: op(func(m *Machine) bool {
			self := m.Read32(addrSelf) & 0x01
			tx := m.ReadRange(addrTxPacket, packetSize)
			tick := binary.LittleEndian.Uint32(tx)
			m.WriteRange(addrRxPackets+self*packetSize, tx)
			m.WriteRange(addrRxPackets+(self^1)*packetSize, m.opponentPacket(tick, self^1))
			m.Write32(addrCopyDataInputState, game.CopyDataInputLocal)
			m.ret()
			return false
		}),

		// link cable routine used by the comm menu. a partner is always
		// found when the link cable loops back
		addrLinkCableInput: op(func(m *Machine) bool {
			m.regs[0] = 1
			m.regs[1] = 0
			m.ret()
			return false
		}),

		addrCommMenuInit: op(func(m *Machine) bool {
			// settings and background counts for match types zero and one
			m.WriteRange(addrBattleSettingsCounts, []byte{4, 6, 2, 3})
			m.Write32(addrCommInit, 1)
			m.ret()
			return false
		}),

		addrLinkIsP2: op(func(m *Machine) bool {
			m.regs[0] = uint32(m.cfg.PlayerID)
			m.ret()
			return false
		}),

		addrRoundInit: op(func(m *Machine) bool {
			m.setRope(0)
			m.Write32(addrTick, 0)
			m.Write32(addrEndingFlag, 0)
			m.Write32(addrEndPending, 0)
			m.Write32(addrJudge, 0)
			m.Write32(addrResult, resultNone)
			m.Write32(addrValid, 0)
			m.Write32(addrCopyDataInputState, 0)
			m.WriteRange(addrTxPacket, make([]byte, packetSize))
			m.WriteRange(addrRxPackets, []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0})
			m.ret()
			return false
		}),

		// copy the received packets into the title's input buffers. the
		// packets are only used if both are for the current tick
		addrCopyInputDataEntry: op(func(m *Machine) bool {
			state := m.Read32(addrCopyDataInputState)
			m.Write32(addrCopyDataInputState, 0)
			m.Write32(addrValid, 0)
			if state == 0 {
				m.branch(addrCopyInputDataRetStall)
				return false
			}

			rx := m.ReadRange(addrRxPackets, packetSize*2)
			m.WriteRange(addrInputs, rx)

			tick := m.Read32(addrTick)
			if binary.LittleEndian.Uint32(rx[0:]) != tick || binary.LittleEndian.Uint32(rx[packetSize:]) != tick {
				m.branch(addrCopyInputDataRetStall)
				return false
			}

			m.Write32(addrValid, 1)
			return false
		}),
		addrCopyInputDataTx: op(func(m *Machine) bool {
			joy := uint16(m.Read32(addrJoy))
			rng1 := m.Read32(addrRNG1State)
			rng2 := m.Read32(addrRNG2State)
			tick := m.Read32(addrTick) + 1
			m.WriteRange(addrTxPacket, makePacket(tick, joy, pull(joy, rng1, rng2), rng2, m.Read32(addrSelf)))
			return false
		}),
		addrCopyInputDataRetValid: bx(),
		addrCopyInputDataRetStall: bx(),

		// advance the battle by one tick
		addrJumpTable: op(func(m *Machine) bool {
			defer m.ret()

			if m.Read32(addrValid) == 0 {
				return false
			}
			m.Write32(addrValid, 0)

			in := m.ReadRange(addrInputs, packetSize*2)
			rope := m.rope() + int32(in[packetSize+6]) - int32(in[6])
			m.setRope(rope)

			tick := m.Read32(addrTick) + 1
			m.Write32(addrTick, tick)
			m.Write32(addrRNG1State, game.StepRNG(m.Read32(addrRNG1State)))
			m.Write32(addrRNG2State, game.StepRNG(m.Read32(addrRNG2State)))

			if rope >= m.cfg.RopeLimit || rope <= -m.cfg.RopeLimit {
				m.Write32(addrEndPending, 1)
				m.Write32(addrJudge, 0)
			} else if tick >= m.cfg.TimeLimit {
				m.Write32(addrEndPending, 1)
				m.Write32(addrJudge, 1)
			}
			return false
		}),

		addrRoundEndEntry: op(func(m *Machine) bool {
			if w := m.Read32(addrWinner); w != noWinner {
				addr := addrWins + (w&0x01)*4
				m.Write32(addr, m.Read32(addr)+1)
			}
			m.Write32(addrRounds, m.Read32(addrRounds)+1)
			m.Write32(addrEndingFlag, 0)
			m.Write32(addrMode, modeIntermission)
			m.Write32(addrInterFrames, uint32(m.cfg.IntermissionFrames))
			m.ret()
			return false
		}),

		addrMatchEnd: bx(),
	}
}

func setResult(result uint32) instruction {
	return op(func(m *Machine) bool {
		m.Write32(addrResult, result)
		m.branch(addrEndingCallRoundEnd)
		return false
	})
}

// Offsets returns the extension points of the title.
func Offsets() game.Offsets {
	return game.Offsets{
		MainReadJoyflags:                 addrMainReadJoyflags,
		CommMenuInitRet:                  addrCommMenuInitRet,
		CommMenuHandleLinkCableInput:     addrCommMenuHandleLinkCableInput,
		InBattleCallHandleLinkCableInput: addrInBattleCallHandleLinkCableInput,
		HandleSIOEntry:                   addrHandleSIOEntry,
		CopyInputDataEntry:               addrCopyInputDataEntry,
		CopyInputDataRet:                 []uint32{addrCopyInputDataRetValid, addrCopyInputDataRetStall},
		RoundCallJumpTableRet:            addrRoundCallJumpTableRet,
		RoundStartRet:                    addrRoundStartRet,
		RoundSetEnding:                   addrRoundSetEnding,
		RoundEndEntry:                    addrRoundEndEntry,
		RoundEndSetWin:                   addrRoundEndSetWin,
		RoundEndSetLoss:                  addrRoundEndSetLoss,
		RoundEndDamageJudgeSetWin:        addrRoundEndDamageJudgeSetWin,
		RoundEndDamageJudgeSetLoss:       addrRoundEndDamageJudgeSetLoss,
		RoundEndDamageJudgeSetDraw:       addrRoundEndDamageJudgeSetDraw,
		BattleIsP2Tst:                    addrBattleIsP2Tst,
		LinkIsP2Ret:                      addrLinkIsP2Ret,
		MatchEndRet:                      addrMatchEndRet,

		RNG1State:            addrRNG1State,
		RNG2State:            addrRNG2State,
		RNG3State:            addrRNG3State,
		TxPacket:             addrTxPacket,
		RxPackets:            addrRxPackets,
		CopyDataInputState:   addrCopyDataInputState,
		BattleSettingsCounts: addrBattleSettingsCounts,
		BattleStart:          addrBattleStart,

		PacketSize: packetSize,
	}
}
