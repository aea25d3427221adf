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

package hooks

import (
	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/random"
)

// Primary provides the traps for the core the player is watching.
type Primary struct {
	Match *match.Match

	// the local joyflags for the current frame
	Joyflags func() uint16
}

func (p Primary) Traps(munger game.Munger) emulation.Traps {
	m := p.Match
	offsets := munger.Offsets()

	copyInputDataRet := func(core emulation.Core) {
		if m.IsCancelled() {
			return
		}
		m.LockRoundState(func(rs *battle.RoundState) {
			r := rs.Round
			if r == nil || r.IsEnding() || !r.PairConsumed() {
				return
			}
			r.SetLocalPacket(r.CurrentTick()+1, munger.TxPacket(core))
		})
	}

	setResult := func(result battle.Result) emulation.Trap {
		return func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			m.LockRoundState(func(rs *battle.RoundState) {
				rs.SetLastResult(result)
			})
		}
	}

	playerIndex := func(core emulation.Core) {
		munger.SetPlayerIndex(core, m.LocalPlayerIndex())
	}

	traps := emulation.Traps{
		offsets.CommMenuInitRet: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			settings, backgrounds := munger.SettingAndBackgroundCount(core, m.MatchType())
			var s, bg uint8
			m.LockRNG(func(rng *random.Shared) {
				s, bg = game.RandomBattleSettingsAndBackground(rng, settings, backgrounds)
			})
			munger.StartBattleFromCommMenu(core, m.MatchType(), s, bg)
			logger.Logf(m, "hooks", "battle started with setting %d and background %d", s, bg)
		},

		offsets.InBattleCallHandleLinkCableInput: skipInBattleLinkCableInput(munger),
		offsets.BattleIsP2Tst:                    playerIndex,
		offsets.LinkIsP2Ret:                      playerIndex,

		offsets.RoundStartRet: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			if err := m.StartRound(); err != nil {
				m.CancelWithError(err)
			}
		},

		offsets.MainReadJoyflags: func(core emulation.Core) {
			p.readJoyflags(munger, core)
		},

		offsets.CopyInputDataEntry: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			m.LockRoundState(func(rs *battle.RoundState) {
				r := rs.Round
				if r == nil || r.IsEnding() {
					return
				}

				pair, err := r.ConsumePair()
				if err != nil {
					m.CancelWithError(err)
					return
				}

				localPacket, ok := r.LocalPacket()
				if err := r.CheckPacket("local", localPacket, ok); err != nil {
					m.CancelWithError(err)
					return
				}

				remotePacket, err := m.ApplyShadowInput(pair, localPacket)
				if err != nil {
					m.CancelWithError(err)
					return
				}
				if err := r.CheckPacket("remote", remotePacket, true); err != nil {
					m.CancelWithError(err)
					return
				}
				r.SetRemotePacket(remotePacket.Tick, remotePacket.Data)

				munger.SetRxPacket(core, r.LocalPlayerIndex(), localPacket.Data)
				munger.SetRxPacket(core, r.RemotePlayerIndex(), remotePacket.Data)
			})
		},

		offsets.RoundCallJumpTableRet: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			m.LockRoundState(func(rs *battle.RoundState) {
				if r := rs.Round; r != nil {
					r.IncrementCurrentTick()
				}
			})
		},

		offsets.RoundSetEnding: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			_ = m.SetRoundEnding()
		},

		offsets.RoundEndSetWin:             setResult(battle.Win),
		offsets.RoundEndSetLoss:            setResult(battle.Loss),
		offsets.RoundEndDamageJudgeSetWin:  setResult(battle.Win),
		offsets.RoundEndDamageJudgeSetLoss: setResult(battle.Loss),
		offsets.RoundEndDamageJudgeSetDraw: setResult(battle.Draw),

		offsets.RoundEndEntry: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			_ = m.EndRound()
		},

		offsets.MatchEndRet: func(core emulation.Core) {
			if m.IsCancelled() {
				return
			}
			m.Complete()
		},
	}

	for _, addr := range offsets.CopyInputDataRet {
		traps[addr] = copyInputDataRet
	}

	return traps
}

// commit the round. must be called with the round state locked
func (p Primary) commit(munger game.Munger, core emulation.Core, r *battle.Round) bool {
	m := p.Match

	var states game.RNGStates
	m.LockRNG(func(rng *random.Shared) {
		states = game.GenerateRNGStates(rng)
	})
	munger.InjectRNGStates(core, states, m.IsOfferer())

	state := save(core)

	shadowState, _, err := m.AdvanceShadowUntilFirstCommittedState()
	if err != nil {
		m.CancelWithError(err)
		return false
	}

	if err := r.SetFirstCommittedState(state, shadowState, munger.TxPacket(core)); err != nil {
		m.CancelWithError(err)
		return false
	}

	m.StartRecording(r)

	logger.Logf(m, "hooks", "round %d committed on tick %d (rng1 %08x, rng2 %08x)",
		r.Number(), r.CurrentTick(), munger.RNG1State(core), munger.RNG2State(core))

	return true
}

func (p Primary) readJoyflags(munger game.Munger, core emulation.Core) {
	m := p.Match
	if m.IsCancelled() {
		return
	}

	var active bool
	var roundNumber int
	var tick uint32
	var send []lockstep.Input
	var queueLength int

	m.LockRoundState(func(rs *battle.RoundState) {
		r := rs.Round
		if r == nil || r.IsEnding() {
			return
		}

		if !r.HasCommittedState() {
			if !p.commit(munger, core, r) {
				return
			}
		}

		in, added, err := r.AddLocalInput(p.Joyflags())
		if err != nil {
			m.CancelWithError(err)
			return
		}
		if added {
			send = append(send, in)
		}

		active = true
		roundNumber = r.Number()
		tick = r.CurrentTick()
		queueLength = r.LocalQueueLength()
	})

	if !active {
		return
	}

	// the round state is not locked while waiting on the network
	for _, in := range send {
		if err := m.SendInput(roundNumber, in, queueLength); err != nil {
			return
		}
	}
	if err := m.WaitForPair(tick); err != nil {
		return
	}

	m.LockRoundState(func(rs *battle.RoundState) {
		r := rs.Round
		if r == nil {
			return
		}
		if pair, ok := r.PeekPair(tick); ok {
			munger.SetJoyflags(core, r.SelfInput(pair).Joyflags)
		}
	})
}
