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
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/shadow"
)

// Shadow provides the traps for the shadow core.
//
// The shadow lock is held by LockRoundState() so calls to SetError() and
// SetAppliedState() are always made after the round state has been
// released.
type Shadow struct {
	Shadow *shadow.Shadow
}

func (p Shadow) Traps(munger game.Munger) emulation.Traps {
	s := p.Shadow
	offsets := munger.Offsets()

	copyInputDataRet := func(core emulation.Core) {
		s.LockRoundState(func(rs *battle.RoundState) {
			r := rs.Round
			if r == nil || !r.PairConsumed() {
				return
			}
			r.SetSelfPacket(r.CurrentTick()+1, munger.TxPacket(core))
			r.SetInputInjected()
		})
	}

	// results are observed from the point of view of the shadow's player
	// and reversed by the round
	setResult := func(result battle.Result) emulation.Trap {
		return func(core emulation.Core) {
			s.LockRoundState(func(rs *battle.RoundState) {
				rs.SetLastResult(result)
			})
		}
	}

	playerIndex := func(core emulation.Core) {
		idx := 1
		if !s.IsOfferer() {
			idx = 0
		}
		munger.SetPlayerIndex(core, idx)
	}

	traps := emulation.Traps{
		offsets.CommMenuInitRet: func(core emulation.Core) {
			settings, backgrounds := munger.SettingAndBackgroundCount(core, s.MatchType())
			var set, bg uint8
			s.LockRNG(func(rng *random.Shared) {
				set, bg = game.RandomBattleSettingsAndBackground(rng, settings, backgrounds)
			})
			munger.StartBattleFromCommMenu(core, s.MatchType(), set, bg)
		},

		offsets.InBattleCallHandleLinkCableInput: skipInBattleLinkCableInput(munger),
		offsets.BattleIsP2Tst:                    playerIndex,
		offsets.LinkIsP2Ret:                      playerIndex,

		offsets.RoundStartRet: func(core emulation.Core) {
			s.StartRound()
		},

		offsets.RoundEndEntry: func(core emulation.Core) {
			s.EndRound()
			s.SetAppliedState(save(core), 0)
		},

		offsets.MainReadJoyflags: func(core emulation.Core) {
			var applied emulation.State
			var tick uint32
			var err error

			s.LockRoundState(func(rs *battle.RoundState) {
				r := rs.Round
				if r == nil {
					return
				}

				if !r.HasCommittedState() {
					var states game.RNGStates
					s.LockRNG(func(rng *random.Shared) {
						states = game.GenerateRNGStates(rng)
					})

					// the shadow plays the part of the other peer
					munger.InjectRNGStates(core, states, !s.IsOfferer())

					applied = save(core)
					tick = r.CurrentTick()
					err = r.SetFirstCommittedState(applied, nil, munger.TxPacket(core))
					if err == nil {
						logger.Logf(logger.Allow, "shadow", "round %d committed on tick %d", r.Number(), tick)
					}
					return
				}

				if pair, ok := r.PeekPair(r.CurrentTick()); ok {
					munger.SetJoyflags(core, r.SelfInput(pair).Joyflags)
				}

				if r.TakeInputInjected() {
					applied = save(core)
					tick = r.CurrentTick()
				}
			})

			if err != nil {
				s.SetError(err)
				return
			}
			if applied != nil {
				s.SetAppliedState(applied, tick)
			}
		},

		offsets.CopyInputDataEntry: func(core emulation.Core) {
			localPacket := s.LocalPacket()

			var err error
			s.LockRoundState(func(rs *battle.RoundState) {
				r := rs.Round
				if r == nil || r.IsEnding() {
					return
				}

				// the shadow is only given a pair by ApplyInput()
				pair, ok := r.PeekPair(r.NextPairTick())
				if !ok {
					return
				}

				// the core can run past the joyflags read and get here again
				// with the pair of the previous tick. this is let through for
				// one tick only. it should not happen at all and probably
				// hides a stepping bug
				if pair.Tick()+1 == r.CurrentTick() {
					r.PopPair()
					return
				}

				if _, err = r.ConsumePair(); err != nil {
					return
				}

				remotePacket, ok := r.RemotePacket()
				if err = r.CheckPacket("remote", remotePacket, ok); err != nil {
					return
				}

				munger.SetRxPacket(core, r.LocalPlayerIndex(), localPacket.Data)
				munger.SetRxPacket(core, r.RemotePlayerIndex(), remotePacket.Data)
			})

			if err != nil {
				s.SetError(curated.Errorf(shadow.ShadowDivergence, err))
			}
		},

		offsets.RoundCallJumpTableRet: func(core emulation.Core) {
			s.LockRoundState(func(rs *battle.RoundState) {
				if r := rs.Round; r != nil {
					r.IncrementCurrentTick()
				}
			})
		},

		offsets.RoundEndSetWin:             setResult(battle.Win),
		offsets.RoundEndSetLoss:            setResult(battle.Loss),
		offsets.RoundEndDamageJudgeSetWin:  setResult(battle.Win),
		offsets.RoundEndDamageJudgeSetLoss: setResult(battle.Loss),
		offsets.RoundEndDamageJudgeSetDraw: setResult(battle.Draw),
	}

	for _, addr := range offsets.CopyInputDataRet {
		traps[addr] = copyInputDataRet
	}

	return traps
}
