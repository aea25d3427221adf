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
	"github.com/jetsetilly/linkcable/replayer"
)

// Replayer provides the traps for a core playing back a replay.
type Replayer struct {
	State *replayer.State
}

func (p Replayer) Traps(munger game.Munger) emulation.Traps {
	st := p.State
	offsets := munger.Offsets()

	copyInputDataRet := func(core emulation.Core) {
		st.LockInner(func(inner *replayer.Inner) {
			if inner.IsRoundEnding() {
				return
			}
			inner.SetLocalPacket(inner.CurrentTick()+1, munger.TxPacket(core))
		})
	}

	setResult := func(result battle.Result) emulation.Trap {
		return func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				inner.SetRoundResult(result)
			})
		}
	}

	playerIndex := func(core emulation.Core) {
		st.LockInner(func(inner *replayer.Inner) {
			munger.SetPlayerIndex(core, inner.LocalPlayerIndex())
		})
	}

	traps := emulation.Traps{
		offsets.InBattleCallHandleLinkCableInput: skipInBattleLinkCableInput(munger),
		offsets.BattleIsP2Tst:                    playerIndex,
		offsets.LinkIsP2Ret:                      playerIndex,

		offsets.RoundSetEnding: func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				inner.SetRoundEnding()
			})
		},

		offsets.RoundEndEntry: func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				inner.SetRoundEnded()
			})
		},

		offsets.MainReadJoyflags: func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				if inner.IsRoundEnding() {
					return
				}

				tick := inner.CurrentTick()
				if tick == inner.CommitTick() && inner.CommittedState() == nil {
					inner.SetCommittedState(save(core))
				}

				pair, ok := inner.PeekInputPair()
				if !ok {
					return
				}
				if err := pair.Check(tick); err != nil {
					inner.SetError(err)
					return
				}

				munger.SetJoyflags(core, pair.Local.Joyflags)

				if tick == inner.DirtyTick() && inner.DirtyState() == nil {
					inner.SetDirtyState(save(core))
				}
			})
		},

		offsets.CopyInputDataEntry: func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				if inner.IsRoundEnding() {
					return
				}

				tick := inner.CurrentTick()

				pair, ok := inner.PopInputPair()
				if !ok {
					inner.SetError(curated.Errorf(replayer.InputExhausted, tick))
					return
				}
				if err := pair.Check(tick); err != nil {
					inner.SetError(err)
					return
				}

				localPacket, ok := inner.LocalPacket()
				if !ok {
					inner.SetError(curated.Errorf(battle.MissingPacket, "local", tick))
					return
				}
				if localPacket.Tick != tick {
					inner.SetError(curated.Errorf(battle.PacketTickMismatch, "local", localPacket.Tick, tick))
					return
				}

				remote, err := inner.ApplyShadowInput(pair)
				if err != nil {
					inner.SetError(err)
					return
				}

				munger.SetRxPacket(core, inner.LocalPlayerIndex(), localPacket.Data)
				munger.SetRxPacket(core, inner.RemotePlayerIndex(), remote)
			})
		},

		offsets.RoundCallJumpTableRet: func(core emulation.Core) {
			st.LockInner(func(inner *replayer.Inner) {
				inner.IncrementCurrentTick()
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
