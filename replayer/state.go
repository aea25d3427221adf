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

package replayer

import (
	"sync"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/shadow"
)

// Inner is the state of playback. It is only reachable through
// State.LockInner().
type Inner struct {
	pairs []lockstep.Pair

	currentTick  uint32
	pairConsumed bool

	commitTick     uint32
	committedState emulation.State
	dirtyTick      uint32
	dirtyState     emulation.State

	localPacket     lockstep.Packet
	haveLocalPacket bool

	localPlayerIndex int

	roundEnding bool
	roundEnded  bool
	roundResult battle.Result

	shadow *shadow.Shadow

	err error
}

// State of playback shared between the replayer and the traps installed in
// the core.
type State struct {
	lock  sync.Mutex
	inner Inner
}

// LockInner calls f with exclusive access to the playback state.
func (s *State) LockInner(f func(inner *Inner)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	f(&s.inner)
}

func (st *Inner) CurrentTick() uint32 {
	return st.currentTick
}

// IncrementCurrentTick advances the current tick if a pair has been consumed
// since the last increment.
func (st *Inner) IncrementCurrentTick() {
	if !st.pairConsumed {
		return
	}
	st.pairConsumed = false
	st.currentTick++
}

func (st *Inner) CommitTick() uint32 {
	return st.commitTick
}

func (st *Inner) DirtyTick() uint32 {
	return st.dirtyTick
}

func (st *Inner) SetCommittedState(state emulation.State) {
	st.committedState = state
}

func (st *Inner) CommittedState() emulation.State {
	return st.committedState
}

func (st *Inner) SetDirtyState(state emulation.State) {
	st.dirtyState = state
}

func (st *Inner) DirtyState() emulation.State {
	return st.dirtyState
}

// PeekInputPair returns the next recorded pair without consuming it.
func (st *Inner) PeekInputPair() (lockstep.Pair, bool) {
	if len(st.pairs) == 0 {
		return lockstep.Pair{}, false
	}
	return st.pairs[0], true
}

// PopInputPair consumes the next recorded pair.
func (st *Inner) PopInputPair() (lockstep.Pair, bool) {
	if len(st.pairs) == 0 {
		return lockstep.Pair{}, false
	}
	p := st.pairs[0]
	st.pairs = st.pairs[1:]
	st.pairConsumed = true
	return p, true
}

// RemainingPairs returns the number of recorded pairs not yet consumed.
func (st *Inner) RemainingPairs() int {
	return len(st.pairs)
}

func (st *Inner) SetLocalPacket(tick uint32, data []byte) {
	st.localPacket = lockstep.Packet{Tick: tick, Data: data}
	st.haveLocalPacket = true
}

func (st *Inner) LocalPacket() (lockstep.Packet, bool) {
	return st.localPacket, st.haveLocalPacket
}

func (st *Inner) SetRoundEnding() {
	st.roundEnding = true
}

func (st *Inner) IsRoundEnding() bool {
	return st.roundEnding
}

func (st *Inner) SetRoundEnded() {
	st.roundEnded = true
}

func (st *Inner) IsRoundEnded() bool {
	return st.roundEnded
}

func (st *Inner) SetRoundResult(result battle.Result) {
	st.roundResult = result
}

func (st *Inner) RoundResult() battle.Result {
	return st.roundResult
}

func (st *Inner) LocalPlayerIndex() int {
	return st.localPlayerIndex
}

func (st *Inner) RemotePlayerIndex() int {
	return 1 - st.localPlayerIndex
}

// ApplyShadowInput gives the pair to the shadow and returns the remote packet
// for the tick. The local packet for the tick must have been set.
func (st *Inner) ApplyShadowInput(pair lockstep.Pair) ([]byte, error) {
	p, err := st.shadow.ApplyInput(pair, st.localPacket)
	if err != nil {
		return nil, err
	}
	return p.Data, nil
}

// SetError records an error. Only the first error is kept.
func (st *Inner) SetError(err error) {
	if err == nil {
		return
	}
	logger.Logf(logger.Allow, "replayer", "%v", err)
	if st.err == nil {
		st.err = err
	}
}

func (st *Inner) Err() error {
	return st.err
}
