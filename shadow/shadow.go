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

package shadow

import (
	"sync"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/random"
)

// Sentinal error patterns.
const (
	ShadowDivergence = "shadow: divergence: %v"
	ShadowStalled    = "shadow: no progress after %d frames"
	NotReady         = "shadow: no applied state"
	CoreError        = "shadow: core: %v"
)

// DefaultMaxFramesWithoutProgress is the number of frames the shadow core
// can run before it is considered to be stalled.
const DefaultMaxFramesWithoutProgress = 600

// Config is used to create a new Shadow.
type Config struct {
	Core   emulation.Core
	Munger game.Munger
	Seed   random.Seed

	// the role of the match the shadow belongs to. the shadow itself plays
	// the opposite role
	IsOfferer bool

	MatchType uint8

	// zero means DefaultMaxFramesWithoutProgress
	MaxFramesWithoutProgress int
}

type appliedState struct {
	state  emulation.State
	tick   uint32
	packet lockstep.Packet
	valid  bool
}

// Shadow is the shadow engine.
type Shadow struct {
	core      emulation.Core
	munger    game.Munger
	isOfferer bool
	matchType uint8
	maxFrames int

	rngLock sync.Mutex
	rng     *random.Shared

	lock       sync.Mutex
	roundState battle.RoundState
	applied    appliedState

	// local packet for the pair being applied
	localPacket lockstep.Packet

	// the first error recorded
	err error
}

// NewShadow is the preferred method of initialisation for the Shadow type.
func NewShadow(cfg Config) *Shadow {
	if cfg.MaxFramesWithoutProgress <= 0 {
		cfg.MaxFramesWithoutProgress = DefaultMaxFramesWithoutProgress
	}
	return &Shadow{
		core:      cfg.Core,
		munger:    cfg.Munger,
		isOfferer: cfg.IsOfferer,
		matchType: cfg.MatchType,
		maxFrames: cfg.MaxFramesWithoutProgress,
		rng:       random.NewShared(cfg.Seed),
	}
}

// Core returns the shadow core.
func (s *Shadow) Core() emulation.Core {
	return s.core
}

func (s *Shadow) Munger() game.Munger {
	return s.munger
}

// IsOfferer returns the role of the match, not the role the shadow is
// playing.
func (s *Shadow) IsOfferer() bool {
	return s.isOfferer
}

func (s *Shadow) MatchType() uint8 {
	return s.matchType
}

// LockRNG gives the function exclusive access to the shadow RNG.
func (s *Shadow) LockRNG(f func(rng *random.Shared)) {
	s.rngLock.Lock()
	defer s.rngLock.Unlock()
	f(s.rng)
}

// LockRoundState gives the function exclusive access to the round state.
func (s *Shadow) LockRoundState(f func(rs *battle.RoundState)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	f(&s.roundState)
}

// StartRound starts a new shadow round.
func (s *Shadow) StartRound() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.startRound()
}

func (s *Shadow) startRound() *battle.Round {
	r, err := s.roundState.Start(battle.RoundConfig{
		Role:      battle.Shadow,
		IsOfferer: s.isOfferer,
	})
	if err != nil {
		s.setError(err)
		return nil
	}
	logger.Logf(logger.Allow, "shadow", "round %d started", r.Number())
	return r
}

// EndRound ends the shadow round. Does nothing if there is no round.
func (s *Shadow) EndRound() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.roundState.Round == nil {
		return
	}

	r, err := s.roundState.End()
	if err != nil {
		s.setError(err)
		return
	}
	logger.Logf(logger.Allow, "shadow", "round %d ended on tick %d: %s", r.Number(), r.CurrentTick(), r.LastResult())
}

// SetAppliedState records the state of the shadow core at the point where it
// is ready to be given the input for the tick.
func (s *Shadow) SetAppliedState(state emulation.State, tick uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.setAppliedState(state, tick)
}

func (s *Shadow) setAppliedState(state emulation.State, tick uint32) {
	s.applied = appliedState{
		state: state,
		tick:  tick,
		valid: true,
	}
	if r := s.roundState.Round; r != nil {
		s.applied.packet, _ = r.RemotePacket()
	}
}

// AppliedTick returns the tick of the applied state.
func (s *Shadow) AppliedTick() (uint32, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.applied.tick, s.applied.valid
}

// LocalPacket returns the local packet for the pair being applied.
func (s *Shadow) LocalPacket() lockstep.Packet {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.localPacket
}

// SetError records an error in the shadow engine. Only the first error is
// kept.
func (s *Shadow) SetError(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.setError(err)
}

func (s *Shadow) setError(err error) {
	if err == nil {
		return
	}
	logger.Logf(logger.Allow, "shadow", "%v", err)
	if s.err == nil {
		s.err = err
	}
}

// Err returns the first error recorded by the shadow engine.
func (s *Shadow) Err() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.err
}

// LastResult returns the result of the most recently ended shadow round,
// from the point of view of the local player.
func (s *Shadow) LastResult() battle.Result {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.roundState.LastResult
}

// run the shadow core until the done function returns true. the done
// function is called with the lock held.
func (s *Shadow) runUntil(done func() bool) error {
	for frames := 0; frames < s.maxFrames; frames++ {
		if err := s.core.RunFrame(); err != nil {
			return curated.Errorf(CoreError, err)
		}

		s.lock.Lock()
		err := s.err
		d := err == nil && done()
		s.lock.Unlock()

		if err != nil {
			return err
		}
		if d {
			return nil
		}
	}
	return curated.Errorf(ShadowStalled, s.maxFrames)
}

func (s *Shadow) loadApplied() error {
	s.lock.Lock()
	applied := s.applied
	s.lock.Unlock()

	if !applied.valid {
		return nil
	}
	if err := s.core.LoadState(applied.state); err != nil {
		return curated.Errorf(CoreError, err)
	}
	return nil
}

// AdvanceUntilFirstCommittedState runs the shadow core until the next shadow
// round has committed. Returns the committed state and the packet the shadow
// core transmitted at the moment of commit. The packet is the remote packet
// for the first tick of the round.
func (s *Shadow) AdvanceUntilFirstCommittedState() (emulation.State, lockstep.Packet, error) {
	if err := s.Err(); err != nil {
		return nil, lockstep.Packet{}, err
	}

	if err := s.loadApplied(); err != nil {
		s.SetError(err)
		return nil, lockstep.Packet{}, err
	}

	var state emulation.State
	var packet lockstep.Packet

	err := s.runUntil(func() bool {
		r := s.roundState.Round
		if r == nil || !r.HasCommittedState() {
			return false
		}
		state = r.FirstCommittedState()
		packet, _ = r.RemotePacket()
		return true
	})
	if err != nil {
		s.SetError(err)
		return nil, lockstep.Packet{}, err
	}

	return state, packet, nil
}

// ApplyInput gives the pair to the shadow core and runs it until it is ready
// for the next pair. Returns the remote packet for the tick of the pair.
func (s *Shadow) ApplyInput(pair lockstep.Pair, localPacket lockstep.Packet) (lockstep.Packet, error) {
	tick := pair.Tick()

	s.lock.Lock()
	if s.err != nil {
		err := s.err
		s.lock.Unlock()
		return lockstep.Packet{}, err
	}

	r := s.roundState.Round
	if r == nil {
		s.lock.Unlock()
		err := curated.Errorf(ShadowDivergence, curated.Errorf(battle.NoRound))
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	if !s.applied.valid {
		s.lock.Unlock()
		err := curated.Errorf(NotReady)
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	// return the round to the applied state
	r.SetCurrentTick(s.applied.tick)
	r.SetRemotePacket(s.applied.packet.Tick, s.applied.packet.Data)
	r.ClearPairConsumed()
	r.TakeInputInjected()

	remotePacket, ok := r.RemotePacket()
	if err := r.CheckPacket("remote", remotePacket, ok); err != nil {
		s.lock.Unlock()
		err = curated.Errorf(ShadowDivergence, err)
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	if tick != s.applied.tick {
		s.lock.Unlock()
		err := curated.Errorf(ShadowDivergence, curated.Errorf(battle.InputTickMismatch, tick, s.applied.tick))
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	if err := r.PushPair(pair); err != nil {
		s.lock.Unlock()
		err = curated.Errorf(ShadowDivergence, err)
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	s.localPacket = localPacket
	state := s.applied.state
	s.lock.Unlock()

	if err := s.core.LoadState(state); err != nil {
		err = curated.Errorf(CoreError, err)
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	err := s.runUntil(func() bool {
		return s.roundState.Round == nil || s.applied.tick > tick
	})
	if err != nil {
		s.SetError(err)
		return lockstep.Packet{}, err
	}

	return remotePacket, nil
}

// AdvanceUntilRoundEnd runs the shadow core until the shadow round has ended.
// Returns the result of the round from the point of view of the local
// player.
func (s *Shadow) AdvanceUntilRoundEnd() (battle.Result, error) {
	s.lock.Lock()
	err := s.err
	r := s.roundState.Round
	if r != nil && s.applied.valid {
		r.SetCurrentTick(s.applied.tick)
		r.TakeInputInjected()
	}
	result := s.roundState.LastResult
	s.lock.Unlock()

	if err != nil {
		return battle.Unknown, err
	}

	// the round has already ended
	if r == nil {
		return result, nil
	}

	if err := s.loadApplied(); err != nil {
		s.SetError(err)
		return battle.Unknown, err
	}

	err = s.runUntil(func() bool {
		return s.roundState.Round == nil
	})
	if err != nil {
		s.SetError(err)
		return battle.Unknown, err
	}

	return s.LastResult(), nil
}

// StartRoundFromCommittedState starts a shadow round directly from a
// committed state, without running the shadow core to the point of commit.
// The RNG is not used.
func (s *Shadow) StartRoundFromCommittedState(state emulation.State) error {
	if err := s.core.LoadState(state); err != nil {
		err = curated.Errorf(CoreError, err)
		s.SetError(err)
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	r := s.startRound()
	if r == nil {
		return s.err
	}
	if err := r.SetFirstCommittedState(state, nil, s.munger.TxPacket(s.core)); err != nil {
		s.setError(err)
		return err
	}
	s.setAppliedState(state, r.CurrentTick())

	return nil
}
