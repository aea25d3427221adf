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
	"context"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/shadow"
)

// Sentinal error patterns.
const (
	InputExhausted = "replayer: input exhausted at tick %d"
	Stalled        = "replayer: no progress after %d frames"
	CoreError      = "replayer: core: %v"
)

// Config for a new Replayer.
type Config struct {
	Core   emulation.Core
	Munger game.Munger

	// the shadow must have been created with the seed, role and match type of
	// the replay and its core must have the shadow traps installed
	Shadow *shadow.Shadow

	Replay *replay.Replay

	// the ticks at which the committed and dirty states are taken
	CommitTick uint32
	DirtyTick  uint32

	// zero means shadow.DefaultMaxFramesWithoutProgress
	MaxFramesWithoutProgress int
}

// Replayer plays back a recorded round.
type Replayer struct {
	core      emulation.Core
	meta      replay.Metadata
	state     *State
	maxFrames int

	// frames since the current tick last changed
	framesWithoutProgress int
	lastTick              uint32
}

// New loads the committed states of the replay into the primary core and
// the shadow. The traps returned by hooks.Replayer() for State() must be
// installed in the core before the first call to Step().
func New(cfg Config) (*Replayer, error) {
	if cfg.MaxFramesWithoutProgress <= 0 {
		cfg.MaxFramesWithoutProgress = shadow.DefaultMaxFramesWithoutProgress
	}

	rp := &Replayer{
		core:      cfg.Core,
		meta:      cfg.Replay.Metadata,
		maxFrames: cfg.MaxFramesWithoutProgress,
		state: &State{
			inner: Inner{
				pairs:            append(cfg.Replay.Pairs[:0:0], cfg.Replay.Pairs...),
				commitTick:       cfg.CommitTick,
				dirtyTick:        cfg.DirtyTick,
				localPlayerIndex: cfg.Replay.Metadata.LocalPlayerIndex,
				shadow:           cfg.Shadow,
			},
		},
	}

	if err := cfg.Shadow.StartRoundFromCommittedState(cfg.Replay.RemoteState); err != nil {
		return nil, err
	}

	if err := rp.core.LoadState(cfg.Replay.LocalState); err != nil {
		return nil, curated.Errorf(CoreError, err)
	}

	// the local packet for the first tick is the one in the committed state
	rp.state.inner.SetLocalPacket(0, cfg.Munger.TxPacket(rp.core))

	return rp, nil
}

// State returns the playback state shared with the traps.
func (rp *Replayer) State() *State {
	return rp.state
}

// Metadata of the replay being played.
func (rp *Replayer) Metadata() replay.Metadata {
	return rp.meta
}

// Step runs a single frame of the core. It returns the first error recorded
// during playback.
func (rp *Replayer) Step() error {
	var err error
	rp.state.LockInner(func(st *Inner) {
		err = st.err
	})
	if err != nil {
		return err
	}

	if err := rp.core.RunFrame(); err != nil {
		err = curated.Errorf(CoreError, err)
		rp.state.LockInner(func(st *Inner) {
			st.SetError(err)
		})
		return err
	}

	rp.state.LockInner(func(st *Inner) {
		if st.currentTick != rp.lastTick || st.roundEnding {
			rp.lastTick = st.currentTick
			rp.framesWithoutProgress = 0
		} else {
			rp.framesWithoutProgress++
			if rp.framesWithoutProgress >= rp.maxFrames {
				st.SetError(curated.Errorf(Stalled, rp.framesWithoutProgress))
			}
		}
		err = st.err
	})

	return err
}

// Ended returns true once the round has ended.
func (rp *Replayer) Ended() bool {
	var ended bool
	rp.state.LockInner(func(st *Inner) {
		ended = st.IsRoundEnded()
	})
	return ended
}

// Play runs the core until the round has ended, an error occurs or the
// context is done.
func (rp *Replayer) Play(ctx context.Context) (battle.Result, error) {
	for !rp.Ended() {
		if err := ctx.Err(); err != nil {
			return battle.Unknown, err
		}
		if err := rp.Step(); err != nil {
			return battle.Unknown, err
		}
	}
	return rp.Result(), nil
}

// Result of the round. The result is battle.Unknown until the title has
// decided the round.
func (rp *Replayer) Result() battle.Result {
	var r battle.Result
	rp.state.LockInner(func(st *Inner) {
		r = st.RoundResult()
	})
	return r
}

// CurrentTick of the round being played.
func (rp *Replayer) CurrentTick() uint32 {
	var t uint32
	rp.state.LockInner(func(st *Inner) {
		t = st.currentTick
	})
	return t
}

// CommittedState returns the state taken at the commit tick. It is nil until
// the commit tick has been reached.
func (rp *Replayer) CommittedState() emulation.State {
	var s emulation.State
	rp.state.LockInner(func(st *Inner) {
		s = st.committedState
	})
	return s
}

// DirtyState returns the state taken at the dirty tick. It is nil until the
// dirty tick has been reached.
func (rp *Replayer) DirtyState() emulation.State {
	var s emulation.State
	rp.state.LockInner(func(st *Inner) {
		s = st.dirtyState
	})
	return s
}
