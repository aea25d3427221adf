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

package session

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/hooks"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/performance"
	"github.com/jetsetilly/linkcable/performance/limiter"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/replayer"
	"github.com/jetsetilly/linkcable/shadow"
	"github.com/jetsetilly/linkcable/transport"
)

// Mode of the session.
type Mode int

// List of valid Mode values.
const (
	Netplay Mode = iota
	SinglePlayer
	Playback
)

func (m Mode) String() string {
	switch m {
	case Netplay:
		return "netplay"
	case SinglePlayer:
		return "single player"
	case Playback:
		return "playback"
	}
	return "unknown"
}

// the period over which the frame rate is measured
const fpsPeriod = time.Second

// Session runs the frame loop of a core.
type Session struct {
	mode    Mode
	core    emulation.Core
	limiter *limiter.Limiter
	pacing  lockstep.Pacing

	// netplay
	match *match.Match
	conn  transport.Conn

	// playback
	replayer *replayer.Replayer

	// single player
	speed    float64
	stopWhen func() bool

	joyflags atomic.Uint32

	statsLock sync.Mutex
	frames    int
	fps       float64
	fpsFrames int
	fpsStart  time.Time
}

// NetplayConfig for a new netplay session.
type NetplayConfig struct {
	Core       emulation.Core
	ShadowCore emulation.Core
	Munger     game.Munger
	Conn       transport.Conn

	Settings  match.Settings
	IsOfferer bool
	Seed      random.Seed

	// see match.Config
	ReplayOutput func(replay.Metadata) (io.WriteCloser, error)
}

// NewNetplay creates a session that plays a match against a peer. The
// traps are installed in both cores.
func NewNetplay(cfg NetplayConfig) (*Session, error) {
	sh := shadow.NewShadow(shadow.Config{
		Core:      cfg.ShadowCore,
		Munger:    cfg.Munger,
		Seed:      cfg.Seed,
		IsOfferer: cfg.IsOfferer,
		MatchType: cfg.Settings.MatchType,
	})
	if err := hooks.Install(cfg.ShadowCore, cfg.Munger, hooks.Shadow{Shadow: sh}); err != nil {
		return nil, err
	}

	s := &Session{
		mode:    Netplay,
		core:    cfg.Core,
		conn:    cfg.Conn,
		pacing:  cfg.Settings.Pacing,
		limiter: limiter.NewFPSLimiter(cfg.Settings.Pacing.NominalFPS),
	}

	s.match = match.New(match.Config{
		Settings:     cfg.Settings,
		IsOfferer:    cfg.IsOfferer,
		Seed:         cfg.Seed,
		Shadow:       sh,
		ReplayOutput: cfg.ReplayOutput,
	})

	primary := hooks.Primary{
		Match:    s.match,
		Joyflags: s.Joyflags,
	}
	if err := hooks.Install(cfg.Core, cfg.Munger, primary); err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "session", "%s", s.match)

	return s, nil
}

// NewSinglePlayer creates a session that runs the core without a match. The
// frame rate is nominalFPS multiplied by speed. A nominalFPS of zero runs the
// core as fast as possible. If stopWhen is not nil it is called after every
// frame and the session ends when it returns true.
func NewSinglePlayer(core emulation.Core, nominalFPS float64, speed float64, stopWhen func() bool) *Session {
	if speed <= 0 {
		speed = 1
	}
	core.SetTraps(nil)
	return &Session{
		mode:     SinglePlayer,
		core:     core,
		speed:    speed,
		stopWhen: stopWhen,
		pacing:   lockstep.Pacing{NominalFPS: nominalFPS},
		limiter:  limiter.NewFPSLimiter(nominalFPS * speed),
	}
}

// NewPlayback creates a session that plays back the replay. The shadow core
// must be a fresh core of the same title.
func NewPlayback(core emulation.Core, shadowCore emulation.Core, munger game.Munger, rep *replay.Replay, nominalFPS float64) (*Session, error) {
	sh := shadow.NewShadow(shadow.Config{
		Core:      shadowCore,
		Munger:    munger,
		Seed:      rep.Metadata.Seed,
		IsOfferer: rep.Metadata.IsOfferer,
		MatchType: rep.Metadata.MatchType,
	})
	if err := hooks.Install(shadowCore, munger, hooks.Shadow{Shadow: sh}); err != nil {
		return nil, err
	}

	rp, err := replayer.New(replayer.Config{
		Core:   core,
		Munger: munger,
		Shadow: sh,
		Replay: rep,
	})
	if err != nil {
		return nil, err
	}
	if err := hooks.Install(core, munger, hooks.Replayer{State: rp.State()}); err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "session", "playing %s", rep.Metadata)

	return &Session{
		mode:     Playback,
		core:     core,
		replayer: rp,
		pacing:   lockstep.Pacing{NominalFPS: nominalFPS},
		limiter:  limiter.NewFPSLimiter(nominalFPS),
	}, nil
}

func (s *Session) Mode() Mode {
	return s.mode
}

// Match returns the match of a netplay session. It is nil for other modes.
func (s *Session) Match() *match.Match {
	return s.match
}

// Replayer returns the replayer of a playback session. It is nil for other
// modes.
func (s *Session) Replayer() *replayer.Replayer {
	return s.replayer
}

// SetJoyflags sets the local joyflags used for the following frames.
func (s *Session) SetJoyflags(joyflags uint16) {
	s.joyflags.Store(uint32(joyflags))
}

// Joyflags returns the most recent value given to SetJoyflags().
func (s *Session) Joyflags() uint16 {
	return uint16(s.joyflags.Load())
}

// SetSpeed changes the speed multiplier of a single player session.
func (s *Session) SetSpeed(speed float64) {
	if s.mode != SinglePlayer || speed <= 0 {
		return
	}
	s.speed = speed
	s.limiter.SetFPSTarget(s.pacing.NominalFPS * speed)
}

// Run the session until it ends or until the context is done. For a netplay
// session the returned error is the error that cancelled the match.
func (s *Session) Run(ctx context.Context) error {
	defer s.limiter.Close()

	s.statsLock.Lock()
	s.fpsStart = time.Now()
	s.statsLock.Unlock()

	switch s.mode {
	case Netplay:
		return s.runNetplay(ctx)
	case Playback:
		return s.runPlayback(ctx)
	}
	return s.runSinglePlayer(ctx)
}

func (s *Session) runNetplay(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.match.Run(gctx, s.conn)
	})

	g.Go(func() error {
		for !s.match.IsCancelled() {
			s.limiter.SetFPSTarget(s.pacing.TargetFPS(s.match.TPSAdjustment()))
			if err := s.limiter.Wait(gctx); err != nil {
				s.match.Cancel()
				return nil
			}
			if err := s.core.RunFrame(); err != nil {
				s.match.CancelWithError(curated.Errorf(CoreError, err))
				return nil
			}
			s.frameDone()
		}
		return nil
	})

	_ = g.Wait()

	return s.match.Err()
}

func (s *Session) runSinglePlayer(ctx context.Context) error {
	keys, hasKeys := s.core.(emulation.Keys)
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
		if hasKeys {
			keys.SetKeys(s.Joyflags())
		}
		if err := s.core.RunFrame(); err != nil {
			return curated.Errorf(CoreError, err)
		}
		s.frameDone()
		if s.stopWhen != nil && s.stopWhen() {
			return nil
		}
	}
}

func (s *Session) runPlayback(ctx context.Context) error {
	for !s.replayer.Ended() {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.replayer.Step(); err != nil {
			return err
		}
		s.frameDone()
	}
	logger.Logf(logger.Allow, "session", "playback ended: %s", s.replayer.Result())
	return nil
}

func (s *Session) frameDone() {
	s.statsLock.Lock()
	defer s.statsLock.Unlock()

	s.frames++
	s.fpsFrames++
	if d := time.Since(s.fpsStart); d >= fpsPeriod {
		s.fps, _ = performance.CalcFPS(s.fpsFrames, d, s.limiter.FPSTarget())
		s.fpsFrames = 0
		s.fpsStart = time.Now()
	}
}

// Stats returns a snapshot of the session diagnostics.
func (s *Session) Stats() Stats {
	st := Stats{
		Mode:      s.mode.String(),
		TargetFPS: s.limiter.FPSTarget(),
	}

	s.statsLock.Lock()
	st.Frame = s.frames
	st.FPS = s.fps
	s.statsLock.Unlock()

	switch s.mode {
	case Netplay:
		st.LocalPlayerIndex = s.match.LocalPlayerIndex()
		st.TPSAdjustment = s.match.TPSAdjustment()
		s.match.LockRoundState(func(rs *battle.RoundState) {
			st.Wins = rs.Wins
			st.Losses = rs.Losses
			st.Draws = rs.Draws
			if rs.RoundsPlayed > 0 {
				st.LastResult = rs.LastResult.String()
			}
			if r := rs.Round; r != nil {
				st.Round = r.Number()
				st.CurrentTick = r.CurrentTick()
				st.LocalQueueLength = r.LocalQueueLength()
				st.RemoteQueueLength = r.RemoteQueueLength()
				st.LocalDelay = r.LocalDelay()
				st.RemoteDelay = r.RemoteDelay()
			}
		})

	case Playback:
		meta := s.replayer.Metadata()
		st.LocalPlayerIndex = meta.LocalPlayerIndex
		st.Round = meta.RoundNumber
		st.LocalDelay = meta.LocalDelay
		st.RemoteDelay = meta.RemoteDelay
		st.CurrentTick = s.replayer.CurrentTick()
		if r := s.replayer.Result(); r != battle.Unknown {
			st.LastResult = r.String()
		}
	}

	return st
}
