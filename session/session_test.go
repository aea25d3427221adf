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

package session_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/session"
	"github.com/jetsetilly/linkcable/test"
	"github.com/jetsetilly/linkcable/transport"
	"github.com/jetsetilly/linkcable/tugofwar"
)

// a short match so that the tests complete quickly
var shortMatch = tugofwar.Config{TimeLimit: 60, EndingFrames: 5, IntermissionFrames: 5}

type closingBuffer struct {
	bytes.Buffer
}

func (b *closingBuffer) Close() error {
	return nil
}

type peer struct {
	core    *tugofwar.Machine
	session *session.Session
	replays []*closingBuffer
}

func newPeer(t *testing.T, conn transport.Conn, offerer bool, pacing lockstep.Pacing, record bool) *peer {
	t.Helper()

	p := &peer{
		core: tugofwar.NewMachine(shortMatch),
	}

	var err error
	p.session, err = session.NewNetplay(session.NetplayConfig{
		Core:       p.core,
		ShadowCore: tugofwar.NewMachine(shortMatch),
		Munger:     game.NewMunger(tugofwar.Offsets()),
		Conn:       conn,
		Settings: match.Settings{
			MatchType:   1,
			LocalDelay:  2,
			RemoteDelay: 2,
			Pacing:      pacing,
			LinkCode:    "test",
			Record:      record,
		},
		IsOfferer: offerer,
		Seed:      random.SeedFromUint64(1234),
		ReplayOutput: func(meta replay.Metadata) (io.WriteCloser, error) {
			b := &closingBuffer{}
			p.replays = append(p.replays, b)
			return b, nil
		},
	})
	test.DemandSuccess(t, err)

	return p
}

func (p *peer) roundState() battle.RoundState {
	var rs battle.RoundState
	p.session.Match().LockRoundState(func(s *battle.RoundState) {
		rs = *s
	})
	return rs
}

// run both sessions and wait for them to end
func runPair(t *testing.T, ctxA context.Context, a *peer, b *peer) (error, error) {
	t.Helper()

	errA := make(chan error, 1)
	errB := make(chan error, 1)
	go func() { errA <- a.session.Run(ctxA) }()
	go func() { errB <- b.session.Run(context.Background()) }()

	var ea, eb error
	for range 2 {
		select {
		case ea = <-errA:
		case eb = <-errB:
		case <-time.After(30 * time.Second):
			t.Fatalf("match did not end")
		}
	}
	return ea, eb
}

func TestNetplayMatch(t *testing.T) {
	ca, cb := transport.Pipe()
	defer ca.Close()

	a := newPeer(t, ca, true, lockstep.Pacing{}, false)
	b := newPeer(t, cb, false, lockstep.Pacing{}, false)
	a.session.SetJoyflags(0x0001)

	ea, eb := runPair(t, context.Background(), a, b)
	test.ExpectSuccess(t, ea)
	test.ExpectSuccess(t, eb)

	test.ExpectEquality(t, a.session.Match().IsCompleted(), true)
	test.ExpectEquality(t, b.session.Match().IsCompleted(), true)

	// both titles saw the same match from opposite sides
	sa := a.core.Status()
	sb := b.core.Status()
	test.ExpectEquality(t, sa.Mode, tugofwar.Over)
	test.ExpectEquality(t, sb.Mode, tugofwar.Over)
	test.ExpectEquality(t, sa.Wins, sb.Wins)
	test.ExpectEquality(t, sa.Rope, sb.Rope)
	test.ExpectInequality(t, sa.Self, sb.Self)

	ra := a.roundState()
	rb := b.roundState()
	test.ExpectEquality(t, ra.RoundsPlayed, rb.RoundsPlayed)
	test.ExpectEquality(t, ra.Wins, rb.Losses)
	test.ExpectEquality(t, ra.Losses, rb.Wins)
	test.ExpectEquality(t, ra.Draws, rb.Draws)
	test.ExpectEquality(t, ra.RoundsPlayed, sa.Rounds)

	st := a.session.Stats()
	test.ExpectEquality(t, st.Mode, "netplay")
	test.ExpectEquality(t, st.Wins, ra.Wins)
	test.ExpectEquality(t, st.Frame, a.core.Frame())
}

func TestNetplayCancel(t *testing.T) {
	ca, cb := transport.Pipe()
	defer ca.Close()

	a := newPeer(t, ca, true, lockstep.DefaultPacing, false)
	b := newPeer(t, cb, false, lockstep.DefaultPacing, false)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for a.session.Stats().Frame < 10 {
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	ea, eb := runPair(t, ctx, a, b)

	// cancellation by the local user is not an error
	test.ExpectSuccess(t, ea)
	test.ExpectEquality(t, a.session.Match().IsCompleted(), false)
	test.ExpectEquality(t, curated.Is(eb, match.RemoteGoodbye), true)
}

func TestNetplayTransportFailure(t *testing.T) {
	ca, cb := transport.Pipe()

	a := newPeer(t, ca, true, lockstep.DefaultPacing, false)

	// the remote peer disappears without saying goodbye
	go func() {
		time.Sleep(50 * time.Millisecond)
		cb.Close()
	}()

	done := make(chan error, 1)
	go func() { done <- a.session.Run(context.Background()) }()

	select {
	case err := <-done:
		test.ExpectEquality(t, curated.Is(err, match.TransportFailure), true)
	case <-time.After(10 * time.Second):
		t.Fatalf("session did not end")
	}
}

func TestNegotiate(t *testing.T) {
	ca, cb := transport.Pipe()
	defer ca.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	helloA := protocol.Hello{ProtocolVersion: protocol.Version, InputDelay: 2, MatchType: 1, Seed: random.SeedFromUint64(1)}
	helloB := protocol.Hello{ProtocolVersion: protocol.Version, InputDelay: 3, MatchType: 1, Seed: random.SeedFromUint64(2)}

	type result struct {
		remote protocol.Hello
		seed   random.Seed
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, s, err := session.Negotiate(ctx, cb, helloB, false)
		done <- result{r, s, err}
	}()

	remote, seed, err := session.Negotiate(ctx, ca, helloA, true)
	test.DemandSuccess(t, err)
	rb := <-done
	test.DemandSuccess(t, rb.err)

	test.ExpectEquality(t, remote.InputDelay, uint32(3))
	test.ExpectEquality(t, rb.remote.InputDelay, uint32(2))
	test.ExpectEquality(t, seed, rb.seed)
	test.ExpectEquality(t, seed, helloA.Seed.Combine(helloB.Seed))
}

func TestNegotiateMismatch(t *testing.T) {
	ca, cb := transport.Pipe()
	defer ca.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		_, _, _ = session.Negotiate(ctx, cb, protocol.Hello{ProtocolVersion: protocol.Version + 1}, false)
	}()

	_, _, err := session.Negotiate(ctx, ca, protocol.Hello{ProtocolVersion: protocol.Version}, true)
	test.ExpectEquality(t, curated.Is(err, session.VersionMismatch), true)

	ca2, cb2 := transport.Pipe()
	defer ca2.Close()

	go func() {
		_, _, _ = session.Negotiate(ctx, cb2, protocol.Hello{ProtocolVersion: protocol.Version, MatchType: 2}, false)
	}()

	_, _, err = session.Negotiate(ctx, ca2, protocol.Hello{ProtocolVersion: protocol.Version, MatchType: 1}, true)
	test.ExpectEquality(t, curated.Is(err, session.MatchTypeMismatch), true)
}

func TestSinglePlayer(t *testing.T) {
	m := tugofwar.NewMachine(shortMatch)

	s := session.NewSinglePlayer(m, 0, 1, func() bool {
		return m.Status().Mode == tugofwar.Over
	})
	s.SetJoyflags(0x0001)

	test.ExpectSuccess(t, s.Run(context.Background()))
	test.ExpectEquality(t, m.Status().Mode, tugofwar.Over)

	st := s.Stats()
	test.ExpectEquality(t, st.Mode, "single player")
	test.ExpectEquality(t, st.Frame, m.Frame())
}

func TestPlayback(t *testing.T) {
	ca, cb := transport.Pipe()
	defer ca.Close()

	a := newPeer(t, ca, true, lockstep.Pacing{}, true)
	b := newPeer(t, cb, false, lockstep.Pacing{}, true)
	a.session.SetJoyflags(0x0001)
	b.session.SetJoyflags(0x0002)

	ea, eb := runPair(t, context.Background(), a, b)
	test.DemandSuccess(t, ea)
	test.DemandSuccess(t, eb)

	for _, p := range []*peer{a, b} {
		rs := p.roundState()
		test.DemandEquality(t, len(p.replays), rs.RoundsPlayed)

		var wins, losses, draws int
		for _, buf := range p.replays {
			rep, err := replay.Read(bytes.NewReader(buf.Bytes()))
			test.DemandSuccess(t, err)

			s, err := session.NewPlayback(tugofwar.NewMachine(shortMatch), tugofwar.NewMachine(shortMatch),
				game.NewMunger(tugofwar.Offsets()), rep, 0)
			test.DemandSuccess(t, err)
			test.DemandSuccess(t, s.Run(context.Background()))

			switch s.Replayer().Result() {
			case battle.Win:
				wins++
			case battle.Loss:
				losses++
			case battle.Draw:
				draws++
			default:
				t.Errorf("replay of %s has no result", rep.Metadata)
			}

			test.ExpectEquality(t, s.Stats().Mode, "playback")
		}

		test.ExpectEquality(t, wins, rs.Wins)
		test.ExpectEquality(t, losses, rs.Losses)
		test.ExpectEquality(t, draws, rs.Draws)
	}
}
