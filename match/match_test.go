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

package match_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/test"
	"github.com/jetsetilly/linkcable/transport"
)

func newMatch(offerer bool) *match.Match {
	return match.New(match.Config{
		Settings: match.Settings{
			LocalDelay:  2,
			RemoteDelay: 2,
			Pacing:      lockstep.DefaultPacing,
			LinkCode:    "test",
		},
		IsOfferer: offerer,
		Seed:      random.SeedFromUint64(42),
	})
}

func TestStartRound(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())

	m.LockRoundState(func(rs *battle.RoundState) {
		test.DemandEquality(t, rs.Round != nil, true)
		test.ExpectEquality(t, rs.Round.Number(), 1)
		test.ExpectEquality(t, rs.Round.LocalPlayerIndex(), 0)
		test.ExpectEquality(t, rs.Round.RemotePlayerIndex(), 1)
		test.ExpectEquality(t, rs.Round.LocalQueueLength(), 2)
	})

	// a second round cannot start while the first is active
	err := m.StartRound()
	test.ExpectEquality(t, curated.Is(err, battle.RoundActive), true)
}

func TestEarlyInput(t *testing.T) {
	m := newMatch(false)

	// input for round one arrives before the round has started
	test.DemandSuccess(t, m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 0}))
	test.DemandSuccess(t, m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 1, Joyflags: 0x01}))

	test.DemandSuccess(t, m.StartRound())

	m.LockRoundState(func(rs *battle.RoundState) {
		p, ok := rs.Round.PeekPair(0)
		test.ExpectEquality(t, ok, true)
		test.ExpectEquality(t, p.Remote.LocalTick, uint32(0))
		test.ExpectEquality(t, rs.Round.LocalPlayerIndex(), 1)
	})

	test.DemandSuccess(t, m.WaitForPair(0))
}

func TestOldInputDropped(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())

	m.LockRoundState(func(rs *battle.RoundState) {
		rs.SetLastResult(battle.Win)
	})
	test.DemandSuccess(t, m.EndRound())

	// input for the first round arrives after it has ended
	test.DemandSuccess(t, m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 0}))

	test.DemandSuccess(t, m.StartRound())
	m.LockRoundState(func(rs *battle.RoundState) {
		test.ExpectEquality(t, rs.Round.Number(), 2)
		_, ok := rs.Round.PeekPair(0)
		test.ExpectEquality(t, ok, false)
		test.ExpectEquality(t, rs.Wins, 1)
	})
}

func TestInputGapIsAnError(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())
	err := m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 1})
	test.ExpectEquality(t, curated.Is(err, lockstep.InputGap), true)
}

func TestEndRoundWithoutResult(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())

	err := m.EndRound()
	test.ExpectEquality(t, curated.Is(err, battle.UnknownResult), true)
	test.ExpectEquality(t, m.IsCancelled(), true)
	test.ExpectEquality(t, curated.Is(m.Err(), battle.UnknownResult), true)
}

func TestWaitForPair(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())

	done := make(chan error)
	go func() {
		done <- m.WaitForPair(0)
	}()

	select {
	case <-done:
		t.Fatalf("WaitForPair() returned before remote input arrived")
	case <-time.After(10 * time.Millisecond):
	}

	test.DemandSuccess(t, m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 0}))

	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	case <-time.After(time.Second):
		t.Fatalf("WaitForPair() did not return")
	}
}

func TestCancelReleasesWaiter(t *testing.T) {
	m := newMatch(true)
	test.DemandSuccess(t, m.StartRound())

	done := make(chan error)
	go func() {
		done <- m.WaitForPair(0)
	}()

	m.Cancel()
	m.Cancel()

	select {
	case err := <-done:
		test.ExpectEquality(t, curated.Is(err, match.Cancelled), true)
	case <-time.After(time.Second):
		t.Fatalf("WaitForPair() did not return after cancellation")
	}

	// cancel without an error
	test.ExpectSuccess(t, m.Err())
	test.ExpectEquality(t, m.AllowLogging(), false)
}

func TestFirstErrorWins(t *testing.T) {
	m := newMatch(true)
	m.CancelWithError(curated.Errorf(match.TransportFailure, "first"))
	m.CancelWithError(curated.Errorf(match.ProtocolError, "second"))
	test.ExpectEquality(t, curated.Is(m.Err(), match.TransportFailure), true)

	// completion after cancellation does not clear the error
	m.Complete()
	test.ExpectEquality(t, m.IsCompleted(), false)
	test.ExpectFailure(t, m.Err())
}

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closingBuffer) Close() error {
	b.closed = true
	return nil
}

func TestRecording(t *testing.T) {
	out := &closingBuffer{}

	m := match.New(match.Config{
		Settings: match.Settings{
			LocalDelay:  1,
			RemoteDelay: 1,
			Record:      true,
			LinkCode:    "rec",
		},
		IsOfferer: true,
		Seed:      random.SeedFromUint64(1),
		ReplayOutput: func(meta replay.Metadata) (io.WriteCloser, error) {
			test.ExpectEquality(t, meta.RoundNumber, 1)
			test.ExpectEquality(t, meta.LinkCode, "rec")
			return out, nil
		},
	})

	test.DemandSuccess(t, m.StartRound())
	test.DemandSuccess(t, m.ReceiveInput(protocol.Input{RoundNumber: 1, LocalTick: 0, Joyflags: 0x02}))

	m.LockRoundState(func(rs *battle.RoundState) {
		r := rs.Round
		test.DemandSuccess(t, r.SetFirstCommittedState([]byte("local"), []byte("remote"), nil))
		m.StartRecording(r)
		test.DemandEquality(t, r.Recorder() != nil, true)

		p, err := r.ConsumePair()
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, p.Remote.Joyflags, uint16(0x02))
		rs.SetLastResult(battle.Draw)
	})

	test.DemandSuccess(t, m.EndRound())
	test.ExpectEquality(t, out.closed, true)

	rep, err := replay.Read(bytes.NewReader(out.Bytes()))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(rep.LocalState), "local")
	test.ExpectEquality(t, string(rep.RemoteState), "remote")
	test.DemandEquality(t, len(rep.Pairs), 1)
	test.ExpectEquality(t, rep.Pairs[0].Remote.Joyflags, uint16(0x02))
}

func runPair(t *testing.T) (*match.Match, *match.Match, chan error, chan error) {
	t.Helper()

	a, b := newMatch(true), newMatch(false)
	ca, cb := transport.Pipe()

	ea := make(chan error, 1)
	eb := make(chan error, 1)
	go func() { ea <- a.Run(context.Background(), ca) }()
	go func() { eb <- b.Run(context.Background(), cb) }()

	return a, b, ea, eb
}

func wait(t *testing.T, e chan error) error {
	t.Helper()
	select {
	case err := <-e:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("Run() did not return")
	}
	return nil
}

func TestRunExchangesInput(t *testing.T) {
	a, b, ea, eb := runPair(t)

	test.DemandSuccess(t, a.StartRound())
	test.DemandSuccess(t, b.StartRound())

	// the prefilled input of each peer arrives at the other
	test.DemandSuccess(t, a.WaitForPair(0))
	test.DemandSuccess(t, b.WaitForPair(0))

	// both peers complete
	a.Complete()
	b.Complete()

	test.ExpectSuccess(t, wait(t, ea))
	test.ExpectSuccess(t, wait(t, eb))
}

func TestRunRemoteCancel(t *testing.T) {
	a, b, ea, eb := runPair(t)

	test.DemandSuccess(t, a.StartRound())
	b.Cancel()

	err := wait(t, ea)
	test.ExpectEquality(t, curated.Is(err, match.RemoteGoodbye), true)
	test.ExpectSuccess(t, wait(t, eb))

	// the waiting peer is released
	err = a.WaitForPair(0)
	test.ExpectEquality(t, curated.Is(err, match.Cancelled), true)
}

func TestRunContextCancel(t *testing.T) {
	m := newMatch(true)
	ca, cb := transport.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	e := make(chan error, 1)
	go func() { e <- m.Run(ctx, ca) }()

	// a cancelled context is not a transport failure
	cancel()
	test.ExpectSuccess(t, wait(t, e))
	test.ExpectEquality(t, m.IsCancelled(), true)
	test.ExpectEquality(t, m.IsCompleted(), false)
	test.ExpectSuccess(t, m.Err())

	// the peer is told why the match ended
	b, err := cb.Receive(context.Background())
	test.DemandSuccess(t, err)
	msg, err := protocol.Unmarshal(b)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, msg, protocol.Message(protocol.Goodbye{Reason: protocol.GoodbyeCancelled}))
}

func TestRunBadMessage(t *testing.T) {
	m := newMatch(true)
	ca, cb := transport.Pipe()

	e := make(chan error, 1)
	go func() { e <- m.Run(context.Background(), ca) }()

	test.DemandSuccess(t, cb.Send(context.Background(), []byte{0xff, 0xff}))
	err := wait(t, e)
	test.ExpectEquality(t, curated.Is(err, match.ProtocolError), true)
}

func TestRunTransportFailure(t *testing.T) {
	m := newMatch(true)
	ca, cb := transport.Pipe()

	e := make(chan error, 1)
	go func() { e <- m.Run(context.Background(), ca) }()

	cb.Close()
	err := wait(t, e)
	test.ExpectEquality(t, curated.Is(err, match.TransportFailure), true)
}

func TestRunSendsQueuedInputBeforeGoodbye(t *testing.T) {
	m := newMatch(true)
	ca, cb := transport.Pipe()

	// the match completes with input still waiting to be sent
	const n = 100
	for i := range n {
		test.DemandSuccess(t, m.SendInput(1, lockstep.Input{LocalTick: uint32(i), Joyflags: 0x03}, 2))
	}
	m.Complete()

	e := make(chan error, 1)
	go func() { e <- m.Run(context.Background(), ca) }()
	test.ExpectSuccess(t, wait(t, e))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := range n {
		b, err := cb.Receive(ctx)
		test.DemandSuccess(t, err)
		msg, err := protocol.Unmarshal(b)
		test.DemandSuccess(t, err)
		in, ok := msg.(protocol.Input)
		test.DemandEquality(t, ok, true)
		test.ExpectEquality(t, in.LocalTick, uint32(i))
	}

	b, err := cb.Receive(ctx)
	test.DemandSuccess(t, err)
	msg, err := protocol.Unmarshal(b)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, msg, protocol.Message(protocol.Goodbye{Reason: protocol.GoodbyeComplete}))
}
