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

package replayer_test

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/hooks"
	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/replayer"
	"github.com/jetsetilly/linkcable/session"
	"github.com/jetsetilly/linkcable/shadow"
	"github.com/jetsetilly/linkcable/test"
	"github.com/jetsetilly/linkcable/transport"
	"github.com/jetsetilly/linkcable/tugofwar"
)

var cfg = tugofwar.Config{TimeLimit: 40, EndingFrames: 5, IntermissionFrames: 5}

type closingBuffer struct {
	bytes.Buffer
}

func (b *closingBuffer) Close() error {
	return nil
}

// record a match between two peers and return the replays of the offerer
func record(t *testing.T) []*replay.Replay {
	t.Helper()

	ca, cb := transport.Pipe()
	defer ca.Close()

	var bufs []*closingBuffer
	newSession := func(conn transport.Conn, offerer bool) *session.Session {
		s, err := session.NewNetplay(session.NetplayConfig{
			Core:       tugofwar.NewMachine(cfg),
			ShadowCore: tugofwar.NewMachine(cfg),
			Munger:     game.NewMunger(tugofwar.Offsets()),
			Conn:       conn,
			Settings: match.Settings{
				MatchType:   0,
				LocalDelay:  1,
				RemoteDelay: 1,
				LinkCode:    "replayer",
				Record:      offerer,
			},
			IsOfferer: offerer,
			Seed:      random.SeedFromUint64(99),
			ReplayOutput: func(replay.Metadata) (io.WriteCloser, error) {
				b := &closingBuffer{}
				bufs = append(bufs, b)
				return b, nil
			},
		})
		test.DemandSuccess(t, err)
		return s
	}

	a := newSession(ca, true)
	b := newSession(cb, false)
	a.SetJoyflags(0x0003)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	test.DemandSuccess(t, a.Run(ctx))
	test.DemandSuccess(t, <-done)

	var reps []*replay.Replay
	for _, b := range bufs {
		rep, err := replay.Read(bytes.NewReader(b.Bytes()))
		test.DemandSuccess(t, err)
		reps = append(reps, rep)
	}
	test.DemandEquality(t, len(reps) > 0, true)

	return reps
}

func newReplayer(t *testing.T, rep *replay.Replay, dirtyTick uint32) *replayer.Replayer {
	t.Helper()

	munger := game.NewMunger(tugofwar.Offsets())

	shadowCore := tugofwar.NewMachine(cfg)
	sh := shadow.NewShadow(shadow.Config{
		Core:      shadowCore,
		Munger:    munger,
		Seed:      rep.Metadata.Seed,
		IsOfferer: rep.Metadata.IsOfferer,
		MatchType: rep.Metadata.MatchType,
	})
	test.DemandSuccess(t, hooks.Install(shadowCore, munger, hooks.Shadow{Shadow: sh}))

	core := tugofwar.NewMachine(cfg)
	rp, err := replayer.New(replayer.Config{
		Core:      core,
		Munger:    munger,
		Shadow:    sh,
		Replay:    rep,
		DirtyTick: dirtyTick,
	})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, hooks.Install(core, munger, hooks.Replayer{State: rp.State()}))

	return rp
}

func TestPlayIsRepeatable(t *testing.T) {
	reps := record(t)

	for _, rep := range reps {
		a := newReplayer(t, rep, 10)
		ra, err := a.Play(context.Background())
		test.DemandSuccess(t, err)
		test.ExpectInequality(t, ra, battle.Unknown)

		b := newReplayer(t, rep, 10)
		rb, err := b.Play(context.Background())
		test.DemandSuccess(t, err)

		test.ExpectEquality(t, ra, rb)
		test.ExpectEquality(t, a.CurrentTick(), b.CurrentTick())
		test.ExpectBytes(t, a.CommittedState(), b.CommittedState())
		test.ExpectBytes(t, a.DirtyState(), b.DirtyState())

		// the state at the commit tick is the state the replay starts from
		test.ExpectBytes(t, a.CommittedState(), rep.LocalState)

		test.ExpectEquality(t, a.Metadata().RoundNumber, rep.Metadata.RoundNumber)
	}
}

func TestInputExhausted(t *testing.T) {
	reps := record(t)
	rep := reps[0]
	test.DemandEquality(t, len(rep.Pairs) > 5, true)
	rep.Pairs = rep.Pairs[:5]

	rp := newReplayer(t, rep, 0)
	_, err := rp.Play(context.Background())
	test.ExpectEquality(t, curated.Is(err, replayer.InputExhausted), true)

	// the error is sticky
	test.ExpectEquality(t, curated.Is(rp.Step(), replayer.InputExhausted), true)
}

func TestPlayCancelled(t *testing.T) {
	reps := record(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rp := newReplayer(t, reps[0], 0)
	r, err := rp.Play(ctx)
	test.ExpectEquality(t, r, battle.Unknown)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, rp.Ended(), false)
}
