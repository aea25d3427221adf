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

package replay_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/test"
)

func testMetadata() replay.Metadata {
	return replay.Metadata{
		Timestamp:        time.UnixMilli(1700000000123),
		LinkCode:         "lobby",
		Seed:             random.SeedFromUint64(42),
		IsOfferer:        false,
		LocalPlayerIndex: 1,
		RoundNumber:      2,
		MatchType:        1,
		LocalDelay:       3,
		RemoteDelay:      4,
	}
}

func writeReplay(t *testing.T, pairs int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := replay.NewWriter(&buf, testMetadata())
	test.DemandSuccess(t, err)

	// input cannot be written before the states
	err = w.WriteInput(lockstep.Pair{})
	test.ExpectSuccess(t, curated.Is(err, replay.StatesOutOfOrder))

	test.DemandSuccess(t, w.WriteStates([]byte("local state"), []byte("remote state")))
	err = w.WriteStates(nil, nil)
	test.ExpectSuccess(t, curated.Is(err, replay.StatesOutOfOrder))

	for i := range uint32(pairs) {
		test.DemandSuccess(t, w.WriteInput(lockstep.Pair{
			Local:  lockstep.Input{LocalTick: i, Joyflags: uint16(i)},
			Remote: lockstep.Input{LocalTick: i, Joyflags: uint16(0xff00 | i)},
		}))
	}
	test.ExpectEquality(t, w.NumInputs(), pairs)
	test.DemandSuccess(t, w.Close())

	return buf.Bytes()
}

func TestReadWrite(t *testing.T) {
	b := writeReplay(t, 100)
	test.ExpectBytes(t, b[:5], []byte{'L', 'C', 'R', 'P', replay.Version})

	rep, err := replay.Read(bytes.NewReader(b))
	test.DemandSuccess(t, err)

	meta := testMetadata()
	test.ExpectSuccess(t, rep.Metadata.Timestamp.Equal(meta.Timestamp))
	test.ExpectEquality(t, rep.Metadata.LinkCode, meta.LinkCode)
	test.ExpectEquality(t, rep.Metadata.Seed, meta.Seed)
	test.ExpectEquality(t, rep.Metadata.IsOfferer, meta.IsOfferer)
	test.ExpectEquality(t, rep.Metadata.LocalPlayerIndex, meta.LocalPlayerIndex)
	test.ExpectEquality(t, rep.Metadata.RoundNumber, meta.RoundNumber)
	test.ExpectEquality(t, rep.Metadata.MatchType, meta.MatchType)
	test.ExpectEquality(t, rep.Metadata.LocalDelay, meta.LocalDelay)
	test.ExpectEquality(t, rep.Metadata.RemoteDelay, meta.RemoteDelay)

	test.ExpectBytes(t, rep.LocalState, []byte("local state"))
	test.ExpectBytes(t, rep.RemoteState, []byte("remote state"))

	test.DemandEquality(t, len(rep.Pairs), 100)
	for i, p := range rep.Pairs {
		test.ExpectEquality(t, p.Local.LocalTick, uint32(i))
		test.ExpectEquality(t, p.Remote.LocalTick, uint32(i))
		test.ExpectEquality(t, p.Local.Joyflags, uint16(i))
		test.ExpectEquality(t, p.Remote.Joyflags, uint16(0xff00|i))
	}
}

func TestNoInput(t *testing.T) {
	rep, err := replay.Read(bytes.NewReader(writeReplay(t, 0)))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(rep.Pairs), 0)
}

func TestBadFiles(t *testing.T) {
	_, err := replay.Read(bytes.NewReader([]byte("LCR")))
	test.ExpectSuccess(t, curated.Is(err, replay.BadMagic))

	_, err = replay.Read(bytes.NewReader([]byte("XXXX\x01")))
	test.ExpectSuccess(t, curated.Is(err, replay.BadMagic))

	b := writeReplay(t, 1)
	b[4] = 99
	_, err = replay.Read(bytes.NewReader(b))
	test.ExpectSuccess(t, curated.Is(err, replay.UnsupportedVersion))
}

func TestTruncated(t *testing.T) {
	// empty states are valid
	var buf bytes.Buffer
	w, err := replay.NewWriter(&buf, testMetadata())
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, w.WriteStates(nil, nil))
	test.DemandSuccess(t, w.Close())

	full, err := replay.Read(bytes.NewReader(buf.Bytes()))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(full.LocalState), 0)

	// a header with nothing after it
	_, err = replay.Read(bytes.NewReader(buf.Bytes()[:5]))
	test.ExpectFailure(t, err)
}

func TestFilename(t *testing.T) {
	meta := testMetadata()
	meta.Timestamp = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	test.ExpectEquality(t, meta.Filename(), "20240506070809-lobby-r2-p2.lcreplay")

	meta.LinkCode = ""
	test.ExpectEquality(t, meta.Filename(), "20240506070809-local-r2-p2.lcreplay")
}
