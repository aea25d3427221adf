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

package random_test

import (
	"testing"

	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/test"
)

func TestShared(t *testing.T) {
	a := random.NewShared(random.SeedFromUint64(42))
	b := random.NewShared(random.SeedFromUint64(42))

	for i := 1; i < 256; i++ {
		test.ExpectEquality(t, a.Below(uint32(i)), b.Below(uint32(i)))
	}
	test.ExpectEquality(t, a.Draws(), 255)
	test.ExpectEquality(t, b.Draws(), 255)
}

func TestPCGSequence(t *testing.T) {
	// the sequence of math/rand/v2 NewPCG(1, 2)
	var s random.Seed
	s[7] = 1
	s[15] = 2
	r := random.NewShared(s)
	test.ExpectEquality(t, r.Uint64(), 0xc4f5a58656eef510)
	test.ExpectEquality(t, r.Uint64(), 0x9dcec3ad077dec6c)
	test.ExpectEquality(t, r.Uint64(), 0xc8d04605312f8088)
}

func TestSeed(t *testing.T) {
	a := random.NewSeed()
	b := random.NewSeed()
	test.ExpectEquality(t, a.Combine(b), b.Combine(a))
	test.ExpectEquality(t, a.Combine(a), random.Seed{})

	hi, lo := random.SeedFromUint64(42).Halves()
	test.ExpectEquality(t, hi, 0)
	test.ExpectEquality(t, lo, 42)
	test.ExpectEquality(t, random.SeedFromUint64(1).String(), "00000000000000000000000000000001")
}

func TestSeedText(t *testing.T) {
	a := random.NewSeed()
	b, err := a.MarshalText()
	test.DemandSuccess(t, err)

	var c random.Seed
	test.DemandSuccess(t, c.UnmarshalText(b))
	test.ExpectEquality(t, c, a)

	test.ExpectFailure(t, c.UnmarshalText([]byte("0011")))
	test.ExpectFailure(t, c.UnmarshalText([]byte("not hex")))
}
