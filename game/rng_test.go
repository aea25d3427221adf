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

package game_test

import (
	"testing"

	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/test"
)

func TestStepRNG(t *testing.T) {
	test.ExpectEquality(t, game.StepRNG(0), 0x873ca9e4)
	test.ExpectEquality(t, game.StepRNG(1), 0x873ca9e6)
	test.ExpectEquality(t, game.StepRNG(0xa338244f), 0xc14ce145)
}

func TestGenerateRNGStatesGolden(t *testing.T) {
	rng := random.NewShared(random.SeedFromUint64(42))
	s := game.GenerateRNGStates(rng)
	test.ExpectEquality(t, s.OffererRNG1, 0x90b71eab)
	test.ExpectEquality(t, s.AnswererRNG1, 0xb5f3e6da)
	test.ExpectEquality(t, s.RNG2, 0x4b87e2df)
	test.ExpectEquality(t, rng.Draws(), 3)
}

func TestGenerateRNGStatesSymmetry(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 0xdeadbeef} {
		offerer := random.NewShared(random.SeedFromUint64(seed))
		answerer := random.NewShared(random.SeedFromUint64(seed))

		// the answerer draws first this time. the result must not depend on
		// which peer derives its states first
		a := game.GenerateRNGStates(answerer)
		o := game.GenerateRNGStates(offerer)

		test.ExpectEquality(t, o, a)
		test.ExpectInequality(t, o.RNG1(true), o.RNG1(false))
		test.ExpectEquality(t, offerer.Draws(), answerer.Draws())
	}
}

func TestRandomBattleSettingsAndBackground(t *testing.T) {
	a := random.NewShared(random.SeedFromUint64(7))
	b := random.NewShared(random.SeedFromUint64(7))
	for range 100 {
		as, ab := game.RandomBattleSettingsAndBackground(a, 5, 3)
		bs, bb := game.RandomBattleSettingsAndBackground(b, 5, 3)
		test.ExpectEquality(t, as, bs)
		test.ExpectEquality(t, ab, bb)
		test.ExpectSuccess(t, as < 5)
		test.ExpectSuccess(t, ab < 3)
	}

	// zero counts still consume two values
	c := random.NewShared(random.SeedFromUint64(7))
	s, bg := game.RandomBattleSettingsAndBackground(c, 0, 0)
	test.ExpectEquality(t, s, 0)
	test.ExpectEquality(t, bg, 0)
	test.ExpectEquality(t, c.Draws(), 2)
}
