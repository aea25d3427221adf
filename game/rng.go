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

package game

import (
	"github.com/jetsetilly/linkcable/random"
)

// the origin of the RNG2 sequence in the title.
const rng2Origin = 0xa338244f

// the number of possible preparatory steps when generating an RNG state.
const maxRNGSteps = 0x10000

// StepRNG advances an in-game RNG state by one step.
func StepRNG(seed uint32) uint32 {
	return ((seed << 1) + (seed >> 31) + 1) ^ 0x873ca9e5
}

func generate(rng *random.Shared, state uint32) uint32 {
	n := rng.Below(maxRNGSteps)
	for range n {
		state = StepRNG(state)
	}
	return state
}

// GenerateRNG1State returns a private RNG1 state. The value is derived from
// the shared RNG so that it can be reproduced by the peer's shadow.
func GenerateRNG1State(rng *random.Shared) uint32 {
	return generate(rng, 0)
}

// GenerateRNG2State returns the RNG2 state. Both peers must arrive at the
// same value.
func GenerateRNG2State(rng *random.Shared) uint32 {
	return generate(rng, rng2Origin)
}

// RNGStates are the in-game RNG states injected when a round is committed.
type RNGStates struct {
	OffererRNG1  uint32
	AnswererRNG1 uint32
	RNG2         uint32
}

// RNG1 returns the RNG1 state for the offerer or answerer.
func (s RNGStates) RNG1(offerer bool) uint32 {
	if offerer {
		return s.OffererRNG1
	}
	return s.AnswererRNG1
}

// GenerateRNGStates derives the RNG1 state of both the offerer and the
// answerer, followed by the RNG2 state. The order of derivation does not
// depend on the role of the caller.
func GenerateRNGStates(rng *random.Shared) RNGStates {
	var s RNGStates
	s.OffererRNG1 = GenerateRNG1State(rng)
	s.AnswererRNG1 = GenerateRNG1State(rng)
	s.RNG2 = GenerateRNG2State(rng)
	return s
}

// RandomBattleSettingsAndBackground chooses the battle settings and the
// background from the shared RNG.
func RandomBattleSettingsAndBackground(rng *random.Shared, settings uint8, backgrounds uint8) (uint8, uint8) {
	s := uint8(rng.Below(uint32(max(settings, 1))))
	b := uint8(rng.Below(uint32(max(backgrounds, 1))))
	return s, b
}
