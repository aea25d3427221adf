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

package random

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	mrand "math/rand/v2"

	"github.com/jetsetilly/linkcable/curated"
)

// BadSeed is the error pattern returned when a seed cannot be parsed.
const BadSeed = "random: seed must be %d hexadecimal bytes"

// Seed is the negotiated seed for a match.
type Seed [16]byte

// NewSeed returns a seed from the operating system's random source.
func NewSeed() Seed {
	var s Seed
	_, _ = rand.Read(s[:])
	return s
}

// SeedFromUint64 returns a seed with the lower half set to v.
func SeedFromUint64(v uint64) Seed {
	var s Seed
	binary.BigEndian.PutUint64(s[8:], v)
	return s
}

// Combine returns the XOR of two seeds. The result does not depend on the
// order of the arguments so both peers arrive at the same seed.
func (s Seed) Combine(o Seed) Seed {
	var c Seed
	for i := range s {
		c[i] = s[i] ^ o[i]
	}
	return c
}

// Halves returns the two big-endian halves of the seed.
func (s Seed) Halves() (hi uint64, lo uint64) {
	return binary.BigEndian.Uint64(s[:8]), binary.BigEndian.Uint64(s[8:])
}

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (s Seed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (s *Seed) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil || len(b) != len(s) {
		return curated.Errorf(BadSeed, len(s))
	}
	copy(s[:], b)
	return nil
}

// counting wraps a PCG source and counts the number of values produced.
type counting struct {
	pcg   *mrand.PCG
	draws int
}

func (c *counting) Uint64() uint64 {
	c.draws++
	return c.pcg.Uint64()
}

// Shared is a deterministic random number generator. It is not safe for
// concurrent use. Owners should guard it with their own lock.
type Shared struct {
	seed Seed
	src  *counting
	rng  *mrand.Rand
}

// NewShared is the preferred method of initialisation for the Shared type.
func NewShared(seed Seed) *Shared {
	hi, lo := seed.Halves()
	src := &counting{pcg: mrand.NewPCG(hi, lo)}
	return &Shared{
		seed: seed,
		src:  src,
		rng:  mrand.New(src),
	}
}

// Seed returns the seed the generator was created with.
func (r *Shared) Seed() Seed {
	return r.seed
}

// Uint64 returns the next value in the sequence.
func (r *Shared) Uint64() uint64 {
	return r.rng.Uint64()
}

// Below returns a value in the range [0, n). The value is the remainder of
// the next 64 bit value, which does not depend on the width of int on the
// platform. Panics if n is zero.
func (r *Shared) Below(n uint32) uint32 {
	if n == 0 {
		panic("random: Below() with zero range")
	}
	return uint32(r.rng.Uint64() % uint64(n))
}

// Draws returns the number of values drawn from the generator.
func (r *Shared) Draws() int {
	return r.src.draws
}
