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

// Package random provides the shared deterministic random number generator
// used by a match. Both peers seed a generator with the same negotiated Seed
// and must draw from it in the same order. The generator counts the number of
// draws so that a divergence in consumption can be reported.
//
// The sequence is the PCG sequence of the math/rand/v2 package and so is the
// same on every platform Go supports.
package random
