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

// Package lockstep pairs the local and remote input for each tick of a round.
//
// Inputs are pushed in tick order. A gap or a duplicate in either stream is an
// error and is never repaired: the caller must treat it as a desync. A pair is
// only available once both halves for the next tick have arrived.
//
// The TPSAdjustment() function computes the change to the frame rate needed
// to keep the two peers' queues balanced around their configured delays.
package lockstep
