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

package battle

import "github.com/jetsetilly/linkcable/lockstep"

// Sentinal error patterns.
const (
	LocalRemoteTickMismatch = lockstep.LocalRemoteTickMismatch
	InputTickMismatch       = lockstep.InputTickMismatch
	PacketTickMismatch      = "battle: %s packet tick != current tick: %d != %d"
	MissingInput            = "battle: missing input for tick %d"
	MissingPacket           = "battle: missing %s packet for tick %d"
	UnknownResult           = "battle: round %d ended without a result"
	AlreadyCommitted        = "battle: round %d has already been committed"
	RoundActive             = "battle: round %d is still active"
	NoRound                 = "battle: no active round"
)
