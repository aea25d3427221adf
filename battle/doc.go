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

// Package battle implements the Round. A Round is one battle between the two
// peers and is the unit of synchronised play.
//
// The Round is parameterised by Role. The Primary round belongs to the core
// the player is watching. The Shadow round belongs to the shadow core, which
// plays the part of the remote peer. The two roles share the same tick and
// queue logic. The role decides which half of an input pair is injected as
// the joyflags, which packet the title's transmissions belong to, and the
// orientation of the round result.
//
// A Round is not safe for concurrent use. Owners guard it with their own lock,
// normally through a RoundState.
package battle
