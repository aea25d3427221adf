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

// Package hooks builds the traps installed in a core for each of the roles a
// core can play. The Primary provider is for the core the player is
// watching during a match, the Shadow provider is for the shadow core and the
// Replayer provider is for a core playing back a replay.
//
// The three providers share the round and queue logic of the battle package
// and differ only in the traps they install. Install() joins the traps of a
// provider with the common traps and installs them in the core.
//
// Traps run on the emulation goroutine and have no way of returning an
// error. Errors are recorded in the error slot of the object the trap belongs
// to: the match, the shadow or the replayer state.
package hooks
