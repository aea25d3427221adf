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

// Package replayer plays back a recorded round. The primary core is loaded
// with the local committed state of the replay and the shadow with the remote
// committed state. The recorded input pairs are then injected into the
// primary core by the traps installed by hooks.Replayer() and the shadow
// computes the remote packets exactly as it does during a live match.
//
// Playback can extract two snapshots of the primary core. The committed state
// is taken when the round reaches the commit tick and the dirty state is
// taken when the round reaches the dirty tick. Both are taken at the point
// where the joyflags for the tick are read.
//
// Divergence from the recording, a tick mismatch or the input running out
// before the round has ended, is recorded as an error with SetError() and is
// returned by Step(). It is for the caller to decide what to do.
package replayer
