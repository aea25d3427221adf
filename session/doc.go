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

// Package session runs the frame loop of a core. There are three kinds of
// session.
//
// A netplay session runs a match against a peer. The primary core has the
// hooks.Primary traps installed and a second core is used by the shadow.
// The frame rate is adjusted every frame by the pacing adjustment of the
// current round so that neither peer runs ahead of the other.
//
// A single player session runs a core without a match. The frame rate is the
// nominal rate of the title multiplied by a speed factor.
//
// A playback session runs a replayer.Replayer until the recorded round has
// ended.
//
// Negotiate() exchanges the Hello messages that start a netplay connection.
package session
