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

// Package tugofwar is a small deterministic two player title that runs on its
// own tiny machine. The machine implements emulation.Core and the title
// publishes the game.Offsets of the extension points the hooks need.
//
// The title is a best of three tug-of-war. Each tick both players' link cable
// packets are copied from the receive buffers and the rope is moved by the
// difference of the pull in the two packets. The pull in a packet depends on
// the sender's joyflags and on the RNG1 and RNG2 states of the sender. A round
// ends when the rope reaches the rope limit or when the time limit expires.
// A round that ends on the time limit is decided by a judge and may be drawn.
//
// Without hooks the link cable routines loop back: the player is always
// matched with a computer opponent. With the hooks installed the title can be
// driven in lockstep with a remote peer.
//
// Traps fire before the instruction at the trap address is executed. If a
// trap changes the program counter the traps at the new address fire before
// execution continues. A state saved from inside a trap resumes at the trap
// address when it is loaded and so the trap fires again.
package tugofwar
