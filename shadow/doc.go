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

// Package shadow implements the shadow engine. The shadow engine runs a
// second core that plays the part of the remote peer. It is given the same
// input pairs as the primary core and from them computes the link cable
// packets the remote peer's core will transmit. This means that the primary
// core never waits for packets, only for joyflags.
//
// The shadow keeps an applied state, which is the state of the shadow core at
// the point where it is ready to be given the input for the next tick. Every
// call to ApplyInput() loads the applied state, injects the pair and runs the
// shadow core until the next applied state has been saved.
//
// The shadow engine has its own RNG, seeded identically to the match RNG, and
// its own lock. Errors in the shadow are recorded with SetError() and are
// returned by the next call into the shadow engine. They never panic.
//
// The shadow lock is never held while the shadow core is running because the
// hooks installed in the shadow core need it.
package shadow
