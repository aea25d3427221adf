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

// Package game describes where a title keeps the values that a link cable
// session needs to observe and inject.
//
// Offsets lists the instruction addresses used as extension points and the
// data addresses of the RNG states and link cable packets. A Munger performs
// the memory and register manipulations at those offsets.
//
// The package also contains the derivations of the in-game RNG states from the
// shared match RNG. Both peers must call these in the same order.
package game
