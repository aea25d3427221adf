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

// Package userinput handles input from the keyboard of the person playing
// and translates it into the joyflags of the emulated keypad.
//
// It can be thought of as a translation layer between the terminal and the
// session. Terminals do not report key releases so a button is held for a
// fixed duration after the most recent press of its key. Terminal key
// repeat keeps a button held for as long as the key is held down.
package userinput
