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

package userinput

// Event represents all the different type of events that can occur at the
// keyboard.
type Event interface{}

// EventKeyboard is the press of a key. Key is the upper case name of a
// printable key or one of the named keys (Up, Down, Left, Right, Enter,
// Backspace, Escape).
type EventKeyboard struct {
	Key string
}

// EventQuit is sent when the user asks for the session to end.
type EventQuit struct{}

// HandleInput is implemented by anything that accepts joyflags from the
// user. The session.Session type implements this interface.
type HandleInput interface {
	SetJoyflags(joyflags uint16)
}
