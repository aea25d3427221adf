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

import (
	"time"
)

// Button is a bit in the joyflags of the keypad.
type Button uint16

// List of valid Button values.
const (
	ButtonA      Button = 1 << 0
	ButtonB      Button = 1 << 1
	ButtonSelect Button = 1 << 2
	ButtonStart  Button = 1 << 3
	ButtonRight  Button = 1 << 4
	ButtonLeft   Button = 1 << 5
	ButtonUp     Button = 1 << 6
	ButtonDown   Button = 1 << 7
	ButtonR      Button = 1 << 8
	ButtonL      Button = 1 << 9
)

const numButtons = 10

// DefaultHold is the duration a button is held after a key press.
const DefaultHold = 150 * time.Millisecond

// keys for each button
var keymap = map[string]Button{
	"Z":         ButtonA,
	"X":         ButtonB,
	"Backspace": ButtonSelect,
	"Enter":     ButtonStart,
	"Right":     ButtonRight,
	"Left":      ButtonLeft,
	"Up":        ButtonUp,
	"Down":      ButtonDown,
	"S":         ButtonR,
	"A":         ButtonL,
}

// Controllers keeps track of the buttons held by the user.
type Controllers struct {
	hold time.Duration

	// the time at which each button is released
	release [numButtons]time.Time

	// whether or not the last event was for a key that is mapped to a
	// button
	LastKeyHandled bool

	// is true if the last event was a quit event
	Quit bool
}

// NewControllers is the preferred method of initialisation for the
// Controllers type. A hold of zero means DefaultHold.
func NewControllers(hold time.Duration) *Controllers {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Controllers{hold: hold}
}

// HandleUserInput updates the held buttons with the event. The time is the
// time of the event.
func (c *Controllers) HandleUserInput(ev Event, now time.Time) {
	c.LastKeyHandled = false
	c.Quit = false

	switch ev := ev.(type) {
	case EventQuit:
		c.Quit = true
	case EventKeyboard:
		b, ok := keymap[ev.Key]
		if !ok {
			return
		}
		c.LastKeyHandled = true
		for i := range numButtons {
			if b&(1<<i) != 0 {
				c.release[i] = now.Add(c.hold)
			}
		}
	}
}

// Joyflags returns the buttons held at the time given.
func (c *Controllers) Joyflags(now time.Time) uint16 {
	var j uint16
	for i, r := range c.release {
		if now.Before(r) {
			j |= 1 << i
		}
	}
	return j
}

// Update sends the buttons held at the time given to the handler.
func (c *Controllers) Update(now time.Time, handle HandleInput) {
	handle.SetJoyflags(c.Joyflags(now))
}
