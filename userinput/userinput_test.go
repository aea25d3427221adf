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

package userinput_test

import (
	"os"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/test"
	"github.com/jetsetilly/linkcable/userinput"
)

type joyflags uint16

func (j *joyflags) SetJoyflags(v uint16) {
	*j = joyflags(v)
}

func TestDecode(t *testing.T) {
	evs := userinput.Decode([]byte("z\x1b[A\x1b[Dx\rq\x7f"))
	test.DemandEquality(t, len(evs), 7)
	test.ExpectEquality(t, evs[0].(userinput.EventKeyboard).Key, "Z")
	test.ExpectEquality(t, evs[1].(userinput.EventKeyboard).Key, "Up")
	test.ExpectEquality(t, evs[2].(userinput.EventKeyboard).Key, "Left")
	test.ExpectEquality(t, evs[3].(userinput.EventKeyboard).Key, "X")
	test.ExpectEquality(t, evs[4].(userinput.EventKeyboard).Key, "Enter")
	_, ok := evs[5].(userinput.EventQuit)
	test.ExpectEquality(t, ok, true)
	test.ExpectEquality(t, evs[6].(userinput.EventKeyboard).Key, "Backspace")

	// a lone escape
	evs = userinput.Decode([]byte{0x1b})
	test.DemandEquality(t, len(evs), 1)
	test.ExpectEquality(t, evs[0].(userinput.EventKeyboard).Key, "Escape")
}

func TestControllers(t *testing.T) {
	c := userinput.NewControllers(100 * time.Millisecond)
	now := time.Now()

	c.HandleUserInput(userinput.EventKeyboard{Key: "Z"}, now)
	test.ExpectEquality(t, c.LastKeyHandled, true)
	c.HandleUserInput(userinput.EventKeyboard{Key: "Up"}, now.Add(50*time.Millisecond))

	test.ExpectEquality(t, c.Joyflags(now), uint16(userinput.ButtonA|userinput.ButtonUp))

	// the A button is released before the up button
	test.ExpectEquality(t, c.Joyflags(now.Add(120*time.Millisecond)), uint16(userinput.ButtonUp))
	test.ExpectEquality(t, c.Joyflags(now.Add(200*time.Millisecond)), uint16(0))

	// key repeat extends the hold
	c.HandleUserInput(userinput.EventKeyboard{Key: "Z"}, now.Add(90*time.Millisecond))
	test.ExpectEquality(t, c.Joyflags(now.Add(140*time.Millisecond)), uint16(userinput.ButtonA|userinput.ButtonUp))

	var j joyflags
	c.Update(now.Add(160*time.Millisecond), &j)
	test.ExpectEquality(t, j, joyflags(userinput.ButtonA))

	c.HandleUserInput(userinput.EventKeyboard{Key: "P"}, now)
	test.ExpectEquality(t, c.LastKeyHandled, false)

	c.HandleUserInput(userinput.EventQuit{}, now)
	test.ExpectEquality(t, c.Quit, true)
}

func TestKeyboardNeedsTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	test.DemandSuccess(t, err)
	defer r.Close()
	defer w.Close()

	// a pipe has no terminal attributes
	kb, err := userinput.NewKeyboard(r)
	test.ExpectEquality(t, kb == nil, true)
	test.ExpectEquality(t, curated.Is(err, userinput.TerminalError), true)
}
