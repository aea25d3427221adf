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
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/jetsetilly/linkcable/curated"
)

// Sentinal error patterns.
const (
	TerminalError = "userinput: terminal: %v"
)

// ASCII codes of the keys that are not printable
const (
	keyEnter      = 0x0d
	keyLinefeed   = 0x0a
	keyBackspace  = 0x7f
	keyCtrlH      = 0x08
	keyEscape     = 0x1b
	keyCursorCSI  = '['
	cursorUp      = 'A'
	cursorDown    = 'B'
	cursorForward = 'C'
	cursorBack    = 'D'
)

// Decode the bytes read from a terminal into keyboard events. The "q" key
// is a request to quit.
func Decode(b []byte) []Event {
	var evs []Event

	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == keyEscape:
			if i+2 < len(b) && b[i+1] == keyCursorCSI {
				var key string
				switch b[i+2] {
				case cursorUp:
					key = "Up"
				case cursorDown:
					key = "Down"
				case cursorForward:
					key = "Right"
				case cursorBack:
					key = "Left"
				}
				if key != "" {
					evs = append(evs, EventKeyboard{Key: key})
					i += 2
					continue
				}
			}
			evs = append(evs, EventKeyboard{Key: "Escape"})
		case c == keyEnter || c == keyLinefeed:
			evs = append(evs, EventKeyboard{Key: "Enter"})
		case c == keyBackspace || c == keyCtrlH:
			evs = append(evs, EventKeyboard{Key: "Backspace"})
		case c == 'q' || c == 'Q':
			evs = append(evs, EventQuit{})
		case c >= 'a' && c <= 'z':
			evs = append(evs, EventKeyboard{Key: string(rune(c - 'a' + 'A'))})
		case c > ' ' && c < keyBackspace:
			evs = append(evs, EventKeyboard{Key: string(rune(c))})
		}
	}

	return evs
}

// Keyboard reads key presses from a terminal. The terminal is put into
// cbreak mode until Close() is called.
type Keyboard struct {
	input *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	events chan Event

	closeOnce sync.Once
}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type.
func NewKeyboard(input *os.File) (*Keyboard, error) {
	kb := &Keyboard{
		input:  input,
		events: make(chan Event, 64),
	}

	if err := termios.Tcgetattr(kb.input.Fd(), &kb.canAttr); err != nil {
		return nil, curated.Errorf(TerminalError, err)
	}
	kb.cbreakAttr = kb.canAttr
	termios.Cfmakecbreak(&kb.cbreakAttr)

	if err := termios.Tcsetattr(kb.input.Fd(), termios.TCIFLUSH, &kb.cbreakAttr); err != nil {
		return nil, curated.Errorf(TerminalError, err)
	}

	go kb.read()

	return kb, nil
}

func (kb *Keyboard) read() {
	defer close(kb.events)

	b := make([]byte, 16)
	for {
		n, err := kb.input.Read(b)
		if err != nil {
			return
		}
		for _, ev := range Decode(b[:n]) {
			select {
			case kb.events <- ev:
			default:
				// drop the event if the consumer is not keeping up. the key
				// repeat of the terminal will send it again
			}
		}
	}
}

// Events returns the channel on which keyboard events are sent. The channel
// is closed when the terminal can no longer be read.
func (kb *Keyboard) Events() <-chan Event {
	return kb.events
}

// Close returns the terminal to canonical mode.
func (kb *Keyboard) Close() error {
	var err error
	kb.closeOnce.Do(func() {
		err = termios.Tcsetattr(kb.input.Fd(), termios.TCIFLUSH, &kb.canAttr)
	})
	return err
}
