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

package protocol

import (
	"fmt"

	"github.com/jetsetilly/linkcable/random"
)

// Version of the protocol. Peers with different versions cannot play each
// other.
const Version = 1

// Message is implemented by all message types.
type Message interface {
	fmt.Stringer
	envelopeField() int
}

// Hello is the first message sent by both peers.
type Hello struct {
	ProtocolVersion uint32
	InputDelay      uint32
	MatchType       uint8

	// the seeds of both peers are combined to create the match seed
	Seed random.Seed
}

func (m Hello) String() string {
	return fmt.Sprintf("hello: version %d, delay %d, match type %d", m.ProtocolVersion, m.InputDelay, m.MatchType)
}

// Input is the local input for a tick of a round.
type Input struct {
	RoundNumber uint32
	LocalTick   uint32
	Joyflags    uint16

	// the length of the sender's local queue after the input was added
	QueueLength uint32
}

func (m Input) String() string {
	return fmt.Sprintf("input: round %d tick %d joyflags %04x queue %d", m.RoundNumber, m.LocalTick, m.Joyflags, m.QueueLength)
}

// Reasons for leaving.
const (
	GoodbyeComplete  = "complete"
	GoodbyeCancelled = "cancelled"
)

// Goodbye is sent by a peer that is leaving.
type Goodbye struct {
	Reason string
}

func (m Goodbye) String() string {
	return fmt.Sprintf("goodbye: %s", m.Reason)
}
