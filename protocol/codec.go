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

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jetsetilly/linkcable/curated"
)

// Sentinal error patterns.
const (
	BadMessage     = "protocol: bad message: %v"
	UnknownMessage = "protocol: unknown message"
)

// envelope field numbers.
const (
	envelopeHello   = 1
	envelopeInput   = 2
	envelopeGoodbye = 3
)

func (Hello) envelopeField() int   { return envelopeHello }
func (Input) envelopeField() int   { return envelopeInput }
func (Goodbye) envelopeField() int { return envelopeGoodbye }

// message field numbers.
const (
	helloVersion protowire.Number = iota + 1
	helloInputDelay
	helloMatchType
	helloSeed
)

const (
	inputRoundNumber protowire.Number = iota + 1
	inputLocalTick
	inputJoyflags
	inputQueueLength
)

const (
	goodbyeReason protowire.Number = iota + 1
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// Marshal the message into its wire encoding.
func Marshal(msg Message) []byte {
	var body []byte

	switch msg := msg.(type) {
	case Hello:
		body = appendVarint(body, helloVersion, uint64(msg.ProtocolVersion))
		body = appendVarint(body, helloInputDelay, uint64(msg.InputDelay))
		body = appendVarint(body, helloMatchType, uint64(msg.MatchType))
		body = appendBytes(body, helloSeed, msg.Seed[:])
	case Input:
		body = appendVarint(body, inputRoundNumber, uint64(msg.RoundNumber))
		body = appendVarint(body, inputLocalTick, uint64(msg.LocalTick))
		body = appendVarint(body, inputJoyflags, uint64(msg.Joyflags))
		body = appendVarint(body, inputQueueLength, uint64(msg.QueueLength))
	case Goodbye:
		body = appendBytes(body, goodbyeReason, []byte(msg.Reason))
	}

	return appendBytes(nil, protowire.Number(msg.envelopeField()), body)
}

// field is a single decoded field. only varint and bytes fields are
// delivered
type field struct {
	num    protowire.Number
	varint uint64
	bytes  []byte
}

// walk the fields in b calling f for each one. fields of other wire types are
// skipped
func walk(b []byte, f func(fld field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return curated.Errorf(BadMessage, protowire.ParseError(n))
		}
		b = b[n:]

		fld := field{num: num}
		switch typ {
		case protowire.VarintType:
			fld.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			fld.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return curated.Errorf(BadMessage, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return curated.Errorf(BadMessage, protowire.ParseError(n))
		}
		b = b[n:]

		if err := f(fld); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal a message from its wire encoding.
func Unmarshal(b []byte) (Message, error) {
	var msg Message

	err := walk(b, func(env field) error {
		if msg != nil {
			return curated.Errorf(BadMessage, "more than one message in envelope")
		}

		switch env.num {
		case envelopeHello:
			var m Hello
			err := walk(env.bytes, func(fld field) error {
				switch fld.num {
				case helloVersion:
					m.ProtocolVersion = uint32(fld.varint)
				case helloInputDelay:
					m.InputDelay = uint32(fld.varint)
				case helloMatchType:
					m.MatchType = uint8(fld.varint)
				case helloSeed:
					if len(fld.bytes) != len(m.Seed) {
						return curated.Errorf(BadMessage, fmt.Sprintf("seed is %d bytes", len(fld.bytes)))
					}
					copy(m.Seed[:], fld.bytes)
				}
				return nil
			})
			msg = m
			return err

		case envelopeInput:
			var m Input
			err := walk(env.bytes, func(fld field) error {
				switch fld.num {
				case inputRoundNumber:
					m.RoundNumber = uint32(fld.varint)
				case inputLocalTick:
					m.LocalTick = uint32(fld.varint)
				case inputJoyflags:
					m.Joyflags = uint16(fld.varint)
				case inputQueueLength:
					m.QueueLength = uint32(fld.varint)
				}
				return nil
			})
			msg = m
			return err

		case envelopeGoodbye:
			var m Goodbye
			err := walk(env.bytes, func(fld field) error {
				if fld.num == goodbyeReason {
					m.Reason = string(fld.bytes)
				}
				return nil
			})
			msg = m
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if msg == nil {
		return nil, curated.Errorf(UnknownMessage)
	}

	return msg, nil
}
