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

// Package protocol defines the messages exchanged by two peers and their wire
// encoding.
//
// A connection starts with both peers sending a Hello. Once the Hellos have
// been exchanged the peers send an Input message for every local input they
// queue. A peer that leaves sends a Goodbye with the reason.
//
// Messages are encoded with the protocol buffer wire format. Each message is
// wrapped in an envelope in which the field number identifies the type of
// the message. Unknown fields are skipped so that later versions of the
// protocol can add fields.
package protocol
