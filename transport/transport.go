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

package transport

import (
	"context"
)

// Sentinal error patterns.
const (
	Closed       = "transport: connection closed"
	SendError    = "transport: send: %v"
	ReceiveError = "transport: receive: %v"
	ListenError  = "transport: listen: %v"
	DialError    = "transport: dial: %v"
)

// Conn is one end of a connection between two peers.
type Conn interface {
	// Send a message to the other end of the connection. The data is not
	// retained after Send returns.
	Send(ctx context.Context, b []byte) error

	// Receive the next message. Messages that have been sent before the
	// connection was closed are still returned.
	Receive(ctx context.Context) ([]byte, error)

	Close() error
}
