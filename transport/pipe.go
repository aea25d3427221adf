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
	"sync"

	"github.com/jetsetilly/linkcable/curated"
)

// the number of messages that can be sent without the other end receiving
const pipeCapacity = 256

type pipe struct {
	in  <-chan []byte
	out chan<- []byte

	// shared by both ends of the pipe
	closed    chan struct{}
	closeOnce *sync.Once
}

// Pipe returns both ends of an in-memory connection. Closing either end
// closes the connection.
func Pipe() (Conn, Conn) {
	ab := make(chan []byte, pipeCapacity)
	ba := make(chan []byte, pipeCapacity)
	closed := make(chan struct{})
	once := &sync.Once{}

	return &pipe{in: ba, out: ab, closed: closed, closeOnce: once},
		&pipe{in: ab, out: ba, closed: closed, closeOnce: once}
}

func (p *pipe) Send(ctx context.Context, b []byte) error {
	select {
	case <-p.closed:
		return curated.Errorf(Closed)
	default:
	}

	select {
	case p.out <- append([]byte{}, b...):
		return nil
	case <-p.closed:
		return curated.Errorf(Closed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipe) Receive(ctx context.Context) ([]byte, error) {
	// pending messages are delivered even if the pipe has been closed
	select {
	case b := <-p.in:
		return b, nil
	default:
	}

	select {
	case b := <-p.in:
		return b, nil
	case <-p.closed:
		select {
		case b := <-p.in:
			return b, nil
		default:
		}
		return nil, curated.Errorf(Closed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipe) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return nil
}
