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

package match

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/transport"
)

// the time allowed for the goodbye message to be sent
const goodbyeTimeout = time.Second

// Run the network tasks of the match until the match is cancelled or
// completed, or until the context is done. The returned error is the error
// that cancelled the match.
//
// The connection is not closed by Run().
func (m *Match) Run(ctx context.Context, conn transport.Conn) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var remoteComplete atomic.Bool

	var g errgroup.Group

	// context cancellation cancels the match
	g.Go(func() error {
		select {
		case <-ctx.Done():
			m.Cancel()
		case <-m.done:
		}
		return nil
	})

	// send
	g.Go(func() error {
		defer stop()

		for {
			select {
			case msg := <-m.outbox:
				// the peer is no longer listening
				if remoteComplete.Load() {
					continue
				}
				if err := conn.Send(runCtx, protocol.Marshal(msg)); err != nil {
					m.transportFailure(runCtx, err, &remoteComplete)

					// the connection is still good if the send was only
					// interrupted by the context
					if runCtx.Err() == nil {
						return nil
					}
					m.leave(conn, msg, &remoteComplete)
					return nil
				}

			case <-m.done:
				m.leave(conn, nil, &remoteComplete)
				return nil
			}
		}
	})

	// receive
	g.Go(func() error {
		for {
			b, err := conn.Receive(runCtx)
			if err != nil {
				m.transportFailure(runCtx, err, &remoteComplete)
				return nil
			}

			msg, err := protocol.Unmarshal(b)
			if err != nil {
				m.CancelWithError(curated.Errorf(ProtocolError, err))
				return nil
			}

			switch msg := msg.(type) {
			case protocol.Input:
				if err := m.ReceiveInput(msg); err != nil {
					m.CancelWithError(curated.Errorf(ProtocolError, err))
					return nil
				}

			case protocol.Goodbye:
				if msg.Reason == protocol.GoodbyeComplete {
					logger.Log(m, "match", "peer has completed the match")
					remoteComplete.Store(true)
					return nil
				}
				m.CancelWithError(curated.Errorf(RemoteGoodbye, msg.Reason))
				return nil

			default:
				m.CancelWithError(curated.Errorf(ProtocolError, msg))
				return nil
			}
		}
	})

	_ = g.Wait()

	return m.Err()
}

// leave sends the message that could not be sent, everything still in the
// outbox and then the goodbye message.
func (m *Match) leave(conn transport.Conn, unsent protocol.Message, remoteComplete *atomic.Bool) {
	if remoteComplete.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), goodbyeTimeout)
	defer cancel()

	if unsent != nil {
		if err := conn.Send(ctx, protocol.Marshal(unsent)); err != nil {
			logger.Logf(logger.Allow, "match", "flush: %v", err)
			return
		}
	}

	// input already queued must reach the peer before the goodbye or the
	// peer will wait for it forever
	if err := m.flushOutbox(ctx, conn); err != nil {
		logger.Logf(logger.Allow, "match", "flush: %v", err)
		return
	}

	reason := protocol.GoodbyeCancelled
	if m.IsCompleted() {
		reason = protocol.GoodbyeComplete
	}
	if err := conn.Send(ctx, protocol.Marshal(protocol.Goodbye{Reason: reason})); err != nil {
		logger.Logf(logger.Allow, "match", "goodbye: %v", err)
	}
}

// flushOutbox sends every message waiting in the outbox without waiting for
// more to arrive.
func (m *Match) flushOutbox(ctx context.Context, conn transport.Conn) error {
	for {
		select {
		case msg := <-m.outbox:
			if err := conn.Send(ctx, protocol.Marshal(msg)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// transport errors after the match has ended, or after the peer has said
// goodbye, are not failures. an error caused by the context being done is a
// plain cancellation
func (m *Match) transportFailure(ctx context.Context, err error, remoteComplete *atomic.Bool) {
	if m.IsCancelled() || remoteComplete.Load() {
		return
	}
	if ctx.Err() != nil {
		m.Cancel()
		return
	}
	m.CancelWithError(curated.Errorf(TransportFailure, err))
}
