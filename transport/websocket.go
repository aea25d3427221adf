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
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/logger"
)

// Path is the URL path at which the listener accepts connections.
const Path = "/link"

const (
	maxMessageSize = 1 << 16
	readTimeout    = 60 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 25 * time.Second
)

type webSocket struct {
	conn *websocket.Conn

	writeLock sync.Mutex

	in      chan []byte
	readErr error

	done      chan struct{}
	closeOnce sync.Once
}

func newWebSocket(conn *websocket.Conn) *webSocket {
	ws := &webSocket{
		conn: conn,
		in:   make(chan []byte),
		done: make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go ws.read()
	go ws.ping()

	return ws
}

func (ws *webSocket) read() {
	defer close(ws.in)
	for {
		_, b, err := ws.conn.ReadMessage()
		if err != nil {
			ws.readErr = err
			return
		}
		_ = ws.conn.SetReadDeadline(time.Now().Add(readTimeout))

		select {
		case ws.in <- b:
		case <-ws.done:
			return
		}
	}
}

func (ws *webSocket) ping() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ws.writeLock.Lock()
			err := ws.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			ws.writeLock.Unlock()
			if err != nil {
				return
			}
		case <-ws.done:
			return
		}
	}
}

func (ws *webSocket) Send(ctx context.Context, b []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-ws.done:
		return curated.Errorf(Closed)
	default:
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeTimeout)
	}

	ws.writeLock.Lock()
	defer ws.writeLock.Unlock()

	_ = ws.conn.SetWriteDeadline(deadline)
	if err := ws.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return curated.Errorf(SendError, err)
	}
	return nil
}

func (ws *webSocket) Receive(ctx context.Context) ([]byte, error) {
	select {
	case b, ok := <-ws.in:
		if ok {
			return b, nil
		}
		if websocket.IsCloseError(ws.readErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, curated.Errorf(Closed)
		}
		select {
		case <-ws.done:
			return nil, curated.Errorf(Closed)
		default:
		}
		return nil, curated.Errorf(ReceiveError, ws.readErr)
	case <-ws.done:
		return nil, curated.Errorf(Closed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ws *webSocket) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.done)

		ws.writeLock.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		ws.writeLock.Unlock()

		err = ws.conn.Close()
	})
	return err
}

// Listener accepts websocket connections from peers.
type Listener struct {
	ln     net.Listener
	server *http.Server
	conns  chan Conn
	done   chan struct{}
}

// Listen for websocket connections on the address. Connections are made at
// Path.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, curated.Errorf(ListenError, err)
	}

	l := &Listener{
		ln:    ln,
		conns: make(chan Conn),
		done:  make(chan struct{}),
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Logf(logger.Allow, "transport", "upgrade: %v", err)
			return
		}

		ws := newWebSocket(conn)
		select {
		case l.conns <- ws:
			logger.Logf(logger.Allow, "transport", "accepted connection from %s", r.RemoteAddr)
		case <-l.done:
			ws.Close()
		}
	})

	// browser based peers connect from a different origin
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}).Handler(mux)

	l.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: writeTimeout,
	}

	go func() {
		err := l.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logf(logger.Allow, "transport", "%v", err)
		}
	}()

	return l, nil
}

// Addr returns the address the listener is listening on.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// URL returns the websocket URL that Dial() should use to connect to the
// listener.
func (l *Listener) URL() string {
	return "ws://" + l.ln.Addr().String() + Path
}

// Accept waits for the next connection.
func (l *Listener) Accept(ctx context.Context) (Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, curated.Errorf(Closed)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close the listener. Connections that have already been accepted are not
// closed.
func (l *Listener) Close() error {
	select {
	case <-l.done:
		return nil
	default:
	}
	close(l.done)

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return l.server.Shutdown(ctx)
}

// Dial the websocket URL of a peer.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, curated.Errorf(DialError, err)
	}
	return newWebSocket(conn), nil
}
