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

// Package transport carries encoded messages between two peers. The
// transport is reliable, ordered and message oriented: a message passed to
// Send on one end of a connection is returned by a single call to Receive on
// the other end.
//
// Two implementations are provided. Pipe() creates both ends of an in-memory
// connection and is useful for tests and for running two peers in the same
// process. Listen() and Dial() create the ends of a websocket connection.
package transport
