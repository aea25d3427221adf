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

package lockstep

import (
	"github.com/jetsetilly/linkcable/curated"
)

// Sentinal error patterns for the PairQueue.
const (
	InputGap      = "lockstep: %s input gap: expected tick %d, got %d"
	QueueOverflow = "lockstep: %s queue overflow: capacity is %d"
)

// PairQueue holds the local and remote input that has not yet been consumed.
// It is not safe for concurrent use.
type PairQueue struct {
	capacity    int
	localDelay  int
	remoteDelay int

	local  []Input
	remote []Input

	// the tick expected by the next push to each stream
	nextLocal  uint32
	nextRemote uint32

	// the tick of the next pair to be popped
	head uint32

	// the length of the remote peer's local queue, as reported by the peer
	remoteReported int

	// closed and replaced every time remote input arrives
	ready chan struct{}
}

// NewPairQueue is the preferred method of initialisation for the PairQueue
// type.
func NewPairQueue(capacity int, localDelay int, remoteDelay int) *PairQueue {
	return &PairQueue{
		capacity:    capacity,
		localDelay:  localDelay,
		remoteDelay: remoteDelay,
		local:       make([]Input, 0, capacity),
		remote:      make([]Input, 0, capacity),
		ready:       make(chan struct{}),
	}
}

// AddLocalInput adds input to the local stream. The input must be for the
// tick following the previous local input.
func (q *PairQueue) AddLocalInput(in Input) error {
	if in.LocalTick != q.nextLocal {
		return curated.Errorf(InputGap, "local", q.nextLocal, in.LocalTick)
	}
	if len(q.local) >= q.capacity {
		return curated.Errorf(QueueOverflow, "local", q.capacity)
	}
	q.local = append(q.local, in)
	q.nextLocal++
	return nil
}

// AddRemoteInput adds input to the remote stream. The input must be for the
// tick following the previous remote input. The reported queue length is the
// length of the remote peer's local queue when the input was sent.
func (q *PairQueue) AddRemoteInput(in Input, reportedQueueLength int) error {
	if in.LocalTick != q.nextRemote {
		return curated.Errorf(InputGap, "remote", q.nextRemote, in.LocalTick)
	}
	if len(q.remote) >= q.capacity {
		return curated.Errorf(QueueOverflow, "remote", q.capacity)
	}
	q.remote = append(q.remote, in)
	q.nextRemote++
	q.remoteReported = reportedQueueLength

	close(q.ready)
	q.ready = make(chan struct{})

	return nil
}

// Ready returns a channel that is closed when the next remote input arrives.
func (q *PairQueue) Ready() <-chan struct{} {
	return q.ready
}

// PeekPair returns the pair for the tick without consuming it. Returns false
// if the pair for the tick is not at the head of the queue or if either half
// has not yet arrived.
func (q *PairQueue) PeekPair(tick uint32) (Pair, bool) {
	if tick != q.head || len(q.local) == 0 || len(q.remote) == 0 {
		return Pair{}, false
	}
	return Pair{Local: q.local[0], Remote: q.remote[0]}, true
}

// PopPair consumes the pair at the head of the queue. Returns false if either
// half has not yet arrived.
func (q *PairQueue) PopPair() (Pair, bool) {
	p, ok := q.PeekPair(q.head)
	if !ok {
		return Pair{}, false
	}
	q.local = q.local[1:]
	q.remote = q.remote[1:]
	q.head++
	return p, true
}

// NextLocalTick returns the tick expected by the next call to
// AddLocalInput().
func (q *PairQueue) NextLocalTick() uint32 {
	return q.nextLocal
}

// NextTick returns the tick of the next pair to be popped.
func (q *PairQueue) NextTick() uint32 {
	return q.head
}

// LocalQueueLength returns the number of local inputs not yet consumed.
func (q *PairQueue) LocalQueueLength() int {
	return len(q.local)
}

// RemoteQueueLength returns the last queue length reported by the remote
// peer.
func (q *PairQueue) RemoteQueueLength() int {
	return q.remoteReported
}

// PendingRemote returns the number of remote inputs not yet consumed.
func (q *PairQueue) PendingRemote() int {
	return len(q.remote)
}

func (q *PairQueue) LocalDelay() int {
	return q.localDelay
}

func (q *PairQueue) RemoteDelay() int {
	return q.remoteDelay
}
