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

package battle

import (
	"fmt"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/lockstep"
)

// Recorder receives every pair consumed by a Round.
type Recorder interface {
	WriteInput(lockstep.Pair) error
}

// DefaultQueueCapacity is the capacity of the input queue for each stream.
const DefaultQueueCapacity = 60

// RoundConfig is used to create a new Round.
type RoundConfig struct {
	Role Role

	// round number. the first round of a match is round one
	Number int

	// the offerer is always player one (index zero)
	IsOfferer bool

	LocalDelay    int
	RemoteDelay   int
	QueueCapacity int
}

// Round is one battle between the two peers.
type Round struct {
	role   Role
	number int

	localPlayerIndex  int
	remotePlayerIndex int

	currentTick uint32
	phase       Phase

	queue *lockstep.PairQueue

	firstCommittedState  emulation.State
	shadowCommittedState emulation.State

	localPacket     lockstep.Packet
	haveLocalPacket bool

	remotePacket     lockstep.Packet
	haveRemotePacket bool

	// a pair has been consumed since the last tick increment
	pairConsumed bool

	// the title has consumed injected input and produced a new packet
	inputInjected bool

	lastResult Result

	recorder Recorder
}

// NewRound is the preferred method of initialisation for the Round type.
func NewRound(cfg RoundConfig) *Round {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}

	r := &Round{
		role:   cfg.Role,
		number: cfg.Number,
		queue:  lockstep.NewPairQueue(cfg.QueueCapacity, cfg.LocalDelay, cfg.RemoteDelay),
	}

	if cfg.IsOfferer {
		r.localPlayerIndex = 0
		r.remotePlayerIndex = 1
	} else {
		r.localPlayerIndex = 1
		r.remotePlayerIndex = 0
	}

	return r
}

func (r *Round) String() string {
	return fmt.Sprintf("%s round %d (tick %d, %s)", r.role, r.number, r.currentTick, r.phase)
}

func (r *Round) Role() Role {
	return r.role
}

func (r *Round) Number() int {
	return r.number
}

func (r *Round) Phase() Phase {
	return r.phase
}

func (r *Round) CurrentTick() uint32 {
	return r.currentTick
}

// IncrementCurrentTick advances the round by one tick. The tick only
// advances if the round is committed and a pair has been consumed since the
// previous increment. Returns true if the tick advanced.
func (r *Round) IncrementCurrentTick() bool {
	if r.phase == Uncommitted || !r.pairConsumed {
		return false
	}
	r.pairConsumed = false
	r.currentTick++
	if r.phase == Committed {
		r.phase = Running
	}
	return true
}

func (r *Round) LocalPlayerIndex() int {
	return r.localPlayerIndex
}

func (r *Round) RemotePlayerIndex() int {
	return r.remotePlayerIndex
}

// SelfPlayerIndex is the player index of the player the core is playing as.
func (r *Round) SelfPlayerIndex() int {
	if r.role == Shadow {
		return r.remotePlayerIndex
	}
	return r.localPlayerIndex
}

// SelfInput returns the half of the pair the core should be given as
// joyflags.
func (r *Round) SelfInput(p lockstep.Pair) lockstep.Input {
	if r.role == Shadow {
		return p.Remote
	}
	return p.Local
}

func (r *Round) LocalDelay() int {
	return r.queue.LocalDelay()
}

func (r *Round) RemoteDelay() int {
	return r.queue.RemoteDelay()
}

func (r *Round) LocalQueueLength() int {
	return r.queue.LocalQueueLength()
}

func (r *Round) RemoteQueueLength() int {
	return r.queue.RemoteQueueLength()
}

// TPSAdjustment returns the frame rate adjustment for the current state of
// the queues.
func (r *Round) TPSAdjustment(p lockstep.Pacing) float64 {
	return lockstep.TPSAdjustment(r.queue.LocalQueueLength(), r.queue.LocalDelay(),
		r.queue.RemoteQueueLength(), r.queue.RemoteDelay(), p)
}

// Prefill queues neutral local input for the ticks covered by the local
// delay. The returned input must be sent to the remote peer.
func (r *Round) Prefill() ([]lockstep.Input, error) {
	var in []lockstep.Input
	for t := r.queue.NextLocalTick(); t < uint32(r.queue.LocalDelay()); t++ {
		i := lockstep.Input{LocalTick: t}
		if err := r.queue.AddLocalInput(i); err != nil {
			return nil, err
		}
		in = append(in, i)
	}
	return in, nil
}

// AddLocalInput queues the joyflags as the local input for the tick that is
// the local delay ahead of the current tick. Returns false if input for that
// tick has already been added.
func (r *Round) AddLocalInput(joyflags uint16) (lockstep.Input, bool, error) {
	in := lockstep.Input{
		LocalTick: r.currentTick + uint32(r.queue.LocalDelay()),
		Joyflags:  joyflags,
	}
	if in.LocalTick < r.queue.NextLocalTick() {
		return lockstep.Input{}, false, nil
	}
	if err := r.queue.AddLocalInput(in); err != nil {
		return lockstep.Input{}, false, err
	}
	return in, true, nil
}

// AddRemoteInput queues input from the remote peer.
func (r *Round) AddRemoteInput(in lockstep.Input, reportedQueueLength int) error {
	return r.queue.AddRemoteInput(in, reportedQueueLength)
}

// PushPair queues both halves of a pair. Used by rounds that are fed
// complete pairs, rather than the two halves separately.
func (r *Round) PushPair(p lockstep.Pair) error {
	if err := r.queue.AddLocalInput(p.Local); err != nil {
		return err
	}
	return r.queue.AddRemoteInput(p.Remote, 0)
}

// Ready returns a channel that is closed when the next remote input arrives.
func (r *Round) Ready() <-chan struct{} {
	return r.queue.Ready()
}

// PeekPair returns the pair for the tick if both halves are available.
func (r *Round) PeekPair(tick uint32) (lockstep.Pair, bool) {
	return r.queue.PeekPair(tick)
}

// NextPairTick returns the tick of the pair at the head of the queue.
func (r *Round) NextPairTick() uint32 {
	return r.queue.NextTick()
}

// PopPair removes the pair at the head of the queue without checking or
// recording it. The pair does not count as consumed.
func (r *Round) PopPair() (lockstep.Pair, bool) {
	return r.queue.PopPair()
}

// ConsumePair removes the pair for the current tick from the queue, checks
// it and passes it to the recorder.
func (r *Round) ConsumePair() (lockstep.Pair, error) {
	p, ok := r.queue.PeekPair(r.queue.NextTick())
	if !ok {
		return lockstep.Pair{}, curated.Errorf(MissingInput, r.currentTick)
	}
	if err := p.Check(r.currentTick); err != nil {
		return lockstep.Pair{}, err
	}
	r.queue.PopPair()
	r.pairConsumed = true

	if r.recorder != nil {
		if err := r.recorder.WriteInput(p); err != nil {
			return p, err
		}
	}

	return p, nil
}

// SetFirstCommittedState commits the round. The shadow state is the state of
// the shadow core when it committed and is only used by the primary round.
// The packet is the title's transmission at the moment of commit.
func (r *Round) SetFirstCommittedState(state emulation.State, shadowState emulation.State, tx []byte) error {
	if r.phase != Uncommitted {
		return curated.Errorf(AlreadyCommitted, r.number)
	}
	r.firstCommittedState = state
	r.shadowCommittedState = shadowState
	r.phase = Committed
	r.SetSelfPacket(r.currentTick, tx)
	return nil
}

func (r *Round) HasCommittedState() bool {
	return r.phase != Uncommitted
}

func (r *Round) FirstCommittedState() emulation.State {
	return r.firstCommittedState
}

func (r *Round) ShadowCommittedState() emulation.State {
	return r.shadowCommittedState
}

// SetSelfPacket records the packet transmitted by the core for the tick. The
// core's own transmissions are the local packets of the primary round and the
// remote packets of the shadow round.
func (r *Round) SetSelfPacket(tick uint32, data []byte) {
	if r.role == Shadow {
		r.SetRemotePacket(tick, data)
	} else {
		r.SetLocalPacket(tick, data)
	}
}

func (r *Round) SetLocalPacket(tick uint32, data []byte) {
	r.localPacket = lockstep.Packet{Tick: tick, Data: data}
	r.haveLocalPacket = true
}

func (r *Round) LocalPacket() (lockstep.Packet, bool) {
	return r.localPacket, r.haveLocalPacket
}

func (r *Round) SetRemotePacket(tick uint32, data []byte) {
	r.remotePacket = lockstep.Packet{Tick: tick, Data: data}
	r.haveRemotePacket = true
}

func (r *Round) RemotePacket() (lockstep.Packet, bool) {
	return r.remotePacket, r.haveRemotePacket
}

// CheckPacket returns an error if the packet is missing or is not for the
// current tick.
func (r *Round) CheckPacket(which string, p lockstep.Packet, ok bool) error {
	if !ok {
		return curated.Errorf(MissingPacket, which, r.currentTick)
	}
	if p.Tick != r.currentTick {
		return curated.Errorf(PacketTickMismatch, which, p.Tick, r.currentTick)
	}
	return nil
}

// SetInputInjected is called once the title has consumed the injected input
// for the tick.
func (r *Round) SetInputInjected() {
	r.inputInjected = true
}

// TakeInputInjected returns the input injected flag and clears it.
func (r *Round) TakeInputInjected() bool {
	v := r.inputInjected
	r.inputInjected = false
	return v
}

// ClearPairConsumed forgets that a pair has been consumed. Used when the core
// is returned to a state saved before the pair was consumed.
func (r *Round) ClearPairConsumed() {
	r.pairConsumed = false
}

// PairConsumed returns true if a pair has been consumed since the last
// increment of the current tick.
func (r *Round) PairConsumed() bool {
	return r.pairConsumed
}

// SetCurrentTick is used when the core is returned to a previously saved
// state.
func (r *Round) SetCurrentTick(tick uint32) {
	r.currentTick = tick
}

// SetEnding is called when the title signals that the round is concluding.
func (r *Round) SetEnding() {
	if r.phase < Ending {
		r.phase = Ending
	}
}

func (r *Round) IsEnding() bool {
	return r.phase >= Ending
}

// SetEnded is called when the title signals that the round has concluded.
// The round must have a result by this point.
func (r *Round) SetEnded() error {
	r.phase = Ended
	if r.lastResult == Unknown {
		return curated.Errorf(UnknownResult, r.number)
	}
	return nil
}

// ObserveResult records a result reported by the title. The title reports
// results from the point of view of the player the core is playing as. The
// round stores results from the point of view of the local player.
func (r *Round) ObserveResult(result Result) {
	if r.role == Shadow {
		result = result.Reversed()
	}
	r.lastResult = result
}

// LastResult returns the result from the point of view of the local player.
func (r *Round) LastResult() Result {
	return r.lastResult
}

// SetRecorder sets the recorder for consumed pairs. A nil recorder stops
// recording.
func (r *Round) SetRecorder(rec Recorder) {
	r.recorder = rec
}

func (r *Round) Recorder() Recorder {
	return r.recorder
}
