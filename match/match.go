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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jetsetilly/linkcable/battle"
	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/replay"
	"github.com/jetsetilly/linkcable/shadow"
)

// Sentinal error patterns.
const (
	Cancelled        = "match: cancelled"
	TransportFailure = "match: transport: %v"
	RemoteGoodbye    = "match: peer left: %s"
	ProtocolError    = "match: protocol: %v"
	ResultMismatch   = "match: round %d result is %s but shadow result is %s"
	NoShadow         = "match: no shadow"
)

// Settings of a match that are agreed by both peers or chosen by the local
// user.
type Settings struct {
	MatchType uint8

	LocalDelay  int
	RemoteDelay int

	Pacing lockstep.Pacing

	// used in the filenames of replays
	LinkCode string

	// replays are written to this directory when Record is true
	ReplaysPath string
	Record      bool

	// zero means battle.DefaultQueueCapacity
	QueueCapacity int
}

// Config for a new match.
type Config struct {
	Settings  Settings
	IsOfferer bool
	Seed      random.Seed

	Shadow *shadow.Shadow

	// replays are written to the WriteCloser returned by ReplayOutput. if
	// ReplayOutput is nil a file is created in Settings.ReplaysPath
	ReplayOutput func(replay.Metadata) (io.WriteCloser, error)
}

// the number of messages waiting to be sent before SendInput() blocks
const outboxCapacity = 256

// Match is the orchestration object for a single netplay match.
type Match struct {
	settings     Settings
	isOfferer    bool
	seed         random.Seed
	shadow       *shadow.Shadow
	replayOutput func(replay.Metadata) (io.WriteCloser, error)

	rngLock sync.Mutex
	rng     *random.Shared

	lock       sync.Mutex
	roundState battle.RoundState

	// remote input that arrived before its round was started, keyed by round
	// number
	early map[int][]protocol.Input

	outbox chan protocol.Message

	done      chan struct{}
	doneOnce  sync.Once
	errLock   sync.Mutex
	err       error
	completed bool
}

// New returns a new match. The match does not start a round until
// StartRound() is called.
func New(cfg Config) *Match {
	return &Match{
		settings:     cfg.Settings,
		isOfferer:    cfg.IsOfferer,
		seed:         cfg.Seed,
		shadow:       cfg.Shadow,
		replayOutput: cfg.ReplayOutput,
		rng:          random.NewShared(cfg.Seed),
		early:        make(map[int][]protocol.Input),
		outbox:       make(chan protocol.Message, outboxCapacity),
		done:         make(chan struct{}),
	}
}

func (m *Match) String() string {
	role := "answerer"
	if m.isOfferer {
		role = "offerer"
	}
	return fmt.Sprintf("match %s (%s, delay %d/%d)", m.settings.LinkCode, role, m.settings.LocalDelay, m.settings.RemoteDelay)
}

// IsOfferer returns true if the local peer is the offerer. The offerer is
// always player one.
func (m *Match) IsOfferer() bool {
	return m.isOfferer
}

// LocalPlayerIndex returns the player index of the local peer.
func (m *Match) LocalPlayerIndex() int {
	if m.isOfferer {
		return 0
	}
	return 1
}

func (m *Match) MatchType() uint8 {
	return m.settings.MatchType
}

func (m *Match) Settings() Settings {
	return m.settings
}

func (m *Match) Seed() random.Seed {
	return m.seed
}

func (m *Match) Shadow() *shadow.Shadow {
	return m.shadow
}

// LockRNG calls f with exclusive access to the shared RNG.
func (m *Match) LockRNG(f func(rng *random.Shared)) {
	m.rngLock.Lock()
	defer m.rngLock.Unlock()
	f(m.rng)
}

// LockRoundState calls f with exclusive access to the round state. f must
// not wait on the network.
func (m *Match) LockRoundState(f func(rs *battle.RoundState)) {
	m.lock.Lock()
	defer m.lock.Unlock()
	f(&m.roundState)
}

// AllowLogging implements the logger.Permission interface. A match that has
// been cancelled does not log.
func (m *Match) AllowLogging() bool {
	return !m.IsCancelled()
}

// StartRound installs a new round. It fails if a round is already active.
// The local queue is prefilled to the local delay and the prefilled input is
// sent to the peer.
func (m *Match) StartRound() error {
	m.lock.Lock()

	r, err := m.roundState.Start(battle.RoundConfig{
		Role:          battle.Primary,
		IsOfferer:     m.isOfferer,
		LocalDelay:    m.settings.LocalDelay,
		RemoteDelay:   m.settings.RemoteDelay,
		QueueCapacity: m.settings.QueueCapacity,
	})
	if err != nil {
		m.lock.Unlock()
		return err
	}

	prefill, err := r.Prefill()
	if err != nil {
		m.lock.Unlock()
		return err
	}

	early := m.early[r.Number()]
	delete(m.early, r.Number())
	for _, in := range early {
		if err := m.addRemoteInput(r, in); err != nil {
			m.lock.Unlock()
			return err
		}
	}

	number := r.Number()
	queueLength := r.LocalQueueLength()
	m.lock.Unlock()

	logger.Logf(m, "match", "round %d started (%d early inputs)", number, len(early))

	for _, in := range prefill {
		if err := m.SendInput(number, in, queueLength); err != nil {
			return err
		}
	}

	return nil
}

// StartRecording creates a replay for the round. The round must have been
// committed. Must be called with the round state locked.
//
// Recording failures are logged and the round continues without a replay.
func (m *Match) StartRecording(r *battle.Round) {
	if !m.settings.Record || r.Recorder() != nil {
		return
	}

	meta := replay.Metadata{
		Timestamp:        time.Now(),
		LinkCode:         m.settings.LinkCode,
		Seed:             m.seed,
		IsOfferer:        m.isOfferer,
		LocalPlayerIndex: r.LocalPlayerIndex(),
		RoundNumber:      r.Number(),
		MatchType:        m.settings.MatchType,
		LocalDelay:       r.LocalDelay(),
		RemoteDelay:      r.RemoteDelay(),
	}

	output, err := m.openReplay(meta)
	if err != nil {
		logger.Logf(m, "match", "cannot record round %d: %v", r.Number(), err)
		return
	}

	w, err := replay.NewWriter(output, meta)
	if err != nil {
		output.Close()
		logger.Logf(m, "match", "cannot record round %d: %v", r.Number(), err)
		return
	}

	if err := w.WriteStates(r.FirstCommittedState(), r.ShadowCommittedState()); err != nil {
		w.Close()
		logger.Logf(m, "match", "cannot record round %d: %v", r.Number(), err)
		return
	}

	r.SetRecorder(w)
}

func (m *Match) openReplay(meta replay.Metadata) (io.WriteCloser, error) {
	if m.replayOutput != nil {
		return m.replayOutput(meta)
	}
	if err := os.MkdirAll(m.settings.ReplaysPath, 0700); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(m.settings.ReplaysPath, meta.Filename()))
}

// EndRound ends the current round. The result observed by the title is
// compared with the result observed by the shadow. The replay for the round,
// if any, is finalised.
func (m *Match) EndRound() error {
	m.lock.Lock()
	r, err := m.roundState.End()
	m.lock.Unlock()

	if r != nil {
		if c, ok := r.Recorder().(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Logf(m, "match", "replay for round %d: %v", r.Number(), err)
			}
		}
	}

	if err != nil {
		m.CancelWithError(err)
		return err
	}

	logger.Logf(m, "match", "round %d ended on tick %d: %s", r.Number(), r.CurrentTick(), r.LastResult())

	if m.shadow != nil {
		if sr := m.shadow.LastResult(); sr != r.LastResult() {
			err := curated.Errorf(shadow.ShadowDivergence, curated.Errorf(ResultMismatch, r.Number(), r.LastResult(), sr))
			m.CancelWithError(err)
			return err
		}
	}

	return nil
}

// SetRoundEnding moves the current round into the ending phase and runs the
// shadow to the end of its round.
func (m *Match) SetRoundEnding() error {
	m.lock.Lock()
	if r := m.roundState.Round; r != nil {
		r.SetEnding()
	}
	m.lock.Unlock()

	if m.shadow == nil {
		return nil
	}

	if _, err := m.AdvanceShadowUntilRoundEnd(); err != nil {
		m.CancelWithError(err)
		return err
	}
	return nil
}

// AdvanceShadowUntilFirstCommittedState runs the shadow until its round has
// been committed.
func (m *Match) AdvanceShadowUntilFirstCommittedState() (emulation.State, lockstep.Packet, error) {
	if m.shadow == nil {
		return nil, lockstep.Packet{}, curated.Errorf(NoShadow)
	}
	return m.shadow.AdvanceUntilFirstCommittedState()
}

// AdvanceShadowUntilRoundEnd runs the shadow until its round has ended.
func (m *Match) AdvanceShadowUntilRoundEnd() (battle.Result, error) {
	if m.shadow == nil {
		return battle.Unknown, curated.Errorf(NoShadow)
	}
	return m.shadow.AdvanceUntilRoundEnd()
}

// ApplyShadowInput applies the pair to the shadow and returns the remote
// packet for the tick of the pair.
func (m *Match) ApplyShadowInput(pair lockstep.Pair, localPacket lockstep.Packet) (lockstep.Packet, error) {
	if m.shadow == nil {
		return lockstep.Packet{}, curated.Errorf(NoShadow)
	}
	return m.shadow.ApplyInput(pair, localPacket)
}

// TPSAdjustment returns the pacing adjustment for the current round. The
// adjustment is zero if there is no round.
func (m *Match) TPSAdjustment() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.roundState.Round == nil {
		return 0
	}
	return m.roundState.Round.TPSAdjustment(m.settings.Pacing)
}

// WaitForPair blocks until the input pair for the tick is available in the
// current round. Must not be called with the round state locked.
func (m *Match) WaitForPair(tick uint32) error {
	for {
		m.lock.Lock()
		r := m.roundState.Round
		if r == nil {
			m.lock.Unlock()
			return curated.Errorf(battle.NoRound)
		}
		if _, ok := r.PeekPair(tick); ok {
			m.lock.Unlock()
			return nil
		}
		ready := r.Ready()
		m.lock.Unlock()

		select {
		case <-ready:
		case <-m.done:
			return curated.Errorf(Cancelled)
		}
	}
}

// SendInput queues local input for sending to the peer.
func (m *Match) SendInput(roundNumber int, in lockstep.Input, queueLength int) error {
	msg := protocol.Input{
		RoundNumber: uint32(roundNumber),
		LocalTick:   in.LocalTick,
		Joyflags:    in.Joyflags,
		QueueLength: uint32(queueLength),
	}

	select {
	case m.outbox <- msg:
		return nil
	case <-m.done:
		return curated.Errorf(Cancelled)
	}
}

// ReceiveInput adds input from the peer to the round it belongs to. Input
// for a round that has not started yet is kept until the round starts and
// input for rounds that have ended is dropped.
func (m *Match) ReceiveInput(in protocol.Input) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	number := int(in.RoundNumber)

	if r := m.roundState.Round; r != nil && r.Number() == number {
		return m.addRemoteInput(r, in)
	}

	if number >= m.roundState.NextRoundNumber() {
		m.early[number] = append(m.early[number], in)
	}

	return nil
}

func (m *Match) addRemoteInput(r *battle.Round, in protocol.Input) error {
	return r.AddRemoteInput(lockstep.Input{
		LocalTick: in.LocalTick,
		Joyflags:  in.Joyflags,
	}, int(in.QueueLength))
}

// Cancel the match. It is safe to call Cancel() more than once.
func (m *Match) Cancel() {
	m.doneOnce.Do(func() {
		logger.Log(logger.Allow, "match", "cancelled")
		close(m.done)
	})
}

// CancelWithError cancels the match. The first error given is reported by
// Err(). Errors after the first are logged.
func (m *Match) CancelWithError(err error) {
	if err == nil {
		m.Cancel()
		return
	}

	m.errLock.Lock()
	first := m.err == nil && !m.completed
	if first {
		m.err = err
	}
	m.errLock.Unlock()

	if first {
		logger.Logf(logger.Allow, "match", "%v", err)
	} else {
		logger.Logf(m, "match", "%v", err)
	}

	m.Cancel()
}

// Complete ends the match without error.
func (m *Match) Complete() {
	m.errLock.Lock()
	if m.err == nil {
		m.completed = true
	}
	m.errLock.Unlock()

	m.doneOnce.Do(func() {
		logger.Log(logger.Allow, "match", "complete")
		close(m.done)
	})
}

// Cancelled returns a channel that is closed when the match is cancelled or
// completed.
func (m *Match) Cancelled() <-chan struct{} {
	return m.done
}

// IsCancelled returns true if the match has been cancelled or completed.
func (m *Match) IsCancelled() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// IsCompleted returns true if the match was ended by Complete().
func (m *Match) IsCompleted() bool {
	m.errLock.Lock()
	defer m.errLock.Unlock()
	return m.completed
}

// Err returns the error that cancelled the match, if any.
func (m *Match) Err() error {
	m.errLock.Lock()
	defer m.errLock.Unlock()
	return m.err
}
