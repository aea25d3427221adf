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

// Package limiter provides a way of limiting events to a target rate. The
// target rate can be changed at any time and is a floating point value so that
// small adjustments can be made.
//
// A new Limiter can be created with:
//
//	lim := limiter.NewFPSLimiter(60)
//	defer lim.Close()
//
// Operations can then be stalled with the Wait() function. For example:
//
//	for {
//		if err := lim.Wait(ctx); err != nil {
//			return err
//		}
//		runFrame()
//	}
package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// the maximum amount of time the limiter will try to catch up by. if the
// consumer falls further behind than this the limiter is reset.
const maxLag = 250 * time.Millisecond

// Limiter will trigger at the target number of frames per second.
type Limiter struct {
	crit      sync.Mutex
	fps       float64
	perFrame  time.Duration
	next      time.Time
	closed    chan struct{}
	closeOnce sync.Once
}

// NewFPSLimiter is the preferred method of initialisation for Limiter type.
func NewFPSLimiter(fps float64) *Limiter {
	lim := &Limiter{
		closed: make(chan struct{}),
	}
	lim.SetFPSTarget(fps)
	return lim
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// SetFPSTarget changes the rate at which Wait() returns. A value of zero or
// less removes the limit.
func (lim *Limiter) SetFPSTarget(fps float64) {
	lim.crit.Lock()
	defer lim.crit.Unlock()
	lim.fps = fps
	lim.perFrame = frameDuration(fps)
}

// FPSTarget returns the current target rate.
func (lim *Limiter) FPSTarget() float64 {
	lim.crit.Lock()
	defer lim.crit.Unlock()
	return lim.fps
}

// Wait will block until the next frame is due, the context is cancelled or
// the Limiter is closed.
func (lim *Limiter) Wait(ctx context.Context) error {
	lim.crit.Lock()
	now := time.Now()
	if lim.perFrame == 0 {
		lim.next = now
		lim.crit.Unlock()
		return ctx.Err()
	}

	if lim.next.IsZero() || now.Sub(lim.next) > maxLag {
		lim.next = now
	}
	due := lim.next
	lim.next = lim.next.Add(lim.perFrame)
	lim.crit.Unlock()

	d := time.Until(due)
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-lim.closed:
		return nil
	}
}

// Close the Limiter. Any waiting goroutines are released and all future calls
// to Wait() return immediately.
func (lim *Limiter) Close() {
	lim.closeOnce.Do(func() {
		close(lim.closed)
		lim.SetFPSTarget(0)
	})
}
