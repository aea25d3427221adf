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

package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/linkcable/performance/limiter"
	"github.com/jetsetilly/linkcable/test"
)

func TestLimiterRate(t *testing.T) {
	lim := limiter.NewFPSLimiter(100)
	defer lim.Close()

	ctx := context.Background()
	start := time.Now()
	for range 11 {
		test.ExpectSuccess(t, lim.Wait(ctx))
	}

	// the first wait returns immediately. ten further frames at 100fps
	el := time.Since(start)
	test.ExpectEquality(t, el >= 90*time.Millisecond, true)
	test.ExpectEquality(t, el < time.Second, true)
}

func TestLimiterUnlimited(t *testing.T) {
	lim := limiter.NewFPSLimiter(0)
	start := time.Now()
	for range 1000 {
		test.ExpectSuccess(t, lim.Wait(context.Background()))
	}
	test.ExpectEquality(t, time.Since(start) < 100*time.Millisecond, true)
}

func TestLimiterSetTarget(t *testing.T) {
	lim := limiter.NewFPSLimiter(60)
	test.ExpectEquality(t, lim.FPSTarget(), 60.0)
	lim.SetFPSTarget(90)
	test.ExpectEquality(t, lim.FPSTarget(), 90.0)
}

func TestLimiterCancel(t *testing.T) {
	lim := limiter.NewFPSLimiter(0.5)
	defer lim.Close()

	ctx, cancel := context.WithCancel(context.Background())

	// first call returns immediately. the second would wait two seconds
	test.ExpectSuccess(t, lim.Wait(ctx))
	cancel()
	test.ExpectFailure(t, lim.Wait(ctx))
}

func TestLimiterClose(t *testing.T) {
	lim := limiter.NewFPSLimiter(0.5)
	test.ExpectSuccess(t, lim.Wait(context.Background()))

	done := make(chan error)
	go func() {
		done <- lim.Wait(context.Background())
	}()

	lim.Close()
	select {
	case err := <-done:
		test.ExpectSuccess(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiting goroutine was not released")
	}
}
