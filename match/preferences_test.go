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

package match_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/linkcable/match"
	"github.com/jetsetilly/linkcable/prefs"
	"github.com/jetsetilly/linkcable/test"
)

func TestPreferences(t *testing.T) {
	t.Chdir(t.TempDir())

	pth := filepath.Join(t.TempDir(), "preferences")

	p, err := match.NewPreferences(pth)
	test.DemandSuccess(t, err)

	s := p.Settings(1, "abc")
	test.ExpectEquality(t, s.LocalDelay, 3)
	test.ExpectEquality(t, s.RemoteDelay, 3)
	test.ExpectEquality(t, s.MatchType, uint8(1))
	test.ExpectEquality(t, s.LinkCode, "abc")
	test.ExpectEquality(t, s.Record, true)
	test.ExpectApproximate(t, s.Pacing.MaxMultiplier, 1.5, 0.001)

	test.DemandSuccess(t, p.InputDelay.Set(5))
	test.DemandSuccess(t, p.Save())

	q, err := match.NewPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Settings(0, "").LocalDelay, 5)

	// command line overrides the value on disk
	prefs.PushCommandLineStack("match.inputDelay::7")
	defer prefs.PopCommandLineStack()

	q, err = match.NewPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Settings(0, "").LocalDelay, 7)
}
