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

package session

import (
	"fmt"
	"strings"
)

// Stats are the diagnostics of a running session. They are a snapshot and
// are never used to change the session.
type Stats struct {
	Mode  string `json:"mode"`
	Frame int    `json:"frame"`

	// measured frame rate and the rate the limiter is aiming for
	FPS       float64 `json:"fps"`
	TargetFPS float64 `json:"target_fps"`

	Round             int     `json:"round,omitempty"`
	CurrentTick       uint32  `json:"current_tick"`
	LocalQueueLength  int     `json:"local_queue_length"`
	RemoteQueueLength int     `json:"remote_queue_length"`
	LocalDelay        int     `json:"local_delay"`
	RemoteDelay       int     `json:"remote_delay"`
	TPSAdjustment     float64 `json:"tps_adjustment"`
	LocalPlayerIndex  int     `json:"local_player_index" jsonschema:"minimum=0,maximum=1"`
	LastResult        string  `json:"last_result"`

	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

func (s Stats) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("[P%d] %s frame %d %.1ffps", s.LocalPlayerIndex+1, s.Mode, s.Frame, s.FPS))
	if s.Round > 0 {
		b.WriteString(fmt.Sprintf(" round %d tick %d", s.Round, s.CurrentTick))
		b.WriteString(fmt.Sprintf(" queue %d/%d delay %d/%d", s.LocalQueueLength, s.RemoteQueueLength, s.LocalDelay, s.RemoteDelay))
		b.WriteString(fmt.Sprintf(" tps%+.2f", s.TPSAdjustment))
	}
	if s.LastResult != "" {
		b.WriteString(fmt.Sprintf(" last %s (%d/%d/%d)", s.LastResult, s.Wins, s.Losses, s.Draws))
	}
	return b.String()
}
