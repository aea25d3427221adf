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
	"github.com/jetsetilly/linkcable/curated"
)

// RoundState is the current round of a match, if any, and the outcome of the
// rounds played so far.
type RoundState struct {
	Round *Round

	// result of the most recently ended round
	LastResult Result

	RoundsPlayed int
	Wins         int
	Losses       int
	Draws        int
}

// Start creates a new round. Fails if a round is already active. The round
// number in the config is ignored and is assigned by the RoundState.
func (s *RoundState) Start(cfg RoundConfig) (*Round, error) {
	if s.Round != nil {
		return nil, curated.Errorf(RoundActive, s.Round.Number())
	}
	cfg.Number = s.RoundsPlayed + 1
	s.Round = NewRound(cfg)
	return s.Round, nil
}

// NextRoundNumber is the number the next round will be given.
func (s *RoundState) NextRoundNumber() int {
	return s.RoundsPlayed + 1
}

// SetLastResult records a result reported by the title for the active
// round. See Round.ObserveResult().
func (s *RoundState) SetLastResult(result Result) {
	if s.Round != nil {
		s.Round.ObserveResult(result)
	}
}

// End marks the active round as ended and removes it. The round is returned
// along with any error from Round.SetEnded().
func (s *RoundState) End() (*Round, error) {
	r := s.Round
	if r == nil {
		return nil, curated.Errorf(NoRound)
	}
	err := r.SetEnded()

	s.Round = nil
	s.RoundsPlayed++
	s.LastResult = r.LastResult()
	switch s.LastResult {
	case Win:
		s.Wins++
	case Loss:
		s.Losses++
	case Draw:
		s.Draws++
	}

	return r, err
}
