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

// Result of a round.
type Result int

// List of valid Result values.
const (
	Unknown Result = iota
	Win
	Loss
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// Reversed returns the result from the point of view of the other player.
func (r Result) Reversed() Result {
	switch r {
	case Win:
		return Loss
	case Loss:
		return Win
	}
	return r
}

// Role of the core the round belongs to.
type Role int

// List of valid Role values.
const (
	Primary Role = iota
	Shadow
)

func (r Role) String() string {
	if r == Shadow {
		return "shadow"
	}
	return "primary"
}

// Phase of a round.
type Phase int

// List of valid Phase values.
const (
	Uncommitted Phase = iota
	Committed
	Running
	Ending
	Ended
)

func (p Phase) String() string {
	switch p {
	case Uncommitted:
		return "uncommitted"
	case Committed:
		return "committed"
	case Running:
		return "running"
	case Ending:
		return "ending"
	case Ended:
		return "ended"
	}
	return "unknown phase"
}
