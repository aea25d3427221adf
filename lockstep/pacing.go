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

// Pacing describes how the frame rate reacts to queue imbalance.
type Pacing struct {
	// the frame rate of the title when the queues are balanced
	NominalFPS float64

	// frames per second of adjustment for each tick of imbalance
	Gain float64

	// the frame rate is never adjusted beyond NominalFPS*MaxMultiplier or
	// below NominalFPS/MaxMultiplier
	MaxMultiplier float64
}

// DefaultPacing is suitable for a title running at sixty frames per second.
var DefaultPacing = Pacing{
	NominalFPS:    60,
	Gain:          2.0,
	MaxMultiplier: 1.5,
}

// TPSAdjustment returns the change to the nominal frame rate. A local queue
// that is longer than the local delay, relative to the remote queue and the
// remote delay, means the local peer is ahead and the adjustment is negative.
func TPSAdjustment(localQueueLength int, localDelay int, remoteQueueLength int, remoteDelay int, p Pacing) float64 {
	imbalance := (remoteQueueLength - remoteDelay) - (localQueueLength - localDelay)
	adj := float64(imbalance) * p.Gain

	limit := p.NominalFPS * (p.MaxMultiplier - 1)
	if limit < 0 {
		limit = 0
	}
	return min(max(adj, -limit), limit)
}

// TargetFPS returns the frame rate for the adjustment. The result is never
// less than NominalFPS/MaxMultiplier.
func (p Pacing) TargetFPS(adjustment float64) float64 {
	fps := p.NominalFPS + adjustment
	if p.MaxMultiplier > 0 {
		fps = max(fps, p.NominalFPS/p.MaxMultiplier)
	}
	return fps
}
