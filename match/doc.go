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

// Package match orchestrates a netplay match between two peers. A Match owns
// the shared deterministic RNG, the role of the local peer (offerer or
// answerer), and the battle.RoundState of the round currently being played.
//
// The Match is shared between two execution contexts. The emulation goroutine
// calls into the Match from the traps installed by the hooks package. The
// network tasks started by Run() deliver remote input to the Match and send
// local input to the peer. All access to the round state is through
// LockRoundState() and no lock is held while waiting on the network.
//
// WaitForPair() is the only point at which the emulation goroutine blocks
// on the network. It returns when the input pair for the tick is available
// or when the match is cancelled.
//
// Cancellation is cooperative. Cancel() and CancelWithError() close the
// channel returned by Cancelled() and the first error given is the error
// reported by Err(). Traps check IsCancelled() before mutating the round
// state and the frame loop stops scheduling frames once the match has been
// cancelled. Complete() is used when the title reaches the end of the match
// and ends the match without an error.
package match
