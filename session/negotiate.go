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
	"context"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/logger"
	"github.com/jetsetilly/linkcable/protocol"
	"github.com/jetsetilly/linkcable/random"
	"github.com/jetsetilly/linkcable/transport"
)

// Sentinal error patterns.
const (
	VersionMismatch   = "session: protocol version mismatch: local %d, remote %d"
	MatchTypeMismatch = "session: match type mismatch: local %d, remote %d"
	UnexpectedMessage = "session: unexpected message: %v"
	CoreError         = "session: core: %v"
)

// Negotiate sends the local Hello and receives the remote Hello. The match
// seed is the combination of the seeds in both Hellos.
func Negotiate(ctx context.Context, conn transport.Conn, local protocol.Hello, isOfferer bool) (protocol.Hello, random.Seed, error) {
	if err := conn.Send(ctx, protocol.Marshal(local)); err != nil {
		return protocol.Hello{}, random.Seed{}, err
	}

	b, err := conn.Receive(ctx)
	if err != nil {
		return protocol.Hello{}, random.Seed{}, err
	}

	msg, err := protocol.Unmarshal(b)
	if err != nil {
		return protocol.Hello{}, random.Seed{}, err
	}

	remote, ok := msg.(protocol.Hello)
	if !ok {
		return protocol.Hello{}, random.Seed{}, curated.Errorf(UnexpectedMessage, msg)
	}

	if remote.ProtocolVersion != local.ProtocolVersion {
		return remote, random.Seed{}, curated.Errorf(VersionMismatch, local.ProtocolVersion, remote.ProtocolVersion)
	}
	if remote.MatchType != local.MatchType {
		return remote, random.Seed{}, curated.Errorf(MatchTypeMismatch, local.MatchType, remote.MatchType)
	}

	role := "answerer"
	if isOfferer {
		role = "offerer"
	}
	logger.Logf(logger.Allow, "session", "negotiated as %s: remote %s", role, remote)

	return remote, local.Seed.Combine(remote.Seed), nil
}
