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

package replay

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/random"
)

// Metadata of the round a replay was recorded from.
type Metadata struct {
	Timestamp        time.Time   `json:"timestamp"`
	LinkCode         string      `json:"link_code"`
	Seed             random.Seed `json:"seed"`
	IsOfferer        bool        `json:"is_offerer"`
	LocalPlayerIndex int         `json:"local_player_index" jsonschema:"minimum=0,maximum=1"`
	RoundNumber      int         `json:"round_number" jsonschema:"minimum=1"`
	MatchType        uint8       `json:"match_type"`
	LocalDelay       int         `json:"local_delay" jsonschema:"minimum=0"`
	RemoteDelay      int         `json:"remote_delay" jsonschema:"minimum=0"`
}

func (m Metadata) String() string {
	return fmt.Sprintf("round %d of %s (P%d, delay %d/%d)", m.RoundNumber, m.LinkCode, m.LocalPlayerIndex+1, m.LocalDelay, m.RemoteDelay)
}

// Extension of replay files.
const Extension = ".lcreplay"

// Filename returns the conventional name of the replay file for the round.
func (m Metadata) Filename() string {
	code := m.LinkCode
	if code == "" {
		code = "local"
	}
	return fmt.Sprintf("%s-%s-r%d-p%d%s", m.Timestamp.Format("20060102150405"), code, m.RoundNumber, m.LocalPlayerIndex+1, Extension)
}

// field numbers of the metadata message.
const (
	fieldTimestamp protowire.Number = iota + 1
	fieldLinkCode
	fieldSeed
	fieldIsOfferer
	fieldLocalPlayerIndex
	fieldRoundNumber
	fieldMatchType
	fieldLocalDelay
	fieldRemoteDelay
)

func (m Metadata) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Timestamp.UnixMilli()))
	b = protowire.AppendTag(b, fieldLinkCode, protowire.BytesType)
	b = protowire.AppendString(b, m.LinkCode)
	b = protowire.AppendTag(b, fieldSeed, protowire.BytesType)
	b = protowire.AppendBytes(b, m.Seed[:])
	b = protowire.AppendTag(b, fieldIsOfferer, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(m.IsOfferer))
	b = protowire.AppendTag(b, fieldLocalPlayerIndex, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.LocalPlayerIndex))
	b = protowire.AppendTag(b, fieldRoundNumber, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.RoundNumber))
	b = protowire.AppendTag(b, fieldMatchType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.MatchType))
	b = protowire.AppendTag(b, fieldLocalDelay, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.LocalDelay))
	b = protowire.AppendTag(b, fieldRemoteDelay, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.RemoteDelay))
	return b
}

func (m *Metadata) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return curated.Errorf(InvalidMetadata, protowire.ParseError(n))
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return curated.Errorf(InvalidMetadata, protowire.ParseError(n))
			}
			b = b[n:]

			switch num {
			case fieldTimestamp:
				m.Timestamp = time.UnixMilli(int64(v))
			case fieldIsOfferer:
				m.IsOfferer = protowire.DecodeBool(v)
			case fieldLocalPlayerIndex:
				m.LocalPlayerIndex = int(v)
			case fieldRoundNumber:
				m.RoundNumber = int(v)
			case fieldMatchType:
				m.MatchType = uint8(v)
			case fieldLocalDelay:
				m.LocalDelay = int(v)
			case fieldRemoteDelay:
				m.RemoteDelay = int(v)
			}

		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return curated.Errorf(InvalidMetadata, protowire.ParseError(n))
			}
			b = b[n:]

			switch num {
			case fieldLinkCode:
				m.LinkCode = string(v)
			case fieldSeed:
				if len(v) != len(m.Seed) {
					return curated.Errorf(InvalidMetadata, fmt.Sprintf("seed is %d bytes", len(v)))
				}
				copy(m.Seed[:], v)
			}

		default:
			// unknown fields are skipped
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return curated.Errorf(InvalidMetadata, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
