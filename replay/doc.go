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

// Package replay reads and writes replay files. A replay file contains
// everything needed to play back one round of a match: the metadata of the
// match, the committed state of the local core, the committed state of the
// shadow core and every input pair consumed by the round.
//
// The file begins with the four byte magic "LCRP" and a version byte. The
// remainder of the file is a zstd stream containing:
//
//	metadata: uvarint length, protobuf wire format message
//	local state: uvarint length, state bytes
//	remote state: uvarint length, state bytes
//	pairs: fixed size records until the end of the stream
//
// Each pair record is twelve bytes, little-endian:
//
//	local tick (u32), local joyflags (u16), remote tick (u32), remote joyflags (u16)
//
// A file that ends part way through a pair record is truncated. A file that
// ends before the remote state is invalid.
package replay
