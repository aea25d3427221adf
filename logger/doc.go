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

// Package logger is the central log for linkcable. Entries are made up of a
// tag and a detail string. Consecutive entries with the same tag and detail
// are collapsed into one entry with a repeat count.
//
// Logging is gated by a Permission. The Allow value will always log. Other
// implementations can refuse logging, for example when a match has been
// cancelled and the hooks of the torn-down match are still being called.
//
// Private logs can be created with NewLogger(). These are useful in tests and
// for collecting the log of a single component.
package logger
