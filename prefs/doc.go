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

// Package prefs facilitates the storage of preferential values. Preference
// values are typed (Bool, Int, Float, String) and can be added to a Disk
// instance which saves and loads them to a file on disk.
//
// Values can be set with Set() which accepts the native type of the value or
// a string which will be converted. A hook function can be registered to be
// called before or after the value is changed. A pre-hook that returns an
// error prevents the change.
//
// The values in a Disk instance can be overridden for a single load with the
// command line stack. See PushCommandLineStack().
//
// The file format is simple: a warning line followed by one line per value of
// the form "key :: value". Entries in the file that are not in the Disk
// instance are preserved when the file is saved.
package prefs
