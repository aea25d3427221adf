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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes and
// allows different flags for each mode.
//
// Arguments are supplied with NewArgs() and then parsed with Parse(). Modes
// are added with AddSubModes(), the first mode being the default. After a
// call to Parse() the selected mode is available with Mode():
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("play", "host", "join")
//	if r, err := md.Parse(); r != modalflag.ParseContinue {
//		return err
//	}
//
//	switch md.Mode() {
//	case "HOST":
//		md.NewMode()
//		addr := md.AddString("addr", ":8080", "listen address")
//		...
//	}
//
// Each call to NewMode() starts a new set of flags which are parsed from the
// arguments remaining after the previous mode selector. The sequence of modes
// selected is available with Path().
//
// All mode comparisons are case insensitive. Modes are reported in upper
// case.
package modalflag
