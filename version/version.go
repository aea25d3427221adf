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

// Package version reports the build of the program. The protocol version
// spoken to peers is separate and is in the protocol package.
package version

import (
	"fmt"
	"runtime/debug"

	"github.com/jetsetilly/linkcable/protocol"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "linkcable"

// set with -ldflags "-X github.com/jetsetilly/linkcable/version.number=v1.0.0"
var number string

// Info about the build.
type Info struct {
	// the version number. "unreleased" if the program was built from a
	// repository without a version number and "local" if there is no vcs
	// information at all
	Number string

	// the vcs revision, suffixed with "+dirty" for modified sources
	Revision string

	GoVersion string
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, %s, protocol %d)", ApplicationName, i.Number, i.Revision, i.GoVersion, protocol.Version)
}

// Release returns true if the build has a version number.
func (i Info) Release() bool {
	return number != "" && i.Number == number
}

// Version returns the information for the running program.
func Version() Info {
	return fromBuildInfo(debug.ReadBuildInfo())
}

func fromBuildInfo(info *debug.BuildInfo, ok bool) Info {
	var vcs bool
	var modified bool

	i := Info{
		Revision: "no revision information",
	}

	if ok {
		i.GoVersion = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				i.Revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
		if vcs && modified {
			i.Revision = fmt.Sprintf("%s+dirty", i.Revision)
		}
	}

	switch {
	case number != "":
		i.Number = number
	case vcs:
		i.Number = "unreleased"
	default:
		i.Number = "local"
	}

	return i
}
