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

package match

import (
	"github.com/jetsetilly/linkcable/lockstep"
	"github.com/jetsetilly/linkcable/paths"
	"github.com/jetsetilly/linkcable/prefs"
)

// the name of the preferences file in the resource path
const prefsFile = "preferences"

// Preferences defines and collates the preference values used by matches.
type Preferences struct {
	dsk *prefs.Disk

	InputDelay       prefs.Int
	MaxTPSMultiplier prefs.Float
	TPSGain          prefs.Float
	RecordReplays    prefs.Bool
	ReplaysPath      prefs.String
}

func (p *Preferences) String() string {
	return p.dsk.Path()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. An empty path means the default preferences file in the
// resource path.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error

	if path == "" {
		path, err = paths.ResourcePath("", prefsFile)
		if err != nil {
			return nil, err
		}
	}

	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add("match.inputDelay", &p.InputDelay); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("match.maxTPSMultiplier", &p.MaxTPSMultiplier); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("match.tpsGain", &p.TPSGain); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("match.recordReplays", &p.RecordReplays); err != nil {
		return nil, err
	}
	if err := p.dsk.Add("match.replaysPath", &p.ReplaysPath); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(true); err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to the default values.
func (p *Preferences) SetDefaults() {
	_ = p.InputDelay.Set(3)
	_ = p.MaxTPSMultiplier.Set(lockstep.DefaultPacing.MaxMultiplier)
	_ = p.TPSGain.Set(lockstep.DefaultPacing.Gain)
	_ = p.RecordReplays.Set(true)

	pth, err := paths.ResourcePath("replays", "")
	if err != nil {
		pth = "replays"
	}
	_ = p.ReplaysPath.Set(pth)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Settings returns match settings built from the preferences. The remote
// delay is the input delay until the peer says otherwise.
func (p *Preferences) Settings(matchType uint8, linkCode string) Settings {
	delay := p.InputDelay.Get().(int)
	return Settings{
		MatchType:   matchType,
		LocalDelay:  delay,
		RemoteDelay: delay,
		Pacing: lockstep.Pacing{
			NominalFPS:    lockstep.DefaultPacing.NominalFPS,
			Gain:          p.TPSGain.Get().(float64),
			MaxMultiplier: p.MaxTPSMultiplier.Get().(float64),
		},
		LinkCode:    linkCode,
		ReplaysPath: p.ReplaysPath.Get().(string),
		Record:      p.RecordReplays.Get().(bool),
	}
}
