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

package hooks

import (
	"fmt"

	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/game"
	"github.com/jetsetilly/linkcable/logger"
)

// Provider implementations create the traps for one role.
type Provider interface {
	Traps(munger game.Munger) emulation.Traps
}

// Install the traps of the provider, joined with the common traps, in the
// core.
func Install(core emulation.Core, munger game.Munger, p Provider) error {
	traps, err := emulation.Join(Common(munger), p.Traps(munger))
	if err != nil {
		return err
	}
	core.SetTraps(traps)
	return nil
}

// Common returns the traps that are installed for every role.
func Common(munger game.Munger) emulation.Traps {
	offsets := munger.Offsets()

	return emulation.Traps{
		// the link cable is never used in the comm menu. the battle is started
		// by the CommMenuInitRet trap of the role
		offsets.CommMenuHandleLinkCableInput: func(core emulation.Core) {
			munger.SkipLinkCableInput(core)
		},

		offsets.HandleSIOEntry: func(core emulation.Core) {
			logger.Logf(logger.Allow, "hooks", "unhandled call to serial I/O handler from %#08x", core.CPU().GPR(14))
		},
	}
}

// save the state of the core. a core that cannot save its state is not
// recoverable
func save(core emulation.Core) emulation.State {
	state, err := core.SaveState()
	if err != nil {
		panic(fmt.Sprintf("hooks: cannot save state: %v", err))
	}
	return state
}

// skip the call to the link cable handler in battle. the copy input data
// routine is told that linked input is ready
func skipInBattleLinkCableInput(munger game.Munger) emulation.Trap {
	return func(core emulation.Core) {
		munger.SkipCall(core)
		munger.SetCopyDataInputState(core, game.CopyDataInputLinked)
	}
}
