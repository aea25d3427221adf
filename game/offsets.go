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

package game

// Offsets of a title.
type Offsets struct {
	// instruction addresses
	MainReadJoyflags                 uint32
	CommMenuInitRet                  uint32
	CommMenuHandleLinkCableInput     uint32
	InBattleCallHandleLinkCableInput uint32
	HandleSIOEntry                   uint32
	CopyInputDataEntry               uint32
	CopyInputDataRet                 []uint32
	RoundCallJumpTableRet            uint32
	RoundStartRet                    uint32
	RoundSetEnding                   uint32
	RoundEndEntry                    uint32
	RoundEndSetWin                   uint32
	RoundEndSetLoss                  uint32
	RoundEndDamageJudgeSetWin        uint32
	RoundEndDamageJudgeSetLoss       uint32
	RoundEndDamageJudgeSetDraw       uint32
	BattleIsP2Tst                    uint32
	LinkIsP2Ret                      uint32
	MatchEndRet                      uint32

	// data addresses
	RNG1State            uint32
	RNG2State            uint32
	RNG3State            uint32
	TxPacket             uint32
	RxPackets            uint32
	CopyDataInputState   uint32
	BattleSettingsCounts uint32
	BattleStart          uint32

	// size in bytes of one link cable packet
	PacketSize int
}
