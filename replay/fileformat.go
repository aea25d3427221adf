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
	"bufio"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/jetsetilly/linkcable/curated"
	"github.com/jetsetilly/linkcable/emulation"
	"github.com/jetsetilly/linkcable/lockstep"
)

// Sentinal error patterns.
const (
	BadMagic           = "replay: not a replay file"
	UnsupportedVersion = "replay: unsupported version (%d)"
	Truncated          = "replay: file is truncated"
	InvalidMetadata    = "replay: invalid metadata: %v"
	StatesOutOfOrder   = "replay: states must be written once and before any input"
	WriteError         = "replay: %v"
	ReadError          = "replay: %v"
)

const magic = "LCRP"

// Version of the file format written by the Writer.
const Version = 1

// the size of one pair record.
const pairSize = 12

// Writer writes a replay file. States must be written before any input.
type Writer struct {
	output io.Writer
	enc    *zstd.Encoder

	statesWritten bool
	numInputs     int
}

// NewWriter writes the file header and metadata to the output. If output
// implements io.Closer it will be closed by Writer.Close().
func NewWriter(output io.Writer, meta Metadata) (*Writer, error) {
	if _, err := io.WriteString(output, magic); err != nil {
		return nil, curated.Errorf(WriteError, err)
	}
	if _, err := output.Write([]byte{Version}); err != nil {
		return nil, curated.Errorf(WriteError, err)
	}

	enc, err := zstd.NewWriter(output)
	if err != nil {
		return nil, curated.Errorf(WriteError, err)
	}

	w := &Writer{
		output: output,
		enc:    enc,
	}

	if err := w.writeBlock(meta.marshal()); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Writer) writeBlock(b []byte) error {
	var l [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(l[:], uint64(len(b)))
	if _, err := w.enc.Write(l[:n]); err != nil {
		return curated.Errorf(WriteError, err)
	}
	if _, err := w.enc.Write(b); err != nil {
		return curated.Errorf(WriteError, err)
	}
	return nil
}

// WriteStates writes the committed states of the local core and the shadow
// core.
func (w *Writer) WriteStates(local emulation.State, remote emulation.State) error {
	if w.statesWritten {
		return curated.Errorf(StatesOutOfOrder)
	}
	if err := w.writeBlock(local); err != nil {
		return err
	}
	if err := w.writeBlock(remote); err != nil {
		return err
	}
	w.statesWritten = true
	return nil
}

// WriteInput writes an input pair. Implements the battle.Recorder interface.
func (w *Writer) WriteInput(p lockstep.Pair) error {
	if !w.statesWritten {
		return curated.Errorf(StatesOutOfOrder)
	}
	var b [pairSize]byte
	binary.LittleEndian.PutUint32(b[0:], p.Local.LocalTick)
	binary.LittleEndian.PutUint16(b[4:], p.Local.Joyflags)
	binary.LittleEndian.PutUint32(b[6:], p.Remote.LocalTick)
	binary.LittleEndian.PutUint16(b[10:], p.Remote.Joyflags)
	if _, err := w.enc.Write(b[:]); err != nil {
		return curated.Errorf(WriteError, err)
	}
	w.numInputs++
	return nil
}

// NumInputs returns the number of pairs written so far.
func (w *Writer) NumInputs() int {
	return w.numInputs
}

// Close flushes the compressed stream and closes the output if possible.
func (w *Writer) Close() error {
	err := w.enc.Close()
	if c, ok := w.output.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return curated.Errorf(WriteError, err)
	}
	return nil
}

// Replay is the content of a replay file.
type Replay struct {
	Metadata    Metadata
	LocalState  emulation.State
	RemoteState emulation.State
	Pairs       []lockstep.Pair
}

// Read a replay file.
func Read(input io.Reader) (*Replay, error) {
	br := bufio.NewReader(input)

	hdr := make([]byte, len(magic)+1)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, curated.Errorf(BadMagic)
	}
	if string(hdr[:len(magic)]) != magic {
		return nil, curated.Errorf(BadMagic)
	}
	if hdr[len(magic)] != Version {
		return nil, curated.Errorf(UnsupportedVersion, hdr[len(magic)])
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}
	defer dec.Close()

	body, err := io.ReadAll(dec)
	if err != nil {
		return nil, curated.Errorf(Truncated)
	}

	rep := &Replay{}

	block, body, err := readBlock(body)
	if err != nil {
		return nil, err
	}
	if err := rep.Metadata.unmarshal(block); err != nil {
		return nil, err
	}

	rep.LocalState, body, err = readBlock(body)
	if err != nil {
		return nil, err
	}
	rep.RemoteState, body, err = readBlock(body)
	if err != nil {
		return nil, err
	}

	if len(body)%pairSize != 0 {
		return nil, curated.Errorf(Truncated)
	}

	rep.Pairs = make([]lockstep.Pair, 0, len(body)/pairSize)
	for len(body) > 0 {
		rep.Pairs = append(rep.Pairs, lockstep.Pair{
			Local: lockstep.Input{
				LocalTick: binary.LittleEndian.Uint32(body[0:]),
				Joyflags:  binary.LittleEndian.Uint16(body[4:]),
			},
			Remote: lockstep.Input{
				LocalTick: binary.LittleEndian.Uint32(body[6:]),
				Joyflags:  binary.LittleEndian.Uint16(body[10:]),
			},
		})
		body = body[pairSize:]
	}

	return rep, nil
}

func readBlock(b []byte) ([]byte, []byte, error) {
	l, n := binary.Uvarint(b)
	if n <= 0 || uint64(len(b)-n) < l {
		return nil, nil, curated.Errorf(Truncated)
	}
	b = b[n:]
	return append([]byte{}, b[:l]...), b[l:], nil
}
