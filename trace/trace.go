// Package trace records and replays per-cycle execution traces.
package trace

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/ezrec/acc8/translate"
)

var f = translate.From

var TRACE_MAGIC = "A8TR"

const TRACE_VERSION = 1

var (
	ErrMagic   = errors.New(f("invalid trace file magic"))
	ErrVersion = errors.New(f("unsupported trace file version"))
)

// Header starts every trace file, ahead of the compressed frame stream.
type Header struct {
	// MAGIC ("A8TR")
	Magic   string `struc:"[4]byte"`
	Version uint32

	DataSize int `struc:"uint16"`
	CodeSize int `struc:"uint16"`
}

// Frame is the machine state after one completed cycle.
type Frame struct {
	Cycle   uint32
	Ip      uint8 // Address of the executed instruction.
	Opcode  uint8
	Operand uint8
	Acc     uint8
	Pc      uint8 // Address of the next instruction.
	Halted  bool
}

func (fr Frame) String() string {
	text := fmt.Sprintf("%6d %02x: [%02x %02x] acc=%02x pc=%02x", fr.Cycle, fr.Ip, fr.Opcode, fr.Operand, fr.Acc, fr.Pc)
	if fr.Halted {
		text += " halt"
	}
	return text
}

// Writer appends frames to a trace file.
type Writer struct {
	w  io.Writer
	zw *snappy.Writer
}

// NewWriter writes the trace header to w, and returns a Writer for the frames
// that follow it.
func NewWriter(w io.Writer, dataSize, codeSize int) (*Writer, error) {
	header := &Header{
		Magic:    TRACE_MAGIC,
		Version:  TRACE_VERSION,
		DataSize: dataSize,
		CodeSize: codeSize,
	}
	if err := struc.Pack(w, header); err != nil {
		return nil, errors.Wrap(err, "failed to pack header")
	}
	zw := snappy.NewBufferedWriter(w)
	return &Writer{w: w, zw: zw}, nil
}

// write a frame at a time
func (t *Writer) Pack(frame Frame) error {
	return struc.Pack(t.zw, &frame)
}

// Close flushes any buffered frames. The underlying writer is not closed.
func (t *Writer) Close() error {
	return t.zw.Close()
}

// Reader reads back the frames of a trace file.
type Reader struct {
	r      io.Reader
	zr     *snappy.Reader
	Header Header
}

// NewReader reads and validates the trace header from r.
func NewReader(r io.Reader) (*Reader, error) {
	t := &Reader{r: r}
	if err := struc.Unpack(r, &t.Header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if t.Header.Magic != TRACE_MAGIC {
		return nil, ErrMagic
	}
	if t.Header.Version != TRACE_VERSION {
		return nil, errors.Wrapf(ErrVersion, "version %d", t.Header.Version)
	}
	t.zr = snappy.NewReader(r)
	return t, nil
}

// Next returns the next frame, or io.EOF at the end of the trace.
func (t *Reader) Next() (frame Frame, err error) {
	err = struc.Unpack(t.zr, &frame)
	return
}
