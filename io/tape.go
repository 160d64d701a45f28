package io

import (
	"errors"
	"io"
)

// Tape provides sequential byte I/O over an io.Reader for input and an
// io.Writer for output. A missing Input is an empty tape; a missing Output
// discards everything.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Read    int // Bytes received.
	Written int // Bytes sent.
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape; only the counters are reset.
func (tc *Tape) Rewind() {
	tc.Read = 0
	tc.Written = 0
}

// Receive reads the next byte from the input stream.
func (tc *Tape) Receive() (value uint8, err error) {
	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	var one [1]byte
	_, err = io.ReadFull(tc.Input, one[:])
	if errors.Is(err, io.EOF) {
		err = ErrChannelEmpty
	}
	if err != nil {
		return
	}

	tc.Read++
	value = one[0]
	return
}

// Send writes a byte to the output stream.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write([]byte{value})
	if err != nil {
		return
	}

	tc.Written++
	return
}
