package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Console is a line oriented, human readable channel. Each received line
// holds one decimal value, -128 to 255, where negative values are taken as
// two's complement bytes. Each sent byte is written as a decimal line.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // Written to Output before each read, if set.

	scanner *bufio.Scanner
}

var _ Channel = (*Console)(nil)

// Rewind discards any buffered input.
func (con *Console) Rewind() {
	con.scanner = nil
}

// Receive reads the next non-blank line and parses it as a byte.
func (con *Console) Receive() (value uint8, err error) {
	if con.Input == nil {
		err = ErrChannelEmpty
		return
	}

	if con.scanner == nil {
		con.scanner = bufio.NewScanner(con.Input)
	}

	for {
		if len(con.Prompt) > 0 && con.Output != nil {
			fmt.Fprint(con.Output, con.Prompt)
		}

		if !con.scanner.Scan() {
			err = con.scanner.Err()
			if err == nil || errors.Is(err, io.EOF) {
				err = ErrChannelEmpty
			}
			return
		}

		text := strings.TrimSpace(con.scanner.Text())
		if len(text) == 0 {
			continue
		}

		var v int64
		v, err = strconv.ParseInt(text, 10, 16)
		if err != nil || v < -128 || v > 255 {
			err = fmt.Errorf("%w: %q", ErrChannelValue, text)
			return
		}

		value = uint8(v)
		return
	}
}

// Send writes the byte as a decimal line.
func (con *Console) Send(value uint8) (err error) {
	if con.Output == nil {
		err = ErrChannelMissing
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	return
}
