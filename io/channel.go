// Package io provides the byte channels that back the INP and OUT
// instructions: raw byte tapes, a decimal console and an in-memory buffer.
package io

// Input supplies one byte per INP instruction.
type Input interface {
	// Receive blocks until a byte is available.
	Receive() (value uint8, err error)
}

// Output accepts one byte per OUT instruction.
type Output interface {
	// Send writes a single byte to the channel.
	Send(value uint8) error
}

// Channel is a bidirectional byte channel.
type Channel interface {
	Input
	Output
	// Rewind resets the channel to its initial state.
	Rewind()
}
