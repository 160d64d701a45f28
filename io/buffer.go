package io

// Buffer is an in-memory channel. Bytes are received from the front of In,
// and sent bytes are appended to Out.
type Buffer struct {
	In  []uint8
	Out []uint8

	Capacity int // Maximum length of Out, or 0 for no limit.

	initial []uint8
}

var _ Channel = (*Buffer)(nil)

// NewBuffer creates a buffer that will receive input.
func NewBuffer(input ...uint8) (buf *Buffer) {
	buf = &Buffer{}
	buf.initial = append([]uint8(nil), input...)
	buf.Rewind()

	return
}

// Rewind restores the initial input and discards all output.
func (buf *Buffer) Rewind() {
	buf.In = append(buf.In[:0], buf.initial...)
	buf.Out = nil
}

// Receive removes the first byte from In.
func (buf *Buffer) Receive() (value uint8, err error) {
	if len(buf.In) == 0 {
		err = ErrChannelEmpty
		return
	}

	value = buf.In[0]
	buf.In = buf.In[1:]
	return
}

// Send appends a byte to Out.
func (buf *Buffer) Send(value uint8) (err error) {
	if buf.Capacity > 0 && len(buf.Out) >= buf.Capacity {
		err = ErrChannelFull
		return
	}

	buf.Out = append(buf.Out, value)
	return
}
