package trace

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestTrace(t *testing.T) {
	assert := assert.New(t)

	frames := []Frame{
		{Cycle: 1, Ip: 0x00, Opcode: 0x06, Operand: 0x00, Acc: 4, Pc: 0x02},
		{Cycle: 2, Ip: 0x02, Opcode: 0x01, Operand: 0x01, Acc: 6, Pc: 0x04},
		{Cycle: 3, Ip: 0x04, Opcode: 0x0e, Operand: 0x00, Acc: 6, Pc: 0x06, Halted: true},
	}

	buf := &bytes.Buffer{}
	tw, err := NewWriter(buf, 2, 6)
	assert.NoError(err)
	for _, frame := range frames {
		assert.NoError(tw.Pack(frame))
	}
	assert.NoError(tw.Close())

	tr, err := NewReader(buf)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(Header{Magic: TRACE_MAGIC, Version: TRACE_VERSION, DataSize: 2, CodeSize: 6}, tr.Header)

	var got []Frame
	for {
		frame, err := tr.Next()
		if err != nil {
			assert.True(errors.Is(err, io.EOF))
			break
		}
		got = append(got, frame)
	}
	assert.Equal(frames, got)
}

func TestTrace_Empty(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	tw, err := NewWriter(buf, 0, 0)
	assert.NoError(err)
	assert.NoError(tw.Close())

	tr, err := NewReader(buf)
	assert.NoError(err)
	_, err = tr.Next()
	assert.True(errors.Is(err, io.EOF))
}

func TestTrace_Magic(t *testing.T) {
	assert := assert.New(t)

	_, err := NewReader(bytes.NewReader([]byte("UCIR\x00\x00\x00\x01\x00\x00\x00\x00")))
	assert.True(errors.Is(err, ErrMagic))

	_, err = NewReader(bytes.NewReader([]byte("A8TR\x00\x00\x00\x02\x00\x00\x00\x00")))
	assert.True(errors.Is(err, ErrVersion))

	_, err = NewReader(bytes.NewReader([]byte("A8")))
	assert.Error(err)
}

func TestFrame_String(t *testing.T) {
	assert := assert.New(t)

	frame := Frame{Cycle: 3, Ip: 0x04, Opcode: 0x0e, Acc: 6, Pc: 0x06, Halted: true}
	assert.Equal("     3 04: [0e 00] acc=06 pc=06 halt", frame.String())
}
