package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_ReadWrite(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(16)
	assert.Equal(uint32(16), mem.Size)
	assert.Equal(16, len(mem.Data))

	assert.NoError(mem.Write(0, 0x12))
	assert.NoError(mem.Write(15, 0x34))

	value, err := mem.Read(0)
	assert.NoError(err)
	assert.Equal(uint8(0x12), value)

	value, err = mem.Read(15)
	assert.NoError(err)
	assert.Equal(uint8(0x34), value)
}

func TestMemory_Word(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(4)
	assert.NoError(mem.WriteWord(1, 0xabcd))
	assert.Equal([]byte{0x00, 0xab, 0xcd, 0x00}, mem.Data)

	word, err := mem.ReadWord(1)
	assert.NoError(err)
	assert.Equal(uint16(0xabcd), word)

	assert.NoError(mem.WriteWord(2, 0x1234))
	word, err = mem.ReadWord(2)
	assert.NoError(err)
	assert.Equal(uint16(0x1234), word)
}

func TestMemory_OutOfBounds(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(4)
	copy(mem.Data, []byte{1, 2, 3, 4})

	_, err := mem.Read(4)
	assert.True(errors.Is(err, ErrOutOfBounds))

	_, err = mem.Read(0xffffffff)
	assert.True(errors.Is(err, ErrOutOfBounds))

	err = mem.Write(4, 0xff)
	assert.True(errors.Is(err, ErrOutOfBounds))

	// The second byte of a word is past the end.
	_, err = mem.ReadWord(3)
	assert.True(errors.Is(err, ErrOutOfBounds))
	var ea ErrAddress
	assert.True(errors.As(err, &ea))
	assert.Equal(uint32(4), ea.Address)
	assert.Equal(uint32(4), ea.Size)

	err = mem.WriteWord(3, 0xffff)
	assert.True(errors.Is(err, ErrOutOfBounds))

	_, err = mem.ReadWord(0xffffffff)
	assert.True(errors.Is(err, ErrOutOfBounds))

	// Nothing wrapped, nothing partially written.
	assert.Equal([]byte{1, 2, 3, 4}, mem.Data)
}

func TestMemory_Load(t *testing.T) {
	assert := assert.New(t)

	mem := NewMemory(4)
	assert.NoError(mem.Load(1, []byte{7, 8, 9}))
	assert.Equal([]byte{0, 7, 8, 9}, mem.Data)

	err := mem.Load(2, []byte{1, 2, 3})
	assert.True(errors.Is(err, ErrOutOfBounds))
	assert.Equal([]byte{0, 7, 8, 9}, mem.Data)

	assert.NoError(mem.Load(8, nil))

	mem.Reset()
	assert.Equal([]byte{0, 0, 0, 0}, mem.Data)
}
