package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	assert := assert.New(t)

	r := NewRegister("acc", 0)
	assert.Equal("acc", r.Label())
	assert.True(r.IsZero())
	assert.False(r.IsNegative())

	r.Set(0x80)
	assert.Equal(uint8(0x80), r.Get())
	assert.Equal(int8(-128), r.Signed())
	assert.True(r.IsNegative())
	assert.False(r.IsZero())
	assert.Equal("acc=0x80", r.String())

	r.Set(0x7f)
	assert.Equal(int8(127), r.Signed())
	assert.False(r.IsNegative())

	r.Set(6)
	assert.Equal("acc=0x06", r.String())
}

func TestInstructionRegister(t *testing.T) {
	assert := assert.New(t)

	cir := &InstructionRegister{}
	_, ok := cir.Instruction()
	assert.False(ok)
	assert.Equal("CIR=----", cir.String())

	assert.NoError(cir.Set(0x01, 0x05))
	inst, ok := cir.Instruction()
	assert.True(ok)
	assert.Equal(Instruction{Opcode: OP_ADD, Operand: 0x05}, inst)
	assert.Equal("CIR=ADD 0x05", cir.String())

	err := cir.Set(0x12, 0x05)
	assert.True(errors.Is(err, ErrInvalidOpcode))
	_, ok = cir.Instruction()
	assert.False(ok)

	assert.NoError(cir.Set(0x0e, 0x00))
	cir.Clear()
	_, ok = cir.Instruction()
	assert.False(ok)
}
