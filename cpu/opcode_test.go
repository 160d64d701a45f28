package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcode_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	count := 0
	for op := OP_MIN; op <= OP_MAX; op++ {
		decoded, err := DecodeOpcode(op.Byte())
		assert.NoError(err, op.String())
		assert.Equal(op, decoded)

		parsed, err := ParseMnemonic(op.String())
		assert.NoError(err, op.String())
		assert.Equal(op, parsed)
		count++
	}

	assert.Equal(17, count)
}

func TestOpcode_Table(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mnemonic string
		code     uint8
	}){
		{"ADD", 0x01},
		{"SUB", 0x02},
		{"MUL", 0x03},
		{"DIV", 0x04},
		{"STA", 0x05},
		{"LDA", 0x06},
		{"JMP", 0x07},
		{"JEQ", 0x08},
		{"JNE", 0x09},
		{"JGT", 0x0a},
		{"JLT", 0x0b},
		{"JZ", 0x0c},
		{"JNZ", 0x0d},
		{"HLT", 0x0e},
		{"INP", 0x0f},
		{"OUT", 0x10},
		{"DAT", 0x11},
	}

	for _, entry := range table {
		op, err := ParseMnemonic(entry.mnemonic)
		assert.NoError(err, entry.mnemonic)
		assert.Equal(entry.code, op.Byte(), entry.mnemonic)
	}
}

func TestOpcode_DecodeInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, b := range []uint8{0x00, 0x12, 0x80, 0xff} {
		op, err := DecodeOpcode(b)
		assert.True(errors.Is(err, ErrInvalidOpcode), "0x%02x", b)
		assert.Equal(Opcode(0), op)

		var eo ErrOpcode
		assert.True(errors.As(err, &eo))
		assert.Equal(ErrOpcode(b), eo)
	}
}

func TestOpcode_ParseMnemonicStrict(t *testing.T) {
	assert := assert.New(t)

	for _, word := range []string{"lda", "Lda", "LDA ", "", "NOP", "DATA"} {
		_, err := ParseMnemonic(word)
		assert.True(errors.Is(err, ErrUnknownMnemonic), "%q", word)
	}
}

func TestOpcode_Classes(t *testing.T) {
	assert := assert.New(t)

	assert.True(OP_JMP.IsJump())
	assert.True(OP_JNZ.IsJump())
	assert.False(OP_LDA.IsJump())
	assert.False(OP_DAT.IsJump())

	assert.False(OP_HLT.HasOperand())
	assert.False(OP_INP.HasOperand())
	assert.False(OP_OUT.HasOperand())
	assert.True(OP_DAT.HasOperand())

	assert.Equal("Opcode(0x00)", Opcode(0).String())
}

func TestInstruction(t *testing.T) {
	assert := assert.New(t)

	inst, err := DecodeInstruction(0x06, 0x2a)
	assert.NoError(err)
	assert.Equal(Instruction{Opcode: OP_LDA, Operand: 0x2a}, inst)
	assert.Equal([INSTRUCTION_SIZE]uint8{0x06, 0x2a}, inst.Bytes())
	assert.Equal("LDA 0x2a", inst.String())
	assert.Equal("HLT", Instruction{Opcode: OP_HLT}.String())

	_, err = DecodeInstruction(0x00, 0x2a)
	assert.True(errors.Is(err, ErrInvalidOpcode))
}

func FuzzDecode(f *testing.F) {
	for b := range 0x20 {
		f.Add(uint8(b))
	}

	f.Fuzz(func(t *testing.T, b uint8) {
		op, err := DecodeOpcode(b)
		if b >= 0x01 && b <= 0x11 {
			assert.NoError(t, err)
			assert.Equal(t, b, op.Byte())
		} else {
			assert.ErrorIs(t, err, ErrInvalidOpcode)
		}
	})
}
