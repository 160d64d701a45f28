package cpu

import (
	"fmt"
)

// Opcode is an instruction operation, encoded as a single byte.
type Opcode uint8

const (
	OP_ADD = Opcode(0x01) // ACC += [operand]
	OP_SUB = Opcode(0x02) // ACC -= [operand]
	OP_MUL = Opcode(0x03) // ACC *= [operand]
	OP_DIV = Opcode(0x04) // ACC /= [operand]
	OP_STA = Opcode(0x05) // [operand] = ACC
	OP_LDA = Opcode(0x06) // ACC = [operand]
	OP_JMP = Opcode(0x07) // PC = operand
	OP_JEQ = Opcode(0x08) // PC = operand if ACC == 0
	OP_JNE = Opcode(0x09) // PC = operand if ACC != 0
	OP_JGT = Opcode(0x0a) // PC = operand if ACC > 0
	OP_JLT = Opcode(0x0b) // PC = operand if ACC < 0
	OP_JZ  = Opcode(0x0c) // PC = operand if ACC == 0
	OP_JNZ = Opcode(0x0d) // PC = operand if ACC != 0
	OP_HLT = Opcode(0x0e) // Stop execution
	OP_INP = Opcode(0x0f) // ACC = input
	OP_OUT = Opcode(0x10) // output = ACC
	OP_DAT = Opcode(0x11) // [operand] = operand

	OP_MIN = OP_ADD
	OP_MAX = OP_DAT
)

// SECTION_SEPARATOR splits the data and code sections of a binary image.
const SECTION_SEPARATOR = uint8(0x00)

// INSTRUCTION_SIZE is the encoded size of an instruction, in bytes.
const INSTRUCTION_SIZE = 2

var mnemonics = [...]string{
	OP_ADD: "ADD",
	OP_SUB: "SUB",
	OP_MUL: "MUL",
	OP_DIV: "DIV",
	OP_STA: "STA",
	OP_LDA: "LDA",
	OP_JMP: "JMP",
	OP_JEQ: "JEQ",
	OP_JNE: "JNE",
	OP_JGT: "JGT",
	OP_JLT: "JLT",
	OP_JZ:  "JZ",
	OP_JNZ: "JNZ",
	OP_HLT: "HLT",
	OP_INP: "INP",
	OP_OUT: "OUT",
	OP_DAT: "DAT",
}

// mnemonicMap maps assembly mnemonics to opcodes.
var mnemonicMap = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics))
	for op := OP_MIN; op <= OP_MAX; op++ {
		m[mnemonics[op]] = op
	}
	return m
}()

// Valid returns true if the opcode is one of the defined operations.
func (op Opcode) Valid() bool {
	return op >= OP_MIN && op <= OP_MAX
}

// Byte encodes the opcode.
func (op Opcode) Byte() uint8 {
	return uint8(op)
}

// IsJump returns true if the operand is an instruction memory address.
func (op Opcode) IsJump() bool {
	switch op {
	case OP_JMP, OP_JEQ, OP_JNE, OP_JGT, OP_JLT, OP_JZ, OP_JNZ:
		return true
	}
	return false
}

// HasOperand returns true if the assembly form of the opcode takes an operand.
func (op Opcode) HasOperand() bool {
	switch op {
	case OP_HLT, OP_INP, OP_OUT:
		return false
	}
	return true
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(0x%02x)", uint8(op))
	}
	return mnemonics[op]
}

// DecodeOpcode decodes an opcode byte.
func DecodeOpcode(b uint8) (op Opcode, err error) {
	op = Opcode(b)
	if !op.Valid() {
		op = 0
		err = ErrOpcode(b)
	}
	return
}

// ParseMnemonic returns the opcode for an exact, case sensitive, mnemonic.
func ParseMnemonic(word string) (op Opcode, err error) {
	op, ok := mnemonicMap[word]
	if !ok {
		err = ErrMnemonic(word)
	}
	return
}

// Instruction is a decoded opcode and its operand.
type Instruction struct {
	Opcode  Opcode
	Operand uint8
}

// DecodeInstruction decodes an opcode byte and an operand byte.
func DecodeInstruction(opcode, operand uint8) (inst Instruction, err error) {
	op, err := DecodeOpcode(opcode)
	if err != nil {
		return
	}

	inst = Instruction{Opcode: op, Operand: operand}
	return
}

// Bytes returns the two byte encoding of the instruction.
func (inst Instruction) Bytes() [INSTRUCTION_SIZE]uint8 {
	return [INSTRUCTION_SIZE]uint8{inst.Opcode.Byte(), inst.Operand}
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() string {
	if !inst.Opcode.HasOperand() {
		return inst.Opcode.String()
	}
	return fmt.Sprintf("%v 0x%02x", inst.Opcode, inst.Operand)
}
