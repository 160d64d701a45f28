package cpu

import (
	"fmt"
)

// Register is an 8-bit storage cell.
type Register struct {
	label string
	value uint8
}

// NewRegister creates a named register with an initial value.
func NewRegister(label string, value uint8) *Register {
	return &Register{
		label: label,
		value: value,
	}
}

func (r Register) String() string {
	return fmt.Sprintf("%s=0x%02x", r.label, r.value)
}

// Label returns the register name.
func (r Register) Label() string {
	return r.label
}

// Get returns the current value of the register.
func (r Register) Get() uint8 {
	return r.value
}

// Set the value of the register.
func (r *Register) Set(value uint8) {
	r.value = value
}

// Signed returns the register interpreted as a two's complement byte.
func (r Register) Signed() int8 {
	return int8(r.value)
}

// IsZero checks if the register is zero.
func (r Register) IsZero() bool {
	return r.value == 0
}

// IsNegative checks the sign bit of the register.
func (r Register) IsNegative() bool {
	return r.value&0x80 == 0x80
}

// InstructionRegister holds the decoded form of the current instruction.
// There is no raw byte view of its contents.
type InstructionRegister struct {
	inst  Instruction
	valid bool
}

// Set decodes an opcode and operand into the register. An invalid opcode
// leaves the register empty.
func (cir *InstructionRegister) Set(opcode, operand uint8) (err error) {
	inst, err := DecodeInstruction(opcode, operand)
	if err != nil {
		cir.Clear()
		return
	}

	cir.inst = inst
	cir.valid = true
	return
}

// Instruction returns the decoded instruction, if any.
func (cir *InstructionRegister) Instruction() (inst Instruction, ok bool) {
	return cir.inst, cir.valid
}

// Clear empties the register.
func (cir *InstructionRegister) Clear() {
	cir.inst = Instruction{}
	cir.valid = false
}

func (cir InstructionRegister) String() string {
	if !cir.valid {
		return "CIR=----"
	}
	return fmt.Sprintf("CIR=%v", cir.inst)
}
