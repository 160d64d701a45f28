package cpu

import (
	"errors"

	"github.com/ezrec/acc8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrInvalidOpcode  = errors.New(f("invalid opcode"))
	ErrOutOfBounds    = errors.New(f("address out of bounds"))
	ErrDivisionByZero = errors.New(f("division by zero"))
	ErrInputEmpty     = errors.New(f("input empty"))
	ErrOutputMissing  = errors.New(f("output missing"))
	ErrHalted         = errors.New(f("halted"))
	ErrBinaryLayout   = errors.New(f("binary image layout invalid"))

	// Assembler errors
	ErrUnknownMnemonic = errors.New(f("unknown mnemonic"))
	ErrInvalidOperand  = errors.New(f("invalid operand"))
	ErrMissingSection  = errors.New(f("record outside of .data or .code"))
	ErrUndefinedLabel  = errors.New(f("undefined label"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrSectionFull     = errors.New(f("section full"))
	ErrOpcodeMissing   = errors.New(f("opcode missing"))
	ErrOpcodeExtraArgs = errors.New(f("excessive arguments"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrSectionSyntax   = errors.New(f("section directive syntax"))
	ErrOpcodeSection   = errors.New(f("opcode not permitted in section"))
)

// ErrLabelMissing is an undefined label reference.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

func (el ErrLabelMissing) Is(err error) bool {
	return err == ErrUndefinedLabel
}

// ErrOpcode is a byte that does not decode to an opcode.
type ErrOpcode uint8

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", uint8(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrInvalidOpcode {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrMnemonic is a word that is not an opcode mnemonic.
type ErrMnemonic string

func (em ErrMnemonic) Error() string {
	return f("'%v' is not a mnemonic", string(em))
}

func (em ErrMnemonic) Is(err error) bool {
	return err == ErrUnknownMnemonic
}

// ErrAddress is a memory access outside of the memory.
type ErrAddress struct {
	Address uint32
	Size    uint32
}

func (err ErrAddress) Error() string {
	return f("address 0x%02x out of bounds (size %d)", err.Address, err.Size)
}

func (err ErrAddress) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ErrFault locates a runtime fault at the instruction that raised it.
type ErrFault struct {
	Ip      uint8
	Opcode  uint8
	Operand uint8
	Err     error
}

func (err ErrFault) Error() string {
	op, derr := DecodeOpcode(err.Opcode)
	if derr != nil {
		return f("ip 0x%02x [0x%02x 0x%02x] %v", err.Ip, err.Opcode, err.Operand, err.Err)
	}
	return f("ip 0x%02x %v 0x%02x: %v", err.Ip, op, err.Operand, err.Err)
}

func (err ErrFault) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a byte value", string(err))
}

func (err ErrParseNumber) Is(target error) bool {
	return target == ErrInvalidOperand
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

func (err ErrParseCharacter) Is(target error) bool {
	return target == ErrInvalidOperand
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

func (err ErrParseExpression) Is(target error) bool {
	return target == ErrInvalidOperand
}
