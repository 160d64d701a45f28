package cpu

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/ezrec/acc8/internal"
)

// Section is an assembly section.
type Section int

const (
	SECTION_NONE = Section(0)
	SECTION_DATA = Section(1)
	SECTION_CODE = Section(2)
)

func (sec Section) String() string {
	switch sec {
	case SECTION_DATA:
		return ".data"
	case SECTION_CODE:
		return ".code"
	}
	return "none"
}

// Symbol is a resolved label.
type Symbol struct {
	Section Section
	Address uint8
	LineNo  int
}

// Line is the source location of an emitted data byte or instruction.
type Line struct {
	LineNo  int
	Section Section
	Address uint8
	Text    string
}

// Program is an assembled program: the contents of data memory, the
// contents of instruction memory, and the information needed to relate
// them back to the source.
type Program struct {
	Data    []byte
	Code    []byte
	Symbols map[string]Symbol
	Lines   []Line
}

// Binary returns the flat binary image: the data section, the section
// separator, then the code section.
func (prog *Program) Binary() (bin []byte) {
	bin = make([]byte, 0, len(prog.Data)+1+len(prog.Code))
	bin = append(bin, prog.Data...)
	bin = append(bin, SECTION_SEPARATOR)
	bin = append(bin, prog.Code...)

	return
}

// ParseBinary splits a flat binary image whose data section is dataLen
// bytes long. The separator must follow the data section, and the code
// section must be a whole number of instructions.
func ParseBinary(bin []byte, dataLen int) (prog *Program, err error) {
	if dataLen < 0 || dataLen >= len(bin) {
		err = ErrBinaryLayout
		return
	}

	if bin[dataLen] != SECTION_SEPARATOR {
		err = ErrBinaryLayout
		return
	}

	code := bin[dataLen+1:]
	if len(code)%INSTRUCTION_SIZE != 0 {
		err = ErrBinaryLayout
		return
	}

	prog = &Program{
		Data: slices.Clone(bin[:dataLen]),
		Code: slices.Clone(code),
	}

	return
}

// Debug returns the source line of the instruction at ip.
func (prog *Program) Debug(ip uint8) (line Line, ok bool) {
	for _, line = range prog.Lines {
		if line.Section == SECTION_CODE && line.Address == ip {
			ok = true
			return
		}
	}

	line = Line{}
	return
}

// Instructions iterates over the code section.
func (prog *Program) Instructions() iter.Seq2[uint8, Instruction] {
	return func(yield func(ip uint8, inst Instruction) bool) {
		for n := 0; n+1 < len(prog.Code); n += INSTRUCTION_SIZE {
			inst := Instruction{Opcode: Opcode(prog.Code[n]), Operand: prog.Code[n+1]}
			if !yield(uint8(n), inst) {
				return
			}
		}
	}
}

// SymbolsOf iterates over the symbols of a section, in address order.
func (prog *Program) SymbolsOf(section Section) iter.Seq2[string, Symbol] {
	return func(yield func(name string, sym Symbol) bool) {
		var names []string
		for name, sym := range prog.Symbols {
			if sym.Section == section {
				names = append(names, name)
			}
		}
		slices.SortFunc(names, func(a, b string) int {
			return cmp.Or(cmp.Compare(prog.Symbols[a].Address, prog.Symbols[b].Address), cmp.Compare(a, b))
		})
		for _, name := range names {
			if !yield(name, prog.Symbols[name]) {
				return
			}
		}
	}
}

// AllSymbols iterates over the data symbols, then the code symbols.
func (prog *Program) AllSymbols() iter.Seq2[string, Symbol] {
	return internal.IterSeq2Concat(prog.SymbolsOf(SECTION_DATA), prog.SymbolsOf(SECTION_CODE))
}

// Listing returns a disassembly of the program.
func (prog *Program) Listing() (lines []string) {
	labels := map[Section]map[uint8]string{
		SECTION_DATA: {},
		SECTION_CODE: {},
	}
	for name, sym := range prog.AllSymbols() {
		if _, ok := labels[sym.Section][sym.Address]; !ok {
			labels[sym.Section][sym.Address] = name
		}
	}

	lines = append(lines, SECTION_DATA.String())
	for n, value := range prog.Data {
		lines = append(lines, fmt.Sprintf("%02x: %-8s DAT %d", n, labels[SECTION_DATA][uint8(n)], value))
	}

	lines = append(lines, SECTION_CODE.String())
	for ip, inst := range prog.Instructions() {
		text := fmt.Sprintf("%02x: %-8s %v", ip, labels[SECTION_CODE][ip], inst)
		if inst.Opcode.HasOperand() && inst.Opcode.Valid() {
			section := SECTION_DATA
			if inst.Opcode.IsJump() {
				section = SECTION_CODE
			}
			if name, ok := labels[section][inst.Operand]; ok && inst.Opcode != OP_DAT {
				text += " ; " + name
			}
		}
		lines = append(lines, text)
	}

	return
}
