// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// DataLine is a parsed .data record.
type DataLine struct {
	LineNo int    // Source line number.
	Text   string // Source line text.
	Label  string // Optional label.
	Value  uint8  // Value of the data byte.
}

// Operand is a code operand; either an immediate value or a label reference.
type Operand struct {
	Label string // If set, the operand is the address of this label.
	Value uint8  // Immediate value.
}

// CodeLine is a parsed .code record.
type CodeLine struct {
	LineNo  int     // Source line number.
	Text    string  // Source line text.
	Label   string  // Optional label.
	Opcode  Opcode  // Operation.
	Operand Operand // Operand, zero for HLT, INP and OUT.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":           "0",
	"INSTRUCTION_SIZE": fmt.Sprintf("%d", INSTRUCTION_SIZE),
}

// Addresses are a single byte.
const sectionLimit = 0x100

// Assembler is a two section assembler for the accumulator machine.
//
// Records are collected in a single pass over the source; labels are
// resolved to addresses once the whole source has been read, so a label may
// be used before it is declared.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]Symbol // Map of labels to their addresses.
	Equate    map[string]string // Map of equates.

	DataLines []DataLine // Records of the .data section.
	CodeLines []CodeLine // Records of the .code section.

	section Section // Active section.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	labelRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	charRegexp  = regexp.MustCompile(`'\\?[^']'`)
	parenRegexp = regexp.MustCompile(`\$\([^\$]*\)`)
)

// parseByte parses a decimal or 0x prefixed hexadecimal byte.
func parseByte(word string) (value uint8, err error) {
	var v uint64
	if hex, ok := strings.CutPrefix(word, "0x"); ok {
		v, err = strconv.ParseUint(hex, 16, 8)
	} else {
		v, err = strconv.ParseUint(word, 10, 8)
	}
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = uint8(v)
	return
}

// parseOperand parses a code operand. Only 0x prefixed words are immediates;
// anything else is a label.
func parseOperand(word string) (operand Operand, err error) {
	if strings.HasPrefix(word, "0x") {
		operand.Value, err = parseByte(word)
		return
	}

	operand.Label = word
	return
}

// stripComment removes a trailing ';' or '//' comment, ignoring those
// inside of $(...) expressions.
func stripComment(line string) string {
	depth := 0
	for n := 0; n < len(line); n++ {
		switch {
		case strings.HasPrefix(line[n:], "$("):
			depth++
			n++
		case depth > 0 && line[n] == '(':
			depth++
		case depth > 0 && line[n] == ')':
			depth--
		case depth == 0 && line[n] == ';':
			return line[:n]
		case depth == 0 && strings.HasPrefix(line[n:], "//"):
			return line[:n]
		}
	}

	return line
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint8, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer equates. They may be labels.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint8(st_int64)
	return
}

// parseLine normalizes a line of source, and splits it into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	line = strings.ReplaceAll(line, "\r", "")

	// Do 'x' evaluations
	line = charRegexp.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\x00"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%#02x", str[0])
	})

	line = stripComment(line)

	// Do $() evaluations
	line = parenRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#02x", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	// Byte valued equates become 0x immediates, so they are never
	// mistaken for labels in operand position.
	for n, word := range words {
		equate, ok := asm.Equate[word]
		if !ok {
			continue
		}
		if value, perr := parseByte(equate); perr == nil {
			equate = fmt.Sprintf("0x%02x", value)
		}
		words[n] = equate
	}

	return
}

// nextAddress is the address of the next record in the active section.
func (asm *Assembler) nextAddress() int {
	switch asm.section {
	case SECTION_DATA:
		return len(asm.DataLines)
	case SECTION_CODE:
		return len(asm.CodeLines) * INSTRUCTION_SIZE
	}
	return 0
}

// defineLabel binds a label to the next address of the active section.
func (asm *Assembler) defineLabel(label string, lineno int) (err error) {
	if asm.section == SECTION_NONE {
		err = ErrMissingSection
		return
	}

	if !labelRegexp.MatchString(label) {
		err = ErrLabelInvalid
		return
	}

	if _, mnemonic := mnemonicMap[label]; mnemonic {
		err = ErrLabelInvalid
		return
	}

	if _, ok := asm.Label[label]; ok {
		err = ErrLabelDuplicate
		return
	}

	addr := asm.nextAddress()
	if addr >= sectionLimit {
		err = ErrSectionFull
		return
	}

	asm.Label[label] = Symbol{Section: asm.section, Address: uint8(addr), LineNo: lineno}

	if asm.Verbose {
		log.Printf("%v: %v %v = 0x%02x", lineno, asm.section, label, addr)
	}

	return
}

// splitRecord splits a record into its optional label, its opcode, and the
// remaining arguments.
func splitRecord(words []string) (label string, op Opcode, args []string, err error) {
	op, err = ParseMnemonic(words[0])
	if err == nil {
		args = words[1:]
		return
	}

	if len(words) < 2 {
		return
	}

	label = words[0]
	op, err = ParseMnemonic(words[1])
	if err != nil {
		return
	}

	args = words[2:]
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int, text string) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	// Section directives.
	if strings.HasPrefix(words[0], ".") {
		if len(words) != 1 {
			err = ErrSectionSyntax
			return
		}
		switch words[0] {
		case ".data":
			asm.section = SECTION_DATA
		case ".code":
			asm.section = SECTION_CODE
		default:
			err = ErrSectionSyntax
		}
		return
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.defineLabel(strings.TrimSuffix(words[0], ":"), lineno)
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	if asm.section == SECTION_NONE {
		err = ErrMissingSection
		return
	}

	label, op, args, err := splitRecord(words)
	if err != nil {
		return
	}

	if asm.nextAddress() >= sectionLimit {
		err = ErrSectionFull
		return
	}

	switch {
	case !op.HasOperand() && len(args) > 0:
		err = errors.Join(ErrInvalidOperand, ErrOpcodeExtraArgs)
		return
	case op.HasOperand() && len(args) == 0:
		err = errors.Join(ErrInvalidOperand, ErrOperandMissing)
		return
	case len(args) > 1:
		err = errors.Join(ErrInvalidOperand, ErrOpcodeExtraArgs)
		return
	}

	if len(label) > 0 {
		err = asm.defineLabel(label, lineno)
		if err != nil {
			return
		}
	}

	text = strings.TrimSpace(text)

	switch asm.section {
	case SECTION_DATA:
		if op != OP_DAT {
			err = ErrOpcodeSection
			return
		}
		var value uint8
		value, err = parseByte(args[0])
		if err != nil {
			return
		}
		asm.DataLines = append(asm.DataLines, DataLine{
			LineNo: lineno,
			Text:   text,
			Label:  label,
			Value:  value,
		})
	case SECTION_CODE:
		var operand Operand
		if len(args) > 0 {
			operand, err = parseOperand(args[0])
			if err != nil {
				return
			}
		}
		asm.CodeLines = append(asm.CodeLines, CodeLine{
			LineNo:  lineno,
			Text:    text,
			Label:   label,
			Opcode:  op,
			Operand: operand,
		})
	}

	return
}

// reset clears the state of any previous Parse.
func (asm *Assembler) reset() {
	asm.Label = make(map[string]Symbol, 16)
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.DataLines = asm.DataLines[:0]
	asm.CodeLines = asm.CodeLines[:0]
	asm.section = SECTION_NONE
}

// link resolves label operands, and emits the program.
func (asm *Assembler) link() (prog *Program, err error) {
	prog = &Program{
		Data:    make([]byte, 0, len(asm.DataLines)),
		Code:    make([]byte, 0, len(asm.CodeLines)*INSTRUCTION_SIZE),
		Symbols: maps.Clone(asm.Label),
	}

	for n, dl := range asm.DataLines {
		prog.Data = append(prog.Data, dl.Value)
		prog.Lines = append(prog.Lines, Line{LineNo: dl.LineNo, Section: SECTION_DATA, Address: uint8(n), Text: dl.Text})
	}

	for n, cl := range asm.CodeLines {
		operand := cl.Operand.Value
		if len(cl.Operand.Label) > 0 {
			sym, ok := asm.Label[cl.Operand.Label]
			if !ok {
				err = ErrSyntax{LineNo: cl.LineNo, Line: cl.Text, Err: ErrLabelMissing(cl.Operand.Label)}
				prog = nil
				return
			}
			operand = sym.Address
		}
		ip := uint8(n * INSTRUCTION_SIZE)
		prog.Code = append(prog.Code, cl.Opcode.Byte(), operand)
		prog.Lines = append(prog.Lines, Line{LineNo: cl.LineNo, Section: SECTION_CODE, Address: ip, Text: cl.Text})
	}

	return
}

// Parse parses an input stream into a Program. On error, no Program is
// returned.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			var syn ErrSyntax
			if !errors.As(err, &syn) {
				err = ErrSyntax{LineNo: lineno, Line: line, Err: err}
			}
		}
	}()

	asm.reset()

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno, line)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	prog, err = asm.link()
	return
}
