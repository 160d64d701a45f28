package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/acc8/io"
)

const (
	DATA_SIZE = 256 // Default data memory size.
	CODE_SIZE = 256 // Default instruction memory size.
)

// fetched records the instruction currently moving through the cycle.
type fetched struct {
	ip      uint8
	opcode  uint8
	operand uint8
}

// Cpu is the simulation context for the accumulator machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc  Register            // Address of the next instruction.
	Mdr Register            // Last fetched opcode byte.
	Cir InstructionRegister // Decoded current instruction.
	Acc Register            // Accumulator.

	Data *Memory // Data memory.
	Code *Memory // Instruction memory.

	Running bool // Set while Start() is executing.
	Halted  bool // Set once HLT has executed.
	Ticks   int  // Completed fetch/decode/execute cycles.

	Input  io.Input  // Source for INP.
	Output io.Output // Sink for OUT.

	current fetched
	pcEnd   bool // PC has advanced past the last byte address.
}

// NewCpu creates a new CPU with the given data and instruction memory sizes.
func NewCpu(dataSize, codeSize uint32) (cpu *Cpu) {
	cpu = &Cpu{
		Pc:   Register{label: "pc"},
		Mdr:  Register{label: "mdr"},
		Acc:  Register{label: "acc"},
		Data: NewMemory(dataSize),
		Code: NewMemory(codeSize),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DATA_SIZE": fmt.Sprintf("%d", cpu.Data.Size),
		"CODE_SIZE": fmt.Sprintf("%d", cpu.Code.Size),
	})
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	state := "stopped"
	switch {
	case cpu.Halted:
		state = "halted"
	case cpu.Running:
		state = "running"
	}

	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc.Get())
	text += fmt.Sprintf("% 5s: %02X\n", "mdr", cpu.Mdr.Get())
	if inst, ok := cpu.Cir.Instruction(); ok {
		text += fmt.Sprintf("% 5s: %v\n", "cir", inst)
	} else {
		text += fmt.Sprintf("% 5s: --\n", "cir")
	}
	text += fmt.Sprintf("% 5s: %02X (%d)\n", "acc", cpu.Acc.Get(), cpu.Acc.Signed())
	text += fmt.Sprintf("% 5s: %v\n", "state", state)
	text += fmt.Sprintf("% 5s: %d\n", "ticks", cpu.Ticks)

	return
}

// Reset the CPU registers and run state. Memories are left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc.Set(0)
	cpu.Mdr.Set(0)
	cpu.Cir.Clear()
	cpu.Acc.Set(0)
	cpu.Running = false
	cpu.Halted = false
	cpu.Ticks = 0
	cpu.current = fetched{}
	cpu.pcEnd = false
}

// LoadProgram copies a code image into instruction memory at address 0,
// and resets the CPU.
func (cpu *Cpu) LoadProgram(code []byte) (err error) {
	if uint64(len(code)) > uint64(cpu.Code.Size) {
		err = ErrAddress{Address: cpu.Code.Size, Size: cpu.Code.Size}
		return
	}

	cpu.Code.Reset()
	err = cpu.Code.Load(0, code)
	if err != nil {
		return
	}

	cpu.Reset()

	if cpu.Verbose {
		log.Printf("cpu: loaded %d code bytes", len(code))
	}

	return
}

// LoadData replaces the data memory contents, starting at address 0.
func (cpu *Cpu) LoadData(data []byte) (err error) {
	if uint64(len(data)) > uint64(cpu.Data.Size) {
		err = ErrAddress{Address: cpu.Data.Size, Size: cpu.Data.Size}
		return
	}

	cpu.Data.Reset()
	err = cpu.Data.Load(0, data)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d data bytes", len(data))
	}

	return
}

// Load loads both sections of an assembled program.
func (cpu *Cpu) Load(prog *Program) (err error) {
	err = cpu.LoadData(prog.Data)
	if err != nil {
		return
	}

	err = cpu.LoadProgram(prog.Code)
	return
}

// Ip returns the address of the instruction most recently fetched.
func (cpu *Cpu) Ip() uint8 {
	return cpu.current.ip
}

// Fetch reads the opcode byte at PC into the MDR, and advances PC past the
// instruction. PC does not wrap; fetching beyond address 0xff faults.
func (cpu *Cpu) Fetch() (err error) {
	ip := cpu.Pc.Get()
	cpu.current = fetched{ip: ip}

	if cpu.pcEnd {
		err = ErrAddress{Address: uint32(ip) + 0x100, Size: cpu.Code.Size}
		return
	}

	opcode, err := cpu.Code.Read(uint32(ip))
	if err != nil {
		return
	}

	cpu.current.opcode = opcode
	cpu.Mdr.Set(opcode)
	next := uint32(ip) + INSTRUCTION_SIZE
	cpu.pcEnd = next > 0xff
	cpu.Pc.Set(uint8(next))
	return
}

// jump transfers control to addr.
func (cpu *Cpu) jump(addr uint8) {
	cpu.Pc.Set(addr)
	cpu.pcEnd = false
}

// Decode reads the operand byte following the fetched opcode, and decodes
// both into the CIR.
func (cpu *Cpu) Decode() (err error) {
	operand, err := cpu.Code.Read(uint32(cpu.current.ip) + 1)
	if err != nil {
		cpu.Cir.Clear()
		return
	}

	cpu.current.operand = operand
	err = cpu.Cir.Set(cpu.Mdr.Get(), operand)
	return
}

// Execute executes the instruction in the CIR.
func (cpu *Cpu) Execute() (err error) {
	inst, ok := cpu.Cir.Instruction()
	if !ok {
		err = ErrOpcode(cpu.Mdr.Get())
		return
	}

	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.current.ip, inst)
	}

	addr := uint32(inst.Operand)
	acc := cpu.Acc

	switch inst.Opcode {
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		var value uint8
		value, err = cpu.Data.Read(addr)
		if err != nil {
			return
		}
		var output uint8
		output, err = cpu.doAlu(inst.Opcode, acc.Get(), value)
		if err != nil {
			return
		}
		cpu.Acc.Set(output)
	case OP_STA:
		err = cpu.Data.Write(addr, acc.Get())
	case OP_LDA:
		var value uint8
		value, err = cpu.Data.Read(addr)
		if err != nil {
			return
		}
		cpu.Acc.Set(value)
	case OP_JMP:
		cpu.jump(inst.Operand)
	case OP_JEQ, OP_JZ:
		if acc.IsZero() {
			cpu.jump(inst.Operand)
		}
	case OP_JNE, OP_JNZ:
		if !acc.IsZero() {
			cpu.jump(inst.Operand)
		}
	case OP_JGT:
		// Treat as signed.
		if acc.Signed() > 0 {
			cpu.jump(inst.Operand)
		}
	case OP_JLT:
		if acc.IsNegative() {
			cpu.jump(inst.Operand)
		}
	case OP_HLT:
		cpu.Running = false
		cpu.Halted = true
		if cpu.Verbose {
			log.Printf("cpu: halt")
		}
	case OP_INP:
		if cpu.Input == nil {
			err = ErrInputEmpty
			return
		}
		var value uint8
		value, err = cpu.Input.Receive()
		if errors.Is(err, io.ErrChannelEmpty) {
			err = errors.Join(ErrInputEmpty, err)
		}
		if err != nil {
			return
		}
		cpu.Acc.Set(value)
	case OP_OUT:
		if cpu.Output == nil {
			err = ErrOutputMissing
			return
		}
		err = cpu.Output.Send(acc.Get())
		if errors.Is(err, io.ErrChannelMissing) {
			err = errors.Join(ErrOutputMissing, err)
		}
	case OP_DAT:
		err = cpu.Data.Write(addr, inst.Operand)
	default:
		err = ErrOpcode(inst.Opcode)
	}

	return
}

// Tick executes a single fetch/decode/execute cycle. A fault stops the CPU
// and is returned as an ErrFault, leaving the state as it was at the fault.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	defer func() {
		if err != nil {
			cpu.Running = false
			err = ErrFault{
				Ip:      cpu.current.ip,
				Opcode:  cpu.current.opcode,
				Operand: cpu.current.operand,
				Err:     err,
			}
			if cpu.Verbose {
				log.Printf("cpu: %v", err)
			}
		}
	}()

	err = cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Decode()
	if err != nil {
		return
	}

	err = cpu.Execute()
	if err != nil {
		return
	}

	cpu.Ticks++
	return
}

// Start runs fetch/decode/execute cycles until HLT or a fault.
func (cpu *Cpu) Start() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	cpu.Running = true
	for cpu.Running {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// doAlu performs the arithmetic action, wrapping modulo 256.
func (cpu *Cpu) doAlu(op Opcode, input uint8, value uint8) (output uint8, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MUL:
		output = input * value
	case OP_DIV:
		if value == 0 {
			err = ErrDivisionByZero
			return
		}
		output = input / value
	default:
		err = ErrOpcode(op)
	}

	return
}
