// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/acc8/cpu"
	"github.com/ezrec/acc8/internal"
	acc8io "github.com/ezrec/acc8/io"
	"github.com/ezrec/acc8/trace"
)

const (
	WORD_BITS  = 8      // Width of the accumulator and of memory cells.
	TICK_LIMIT = 100000 // Default cycle limit for Run.
)

var _emulator_defines = map[string]string{
	"WORD_BITS": fmt.Sprintf("%v", WORD_BITS),
	"WORD_MAX":  fmt.Sprintf("%v", (1<<WORD_BITS)-1),
}

// Emulator state. CPU + program + IO channels.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Tape    acc8io.Tape    // Raw byte IO channel.
	Console acc8io.Console // Decimal text IO channel.

	Interactive bool // If set, INP and OUT use the Console rather than the Tape.
	TickLimit   int  // Run faults after this many cycles, if non-zero.

	Trace *trace.Writer // If set, receives a frame per completed cycle.
}

// NewEmulator creates a new emulator with dataSize bytes of data memory.
func NewEmulator(dataSize uint32) (emu *Emulator) {
	emu = &Emulator{
		Cpu:       cpu.NewCpu(dataSize, cpu.CODE_SIZE),
		Program:   &cpu.Program{},
		TickLimit: TICK_LIMIT,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses source into the emulator's program. The emulator defines,
// then the extra predefines, are visible to the source as equates.
func (emu *Emulator) Assemble(source io.Reader, predefine iter.Seq2[string, string]) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	if predefine != nil {
		for key, value := range predefine {
			asm.Predefine(key, value)
		}
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Reset loads the program, and resets the CPU and IO channels.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(emu.Program)
	if err != nil {
		return
	}

	emu.Tape.Rewind()
	emu.Console.Rewind()

	if emu.Interactive {
		emu.Cpu.Input = &emu.Console
		emu.Cpu.Output = &emu.Console
	} else {
		emu.Cpu.Input = &emu.Tape
		emu.Cpu.Output = &emu.Tape
	}

	if emu.Verbose {
		log.Printf("emulator: %d data, %d code bytes", len(emu.Program.Data), len(emu.Program.Code))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the source line number of the next instruction, or 0 if
// unknown.
func (emu *Emulator) LineNo() int {
	line, _ := emu.Program.Debug(emu.Cpu.Pc.Get())
	return line.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted {
		done = true
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Trace != nil {
		inst, _ := emu.Cpu.Cir.Instruction()
		err = emu.Trace.Pack(trace.Frame{
			Cycle:   uint32(emu.Cpu.Ticks),
			Ip:      emu.Cpu.Ip(),
			Opcode:  inst.Opcode.Byte(),
			Operand: inst.Operand,
			Acc:     emu.Cpu.Acc.Get(),
			Pc:      emu.Cpu.Pc.Get(),
			Halted:  emu.Cpu.Halted,
		})
		if err != nil {
			return
		}
	}

	done = emu.Cpu.Halted
	if !done && emu.TickLimit > 0 && emu.Cpu.Ticks >= emu.TickLimit {
		err = ErrTickLimit
	}

	return
}

// Run ticks the emulator until the program halts or faults.
func (emu *Emulator) Run() (err error) {
	for done, err := emu.Tick(); !done; done, err = emu.Tick() {
		if err != nil {
			return err
		}
	}

	return
}
