// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tebeka/atexit"

	"github.com/ezrec/acc8/cpu"
	"github.com/ezrec/acc8/emulator"
	"github.com/ezrec/acc8/image"
	"github.com/ezrec/acc8/trace"
)

// fatalf logs, runs the registered exit handlers, and exits.
func fatalf(format string, args ...any) {
	log.Printf(format, args...)
	atexit.Exit(1)
}

// useConsole selects decimal console I/O only when both tapes are stdio and
// stdin is a terminal.
func useConsole(input, output string, tty bool) bool {
	return tty && input == "-" && output == "-"
}

// defineFlags collects repeated -D NAME=VALUE arguments.
type defineFlags map[string]string

func (df defineFlags) String() string {
	var defs []string
	for key, value := range df {
		defs = append(defs, key+"="+value)
	}
	return strings.Join(defs, ",")
}

func (df defineFlags) Set(arg string) error {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || len(key) == 0 {
		return fmt.Errorf("expected NAME=VALUE, got %q", arg)
	}
	df[key] = value
	return nil
}

func main() {
	var compile string
	var write string
	var load string
	var input string
	var output string
	var traceFile string
	var replay string
	var dataSize uint
	var tickLimit int
	var compress bool
	var listing bool
	var verbose bool
	var dump bool
	defines := defineFlags{}

	flag.StringVar(&compile, "c", "", ".asm file to compile")
	flag.StringVar(&write, "w", "", "Write compiled image, do not execute")
	flag.StringVar(&load, "l", "", "Image file to load")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.StringVar(&traceFile, "t", "", "Write execution trace")
	flag.StringVar(&replay, "r", "", "Print execution trace, do not execute")
	flag.UintVar(&dataSize, "m", cpu.DATA_SIZE, "Data memory size")
	flag.IntVar(&tickLimit, "n", emulator.TICK_LIMIT, "Cycle limit, 0 for none")
	flag.BoolVar(&compress, "z", false, "Compress written image")
	flag.BoolVar(&listing, "L", false, "Print program listing")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&dump, "d", false, "Dump registers and data memory after execution")
	flag.Var(defines, "D", "Predefine NAME=VALUE (repeatable)")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(replay) != 0 {
		err := printTrace(replay)
		if err != nil {
			log.Fatalf("%v: %v", replay, err)
		}
		return
	}

	if len(compile) == 0 && len(load) == 0 {
		log.Fatalf("%v: one of -c or -l is required", os.Args[0])
	}

	emu := emulator.NewEmulator(uint32(dataSize))
	emu.Verbose = verbose
	emu.TickLimit = tickLimit

	// Compile a new instruction stream.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf, maps.All(defines))
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		img, err := image.Load(load)
		if err != nil {
			log.Fatalf("%v: %v", load, err)
		}
		emu.Program = img.Program
	}

	if listing {
		for _, line := range emu.Program.Listing() {
			fmt.Println(line)
		}
	}

	if len(write) != 0 {
		err := image.Save(write, emu.Program, compress)
		if err != nil {
			log.Fatalf("%v: %v", write, err)
		}
		return
	}

	tty := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	emu.Interactive = useConsole(input, output, tty)

	if input == "-" {
		emu.Tape.Input = os.Stdin
		emu.Console.Input = os.Stdin
		emu.Console.Prompt = "? "
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		atexit.Register(func() { inf.Close() })
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			fatalf("%v: %v", output, err)
		}
		atexit.Register(func() { ouf.Close() })
		emu.Tape.Output = ouf
	}

	if len(traceFile) != 0 {
		ouf, err := os.Create(traceFile)
		if err != nil {
			fatalf("%v: %v", traceFile, err)
		}
		emu.Trace, err = trace.NewWriter(ouf, int(emu.Cpu.Data.Size), int(emu.Cpu.Code.Size))
		if err != nil {
			fatalf("%v: %v", traceFile, err)
		}
		atexit.Register(func() {
			emu.Trace.Close()
			ouf.Close()
		})
	}

	err := emu.Reset()
	if err != nil {
		fatalf("%v", err)
	}

	err = emu.Run()
	if dump {
		fmt.Fprintln(os.Stderr, dumpState(emu))
	}
	if err != nil {
		fatalf("%v", err)
	}

	atexit.Exit(0)
}

// printTrace prints each frame of a trace file.
func printTrace(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	tr, err := trace.NewReader(inf)
	if err != nil {
		return
	}

	fmt.Printf("data %d, code %d\n", tr.Header.DataSize, tr.Header.CodeSize)
	for {
		frame, ferr := tr.Next()
		if errors.Is(ferr, io.EOF) {
			break
		}
		if ferr != nil {
			err = ferr
			return
		}
		fmt.Println(frame)
	}

	return
}
