package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ezrec/acc8/cpu"
	"github.com/ezrec/acc8/emulator"
)

const dumpWidth = 16

// dumpState renders the registers, then the data memory, as tables.
func dumpState(emu *emulator.Emulator) string {
	cp := emu.Cpu

	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"PC", "MDR", "CIR", "ACC", "Ticks", "Halted"})

	cir := "--"
	if inst, ok := cp.Cir.Instruction(); ok {
		cir = inst.String()
	}
	regTable.AppendRow(table.Row{
		fmt.Sprintf("%02x", cp.Pc.Get()),
		fmt.Sprintf("%02x", cp.Mdr.Get()),
		cir,
		fmt.Sprintf("%02x (%d)", cp.Acc.Get(), cp.Acc.Signed()),
		cp.Ticks,
		cp.Halted,
	})

	memTable := table.NewWriter()
	memTable.SetTitle("Data memory")
	header := table.Row{"Addr"}
	for col := range dumpWidth {
		header = append(header, fmt.Sprintf("+%x", col))
	}
	memTable.AppendHeader(header)

	data := cp.Data.Data
	for base := 0; base < len(data); base += dumpWidth {
		row := table.Row{fmt.Sprintf("%02x", base)}
		for _, value := range data[base:min(base+dumpWidth, len(data))] {
			row = append(row, fmt.Sprintf("%02x", value))
		}
		memTable.AppendRow(row)
	}

	var text strings.Builder
	text.WriteString(regTable.Render())
	text.WriteString("\n")
	text.WriteString(memTable.Render())

	if emu.Program != nil {
		symTable := table.NewWriter()
		symTable.SetTitle("Symbols")
		symTable.AppendHeader(table.Row{"Name", "Section", "Addr", "Value"})
		for name, sym := range emu.Program.AllSymbols() {
			value := ""
			if sym.Section == cpu.SECTION_DATA && int(sym.Address) < len(data) {
				value = fmt.Sprintf("%d", data[sym.Address])
			}
			symTable.AppendRow(table.Row{name, sym.Section, fmt.Sprintf("%02x", sym.Address), value})
		}
		if symTable.Length() > 0 {
			text.WriteString("\n")
			text.WriteString(symTable.Render())
		}
	}

	return text.String()
}
