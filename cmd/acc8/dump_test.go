package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/acc8/emulator"
)

func TestDumpState(t *testing.T) {
	assert := assert.New(t)

	emu := emulator.NewEmulator(32)
	source := ".data\nCOUNT DAT 42\n.code\nLDA COUNT\nHLT"
	assert.NoError(emu.Assemble(strings.NewReader(source), nil))
	assert.NoError(emu.Reset())
	assert.NoError(emu.Run())

	text := dumpState(emu)
	assert.Contains(text, "Registers")
	assert.Contains(text, "2a (42)")
	assert.Contains(text, "HLT")
	assert.Contains(text, "COUNT")
	assert.Contains(text, "Data memory")
}
