package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseConsole(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		input  string
		output string
		tty    bool
		expect bool
	}){
		{"-", "-", true, true},
		{"-", "-", false, false},
		{"-", "out.bin", true, false},
		{"in.bin", "-", true, false},
		{"in.bin", "out.bin", true, false},
	}

	for _, entry := range table {
		assert.Equal(entry.expect, useConsole(entry.input, entry.output, entry.tty), "%+v", entry)
	}
}

func TestDefineFlags(t *testing.T) {
	assert := assert.New(t)

	defines := defineFlags{}
	assert.NoError(defines.Set("N=5"))
	assert.NoError(defines.Set("EMPTY="))
	assert.Error(defines.Set("=5"))
	assert.Error(defines.Set("N"))
	assert.Equal(defineFlags{"N": "5", "EMPTY": ""}, defines)
}
