package image

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/acc8/cpu"
)

func assemble(t *testing.T, program ...string) *cpu.Program {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

var countdown = []string{
	".data",
	"N    DAT 3",
	"ONE  DAT 1",
	"ZERO DAT 0",
	".code",
	"LOOP LDA N",
	"     OUT",
	"     SUB ONE",
	"     STA N",
	"     JNZ LOOP",
	"     HLT",
}

func TestImage_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, countdown...)

	for _, compress := range []bool{false, true} {
		buf := &bytes.Buffer{}
		err := Write(buf, prog, compress)
		assert.NoError(err)

		img, err := Read(buf)
		assert.NoError(err)
		if err != nil {
			t.Fatal(err)
		}

		assert.Equal(IMAGE_MAGIC, img.Header.Magic)
		assert.Equal(uint32(IMAGE_VERSION), img.Header.Version)
		assert.Equal(compress, img.Header.Flags&FLAG_SNAPPY != 0)
		assert.Equal(3, img.Header.DataSize)
		assert.Equal(12, img.Header.CodeSize)
		assert.Equal(prog.Data, img.Program.Data)
		assert.Equal(prog.Code, img.Program.Code)
		assert.Equal(prog.Symbols, img.Program.Symbols)
		assert.Equal(0, buf.Len())
	}
}

func TestImage_Layout(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, ".data", "DAT 7", ".code", "HLT")

	buf := &bytes.Buffer{}
	assert.NoError(Write(buf, prog, false))

	raw := buf.Bytes()
	assert.Equal([]byte("ACC8"), raw[:4])
	// magic(4) version(4) flags(4) data(2) code(2) payload(4) symbols(2)
	assert.Equal([]byte{7, 0x00, 0x0e, 0x00}, raw[22:])
}

func TestImage_Errors(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, countdown...)
	buf := &bytes.Buffer{}
	assert.NoError(Write(buf, prog, false))
	good := buf.Bytes()

	bad := bytes.Clone(good)
	copy(bad, "UCIR")
	_, err := Read(bytes.NewReader(bad))
	assert.True(errors.Is(err, ErrMagic))

	bad = bytes.Clone(good)
	bad[7] = 9
	_, err = Read(bytes.NewReader(bad))
	assert.True(errors.Is(err, ErrVersion))

	// Move the separator by growing the data size.
	bad = bytes.Clone(good)
	bad[13] = 4
	_, err = Read(bytes.NewReader(bad))
	assert.Error(err)

	// Truncated payload.
	_, err = Read(bytes.NewReader(good[:24]))
	assert.Error(err)

	// Truncated header.
	_, err = Read(bytes.NewReader(good[:6]))
	assert.Error(err)
}

func TestImage_PayloadLimits(t *testing.T) {
	assert := assert.New(t)

	pack := func(header Header, payload []byte) *bytes.Reader {
		buf := &bytes.Buffer{}
		if err := struc.Pack(buf, &header); err != nil {
			t.Fatal(err)
		}
		buf.Write(payload)
		return bytes.NewReader(buf.Bytes())
	}

	header := Header{
		Magic:       IMAGE_MAGIC,
		Version:     IMAGE_VERSION,
		DataSize:    3,
		CodeSize:    12,
		PayloadSize: 1 << 30,
	}

	// Oversized payloads are refused before any payload is read.
	_, err := Read(pack(header, nil))
	assert.True(errors.Is(err, ErrHeader), "%v", err)

	header.Flags = FLAG_SNAPPY
	_, err = Read(pack(header, nil))
	assert.True(errors.Is(err, ErrHeader), "%v", err)

	// A compressed payload that decodes to the wrong size.
	payload := snappy.Encode(nil, make([]byte, 400))
	header.PayloadSize = len(payload)
	_, err = Read(pack(header, payload))
	assert.True(errors.Is(err, ErrHeader), "%v", err)

	// Corrupt compressed payload.
	header.PayloadSize = 4
	_, err = Read(pack(header, []byte{0xff, 0xff, 0xff, 0xff}))
	assert.Error(err)
}

func TestImage_SaveLoad(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t, countdown...)
	path := filepath.Join(t.TempDir(), "countdown.img")

	err := Save(path, prog, true)
	assert.NoError(err)

	img, err := Load(path)
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(prog.Binary(), img.Program.Binary())

	_, err = Load(filepath.Join(t.TempDir(), "missing.img"))
	assert.Error(err)
}
