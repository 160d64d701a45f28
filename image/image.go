// Package image reads and writes acc8 program image files.
//
// An image file is a fixed header, the flat binary image of the program
// (optionally snappy compressed), and the program's symbol table.
package image

import (
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"

	"github.com/ezrec/acc8/cpu"
	"github.com/ezrec/acc8/translate"
)

var f = translate.From

var IMAGE_MAGIC = "ACC8"

const (
	IMAGE_VERSION = 1

	FLAG_SNAPPY = uint32(1 << 0) // Payload is snappy block compressed.
)

var (
	ErrMagic   = errors.New(f("invalid image file magic"))
	ErrVersion = errors.New(f("unsupported image file version"))
	ErrHeader  = errors.New(f("image header inconsistent"))
	ErrSymbol  = errors.New(f("image symbol invalid"))
)

type Header struct {
	// MAGIC ("ACC8")
	Magic   string `struc:"[4]byte"`
	Version uint32
	Flags   uint32

	DataSize    int `struc:"uint16"` // Bytes in the data section.
	CodeSize    int `struc:"uint16"` // Bytes in the code section.
	PayloadSize int `struc:"uint32"` // Bytes of payload following the header.
	Symbols     int `struc:"uint16"` // Symbol entries following the payload.
}

type symbolEntry struct {
	NameLen int `struc:"uint8,sizeof=Name"`
	Name    string
	Section uint8
	Address uint8
	LineNo  int `struc:"uint32"`
}

// Image is a loaded image file.
type Image struct {
	Header  Header
	Program *cpu.Program
}

// Write writes the program as an image file.
func Write(w io.Writer, prog *cpu.Program, compress bool) (err error) {
	if len(prog.Data) > cpu.DATA_SIZE || len(prog.Code) > cpu.CODE_SIZE {
		return errors.Wrapf(ErrHeader, "%d data, %d code bytes", len(prog.Data), len(prog.Code))
	}

	payload := prog.Binary()
	header := &Header{
		Magic:    IMAGE_MAGIC,
		Version:  IMAGE_VERSION,
		DataSize: len(prog.Data),
		CodeSize: len(prog.Code),
		Symbols:  len(prog.Symbols),
	}
	if compress {
		header.Flags |= FLAG_SNAPPY
		payload = snappy.Encode(nil, payload)
	}
	header.PayloadSize = len(payload)

	if err = struc.Pack(w, header); err != nil {
		return errors.Wrap(err, "failed to pack header")
	}

	if _, err = w.Write(payload); err != nil {
		return errors.Wrap(err, "failed to write payload")
	}

	for name, sym := range prog.AllSymbols() {
		if len(name) == 0 || len(name) > 0xff {
			return errors.Wrap(ErrSymbol, name)
		}
		entry := &symbolEntry{
			Name:    name,
			Section: uint8(sym.Section),
			Address: sym.Address,
			LineNo:  sym.LineNo,
		}
		if err = struc.Pack(w, entry); err != nil {
			return errors.Wrapf(err, "failed to pack symbol %v", name)
		}
	}

	return
}

// Read reads an image file.
func Read(r io.Reader) (img *Image, err error) {
	img = &Image{}
	header := &img.Header

	if err = struc.Unpack(r, header); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	if header.Magic != IMAGE_MAGIC {
		return nil, ErrMagic
	}
	if header.Version != IMAGE_VERSION {
		return nil, errors.Wrapf(ErrVersion, "version %d", header.Version)
	}
	if header.DataSize > cpu.DATA_SIZE || header.CodeSize > cpu.CODE_SIZE {
		return nil, errors.Wrapf(ErrHeader, "%d data, %d code bytes", header.DataSize, header.CodeSize)
	}

	binSize := header.DataSize + 1 + header.CodeSize
	maxPayload := binSize
	if header.Flags&FLAG_SNAPPY != 0 {
		maxPayload = snappy.MaxEncodedLen(binSize)
	}
	if header.PayloadSize > maxPayload {
		return nil, errors.Wrapf(ErrHeader, "payload of %d bytes", header.PayloadSize)
	}

	payload := make([]byte, header.PayloadSize)
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "failed to read payload")
	}

	bin := payload
	if header.Flags&FLAG_SNAPPY != 0 {
		var size int
		size, err = snappy.DecodedLen(payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decompress payload")
		}
		if size != binSize {
			return nil, errors.Wrapf(ErrHeader, "payload decodes to %d bytes", size)
		}
		bin, err = snappy.Decode(nil, payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decompress payload")
		}
	}

	if len(bin) != binSize {
		return nil, errors.Wrapf(ErrHeader, "payload is %d bytes", len(bin))
	}

	prog, err := cpu.ParseBinary(bin, header.DataSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to split payload")
	}

	prog.Symbols = make(map[string]cpu.Symbol, header.Symbols)
	for range header.Symbols {
		var entry symbolEntry
		if err = struc.Unpack(r, &entry); err != nil {
			return nil, errors.Wrap(err, "failed to unpack symbol")
		}
		section := cpu.Section(entry.Section)
		if section != cpu.SECTION_DATA && section != cpu.SECTION_CODE {
			return nil, errors.Wrapf(ErrSymbol, "%v: section %d", entry.Name, entry.Section)
		}
		prog.Symbols[entry.Name] = cpu.Symbol{
			Section: section,
			Address: entry.Address,
			LineNo:  entry.LineNo,
		}
	}

	img.Program = prog
	return
}

// Save writes the program as an image file at path.
func Save(path string, prog *cpu.Program, compress bool) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = Write(ouf, prog, compress)
	return
}

// Load reads the image file at path.
func Load(path string) (img *Image, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	img, err = Read(inf)
	if err != nil {
		err = errors.Wrap(err, path)
	}
	return
}
