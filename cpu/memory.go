package cpu

// Memory is a flat, byte addressed store.
type Memory struct {
	Size uint32
	Data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size uint32) (mem *Memory) {
	mem = &Memory{
		Size: size,
		Data: make([]byte, size),
	}

	return
}

// check verifies that count bytes starting at addr are inside the memory.
func (mem *Memory) check(addr uint32, count uint32) (err error) {
	if addr >= mem.Size || count > mem.Size-addr {
		err = ErrAddress{Address: addr, Size: mem.Size}
	}
	return
}

// Reset zeroes the memory.
func (mem *Memory) Reset() {
	clear(mem.Data)
}

// Read a byte.
func (mem *Memory) Read(addr uint32) (value uint8, err error) {
	err = mem.check(addr, 1)
	if err != nil {
		return
	}

	value = mem.Data[addr]
	return
}

// Write a byte.
func (mem *Memory) Write(addr uint32, value uint8) (err error) {
	err = mem.check(addr, 1)
	if err != nil {
		return
	}

	mem.Data[addr] = value
	return
}

// ReadWord reads a big-endian 16-bit word.
func (mem *Memory) ReadWord(addr uint32) (value uint16, err error) {
	err = mem.check(addr, 2)
	if err != nil {
		if addr < mem.Size {
			err = ErrAddress{Address: addr + 1, Size: mem.Size}
		}
		return
	}

	value = (uint16(mem.Data[addr]) << 8) | uint16(mem.Data[addr+1])
	return
}

// WriteWord writes a big-endian 16-bit word. Nothing is written on error.
func (mem *Memory) WriteWord(addr uint32, value uint16) (err error) {
	err = mem.check(addr, 2)
	if err != nil {
		if addr < mem.Size {
			err = ErrAddress{Address: addr + 1, Size: mem.Size}
		}
		return
	}

	mem.Data[addr] = uint8(value >> 8)
	mem.Data[addr+1] = uint8(value)
	return
}

// Load copies data into the memory starting at addr.
func (mem *Memory) Load(addr uint32, data []byte) (err error) {
	if len(data) == 0 {
		return
	}

	if uint64(addr)+uint64(len(data)) > uint64(mem.Size) {
		bad := max(addr, mem.Size)
		err = ErrAddress{Address: bad, Size: mem.Size}
		return
	}

	copy(mem.Data[addr:], data)
	return
}
