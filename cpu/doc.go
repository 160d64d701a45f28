// Package cpu implements the accumulator machine and its assembler.
//
// The machine has a Harvard layout: a byte addressed instruction memory holding
// two byte instructions (opcode, operand) and a separate byte addressed data
// memory. The register set is an 8-bit program counter (PC), a fetch latch
// (MDR), the current instruction register (CIR) and the accumulator (ACC).
//
// The assembler translates a two section (.data, .code) assembly language into
// a Program: the data bytes, the code bytes, and the symbol table used to
// resolve labels to addresses.
package cpu
