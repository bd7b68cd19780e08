// Package cpu implements the stack machine and its assembler.
//
// The machine has four float64 registers (ax, bx, cx, sp), a RAM of
// RAM_SIZE float64 cells, a single stack shared by operands and call return
// addresses, and an instruction pointer counted in 64-bit code words.
//
// An instruction word holds the opcode in its low 32 bits and the operand
// shape flags (immediate, register, memory) above them. The shape decides
// which operand words follow: a constant or address word first, then a
// register index word. Jumps and calls are followed by a single code address.
//
// The assembler is single pass. References to labels not yet defined leave
// a placeholder and a fixup that is patched once the whole source is read.
package cpu
