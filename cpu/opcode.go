package cpu

import (
	"strings"
)

// Word is a single encoded instruction or operand word.
type Word uint64

// Opcode is an operation code.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_NONE = Opcode(0)  // none
	OP_PUSH = Opcode(1)  // push
	OP_ADD  = Opcode(2)  // add
	OP_SUB  = Opcode(3)  // sub
	OP_MUL  = Opcode(4)  // mul
	OP_DIV  = Opcode(5)  // div
	OP_OUT  = Opcode(6)  // out
	OP_IN   = Opcode(7)  // in
	OP_SQRT = Opcode(8)  // sqrt
	OP_SIN  = Opcode(9)  // sin
	OP_COS  = Opcode(10) // cos
	OP_DUMP = Opcode(11) // dump
	OP_HLT  = Opcode(12) // hlt
	OP_JMP  = Opcode(13) // jmp
	OP_JA   = Opcode(14) // ja
	OP_JB   = Opcode(15) // jb
	OP_JAE  = Opcode(16) // jae
	OP_JBE  = Opcode(17) // jbe
	OP_JE   = Opcode(18) // je
	OP_JNE  = Opcode(19) // jne
	OP_POP  = Opcode(20) // pop
	OP_CALL = Opcode(21) // call
	OP_RET  = Opcode(22) // ret
	OP_DRAW = Opcode(23) // draw
)

// OPCODE_COUNT bounds the supported opcode values.
const OPCODE_COUNT = 24

// Valid returns true if the opcode can be executed.
func (op Opcode) Valid() bool {
	return op > OP_NONE && int(op) < OPCODE_COUNT
}

// Addressed returns true for opcodes that take a push/pop operand.
func (op Opcode) Addressed() bool {
	return op == OP_PUSH || op == OP_POP
}

// Branch returns true for opcodes that take a single code address operand.
func (op Opcode) Branch() bool {
	return (op >= OP_JMP && op <= OP_JNE) || op == OP_CALL
}

// Shape is the operand shape flag set of an instruction.
type Shape uint8

const (
	SHAPE_IMMEDIATE = Shape(1 << 0) // A constant word follows.
	SHAPE_REGISTER  = Shape(1 << 1) // A register index word follows.
	SHAPE_MEMORY    = Shape(1 << 2) // The operand is a RAM cell.

	SHAPE_NONE = Shape(0)
	SHAPE_MASK = SHAPE_IMMEDIATE | SHAPE_REGISTER | SHAPE_MEMORY
)

// Instruction word layout.
const (
	WORD_OPCODE_MASK  = Word(0xffff_ffff)
	WORD_SHAPE_SHIFT  = 32
	WORD_RESERVED     = ^(WORD_OPCODE_MASK | (Word(SHAPE_MASK) << WORD_SHAPE_SHIFT))
	WORD_OPERANDS_MAX = 2
)

// String returns the shape as a '|' joined list of flag names.
func (shape Shape) String() string {
	if shape == SHAPE_NONE {
		return "none"
	}

	var names []string
	if shape&SHAPE_MEMORY != 0 {
		names = append(names, "mem")
	}
	if shape&SHAPE_IMMEDIATE != 0 {
		names = append(names, "imm")
	}
	if shape&SHAPE_REGISTER != 0 {
		names = append(names, "reg")
	}
	if shape&^SHAPE_MASK != 0 {
		names = append(names, "?")
	}

	return strings.Join(names, "|")
}

// Words returns the number of operand words that follow an instruction word
// of this shape.
func (shape Shape) Words() (count int) {
	if shape&SHAPE_IMMEDIATE != 0 {
		count++
	}
	if shape&SHAPE_REGISTER != 0 {
		count++
	}
	return
}

// Accepts returns true if the opcode can be encoded with the shape.
func (op Opcode) Accepts(shape Shape) bool {
	if shape&^SHAPE_MASK != 0 {
		return false
	}

	switch op {
	case OP_PUSH:
		return shape&(SHAPE_IMMEDIATE|SHAPE_REGISTER) != 0
	case OP_POP:
		switch shape {
		case SHAPE_REGISTER,
			SHAPE_MEMORY | SHAPE_IMMEDIATE,
			SHAPE_MEMORY | SHAPE_REGISTER,
			SHAPE_MEMORY | SHAPE_IMMEDIATE | SHAPE_REGISTER:
			return true
		}
		return false
	default:
		return shape == SHAPE_NONE
	}
}

// MakeWord packs an opcode and shape into an instruction word.
func MakeWord(op Opcode, shape Shape) Word {
	return (Word(op) & WORD_OPCODE_MASK) | (Word(shape&SHAPE_MASK) << WORD_SHAPE_SHIFT)
}

// Opcode extracts the opcode of an instruction word.
func (word Word) Opcode() Opcode {
	return Opcode(word & WORD_OPCODE_MASK)
}

// Shape extracts the operand shape of an instruction word.
func (word Word) Shape() Shape {
	return Shape((word >> WORD_SHAPE_SHIFT) & Word(SHAPE_MASK))
}

// Reserved returns the bits of the word that must be zero.
func (word Word) Reserved() Word {
	return word & WORD_RESERVED
}
