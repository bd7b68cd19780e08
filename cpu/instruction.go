package cpu

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OperandKind is the role of an operand word.
type OperandKind int

const (
	OPERAND_CONSTANT = OperandKind(1) // A float64 value.
	OPERAND_ADDRESS  = OperandKind(2) // A RAM offset or code address.
	OPERAND_REGISTER = OperandKind(3) // A 1-based register index.
)

// Operand is a single decoded operand word.
type Operand struct {
	Kind     OperandKind
	Constant float64
	Address  uint64
	Register int
}

// Constant returns a value operand.
func Constant(value float64) Operand {
	return Operand{Kind: OPERAND_CONSTANT, Constant: value}
}

// Address returns an address operand.
func Address(addr uint64) Operand {
	return Operand{Kind: OPERAND_ADDRESS, Address: addr}
}

// Register returns a register operand.
func Register(index int) Operand {
	return Operand{Kind: OPERAND_REGISTER, Register: index}
}

// Word returns the encoded operand word.
func (op Operand) Word() Word {
	switch op.Kind {
	case OPERAND_CONSTANT:
		return Word(math.Float64bits(op.Constant))
	case OPERAND_ADDRESS:
		return Word(op.Address)
	case OPERAND_REGISTER:
		return Word(uint64(op.Register))
	}
	return 0
}

// String returns the operand in assembler syntax.
func (op Operand) String() string {
	switch op.Kind {
	case OPERAND_CONSTANT:
		return strconv.FormatFloat(op.Constant, 'g', -1, 64)
	case OPERAND_ADDRESS:
		return strconv.FormatUint(op.Address, 10)
	case OPERAND_REGISTER:
		return RegisterName(op.Register)
	}
	return "?"
}

// Instruction is a decoded instruction word and its operands.
type Instruction struct {
	Opcode   Opcode
	Shape    Shape
	Operands []Operand // Constant or address before register.
}

// operandKinds lists the operand kinds that follow an opcode of a shape.
func operandKinds(op Opcode, shape Shape) (kinds []OperandKind) {
	switch {
	case op.Branch():
		kinds = []OperandKind{OPERAND_ADDRESS}
	case op.Addressed():
		if shape&SHAPE_IMMEDIATE != 0 {
			if shape&SHAPE_MEMORY != 0 {
				kinds = append(kinds, OPERAND_ADDRESS)
			} else {
				kinds = append(kinds, OPERAND_CONSTANT)
			}
		}
		if shape&SHAPE_REGISTER != 0 {
			kinds = append(kinds, OPERAND_REGISTER)
		}
	}

	return
}

// Len returns the number of words the instruction encodes to.
func (inst *Instruction) Len() int {
	return 1 + len(operandKinds(inst.Opcode, inst.Shape))
}

// Validate checks that the opcode, shape and operands agree.
func (inst *Instruction) Validate() (err error) {
	if !inst.Opcode.Valid() {
		return errors.Join(ErrOpcodeUnsupported, ErrOpcode(MakeWord(inst.Opcode, inst.Shape)))
	}

	if !inst.Opcode.Accepts(inst.Shape) {
		return errors.Join(ErrOperandShape, ErrOpcode(MakeWord(inst.Opcode, inst.Shape)))
	}

	kinds := operandKinds(inst.Opcode, inst.Shape)
	if len(kinds) != len(inst.Operands) {
		return ErrOperandShape
	}
	for n, kind := range kinds {
		if inst.Operands[n].Kind != kind {
			return ErrOperandShape
		}
	}

	return
}

// Encode appends the encoded instruction to code.
func (inst *Instruction) Encode(code []Word) (out []Word, err error) {
	err = inst.Validate()
	if err != nil {
		return code, err
	}

	out = append(code, MakeWord(inst.Opcode, inst.Shape))
	for _, operand := range inst.Operands {
		out = append(out, operand.Word())
	}

	return
}

// Decode decodes the instruction at offset at of code, returning the
// instruction and the number of words it occupies.
func Decode(code []Word, at int) (inst Instruction, size int, err error) {
	if at < 0 || at >= len(code) {
		err = ErrIpRange
		return
	}

	word := code[at]
	if !word.Opcode().Valid() {
		err = errors.Join(ErrOpcodeUnsupported, ErrOpcode(word))
		return
	}

	inst.Opcode = word.Opcode()
	inst.Shape = word.Shape()
	if word.Reserved() != 0 || !inst.Opcode.Accepts(inst.Shape) {
		err = errors.Join(ErrOperandShape, ErrOpcode(word))
		return
	}

	kinds := operandKinds(inst.Opcode, inst.Shape)
	if at+1+len(kinds) > len(code) {
		err = errors.Join(ErrOperandMissing, ErrOpcode(word))
		return
	}

	for n, kind := range kinds {
		data := code[at+1+n]
		var operand Operand
		switch kind {
		case OPERAND_CONSTANT:
			operand = Constant(math.Float64frombits(uint64(data)))
		case OPERAND_ADDRESS:
			operand = Address(uint64(data))
		case OPERAND_REGISTER:
			if data == 0 || data > REGISTERS {
				err = errors.Join(ErrRegisterRange, ErrOpcode(word))
				return
			}
			operand = Register(int(data))
		}
		inst.Operands = append(inst.Operands, operand)
	}

	size = 1 + len(kinds)

	return
}

// String returns the instruction in assembler syntax.
func (inst Instruction) String() string {
	if len(inst.Operands) == 0 {
		return inst.Opcode.String()
	}

	var parts []string
	for n := len(inst.Operands) - 1; n >= 0; n-- {
		parts = append(parts, inst.Operands[n].String())
	}

	arg := strings.Join(parts, "+")
	if inst.Shape&SHAPE_MEMORY != 0 {
		arg = "[" + arg + "]"
	}

	return fmt.Sprintf("%v %v", inst.Opcode, arg)
}
