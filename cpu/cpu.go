package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"math"
	"slices"
)

// EPSILON is the tolerance of floating point equality.
const EPSILON = 10e-6

var _cpu_defines = map[string]string{
	"RAM_SIZE":    fmt.Sprintf("%d", RAM_SIZE),
	"REGISTERS":   fmt.Sprintf("%d", REGISTERS),
	"STACK_LIMIT": fmt.Sprintf("%d", STACK_LIMIT),
}

// Console is the device behind the in, out and dump opcodes.
type Console interface {
	io.Writer
	// ReadValue reads the next number from the console input.
	ReadValue() (float64, error)
	// WriteValue prints a number on the console output.
	WriteValue(value float64) error
}

// Screen is the device behind the draw opcode.
type Screen interface {
	// Draw renders a frame from RAM.
	Draw(ram []float64) error
}

// Cpu is the simulation context of the stack machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Ip           int                // Current instruction pointer, in code words.
	Register     [REGISTERS]float64 // Register bank, ax is Register[0].
	PushRegister float64            // Scratch cell for computed push operands.
	Ram          []float64          // RAM cells.
	Stack        Stack              // Shared operand and return address stack.
	Code         []Word             // Loaded code.
	Halted       bool               // Set once hlt executes.
	Ticks        int                // Executed instructions counter.
	Console      Console            // Console device.
	Screen       Screen             // Screen device.
}

// NewCpu creates a new CPU with zeroed RAM.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Ram: make([]float64, RAM_SIZE),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// IsEqual compares two values within EPSILON.
func IsEqual(a, b float64) bool {
	return math.Abs(a-b) < EPSILON
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %d\n", "ip", cpu.Ip)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %g\n", RegisterName(n+1), val)
	}
	if val, ok := cpu.Stack.Peek(); ok {
		text += fmt.Sprintf("% 5s: %g (%d)\n", "stack", val, len(cpu.Stack.Data))
	} else {
		text += fmt.Sprintf("% 5s: ----\n", "stack")
	}
	text += fmt.Sprintf("% 5s: %g\n", "push", cpu.PushRegister)

	return
}

// Load replaces the code and resets the CPU.
func (cpu *Cpu) Load(code []Word) {
	cpu.Code = slices.Clone(code)
	cpu.Reset()
}

// Reset the CPU state.
// - Clears the registers, stack and RAM.
// - Zeros the tick counter.
// - Sets the IP to the start of the code.
func (cpu *Cpu) Reset() {
	cpu.Ip = 0
	cpu.Halted = false
	cpu.Ticks = 0
	cpu.PushRegister = 0
	clear(cpu.Register[:])
	if len(cpu.Ram) != RAM_SIZE {
		cpu.Ram = make([]float64, RAM_SIZE)
	} else {
		clear(cpu.Ram)
	}
	cpu.Stack.Reset()
}

// Fetch decodes the instruction at the IP.
func (cpu *Cpu) Fetch() (inst Instruction, size int, err error) {
	if cpu.Ip == len(cpu.Code) {
		err = ErrIpEmpty
		return
	}
	return Decode(cpu.Code, cpu.Ip)
}

// Tick executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		return
	}

	inst, size, err := cpu.Fetch()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%5d: %v", cpu.Ip, inst)
	}

	ip := cpu.Ip
	err = cpu.Execute(&inst, ip+size)
	if err != nil {
		// Leave the IP on the faulting instruction.
		cpu.Ip = ip
		return
	}

	cpu.Ticks++

	return
}

// address resolves a memory operand to a RAM index.
func (cpu *Cpu) address(inst *Instruction) (addr int, err error) {
	var offset uint64
	for _, op := range inst.Operands {
		switch op.Kind {
		case OPERAND_ADDRESS:
			offset = op.Address
		case OPERAND_REGISTER:
			value := cpu.Register[op.Register-1]
			if value < 0 || value >= RAM_SIZE || math.IsNaN(value) {
				err = ErrMemoryRange
				return
			}
			if offset >= RAM_SIZE {
				err = ErrMemoryRange
				return
			}
			offset += uint64(value)
		}
	}

	if offset >= RAM_SIZE {
		err = ErrMemoryRange
		return
	}

	addr = int(offset)
	return
}

// operand resolves the cell a push reads from or a pop writes to.
func (cpu *Cpu) operand(inst *Instruction) (cell *float64, err error) {
	if inst.Shape&SHAPE_MEMORY != 0 {
		var addr int
		addr, err = cpu.address(inst)
		if err != nil {
			return
		}
		cell = &cpu.Ram[addr]
		return
	}

	if inst.Opcode == OP_POP {
		cell = &cpu.Register[inst.Operands[0].Register-1]
		return
	}

	cpu.PushRegister = 0
	for _, op := range inst.Operands {
		switch op.Kind {
		case OPERAND_CONSTANT:
			cpu.PushRegister += op.Constant
		case OPERAND_REGISTER:
			cpu.PushRegister += cpu.Register[op.Register-1]
		}
	}
	cell = &cpu.PushRegister

	return
}

// compare returns true if a conditional jump is taken. a was popped first.
func compare(op Opcode, a, b float64) bool {
	switch op {
	case OP_JA:
		return b > a
	case OP_JB:
		return b < a
	case OP_JAE:
		return b > a || IsEqual(a, b)
	case OP_JBE:
		return b < a || IsEqual(a, b)
	case OP_JE:
		return IsEqual(a, b)
	case OP_JNE:
		return !IsEqual(a, b)
	}
	return false
}

// arithmetic applies a binary operation. a was popped first.
func arithmetic(op Opcode, a, b float64) float64 {
	switch op {
	case OP_ADD:
		return b + a
	case OP_SUB:
		return b - a
	case OP_MUL:
		return b * a
	case OP_DIV:
		return b / a
	}
	return math.NaN()
}

// transcendental applies a unary operation.
func transcendental(op Opcode, a float64) float64 {
	switch op {
	case OP_SQRT:
		return math.Sqrt(a)
	case OP_SIN:
		return math.Sin(a)
	case OP_COS:
		return math.Cos(a)
	}
	return math.NaN()
}

// Execute executes a decoded instruction. next is the IP of the following
// instruction.
func (cpu *Cpu) Execute(inst *Instruction, next int) (err error) {
	cpu.Ip = next

	switch inst.Opcode {
	case OP_PUSH:
		var cell *float64
		cell, err = cpu.operand(inst)
		if err != nil {
			return
		}
		err = cpu.Stack.Push(*cell)
	case OP_POP:
		var cell *float64
		cell, err = cpu.operand(inst)
		if err != nil {
			return
		}
		var value float64
		value, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		*cell = value
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV:
		var a, b float64
		a, b, err = cpu.Stack.Pop2()
		if err != nil {
			return
		}
		err = cpu.Stack.Push(arithmetic(inst.Opcode, a, b))
	case OP_SQRT, OP_SIN, OP_COS:
		var a float64
		a, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		err = cpu.Stack.Push(transcendental(inst.Opcode, a))
	case OP_OUT:
		var a float64
		a, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		if cpu.Console == nil {
			return ErrNoDevice
		}
		err = cpu.Console.WriteValue(a)
		if err != nil {
			err = errors.Join(ErrOutput, err)
		}
	case OP_IN:
		if cpu.Console == nil {
			return ErrNoDevice
		}
		var a float64
		a, err = cpu.Console.ReadValue()
		if err != nil {
			return errors.Join(ErrInput, err)
		}
		err = cpu.Stack.Push(a)
	case OP_DUMP:
		if cpu.Console == nil {
			return ErrNoDevice
		}
		err = cpu.Dump(cpu.Console)
		if err != nil {
			err = errors.Join(ErrOutput, err)
		}
	case OP_HLT:
		cpu.Halted = true
	case OP_JMP:
		cpu.Ip = int(inst.Operands[0].Address)
	case OP_JA, OP_JB, OP_JAE, OP_JBE, OP_JE, OP_JNE:
		var a, b float64
		a, b, err = cpu.Stack.Pop2()
		if err != nil {
			return
		}
		if compare(inst.Opcode, a, b) {
			cpu.Ip = int(inst.Operands[0].Address)
		}
	case OP_CALL:
		err = cpu.Stack.Push(float64(next))
		if err != nil {
			return
		}
		cpu.Ip = int(inst.Operands[0].Address)
	case OP_RET:
		var ret float64
		ret, err = cpu.Stack.Pop()
		if err != nil {
			return
		}
		if ret < 0 || ret > float64(len(cpu.Code)) || ret != math.Trunc(ret) {
			return ErrIpRange
		}
		cpu.Ip = int(ret)
	case OP_DRAW:
		if cpu.Screen == nil {
			return ErrNoDevice
		}
		err = cpu.Screen.Draw(cpu.Ram)
		if err != nil {
			err = errors.Join(ErrOutput, err)
		}
	default:
		err = ErrOpcodeUnsupported
	}

	return
}
