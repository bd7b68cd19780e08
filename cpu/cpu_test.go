package cpu

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artemneskorodov/spu/io"
)

const testTickLimit = 10000

// runProgram assembles and runs a program until it halts, faults, or hits
// the tick limit.
func runProgram(t *testing.T, input string, program ...string) (cpu *Cpu, output string, err error) {
	prog := assemble(t, program...)

	out := &bytes.Buffer{}
	cpu = NewCpu()
	cpu.Console = &io.Console{Input: strings.NewReader(input), Output: out}
	cpu.Load(prog.Code)

	for n := 0; n < testTickLimit && !cpu.Halted; n++ {
		err = cpu.Tick()
		if err != nil {
			break
		}
	}

	output = out.String()
	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.Equal(RAM_SIZE, len(cpu.Ram))
	assert.Equal(0, cpu.Ip)
	assert.True(cpu.Stack.Empty())
	assert.Contains(cpu.String(), "ax: 0")
}

func TestCpu_Scenario(t *testing.T) {
	assert := assert.New(t)

	cpu, output, err := runProgram(t, "", "push 2", "push 3", "add", "out", "hlt")
	assert.NoError(err)
	assert.True(cpu.Halted)
	assert.Equal("5\n", output)
	assert.Equal(5, cpu.Ticks)
	assert.True(cpu.Stack.Empty())

	// Ticking a halted cpu does nothing.
	assert.NoError(cpu.Tick())
	assert.Equal(5, cpu.Ticks)
}

func TestCpu_Arithmetic(t *testing.T) {
	table := []struct {
		op       string
		a, b     float64
		expected float64
	}{
		{"add", 10, 3, 13},
		{"sub", 10, 3, 7},
		{"sub", 3, 10, -7},
		{"mul", 10, 3, 30},
		{"div", 12, 3, 4},
		{"div", 3, 12, 0.25},
	}

	for _, entry := range table {
		t.Run(entry.op, func(t *testing.T) {
			assert := assert.New(t)

			cpu, _, err := runProgram(t, "",
				"push "+Constant(entry.a).String(),
				"push "+Constant(entry.b).String(),
				entry.op,
				"hlt")
			assert.NoError(err)
			assert.Equal([]float64{entry.expected}, cpu.Stack.Data)
		})
	}
}

func TestCpu_Transcendental(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runProgram(t, "", "push 16", "sqrt", "push 0", "sin", "push 0", "cos", "hlt")
	assert.NoError(err)
	assert.Equal([]float64{4, 0, 1}, cpu.Stack.Data)

	cpu, _, err = runProgram(t, "", "push -1", "sqrt", "hlt")
	assert.NoError(err)
	assert.True(math.IsNaN(cpu.Stack.Data[0]))
}

func TestCpu_Addressing(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runProgram(t, "",
		"push 42",
		"pop [5]",
		"push 5",
		"pop ax",
		"push [5]",
		"push [ax]",
		"push [ax+0]",
		"push [4+ax]",
		"push ax+1.5",
		"push ax",
		"hlt")
	assert.NoError(err)
	assert.Equal(42.0, cpu.Ram[5])
	assert.Equal(5.0, cpu.Register[0])
	assert.Equal([]float64{42, 42, 42, 0, 6.5, 5}, cpu.Stack.Data)
	assert.Equal(5.0, cpu.PushRegister)
}

func TestCpu_Pop(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runProgram(t, "",
		"push 1", "push 2", "push 3", "push 4", "push 9",
		"pop bx",
		"push 100",
		"pop cx",
		"pop [cx]",
		"pop [cx+1]",
		"pop sp",
		"pop [$(RAM_SIZE - 1)]",
		"hlt")
	assert.NoError(err)
	assert.Equal(9.0, cpu.Register[1])
	assert.Equal(100.0, cpu.Register[2])
	assert.Equal(4.0, cpu.Ram[100])
	assert.Equal(3.0, cpu.Ram[101])
	assert.Equal(2.0, cpu.Register[3])
	assert.Equal(1.0, cpu.Ram[RAM_SIZE-1])
	assert.True(cpu.Stack.Empty())
}

func TestCpu_Jumps(t *testing.T) {
	table := []struct {
		op   string
		a, b float64 // a is pushed last, so popped first
		jump bool
	}{
		{"ja", 1, 2, true},
		{"ja", 2, 1, false},
		{"ja", 1, 1, false},
		{"jb", 2, 1, true},
		{"jb", 1, 2, false},
		{"jae", 1, 2, true},
		{"jae", 1, 1 + EPSILON/2, true},
		{"jae", 2, 1, false},
		{"jbe", 2, 1, true},
		{"jbe", 1, 1 - EPSILON/2, true},
		{"jbe", 1, 2, false},
		{"je", 1, 1 + EPSILON/2, true},
		{"je", 1, 1 + EPSILON*2, false},
		{"jne", 1, 1 + EPSILON*2, true},
		{"jne", 1, 1 + EPSILON/2, false},
	}

	for _, entry := range table {
		t.Run(entry.op, func(t *testing.T) {
			assert := assert.New(t)

			_, output, err := runProgram(t, "",
				"push "+Constant(entry.b).String(),
				"push "+Constant(entry.a).String(),
				entry.op+" taken",
				"push 0",
				"out",
				"hlt",
				"taken:",
				"push 1",
				"out",
				"hlt")
			assert.NoError(err)
			if entry.jump {
				assert.Equal("1\n", output)
			} else {
				assert.Equal("0\n", output)
			}
		})
	}
}

func TestCpu_CallRet(t *testing.T) {
	assert := assert.New(t)

	cpu, output, err := runProgram(t, "",
		"push 2",
		"call square",
		"out",
		"hlt",
		"square:",
		"pop ax ; return address",
		"pop bx",
		"push bx",
		"push bx",
		"mul",
		"push ax",
		"ret")
	assert.NoError(err)
	assert.Equal("4\n", output)
	assert.Equal(4.0, cpu.Register[0])
	assert.True(cpu.Halted)
}

func TestCpu_SharedStack(t *testing.T) {
	assert := assert.New(t)

	// The return address is an ordinary stack value.
	cpu, output, err := runProgram(t, "", "call next", "next:", "out", "hlt")
	assert.NoError(err)
	assert.Equal("2\n", output)
	assert.True(cpu.Halted)
}

func TestCpu_Loop(t *testing.T) {
	assert := assert.New(t)

	cpu, _, err := runProgram(t, "", "loop:", "jmp loop")
	assert.NoError(err)
	assert.False(cpu.Halted)
	assert.Equal(testTickLimit, cpu.Ticks)
	assert.Equal(0, cpu.Ip)
}

func TestCpu_Loop_Overflow(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load(assemble(t, "loop:", "push 1", "jmp loop").Code)

	var err error
	for n := 0; n < 2*STACK_LIMIT+1 && err == nil; n++ {
		err = cpu.Tick()
	}
	assert.ErrorIs(err, ErrStack)
	assert.ErrorIs(err, ErrStackFull)
}

func TestCpu_Input(t *testing.T) {
	assert := assert.New(t)

	_, output, err := runProgram(t, "4 0.5\n", "in", "in", "mul", "out", "hlt")
	assert.NoError(err)
	assert.Equal("2\n", output)

	_, _, err = runProgram(t, "", "in", "hlt")
	assert.ErrorIs(err, ErrInput)
}

func TestCpu_Faults(t *testing.T) {
	table := []struct {
		name    string
		program []string
		err     error
	}{
		{"empty stack", []string{"add"}, ErrStackEmpty},
		{"one value", []string{"push 1", "sub"}, ErrStackEmpty},
		{"pop empty", []string{"pop ax"}, ErrStack},
		{"ret empty", []string{"ret"}, ErrStackEmpty},
		{"out empty", []string{"out"}, ErrStackEmpty},
		{"jump compare empty", []string{"push 1", "je 0"}, ErrStackEmpty},
		{"ram range", []string{"push [$(RAM_SIZE)]"}, ErrMemoryRange},
		{"register range", []string{"push -1", "pop ax", "push [ax]"}, ErrMemoryRange},
		{"register sum range", []string{"push $(RAM_SIZE - 1)", "pop ax", "push [ax+1]"}, ErrMemoryRange},
		{"ret range", []string{"push 99", "ret"}, ErrIpRange},
		{"ret fraction", []string{"push 0.5", "ret"}, ErrIpRange},
		{"jump range", []string{"jmp 99"}, ErrIpRange},
		{"fall off", []string{"push 1"}, ErrIpEmpty},
		{"draw", []string{"draw"}, ErrNoDevice},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			assert := assert.New(t)

			_, _, err := runProgram(t, "", entry.program...)
			assert.ErrorIs(err, entry.err)
		})
	}
}

func TestCpu_Unsupported(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	cpu.Load([]Word{MakeWord(Opcode(OPCODE_COUNT+3), SHAPE_NONE)})

	err := cpu.Tick()
	assert.ErrorIs(err, ErrOpcodeUnsupported)
	assert.ErrorIs(err, ErrOpcode(0))
	assert.Equal(0, cpu.Ip)
}

type testScreen struct {
	frames [][]float64
}

func (ts *testScreen) Draw(ram []float64) error {
	ts.frames = append(ts.frames, slices.Clone(ram[:4]))
	return nil
}

func TestCpu_Draw(t *testing.T) {
	assert := assert.New(t)

	screen := &testScreen{}
	cpu := NewCpu()
	cpu.Screen = screen
	cpu.Load(assemble(t, "push 1", "pop [2]", "draw", "hlt").Code)

	for !cpu.Halted {
		assert.NoError(cpu.Tick())
	}
	assert.Equal([][]float64{{0, 0, 1, 0}}, screen.frames)
}
