package emulator

import (
	"bytes"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artemneskorodov/spu/cpu"
	"github.com/artemneskorodov/spu/io"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.Equal(&emu.Console, emu.Cpu.Console)
	assert.Equal(&emu.Screen, emu.Cpu.Screen)
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := maps.Collect(emu.Defines())

	assert.Equal("16384", defines["RAM_SIZE"])
	assert.Equal("4", defines["REGISTERS"])
	assert.Equal("96", defines["SCREEN_WIDTH"])
	assert.Equal("36", defines["SCREEN_HEIGHT"])
}

// doLoad assembles a program with the emulator defines, and loads it.
func doLoad(t *testing.T, emu *Emulator, program ...string) {
	asm := &cpu.Assembler{}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	emu.Load(prog)
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	emu := NewEmulator()
	emu.Console.Output = output

	doLoad(t, emu, "push 2", "push 3", "add", "out", "hlt")

	assert.NoError(emu.Run(TICK_LIMIT_NONE))
	assert.Equal("5\n", output.String())
	assert.True(emu.Halted)

	// Ticking a halted machine stays done.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	// Reset runs the program again.
	emu.Reset()
	assert.False(emu.Halted)
	assert.NoError(emu.Run(TICK_LIMIT_NONE))
	assert.Equal("5\n5\n", output.String())
}

func TestEmulator_Tick(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	emu.Console.Input = strings.NewReader("21\n")
	emu.Console.Output = &bytes.Buffer{}

	program := []string{"in", "push 2", "mul", "out", "hlt"}
	doLoad(t, emu, program...)

	for n := range len(program) {
		assert.Equal(n+1, emu.LineNo())
		done, err := emu.Tick()
		assert.NoError(err)
		assert.Equal(n == len(program)-1, done)
	}
	assert.Equal("42\n", emu.Console.Output.(*bytes.Buffer).String())
}

func TestEmulator_Limit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, "loop:", "push 0", "pop ax", "jmp loop")

	err := emu.Run(1000)
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(1000, emu.Ticks)

	_, ok := Fault(err)
	assert.False(ok)
}

func TestEmulator_Fault(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, "push 1", "; nothing to add", "add", "hlt")

	err := emu.Run(TICK_LIMIT_NONE)
	assert.ErrorIs(err, cpu.ErrStackEmpty)

	rt, ok := Fault(err)
	require.True(t, ok)
	assert.Equal(2, rt.Ip)
	assert.Equal(3, rt.LineNo)
	assert.Equal(cpu.MakeWord(cpu.OP_ADD, cpu.SHAPE_NONE), rt.Word)
	assert.Contains(rt.Error(), "line 3")

	// Without a listing, no line is known.
	emu.Load(&cpu.Program{Code: emu.Program.Code})
	err = emu.Run(TICK_LIMIT_NONE)
	rt, ok = Fault(err)
	require.True(t, ok)
	assert.Equal(0, rt.LineNo)
	assert.NotContains(rt.Error(), "line")
}

func TestEmulator_FallOff(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	doLoad(t, emu, "push 1")

	err := emu.Run(TICK_LIMIT_NONE)
	assert.ErrorIs(err, cpu.ErrIpEmpty)

	rt, ok := Fault(err)
	require.True(t, ok)
	assert.Equal(2, rt.Ip)
	assert.Equal(cpu.Word(0), rt.Word)
}

func TestEmulator_Draw(t *testing.T) {
	assert := assert.New(t)

	output := &bytes.Buffer{}
	emu := NewEmulator()
	emu.Screen.Output = output
	emu.Screen.NoClear = true

	doLoad(t, emu,
		"push 1",
		"pop [$(SCREEN_WIDTH + 2)]",
		"draw",
		"hlt")

	assert.NoError(emu.Run(TICK_LIMIT_NONE))
	assert.Equal(1, emu.Screen.Frames)

	lines := strings.Split(output.String(), "\n")
	assert.Equal(io.SCREEN_HEIGHT+1, len(lines))
	assert.Equal("..*."+strings.Repeat(".", io.SCREEN_WIDTH-4), lines[1])
}
