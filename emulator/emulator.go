// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"iter"

	"github.com/artemneskorodov/spu/cpu"
	"github.com/artemneskorodov/spu/internal"
	"github.com/artemneskorodov/spu/io"
)

const (
	TICK_LIMIT_NONE = 0 // Run without an instruction limit.
)

// Emulator state. CPU + devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Console io.Console // Console device.
	Screen  io.Screen  // Screen device.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Console = &emu.Console
	emu.Cpu.Screen = &emu.Screen

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(
		emu.Cpu.Defines(),
		emu.Console.Defines(),
		emu.Screen.Defines(),
	)
}

// Load installs a program and resets the machine.
func (emu *Emulator) Load(prog *cpu.Program) {
	emu.Program = prog
	emu.Reset()
}

// Reset the machine to the start of the program.
func (emu *Emulator) Reset() {
	emu.Cpu.Load(emu.Program.Code)
	emu.Cpu.Verbose = emu.Verbose
}

// LineNo returns the source line of the executing instruction, if known.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Ip)
}

// Tick executes a single instruction. done is set once the program halts.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Ip
	defer func() {
		if err != nil {
			rt := &ErrRuntime{Ip: ip, LineNo: emu.Program.LineNo(ip), Err: err}
			if ip >= 0 && ip < len(emu.Cpu.Code) {
				rt.Word = emu.Cpu.Code[ip]
			}
			err = rt
		}
	}()

	if emu.Cpu.Halted {
		done = true
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks until the program halts, fails, or limit instructions have
// executed. A limit of TICK_LIMIT_NONE runs without limit.
func (emu *Emulator) Run(limit int) (err error) {
	for ticks := 0; limit == TICK_LIMIT_NONE || ticks < limit; ticks++ {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	return ErrTickLimit
}

// Fault reports whether err is a runtime fault, returning its location.
func Fault(err error) (rt *ErrRuntime, ok bool) {
	ok = errors.As(err, &rt)
	return
}
