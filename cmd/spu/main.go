// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/artemneskorodov/spu/container"
	"github.com/artemneskorodov/spu/cpu"
	"github.com/artemneskorodov/spu/emulator"
)

func main() {
	doMain(os.Stdin, os.Stdout, os.Stderr, os.Exit)
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "spu runs an assembled SPU stack machine binary.")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  spu [flags] <binary>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Flags:")
	flag.PrintDefaults()
}

func doMain(stdIn io.Reader, stdOut io.Writer, stdErr io.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)
	log.SetOutput(stdErr)
	log.SetFlags(0)

	var verbose bool
	var disassemble bool
	var delay time.Duration
	var limit int

	flag.BoolVar(&verbose, "v", false, "Verbose mode, traces every instruction")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the binary instead of running it")
	flag.DurationVar(&delay, "delay", 0, "Pause after each drawn frame")
	flag.IntVar(&limit, "limit", emulator.TICK_LIMIT_NONE, "Stop after this many instructions, 0 for no limit")

	err := flag.CommandLine.Parse(os.Args[1:])
	if err != nil {
		exit(2)
	}

	if flag.NArg() != 1 {
		fmt.Fprintf(stdErr, "usage error: expected one binary file, got %d arguments\n", flag.NArg())
		printUsage(stdErr)
		exit(2)
	}

	binary := flag.Arg(0)
	code, err := container.Load(binary)
	if err != nil {
		fmt.Fprintf(stdErr, "%v: %v\n", binary, err)
		exit(1)
	}

	prog := &cpu.Program{Code: code}

	if disassemble {
		err = prog.Disassemble(stdOut)
		if err != nil {
			fmt.Fprintf(stdErr, "%v\n", err)
			exit(1)
		}
		exit(0)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Console.Input = stdIn
	emu.Console.Output = stdOut
	emu.Screen.Output = stdErr
	emu.Screen.Delay = delay
	emu.Load(prog)

	err = emu.Run(limit)
	if err != nil {
		fmt.Fprintf(stdErr, "%v: %v\n", binary, err)
		if _, ok := emulator.Fault(err); ok {
			_ = emu.Cpu.Dump(stdErr)
		}
		exit(1)
	}

	if verbose {
		log.Printf("%v: halted after %d instructions", binary, emu.Ticks)
	}

	exit(0)
}
