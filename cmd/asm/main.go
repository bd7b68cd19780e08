// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/artemneskorodov/spu/container"
	"github.com/artemneskorodov/spu/cpu"
	"github.com/artemneskorodov/spu/emulator"
)

const (
	DEFAULT_OUTPUT = "a.bin" // Output file when -o is not given.
)

func main() {
	doMain(os.Stdout, os.Stderr, os.Exit)
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "asm assembles SPU stack machine source into a binary.")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  asm [flags] <source> [-o <output>]")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Flags:")
	flag.PrintDefaults()
}

// parseArgs splits the positional arguments into the source and output
// file names.
func parseArgs(args []string) (source string, output string, ok bool) {
	switch len(args) {
	case 1:
		return args[0], DEFAULT_OUTPUT, true
	case 3:
		if args[1] == "-o" {
			return args[0], args[2], true
		}
	}
	return
}

func doMain(stdOut io.Writer, stdErr io.Writer, exit func(code int)) {
	flag.CommandLine.SetOutput(stdErr)
	log.SetOutput(stdErr)
	log.SetFlags(0)

	var verbose bool
	var strict bool
	var listing bool

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&strict, "strict", false, "Fail on label redefinition")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing to stdout")

	err := flag.CommandLine.Parse(os.Args[1:])
	if err != nil {
		exit(2)
	}

	source, output, ok := parseArgs(flag.Args())
	if !ok {
		fmt.Fprintf(stdErr, "flags error: unexpected arguments %q\n", flag.Args())
		printUsage(stdErr)
		exit(2)
	}

	inf, err := os.Open(source)
	if err != nil {
		fmt.Fprintf(stdErr, "%v\n", err)
		exit(1)
	}
	defer inf.Close()

	asm := &cpu.Assembler{
		Verbose:      verbose,
		StrictLabels: strict,
		File:         source,
	}
	for name, value := range emulator.NewEmulator().Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(inf)
	if err != nil {
		fmt.Fprintf(stdErr, "%v\n", err)
		exit(1)
	}

	if listing {
		err = prog.Disassemble(stdOut)
		if err != nil {
			fmt.Fprintf(stdErr, "%v\n", err)
			exit(1)
		}
	}

	err = container.Save(output, prog.Code)
	if err != nil {
		fmt.Fprintf(stdErr, "%v: %v\n", output, err)
		exit(1)
	}

	if verbose {
		log.Printf("%v: %d words written to %v", source, len(prog.Code), output)
	}

	exit(0)
}
