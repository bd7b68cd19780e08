// Package io provides the devices attached to the stack machine: a console
// for the in, out and dump opcodes, and a text screen for the draw opcode.
package io

import (
	"iter"
)

// Device is implemented by every device.
type Device interface {
	// Defines returns the assembler symbols the device provides.
	Defines() iter.Seq2[string, string]
}
