package cpu

import (
	"fmt"
	"slices"
)

const (
	REGISTERS = 4     // Usable general registers.
	RAM_SIZE  = 16384 // RAM cells.
)

// Register names, in index order starting at 1.
// Only the first REGISTERS names are usable.
var registerNames = []string{"ax", "bx", "cx", "sp", "bp", "di", "si", "dx"}

// RegisterIndex returns the 1-based index of a register name.
func RegisterIndex(name string) (index int, err error) {
	n := slices.Index(registerNames, name)
	if n < 0 || n >= REGISTERS {
		err = ErrUnknownRegister
		return
	}

	index = n + 1
	return
}

// RegisterName returns the name of a 1-based register index.
func RegisterName(index int) string {
	if index < 1 || index > len(registerNames) {
		return fmt.Sprintf("r%d", index)
	}
	return registerNames[index-1]
}
