package emulator

import (
	"errors"

	"github.com/artemneskorodov/spu/cpu"
	"github.com/artemneskorodov/spu/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Ip     int      // Address of the failing instruction.
	Word   cpu.Word // Instruction word as encoded.
	LineNo int      // Source line, if the listing is known.
	Err    error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo > 0 {
		return f("ip %d opcode 0x%016x (%v) line %d: %v", err.Ip, uint64(err.Word), err.Word.Opcode(), err.LineNo, err.Err)
	}
	return f("ip %d opcode 0x%016x (%v): %v", err.Ip, uint64(err.Word), err.Word.Opcode(), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
