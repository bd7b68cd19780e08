package cpu

import (
	"errors"

	"github.com/artemneskorodov/spu/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrIpEmpty       = errors.New(f("ip empty"))
	ErrIpRange       = errors.New(f("ip out of code"))
	ErrStack         = errors.New(f("stack error"))
	ErrStackEmpty    = errors.New(f("stack empty"))
	ErrStackFull     = errors.New(f("stack full"))
	ErrMemoryRange   = errors.New(f("memory address out of range"))
	ErrRegisterRange = errors.New(f("register index out of range"))
	ErrInput         = errors.New(f("input read failed"))
	ErrOutput        = errors.New(f("output write failed"))
	ErrNoDevice      = errors.New(f("no device attached"))

	// Instruction decode errors
	ErrOpcodeUnsupported = errors.New(f("unsupported opcode"))
	ErrOperandShape      = errors.New(f("invalid operand shape"))
	ErrOperandMissing    = errors.New(f("operand words missing"))

	// Assembler errors
	ErrUnknownCommand      = errors.New(f("unknown command"))
	ErrUnknownRegister     = errors.New(f("unknown register"))
	ErrUnexpectedParameter = errors.New(f("unexpected parameter"))
	ErrUnexpectedSymbol    = errors.New(f("unexpected symbol"))
	ErrCommandTooLong      = errors.New(f("command too long"))
	ErrLabelDuplicate      = errors.New(f("label duplicated"))
	ErrLabelInvalid        = errors.New(f("label invalid"))
)

// ErrLabelUndefined names a label referenced but never defined.
type ErrLabelUndefined string

func (el ErrLabelUndefined) Error() string {
	return f("label %v undefined", string(el))
}

// ErrToken names the source token an assembler error refers to.
type ErrToken string

func (et ErrToken) Error() string {
	return f("'%v'", string(et))
}

// ErrOpcode names the instruction word an execution error occurred on.
type ErrOpcode Word

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%016x %v", uint64(eo), Word(eo).Opcode().String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax locates an assembler error in the source.
type ErrSyntax struct {
	File   string
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	if len(err.File) == 0 {
		return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
	}
	return f("%v:%d '%v' %v", err.File, err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseNumber names a token that is not a number of the required kind.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

// ErrParseExpression names a $(...) expression that does not evaluate to a number.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
