// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	COMMAND_MAX = 32 // Maximum length of a command or label token.
)

// Predefined system symbols
var sysDefine = map[string]string{
	"LINENO":    "0",
	"RAM_SIZE":  fmt.Sprintf("%d", RAM_SIZE),
	"REGISTERS": fmt.Sprintf("%d", REGISTERS),
}

// opcodeMap maps mnemonics to opcodes.
var opcodeMap = map[string]Opcode{}

func init() {
	for op := OP_NONE + 1; int(op) < OPCODE_COUNT; op++ {
		opcodeMap[op.String()] = op
	}
}

// addressingModes lists the push/pop operand shapes in matching priority.
var addressingModes = []Shape{
	SHAPE_MEMORY | SHAPE_IMMEDIATE | SHAPE_REGISTER, // [reg+const] or [const+reg]
	SHAPE_MEMORY | SHAPE_IMMEDIATE,                  // [const]
	SHAPE_MEMORY | SHAPE_REGISTER,                   // [reg]
	SHAPE_IMMEDIATE | SHAPE_REGISTER,                // reg+const or const+reg
	SHAPE_IMMEDIATE,                                 // const
	SHAPE_REGISTER,                                  // reg
}

var (
	reParen        = regexp.MustCompile(`\$\([^\$]*\)`)
	reOperandSpace = regexp.MustCompile(`\s*([\+\[\]])\s*`)
)

// Assembler is a single pass assembler for the SPU stack machine.
// Forward label references are patched once the whole source is read.
type Assembler struct {
	Verbose      bool   // If set, verbosely logs the assembler actions.
	StrictLabels bool   // If set, redefining a label is an error.
	File         string // Source name used in diagnostics.

	Label  LabelTable        // Labels and pending fixups.
	Define map[string]string // Symbols visible to $(...) expressions.

	predefine  map[string]string
	code       []Word
	statements []Statement
}

// Predefine defines a symbol for $(...) expressions, or redefines an existing one.
func (asm *Assembler) Predefine(name string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// checkCommand verifies a command or label token.
func checkCommand(token string) (err error) {
	if len(token) > COMMAND_MAX {
		return errors.Join(ErrCommandTooLong, ErrToken(token))
	}

	for _, c := range token {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '.':
		default:
			return errors.Join(ErrUnexpectedSymbol, ErrToken(token))
		}
	}

	return
}

// checkLabel verifies a label name.
func checkLabel(name string) (err error) {
	if len(name) == 0 || (name[0] >= '0' && name[0] <= '9') {
		return errors.Join(ErrLabelInvalid, ErrToken(name))
	}

	return checkCommand(name)
}

// isIdentifier returns true if the word could name a register.
func isIdentifier(word string) bool {
	if len(word) == 0 {
		return false
	}
	c := word[0]
	if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && c != '_' {
		return false
	}
	return checkCommand(word) == nil
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value string, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Define {
		if i64, ierr := strconv.ParseInt(str, 0, 64); ierr == nil {
			pred[key] = starlark.MakeInt64(i64)
		} else if f64, ferr := strconv.ParseFloat(str, 64); ferr == nil {
			pred[key] = starlark.Float(f64)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}

	switch rc := dict["rc"].(type) {
	case starlark.Int:
		i64, ok := rc.Int64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = strconv.FormatInt(i64, 10)
	case starlark.Float:
		value = strconv.FormatFloat(float64(rc), 'g', -1, 64)
	default:
		err = ErrParseExpression(expr)
	}

	return
}

// parseAddress parses an unsigned address constant.
func parseAddress(word string) (addr uint64, err error) {
	addr, err = strconv.ParseUint(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// parseConstant parses a constant in the role given by the shape.
func parseConstant(word string, shape Shape) (operand Operand, err error) {
	if shape&SHAPE_MEMORY != 0 {
		var addr uint64
		addr, err = parseAddress(word)
		operand = Address(addr)
		return
	}

	value, perr := strconv.ParseFloat(word, 64)
	if perr != nil {
		i64, ierr := strconv.ParseInt(word, 0, 64)
		if ierr != nil {
			err = ErrParseNumber(word)
			return
		}
		value = float64(i64)
	}
	operand = Constant(value)
	return
}

// parseRegister parses a register name. A word that cannot be a register at
// all returns ok false; an unknown register name is an error.
func parseRegister(word string) (operand Operand, ok bool, err error) {
	index, rerr := RegisterIndex(word)
	if rerr == nil {
		return Register(index), true, nil
	}
	if isIdentifier(word) {
		err = errors.Join(ErrUnknownRegister, ErrToken(word))
	}
	return
}

// matchShape tries to parse text as an operand of the given shape.
func matchShape(shape Shape, text string) (operands []Operand, ok bool, err error) {
	body := text
	bracketed := strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]")
	if shape&SHAPE_MEMORY != 0 {
		if !bracketed {
			return
		}
		body = body[1 : len(body)-1]
	} else if strings.ContainsAny(body, "[]") {
		return
	}

	switch shape &^ SHAPE_MEMORY {
	case SHAPE_IMMEDIATE | SHAPE_REGISTER:
		var regErr error
		for n := 1; n < len(body)-1; n++ {
			if body[n] != '+' {
				continue
			}
			left, right := body[:n], body[n+1:]
			for _, pair := range [][2]string{{left, right}, {right, left}} {
				reg, isReg, rerr := parseRegister(pair[0])
				cons, cerr := parseConstant(pair[1], shape)
				if cerr != nil {
					continue
				}
				if rerr != nil && regErr == nil {
					regErr = rerr
				}
				if isReg {
					return []Operand{cons, reg}, true, nil
				}
			}
		}
		err = regErr
	case SHAPE_IMMEDIATE:
		cons, cerr := parseConstant(body, shape)
		if cerr == nil {
			return []Operand{cons}, true, nil
		}
	case SHAPE_REGISTER:
		var reg Operand
		reg, ok, err = parseRegister(body)
		if ok {
			operands = []Operand{reg}
		}
	}

	return
}

// parseAddressing resolves a push/pop operand to its shape and operands.
func parseAddressing(arg string) (shape Shape, operands []Operand, err error) {
	text := reOperandSpace.ReplaceAllString(strings.TrimSpace(arg), "$1")
	if len(text) == 0 || strings.ContainsAny(text, " \t") {
		err = errors.Join(ErrUnexpectedParameter, ErrToken(arg))
		return
	}

	for _, mode := range addressingModes {
		var ok bool
		operands, ok, err = matchShape(mode, text)
		if err != nil {
			return
		}
		if ok {
			shape = mode
			return
		}
	}

	err = errors.Join(ErrUnexpectedParameter, ErrToken(arg))
	return
}

// parseBranch resolves a jump or call target to an address operand.
func (asm *Assembler) parseBranch(arg string, patch int) (operand Operand, err error) {
	if len(arg) == 0 || strings.ContainsAny(arg, " \t") {
		err = errors.Join(ErrUnexpectedParameter, ErrToken(arg))
		return
	}

	if addr, perr := parseAddress(arg); perr == nil {
		operand = Address(addr)
		return
	}

	name := strings.TrimSuffix(arg, ":")
	if checkLabel(name) != nil {
		err = errors.Join(ErrUnexpectedParameter, ErrToken(arg))
		return
	}

	operand = Address(asm.Label.Resolve(name, patch))
	return
}

// parseInstruction encodes a single instruction at the current code offset.
func (asm *Assembler) parseInstruction(command string, arg string) (inst Instruction, err error) {
	err = checkCommand(command)
	if err != nil {
		return
	}

	op, ok := opcodeMap[command]
	if !ok {
		err = errors.Join(ErrUnknownCommand, ErrToken(command))
		return
	}

	inst.Opcode = op

	switch {
	case op.Addressed():
		inst.Shape, inst.Operands, err = parseAddressing(arg)
		if err != nil {
			return
		}
		if !op.Accepts(inst.Shape) {
			err = errors.Join(ErrOperandShape, ErrToken(arg))
			return
		}
	case op.Branch():
		var target Operand
		target, err = asm.parseBranch(arg, len(asm.code)+1)
		if err != nil {
			return
		}
		inst.Operands = []Operand{target}
	default:
		if len(arg) > 0 {
			err = errors.Join(ErrUnexpectedParameter, ErrToken(arg))
			return
		}
	}

	return
}

// parseLine parses a single line, defining labels and encoding an instruction.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	// Set line number.
	asm.Define["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil && err == nil {
			err = _err
		}
		return value
	})
	if err != nil {
		return
	}

	text := strings.TrimSpace(line)
	for len(text) > 0 {
		word := strings.Fields(text)[0]
		if !strings.HasSuffix(word, ":") {
			break
		}
		rest := strings.TrimSpace(text[len(word):])

		label := word[:len(word)-1]
		err = checkLabel(label)
		if err != nil {
			return
		}
		err = asm.Label.Declare(label, uint64(len(asm.code)), true)
		if err != nil {
			err = errors.Join(err, ErrToken(label))
			return
		}
		if asm.Verbose {
			log.Printf("%v: label %v = %d", lineno, label, len(asm.code))
		}
		text = rest
	}

	if len(text) == 0 {
		return
	}

	fields := strings.Fields(text)
	command := fields[0]
	arg := strings.TrimSpace(strings.TrimPrefix(text, command))

	inst, err := asm.parseInstruction(command, arg)
	if err != nil {
		return
	}

	ip := len(asm.code)
	asm.code, err = inst.Encode(asm.code)
	if err != nil {
		return
	}

	asm.statements = append(asm.statements, Statement{
		LineNo: lineno,
		Ip:     ip,
		Text:   text,
		Size:   len(asm.code) - ip,
	})

	return
}

// reset prepares the assembler for a new source.
func (asm *Assembler) reset() {
	asm.Label.Reset()
	asm.Label.Verbose = asm.Verbose
	asm.Label.Strict = asm.StrictLabels
	asm.code = asm.code[:0]
	asm.statements = asm.statements[:0]
	asm.Define = maps.Clone(sysDefine)
	for name, value := range asm.predefine {
		asm.Define[name] = value
	}
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{File: asm.File, LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.reset()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment, _, _ := strings.Cut(text, ";")
		line = strings.TrimSpace(text_comment)

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Report an undefined label at its first reference.
	for _, fixup := range asm.Label.Fixups {
		label := asm.Label.Labels[fixup.Label]
		if label.Defined {
			continue
		}
		line = ""
		lineno = 0
		listing := Program{Statements: asm.statements}
		if dbg := listing.Debug(fixup.Patch); dbg.Statement != nil {
			lineno = dbg.LineNo
			line = dbg.Text
		}
		err = ErrLabelUndefined(label.Name)
		return
	}

	// Final linking of jump labels.
	err = asm.Label.ApplyFixups(asm.code)
	if err != nil {
		return
	}

	prog = &Program{
		Code:       slices.Clone(asm.code),
		Statements: slices.Clone(asm.statements),
		Labels:     maps.Collect(asm.Label.Defined()),
	}

	return
}
