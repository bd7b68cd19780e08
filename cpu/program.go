package cpu

import (
	"fmt"
	"io"
	"iter"

	"github.com/artemneskorodov/spu/internal"
)

// Statement is the listing entry of one assembled source line.
type Statement struct {
	LineNo int    // Source line number.
	Ip     int    // Code offset of the first word.
	Text   string // Source text, without comment.
	Size   int    // Number of code words.
}

// Program is an assembled code image and its listing.
type Program struct {
	Code       []Word
	Statements []Statement
	Labels     map[string]uint64
}

// Debug locates a code offset within the program listing.
type Debug struct {
	*Statement
	Index int // Word index within the statement.
}

// Debug returns the listing entry containing ip, if any.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, st := range prog.Statements {
		if ip >= st.Ip && ip < st.Ip+st.Size {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     ip - st.Ip,
			}
			break
		}
	}

	return
}

// LineNo returns the source line of the code at ip, or 0 if unknown.
func (prog *Program) LineNo(ip int) int {
	dbg := prog.Debug(ip)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Instructions iterates over the decoded instructions of the program,
// stopping at the first word that does not decode.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(ip int, inst Instruction) bool) {
		for ip := 0; ip < len(prog.Code); {
			inst, size, err := Decode(prog.Code, ip)
			if err != nil {
				return
			}
			if !yield(ip, inst) {
				return
			}
			ip += size
		}
	}
}

// Disassemble writes one line per instruction. Words that do not decode are
// written as raw data and skipped.
func (prog *Program) Disassemble(w io.Writer) (err error) {
	ew := internal.NewErrWriter(w)

	for ip := 0; ip < len(prog.Code) && ew.Err == nil; {
		inst, size, derr := Decode(prog.Code, ip)
		if derr != nil {
			fmt.Fprintf(ew, "%5d: .word 0x%016x\n", ip, uint64(prog.Code[ip]))
			ip++
			continue
		}
		if lineno := prog.LineNo(ip); lineno > 0 {
			fmt.Fprintf(ew, "%5d: %-24v ; line %d\n", ip, inst, lineno)
		} else {
			fmt.Fprintf(ew, "%5d: %v\n", ip, inst)
		}
		ip += size
	}

	return ew.Err
}
