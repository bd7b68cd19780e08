package cpu

import (
	"fmt"
	"io"
	"slices"

	"github.com/artemneskorodov/spu/internal"
)

const (
	DUMP_RAM_COLUMNS = 8 // RAM cells per dump row.
)

// Dump writes the stack, code with an IP marker, registers and RAM.
// Consecutive all-zero RAM rows are collapsed into a single '*' line.
func (cpu *Cpu) Dump(w io.Writer) (err error) {
	ew := internal.NewErrWriter(w)

	fmt.Fprintf(ew, "stack (%d):", len(cpu.Stack.Data))
	for _, val := range cpu.Stack.Data {
		fmt.Fprintf(ew, " %g", val)
	}
	fmt.Fprintln(ew)

	fmt.Fprintln(ew, "code:")
	for ip := 0; ip < len(cpu.Code); {
		marker := "  "
		if ip == cpu.Ip {
			marker = "->"
		}
		inst, size, derr := Decode(cpu.Code, ip)
		if derr != nil {
			fmt.Fprintf(ew, "%v %5d: %016x\n", marker, ip, uint64(cpu.Code[ip]))
			ip++
			continue
		}
		fmt.Fprintf(ew, "%v %5d: %v\n", marker, ip, inst)
		ip += size
	}
	if cpu.Ip >= len(cpu.Code) {
		fmt.Fprintf(ew, "-> %5d:\n", cpu.Ip)
	}

	fmt.Fprintln(ew, "registers:")
	fmt.Fprint(ew, cpu.String())

	fmt.Fprintln(ew, "ram:")
	var zero [DUMP_RAM_COLUMNS]float64
	collapsed := false
	for base := 0; base < len(cpu.Ram); base += DUMP_RAM_COLUMNS {
		row := cpu.Ram[base:min(base+DUMP_RAM_COLUMNS, len(cpu.Ram))]
		if slices.Equal(row, zero[:len(row)]) {
			if !collapsed {
				fmt.Fprintln(ew, "*")
				collapsed = true
			}
			continue
		}
		collapsed = false
		fmt.Fprintf(ew, "%05d:", base)
		for _, val := range row {
			fmt.Fprintf(ew, " %10g", val)
		}
		fmt.Fprintln(ew)
	}

	return ew.Err
}
