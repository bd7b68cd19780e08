package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"maps"
	"strconv"
)

// Console reads numbers from Input and prints numbers to Output.
type Console struct {
	Input  io.Reader
	Output io.Writer
	Prompt string // Written to Output before each read, if set.

	reader *bufio.Reader
	source io.Reader
}

var _ Device = (*Console)(nil)

// Defines returns an iter of defines for the console.
func (con *Console) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// ReadValue reads the next whitespace separated number from Input.
func (con *Console) ReadValue() (value float64, err error) {
	if con.Input == nil {
		err = ErrNoInput
		return
	}

	if con.reader == nil || con.source != con.Input {
		con.reader = bufio.NewReader(con.Input)
		con.source = con.Input
	}

	if len(con.Prompt) > 0 && con.Output != nil {
		_, err = io.WriteString(con.Output, con.Prompt)
		if err != nil {
			return
		}
	}

	_, err = fmt.Fscan(con.reader, &value)
	return
}

// WriteValue prints a number on its own line.
func (con *Console) WriteValue(value float64) (err error) {
	_, err = io.WriteString(con, strconv.FormatFloat(value, 'g', 6, 64)+"\n")
	return
}

// Write writes raw text to Output.
func (con *Console) Write(p []byte) (n int, err error) {
	if con.Output == nil {
		err = ErrNoOutput
		return
	}
	return con.Output.Write(p)
}
