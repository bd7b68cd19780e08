package io

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"maps"
	"time"
)

const (
	SCREEN_WIDTH  = 96                           // Cells per row.
	SCREEN_HEIGHT = 36                           // Rows per frame.
	SCREEN_SIZE   = SCREEN_WIDTH * SCREEN_HEIGHT // RAM cells drawn.

	SCREEN_CLEAR = "\033[H\033[2J" // Terminal home and clear.
)

var _screen_defines = map[string]string{
	"SCREEN_WIDTH":  fmt.Sprintf("%d", SCREEN_WIDTH),
	"SCREEN_HEIGHT": fmt.Sprintf("%d", SCREEN_HEIGHT),
	"SCREEN_SIZE":   fmt.Sprintf("%d", SCREEN_SIZE),
}

// Screen renders the start of RAM as a text frame, '.' for a zero cell and
// '*' for any other.
type Screen struct {
	Output  io.Writer
	Delay   time.Duration // Pause after each frame.
	NoClear bool          // If set, frames are not preceded by a terminal clear.

	Frames int // Frames drawn.
}

var _ Device = (*Screen)(nil)

// Defines returns an iter of defines for the screen.
func (sc *Screen) Defines() iter.Seq2[string, string] {
	return maps.All(_screen_defines)
}

// Frame returns the text of a frame drawn from ram.
func Frame(ram []float64) []byte {
	var buf bytes.Buffer
	buf.Grow(SCREEN_SIZE + SCREEN_HEIGHT)
	for y := range SCREEN_HEIGHT {
		for x := range SCREEN_WIDTH {
			n := y*SCREEN_WIDTH + x
			if n < len(ram) && ram[n] != 0 {
				buf.WriteByte('*')
			} else {
				buf.WriteByte('.')
			}
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Draw writes a frame, then waits Delay.
func (sc *Screen) Draw(ram []float64) (err error) {
	if sc.Output == nil {
		return ErrNoOutput
	}

	if !sc.NoClear {
		_, err = io.WriteString(sc.Output, SCREEN_CLEAR)
		if err != nil {
			return
		}
	}

	_, err = sc.Output.Write(Frame(ram))
	if err != nil {
		return
	}

	sc.Frames++

	if sc.Delay > 0 {
		time.Sleep(sc.Delay)
	}

	return
}
