// Package container reads and writes assembled programs.
//
// A container is a fixed header followed by the code words, all little
// endian:
//
//	name    [64]byte  assembler name, NUL padded
//	version uint64    format version
//	count   uint64    number of code words
//	code    [count]uint64
//
// A reader only accepts its own name and version.
package container

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/artemneskorodov/spu/cpu"
)

const (
	NAME_SIZE = 64 // Size of the assembler name field.

	ASSEMBLER_NAME    = "SPU STACK MACHINE ASSEMBLER"
	ASSEMBLER_VERSION = 2

	CODE_LIMIT = 1 << 24 // Maximum code words accepted by a reader.
)

// Header is the fixed layout preceding the code words.
type Header struct {
	Name    [NAME_SIZE]byte
	Version uint64
	Count   uint64
}

// NewHeader returns the header for count code words.
func NewHeader(count int) (hdr Header) {
	copy(hdr.Name[:], ASSEMBLER_NAME)
	hdr.Version = ASSEMBLER_VERSION
	hdr.Count = uint64(count)
	return
}

// AssemblerName returns the name field without padding.
func (hdr *Header) AssemblerName() string {
	return string(bytes.TrimRight(hdr.Name[:], "\x00"))
}

// Validate checks the header against this reader's identity.
func (hdr *Header) Validate() (err error) {
	expected := NewHeader(0)
	if hdr.Name != expected.Name {
		return errors.Wrapf(ErrWrongAssembler, "%q", hdr.AssemblerName())
	}
	if hdr.Version != expected.Version {
		return errors.Wrapf(ErrWrongVersion, "%d", hdr.Version)
	}
	if hdr.Count > CODE_LIMIT {
		return errors.Wrapf(ErrCodeSize, "%d words", hdr.Count)
	}
	return
}

// Write writes the header and code.
func Write(w io.Writer, code []cpu.Word) (err error) {
	hdr := NewHeader(len(code))
	err = binary.Write(w, binary.LittleEndian, &hdr)
	if err != nil {
		return errors.Wrapf(ErrWriting, "header: %v", err)
	}

	err = binary.Write(w, binary.LittleEndian, code)
	if err != nil {
		return errors.Wrapf(ErrWriting, "code: %v", err)
	}

	return
}

// Read reads and validates the header, then reads exactly the code words
// it announces.
func Read(r io.Reader) (code []cpu.Word, err error) {
	var hdr Header
	err = binary.Read(r, binary.LittleEndian, &hdr)
	if err != nil {
		return nil, errors.Wrapf(ErrReading, "header: %v", err)
	}

	err = hdr.Validate()
	if err != nil {
		return nil, err
	}

	code = make([]cpu.Word, hdr.Count)
	err = binary.Read(r, binary.LittleEndian, code)
	if err != nil {
		return nil, errors.Wrapf(ErrReading, "code: %v", err)
	}

	return
}

// Save writes a container to fileName. The file is removed if writing fails.
func Save(fileName string, code []cpu.Word) (err error) {
	file, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "Save")
	}

	err = Write(file, code)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = errors.Wrapf(ErrWriting, "close: %v", cerr)
	}
	if err != nil {
		os.Remove(fileName)
		return errors.Wrap(err, "Save")
	}

	return
}

// Load reads a container from fileName.
func Load(fileName string) (code []cpu.Word, err error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Load")
	}
	defer file.Close()

	code, err = Read(file)
	if err != nil {
		return nil, errors.Wrap(err, "Load")
	}

	return
}
