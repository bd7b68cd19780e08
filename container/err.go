package container

import (
	"github.com/pkg/errors"

	"github.com/artemneskorodov/spu/translate"
)

var f = translate.From

var (
	ErrWrongAssembler = errors.New(f("wrong assembler"))
	ErrWrongVersion   = errors.New(f("wrong version"))
	ErrCodeSize       = errors.New(f("code too large"))
	ErrReading        = errors.New(f("reading error"))
	ErrWriting        = errors.New(f("writing error"))
)
