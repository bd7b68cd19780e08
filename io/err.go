package io

import (
	"errors"

	"github.com/artemneskorodov/spu/translate"
)

var f = translate.From

var (
	ErrNoInput  = errors.New(f("console has no input"))
	ErrNoOutput = errors.New(f("device has no output"))
)
