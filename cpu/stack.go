package cpu

import (
	"errors"
)

const (
	STACK_LIMIT = 1024 // Maximum stack depth
)

// Stack is the runtime stack. It holds both operand values and the return
// addresses pushed by call.
type Stack struct {
	Data []float64
}

// Push pushes a value, failing if the stack is full.
func (s *Stack) Push(value float64) (err error) {
	if s.Full() {
		return errors.Join(ErrStack, ErrStackFull)
	}
	s.Data = append(s.Data, value)
	return
}

// Pop pops the top value, failing if the stack is empty.
func (s *Stack) Pop() (value float64, err error) {
	value, ok := s.Peek()
	if !ok {
		err = errors.Join(ErrStack, ErrStackEmpty)
		return
	}
	s.Data = s.Data[:len(s.Data)-1]
	return
}

// Pop2 pops the top value a, then the value b below it.
func (s *Stack) Pop2() (a, b float64, err error) {
	a, err = s.Pop()
	if err != nil {
		return
	}
	b, err = s.Pop()
	return
}

func (s *Stack) Empty() bool {
	return len(s.Data) == 0
}

func (s *Stack) Full() bool {
	return len(s.Data) >= STACK_LIMIT
}

func (s *Stack) Peek() (value float64, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

func (s *Stack) Reset() {
	if len(s.Data) > 0 {
		s.Data = s.Data[:0]
	}
}
