package runtime

import (
	"fmt"
	"io"
	"strconv"
)

const (
	// StackMinOperands is the number of values a binary operator consumes.
	StackMinOperands = 2
	// StackCapacity is the number of values the stack holds before pushes are dropped.
	StackCapacity = 23
)

// OperandStack is the calculator's bounded LIFO of saturated values.
// Diagnostics go to errOut and results to out; no method returns an error.
type OperandStack struct {
	values []int32
	out    io.Writer
	errOut io.Writer
}

// NewOperandStack returns an empty stack printing results to out and
// diagnostics to errOut.
func NewOperandStack(out, errOut io.Writer) *OperandStack {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &OperandStack{
		values: make([]int32, 0, StackCapacity),
		out:    out,
		errOut: errOut,
	}
}

// Push saturates v and appends it, or reports an overflow and drops it.
func (s *OperandStack) Push(v float64) {
	if s.Overflow() {
		return
	}
	s.values = append(s.values, Saturate(v))
}

// Pop removes the top value. An empty stack yields MinValue without a
// diagnostic.
func (s *OperandStack) Pop() int32 {
	if len(s.values) == 0 {
		return MinValue
	}
	last := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return last
}

// Peek prints the top value without removing it.
func (s *OperandStack) Peek() {
	if len(s.values) == 0 {
		fmt.Fprintln(s.errOut, "Stack empty.")
		return
	}
	fmt.Fprintln(s.out, strconv.FormatInt(int64(s.values[len(s.values)-1]), 10))
}

// Display prints every value from the bottom of the stack to the top. An
// empty stack prints MinValue on the error channel.
func (s *OperandStack) Display() {
	if len(s.values) == 0 {
		fmt.Fprintln(s.errOut, strconv.FormatInt(MinValue, 10))
		return
	}
	for _, v := range s.values {
		fmt.Fprintln(s.out, strconv.FormatInt(int64(v), 10))
	}
}

// Underflow reports whether fewer than two values are available, printing a
// diagnostic when so.
func (s *OperandStack) Underflow() bool {
	if len(s.values) < StackMinOperands {
		fmt.Fprintln(s.errOut, "Stack underflow.")
		return true
	}
	return false
}

// Overflow reports whether the stack is full, printing a diagnostic when so.
func (s *OperandStack) Overflow() bool {
	if len(s.values) >= StackCapacity {
		fmt.Fprintln(s.errOut, "Stack overflow.")
		return true
	}
	return false
}

// Len returns the number of values held.
func (s *OperandStack) Len() int {
	return len(s.values)
}

// Values returns a copy of the stack, bottom first.
func (s *OperandStack) Values() []int32 {
	out := make([]int32, len(s.values))
	copy(out, s.values)
	return out
}
