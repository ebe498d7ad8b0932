package interpreter

import (
	"errors"
	"fmt"
)

// Abnormal termination codes of the legacy calculator.
const (
	// ExitArithmeticFault is produced by a modulo whose right operand is zero.
	ExitArithmeticFault = 136
	// ExitSegmentationFault is produced by input lines over the length limit.
	ExitSegmentationFault = 139
)

var exitReasons = map[int]string{
	ExitArithmeticFault:   "floating point exception",
	ExitSegmentationFault: "segmentation fault",
}

// exitSignal ends a session the way the legacy calculator crashed.
type exitSignal struct {
	code   int
	reason string
}

func (e exitSignal) Error() string {
	if e.reason == "" {
		return fmt.Sprintf("calculator terminated with status %d", e.code)
	}
	return fmt.Sprintf("calculator terminated: %s (status %d)", e.reason, e.code)
}

func (e exitSignal) ExitCode() int { return e.code }

// ExitCodeFromError returns the status a session must end with when err
// carries an exit signal, possibly wrapped.
func ExitCodeFromError(err error) (int, bool) {
	var coder interface{ ExitCode() int }
	if err == nil || !errors.As(err, &coder) {
		return 0, false
	}
	return coder.ExitCode(), true
}

// Exit returns an error asking the host to terminate with code.
func Exit(code int) error {
	return exitSignal{code: code, reason: exitReasons[code]}
}
