package driver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/codahale/metrics"

	"github.com/jb361/rpn-calculator/pkg/interpreter"
)

// MetricLines counts lines handed to a calculator by a Session.
const MetricLines = "srpn.lines"

const maxScanBuffer = 64 * 1024

// Session is the line-oriented shell around a Calculator: it reads one
// command per line and turns end of input, overlong lines and exit signals
// into process exit codes.
type Session struct {
	Calculator *interpreter.Calculator
	// LineLimit is the longest accepted line; 0 means DefaultLineLimit.
	LineLimit int
	// Stderr receives read failures; nil means os.Stderr.
	Stderr io.Writer
}

// NewSession returns a session evaluating lines on calc.
func NewSession(calc *interpreter.Calculator, lineLimit int) *Session {
	return &Session{Calculator: calc, LineLimit: lineLimit}
}

// Run evaluates lines from r until end of input or termination and returns
// the exit code the process should end with.
func (s *Session) Run(r io.Reader) int {
	limit := s.LineLimit
	if limit <= 0 {
		limit = DefaultLineLimit
	}
	stderr := s.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	calc := s.Calculator
	if calc == nil {
		calc = interpreter.New()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), max(maxScanBuffer, limit+2))
	lines := metrics.Counter(MetricLines)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > limit {
			return interpreter.ExitSegmentationFault
		}
		lines.Add()
		if err := calc.ProcessCommand(line, false); err != nil {
			if code, ok := interpreter.ExitCodeFromError(err); ok {
				return code
			}
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return interpreter.ExitSegmentationFault
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
