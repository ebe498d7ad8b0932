// Package interpreter evaluates command lines for the legacy RPN calculator.
// A Calculator owns the operand stack, the random sequence and the comment
// flag for one session and reproduces the legacy tool's output, including its
// defects, on the writers it was built with.
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/codahale/metrics"

	"github.com/jb361/rpn-calculator/pkg/parser"
	"github.com/jb361/rpn-calculator/pkg/runtime"
)

// DefaultSeed seeds the random sequence of the legacy calculator.
const DefaultSeed int32 = 1

// Options configures a Calculator. Nil writers default to the process's
// standard output and standard error.
type Options struct {
	Seed   int32
	Stdout io.Writer
	Stderr io.Writer
	// Counters defaults to DefaultCounters.
	Counters *Counters
}

// Calculator evaluates command lines against one session's state. It is not
// safe for concurrent use.
type Calculator struct {
	stack     *runtime.OperandStack
	random    *runtime.RandomSequence
	stderr    io.Writer
	counters  Counters
	inComment bool
}

// New returns a calculator seeded like the legacy tool and wired to os.Stdout
// and os.Stderr.
func New() *Calculator {
	return NewWithOptions(Options{Seed: DefaultSeed})
}

// NewWithOptions returns a calculator using opts.
func NewWithOptions(opts Options) *Calculator {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	counters := DefaultCounters()
	if opts.Counters != nil {
		counters = *opts.Counters
	}
	stderr = countingWriter{w: stderr, counter: counters.Diagnostics}
	return &Calculator{
		stack:    runtime.NewOperandStack(stdout, stderr),
		random:   runtime.NewRandomSequence(opts.Seed),
		stderr:   stderr,
		counters: counters,
	}
}

// Stack exposes the operand stack.
func (c *Calculator) Stack() *runtime.OperandStack {
	return c.stack
}

// InComment reports whether tokens are currently being skipped.
func (c *Calculator) InComment() bool {
	return c.inComment
}

// ProcessCommand tokenizes and evaluates one line. With ignoreComments set a
// "#" token is evaluated like any other character instead of toggling
// comment mode; converted infix expressions are evaluated that way.
//
// The only error returned is an exit signal (see ExitCodeFromError), after
// which the host must stop without evaluating anything further.
func (c *Calculator) ProcessCommand(line string, ignoreComments bool) error {
	for _, tok := range parser.Fields(line) {
		kind := parser.Classify(tok)
		if !ignoreComments && kind == parser.TokenCommentMarker {
			c.inComment = !c.inComment
			continue
		}
		if c.inComment || kind == parser.TokenEmpty {
			continue
		}
		count(c.counters.Tokens)
		if err := c.evalToken(tok, kind); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) evalToken(tok string, kind parser.TokenKind) error {
	switch kind {
	case parser.TokenOctal:
		c.stack.Push(float64(parser.ParseInteger(tok, 8)))
	case parser.TokenIgnoredLiteral:
		// Zero-padded literals with non-octal digits are dropped without a word.
	case parser.TokenDecimal:
		c.stack.Push(float64(parser.ParseInteger(tok, 10)))
	case parser.TokenOperator:
		return c.applyOperator(tok[0])
	case parser.TokenControl, parser.TokenCommentMarker:
		c.applyControl(tok)
	default:
		count(c.counters.Infix)
		return c.ProcessCommand(parser.ConvertToPostfix(tok), true)
	}
	return nil
}

func (c *Calculator) applyControl(tok string) {
	switch tok {
	case "d":
		c.stack.Display()
	case "r":
		if !c.stack.Overflow() {
			count(c.counters.Draws)
			c.stack.Push(float64(c.random.Next()))
		}
	case "=":
		c.stack.Peek()
	default:
		fmt.Fprintf(c.stderr, "Unrecognised operator or operand \"%s\".\n", tok)
	}
}

// countingWriter counts every write as one diagnostic line.
type countingWriter struct {
	w       io.Writer
	counter metrics.Counter
}

func (cw countingWriter) Write(p []byte) (int, error) {
	count(cw.counter)
	return cw.w.Write(p)
}
