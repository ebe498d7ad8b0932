package interpreter

import (
	"fmt"
	"math"
)

// applyOperator pops the right then the left operand and pushes the result.
// Failed operations push both operands back unchanged.
func (c *Calculator) applyOperator(op byte) error {
	if c.stack.Underflow() {
		return nil
	}
	right := float64(c.stack.Pop())
	left := float64(c.stack.Pop())

	ok := true
	switch op {
	case '-':
		c.stack.Push(left - right)
	case '+':
		c.stack.Push(left + right)
	case '*':
		c.stack.Push(left * right)
	case '/':
		ok = c.divide(left, right)
	case '%':
		var err error
		ok, err = c.modulo(left, right)
		if err != nil {
			return err
		}
	case '^':
		ok = c.power(left, right)
	}
	if !ok {
		c.stack.Push(left)
		c.stack.Push(right)
	}
	return nil
}

func (c *Calculator) divide(left, right float64) bool {
	if right == 0 {
		fmt.Fprintln(c.stderr, "Divide by 0.")
		return false
	}
	c.stack.Push(left / right)
	return true
}

// modulo checks the left operand for zero, as the legacy tool did by mistake.
// A zero right operand crashes the legacy tool, so it ends the session here.
func (c *Calculator) modulo(left, right float64) (bool, error) {
	if left == 0 {
		fmt.Fprintln(c.stderr, "Divide by 0.")
		return false, nil
	}
	if right == 0 {
		count(c.counters.ArithExits)
		return false, Exit(ExitArithmeticFault)
	}
	c.stack.Push(math.Mod(left, right))
	return true, nil
}

func (c *Calculator) power(left, right float64) bool {
	if right < 0 {
		fmt.Fprintln(c.stderr, "Negative power.")
		return false
	}
	c.stack.Push(math.Pow(left, right))
	return true
}
