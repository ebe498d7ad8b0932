package parser

import "strings"

// Operators lists the binary operators from loosest to tightest binding:
// subtraction below addition, multiplication below division.
const Operators = "-+*/%^"

const displayCommand = "d"

// ConvertToPostfix rewrites one infix token (for example "1+2*3") as a
// space-separated postfix string with a trailing separator. It is a
// shunting-yard variant with two quirks: an operator arriving below the
// precedence of the stack top flushes the whole operator stack, and a leading
// minus is emulated by borrowing whichever operator sits on top of the stack
// as the numeral's sign. Parentheses are not supported.
func ConvertToPostfix(infix string) string {
	c := &infixConverter{}
	tokens := splitInfix(infix)
	for i, tok := range tokens {
		prev, next := "", ""
		if i > 0 {
			prev = tokens[i-1]
		}
		if i < len(tokens)-1 {
			next = tokens[i+1]
		}
		if idx := strings.Index(Operators, tok); len(tok) == 1 && idx >= 0 {
			c.operator(tok, prev, next, idx)
		} else {
			c.operand(tok)
		}
	}
	c.flush()
	return c.postfix.String()
}

type infixConverter struct {
	postfix    strings.Builder
	operators  []int
	unaryMinus bool
}

func (c *infixConverter) operator(tok, prev, next string, idx int) {
	if tok == "-" && !isNumeral(prev) {
		c.unaryMinus = !c.unaryMinus
	} else {
		c.unaryMinus = false
	}

	if !(c.unaryMinus && isNumeral(next)) {
		if n := len(c.operators); n > 0 && c.operators[n-1] > idx {
			c.flush()
		}
	}
	c.operators = append(c.operators, idx)
}

func (c *infixConverter) operand(tok string) {
	if c.unaryMinus && isNumeral(tok) && len(c.operators) > 0 {
		tok = string(Operators[c.pop()]) + tok
		c.unaryMinus = false
	} else if tok == displayCommand {
		// "1+2*4" and "1d+2d*4d" are not the same calculation.
		c.flush()
	}
	c.emit(tok)
}

func (c *infixConverter) pop() int {
	last := c.operators[len(c.operators)-1]
	c.operators = c.operators[:len(c.operators)-1]
	return last
}

func (c *infixConverter) flush() {
	for len(c.operators) > 0 {
		c.emit(string(Operators[c.pop()]))
	}
}

func (c *infixConverter) emit(tok string) {
	c.postfix.WriteString(tok)
	c.postfix.WriteByte(' ')
}

// splitInfix breaks s into maximal runs of decimal digits and single
// non-digit bytes.
func splitInfix(s string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, s[start:i])
			start = -1
		}
		tokens = append(tokens, s[i:i+1])
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
