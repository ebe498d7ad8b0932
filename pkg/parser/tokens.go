// Package parser classifies calculator input tokens and rewrites infix
// expressions into the postfix form the evaluator consumes. Classification is
// purely textual: a token's kind never depends on the value it denotes.
package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/jb361/rpn-calculator/pkg/runtime"
)

// TokenKind identifies how the evaluator treats a whitespace-separated token.
type TokenKind int

const (
	TokenEmpty TokenKind = iota
	TokenCommentMarker
	TokenOctal
	TokenIgnoredLiteral
	TokenDecimal
	TokenOperator
	TokenControl
	TokenInfix
)

func (k TokenKind) String() string {
	switch k {
	case TokenEmpty:
		return "empty"
	case TokenCommentMarker:
		return "comment-marker"
	case TokenOctal:
		return "octal-literal"
	case TokenIgnoredLiteral:
		return "ignored-literal"
	case TokenDecimal:
		return "decimal-literal"
	case TokenOperator:
		return "operator"
	case TokenControl:
		return "control-character"
	case TokenInfix:
		return "infix-expression"
	default:
		return "unknown"
	}
}

// CommentMarker toggles comment mode when it appears as a top-level token.
const CommentMarker = "#"

var (
	octalPattern          = regexp.MustCompile(`^-?0[0-7]+$`)
	zeroPaddedPattern     = regexp.MustCompile(`^-?0[0-9]{2,}$`)
	decimalPattern        = regexp.MustCompile(`^-?[0-9]+$`)
	operatorPattern       = regexp.MustCompile(`^[-+*/%^]$`)
	singleNonSpacePattern = regexp.MustCompile(`^\S$`)
)

// Fields splits a command line on runs of whitespace.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Classify reports the kind of tok. The patterns are tried in order, so a
// zero-padded literal made only of octal digits is octal, and a longer
// zero-padded literal containing 8 or 9 is ignored rather than read as decimal.
func Classify(tok string) TokenKind {
	switch {
	case tok == "":
		return TokenEmpty
	case tok == CommentMarker:
		return TokenCommentMarker
	case octalPattern.MatchString(tok):
		return TokenOctal
	case zeroPaddedPattern.MatchString(tok):
		return TokenIgnoredLiteral
	case decimalPattern.MatchString(tok):
		return TokenDecimal
	case operatorPattern.MatchString(tok):
		return TokenOperator
	case singleNonSpacePattern.MatchString(tok):
		return TokenControl
	default:
		return TokenInfix
	}
}

// ParseInteger reads a literal in the given base. Literals too large for 32
// bits stick to the bound on the side of their sign instead of failing.
func ParseInteger(text string, base int) int32 {
	v, err := strconv.ParseInt(text, base, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(text, "-") {
				return runtime.MinValue
			}
			return runtime.MaxValue
		}
		return 0
	}
	return int32(v)
}

func isNumeral(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
