// Package macroexpr evaluates Gerber macro arithmetic expressions.
//
// The grammar is a classical recursive-descent arithmetic grammar with one
// quirk: a function name may be followed by a bare factor with no
// parentheses ("sqrt2" meaning sqrt(2)), in addition to the usual
// parenthesized call. github.com/Knetic/govaluate does all of the real
// parsing and precedence work; this package only rewrites the three
// Gerber-specific surface forms into govaluate syntax before compiling:
//
//  1. the macro multiplication operator 'x' -> '*'
//  2. the power operator '^' -> '**' (govaluate's exponent token)
//  3. a bare "funcName factor" call -> "funcName(factor)"
//
// Variable substitution ($1, $2, ...) is the caller's responsibility;
// by the time an expression reaches Evaluate, all $n references
// have already been replaced with their (possibly default-zero) numeric
// values.
package macroexpr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Knetic/govaluate"
)

var functionNames = []string{"sqrt", "sin", "cos", "tan"}

var functions = map[string]govaluate.ExpressionFunction{
	"sqrt": func(args ...interface{}) (interface{}, error) {
		return mathSqrt(args)
	},
	"sin": func(args ...interface{}) (interface{}, error) {
		return mathTrig(args, mathSinDeg)
	},
	"cos": func(args ...interface{}) (interface{}, error) {
		return mathTrig(args, mathCosDeg)
	},
	"tan": func(args ...interface{}) (interface{}, error) {
		return mathTrig(args, mathTanDeg)
	},
}

// Evaluate parses and evaluates a fully variable-substituted macro
// arithmetic expression and returns its numeric value.
func Evaluate(expr string) (float64, error) {
	rewritten, err := rewrite(expr)
	if err != nil {
		return 0, err
	}
	evaluable, err := govaluate.NewEvaluableExpressionWithFunctions(rewritten, functions)
	if err != nil {
		return 0, fmt.Errorf("macroexpr: parse %q (rewritten %q): %w", expr, rewritten, err)
	}
	result, err := evaluable.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("macroexpr: evaluate %q: %w", expr, err)
	}
	v, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("macroexpr: non-numeric result for %q", expr)
	}
	return v, nil
}

// rewrite performs the three Gerber-grammar-to-govaluate-grammar
// translations described in the package doc comment, operating on the
// already $-substituted expression text.
func rewrite(expr string) (string, error) {
	expr = insertFunctionParens(expr)
	expr = translateCaret(expr)
	expr = translateMacroMultiply(expr)
	return expr, nil
}

// translateCaret replaces the macro grammar's '^' power operator with
// govaluate's '**'.
func translateCaret(expr string) string {
	return strings.ReplaceAll(expr, "^", "**")
}

// translateMacroMultiply replaces the macro multiplication operator 'x'
// with '*'. By the point this rewrite runs, all $n variables have already
// been substituted with literal numbers, and none of the four recognized
// function names (sqrt, sin, cos, tan) contain the letter x, so every
// remaining x/X is the multiplication operator.
func translateMacroMultiply(expr string) string {
	return strings.NewReplacer("x", "*", "X", "*").Replace(expr)
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

// insertFunctionParens finds occurrences of a bare "funcName factor" call
// (funcName immediately followed by something other than '(') and wraps
// the following factor in parentheses so govaluate's call syntax accepts
// it. A factor here is: an optional unary +/-, then a number or a
// parenthesized group. A bare function call is not recognized as the
// argument of another bare call.
func insertFunctionParens(expr string) string {
	for _, name := range functionNames {
		expr = insertParensForFunc(expr, name)
	}
	return expr
}

func insertParensForFunc(expr, name string) string {
	var b strings.Builder
	i := 0
	for i < len(expr) {
		if matchesIdent(expr, i, name) {
			after := i + len(name)
			// Skip whitespace between the function name and its argument.
			j := after
			for j < len(expr) && expr[j] == ' ' {
				j++
			}
			if j < len(expr) && expr[j] == '(' {
				// Already parenthesized; copy the name and let the main
				// loop continue from the '('.
				b.WriteString(name)
				i = after
				continue
			}
			factorEnd := scanFactor(expr, j)
			if factorEnd > j {
				b.WriteString(name)
				b.WriteByte('(')
				b.WriteString(expr[j:factorEnd])
				b.WriteByte(')')
				i = factorEnd
				continue
			}
		}
		b.WriteByte(expr[i])
		i++
	}
	return b.String()
}

// matchesIdent reports whether expr[pos:] starts with name as a function
// name: not preceded by an identifier character, and not followed by a
// letter or '_' (a digit or '.' right after the name starts a bare numeric
// argument, as in "sqrt16").
func matchesIdent(expr string, pos int, name string) bool {
	if pos+len(name) > len(expr) {
		return false
	}
	if !strings.EqualFold(expr[pos:pos+len(name)], name) {
		return false
	}
	if pos > 0 && isIdentRune(rune(expr[pos-1])) {
		return false
	}
	end := pos + len(name)
	if end < len(expr) {
		if r := rune(expr[end]); unicode.IsLetter(r) || r == '_' {
			return false
		}
	}
	return true
}

// scanFactor scans one factor starting at pos: an optional sign, then a
// number or a parenthesized group. Returns the index just past the factor,
// or pos if nothing recognizable is there (a nested bare function call
// included).
func scanFactor(expr string, pos int) int {
	start := pos
	if pos < len(expr) && (expr[pos] == '+' || expr[pos] == '-') {
		pos++
	}
	if pos < len(expr) && expr[pos] == '(' {
		depth := 0
		for ; pos < len(expr); pos++ {
			switch expr[pos] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return pos + 1
				}
			}
		}
		return start // unbalanced; bail out and let govaluate raise the error
	}
	numStart := pos
	for pos < len(expr) && (isDigit(expr[pos]) || expr[pos] == '.') {
		pos++
	}
	if pos > numStart {
		return pos
	}
	return start
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
