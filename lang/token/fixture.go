package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Ops maps each operator/punctuation token's canonical spelling to its Op,
// the inverse of Keywords for the non-keyword operator set. Used by
// ParseFixture and anywhere else a textual operator needs resolving back
// to its Op without going through the (external) tokenizer.
var Ops = map[string]Op{
	"+":  OpAddition,
	"-":  OpSubtraction,
	"*":  OpMultiplication,
	"/":  OpDivision,
	"%":  OpModulo,
	"++": OpIncrement,
	"--": OpDeccrement,
	"=":  OpAssign,
	"+=": OpAssignAddition,
	"-=": OpAssignSubtraction,
	"*=": OpAssignMultiplication,
	"/=": OpAssignDivision,
	"==": OpEqual,
	"!=": OpNotEqual,
	"!":  OpNot,
	"&&": OpAnd,
	"||": OpOr,
	">":  OpGreaterThan,
	"<":  OpLessThan,
	">=": OpGreaterEqualThan,
	"<=": OpLessEqualThan,
	"?":  OpQuestionMark,
	":":  OpColonMark,
	"(":  OpLeftParentheses,
	")":  OpRightParentheses,
	"[":  OpSquareBracketStart,
	"]":  OpSquareBracketEnd,
	"{":  OpCurveBracketStart,
	"}":  OpCurveBracketEnd,
	",":  OpComma,
	";":  OpSemicolon,
	".":  OpDot,
}

// ParseFixture decodes the line-oriented token notation used by this
// module's golden-file tests and by cmd/karamel as a stand-in for the
// (external, out-of-scope) character tokenizer: one token per line, a
// kind tag followed by its payload. Blank lines and lines starting with
// '#' are skipped. This is a fixture decoder, not a lexer — it does not
// scan source characters.
//
// Line forms:
//
//	int <n>          Integer
//	double <f>       Double
//	sym <name>       Symbol
//	text <rest>      Text (rest of the line, verbatim)
//	kw <spelling>    Keyword, looked up in Keywords
//	op <spelling>    Operator, looked up in Ops
//	ws <width>       WhiteSpace with the given indentation width
//	nl               NewLine
func ParseFixture(src string) ([]Token, error) {
	var toks []Token
	for lineNo, line := range strings.Split(src, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.SplitN(trimmed, " ", 2)
		tag := fields[0]
		var rest string
		if len(fields) > 1 {
			rest = fields[1]
		}

		t := Token{Line: lineNo + 1, StartCol: 1, EndCol: 1}
		switch tag {
		case "int":
			n, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("fixture line %d: %w", lineNo+1, err)
			}
			t.Kind = Integer
			t.Int = n

		case "double":
			f, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return nil, fmt.Errorf("fixture line %d: %w", lineNo+1, err)
			}
			t.Kind = Double
			t.Double = f

		case "sym":
			t.Kind = Symbol
			t.Str = rest

		case "text":
			t.Kind = Text
			t.Str = rest

		case "kw":
			kw, ok := Keywords[rest]
			if !ok {
				return nil, fmt.Errorf("fixture line %d: unknown keyword %q", lineNo+1, rest)
			}
			t.Kind = Keyword
			t.Kw = kw

		case "op":
			op, ok := Ops[rest]
			if !ok {
				return nil, fmt.Errorf("fixture line %d: unknown operator %q", lineNo+1, rest)
			}
			t.Kind = Operator
			t.Op = op

		case "ws":
			w, err := strconv.Atoi(rest)
			if err != nil {
				return nil, fmt.Errorf("fixture line %d: %w", lineNo+1, err)
			}
			t.Kind = WhiteSpace
			t.Width = uint8(w)

		case "nl":
			t.Kind = NewLine

		default:
			return nil, fmt.Errorf("fixture line %d: unknown token tag %q", lineNo+1, tag)
		}

		toks = append(toks, t)
	}
	return toks, nil
}
