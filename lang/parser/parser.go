// Package parser implements the indentation-sensitive recursive-descent
// parser that turns a token stream into an AST, grounded on
// original_source/karamellib/src/syntax/mod.rs and
// original_source/src/syntax/control.rs. Statement sub-parsers snapshot the
// cursor on entry and restore it when their form does not match, so
// alternatives can be tried without any panic/recover machinery. Once a
// form has matched, not every error path restores the cursor, and the
// expression parsers take no snapshot; Parse discards the cursor on any
// error.
package parser

import (
	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/errs"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
)

// Flag is the parser's bit-field state, pushed/popped around sub-parses
// with the save-set-restore pattern (SyntaxFlag in spec.md §3).
type Flag uint16

const FlagNone Flag = 0

const ( //nolint:revive
	FlagFunctionDefination Flag = 1 << iota
	FlagLoop
	FlagInAssignment
	FlagInExpression
	FlagInFunctionArg
	FlagInReturn
	FlagInDictIndexer
)

// cursor is the shared, purely-functional parse state: a position in the
// token stream, the indentation width statements must match, and the
// current flag set.
type cursor struct {
	tokens      []token.Token
	index       int
	indentation int
	flags       Flag
}

type snapshot struct {
	index       int
	indentation int
	flags       Flag
}

func (c *cursor) save() snapshot {
	return snapshot{index: c.index, indentation: c.indentation, flags: c.flags}
}

func (c *cursor) restore(s snapshot) {
	c.index = s.index
	c.indentation = s.indentation
	c.flags = s.flags
}

func (c *cursor) peek() token.Token {
	if c.index >= len(c.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return c.tokens[c.index]
}

func (c *cursor) peekAt(offset int) token.Token {
	idx := c.index + offset
	if idx >= len(c.tokens) || idx < 0 {
		return token.Token{Kind: token.EOF}
	}
	return c.tokens[idx]
}

func (c *cursor) advance() token.Token {
	t := c.peek()
	if c.index < len(c.tokens) {
		c.index++
	}
	return t
}

func (c *cursor) atEOF() bool { return c.peek().Kind == token.EOF }

func (c *cursor) withFlag(f Flag) func() {
	prev := c.flags
	c.flags |= f
	return func() { c.flags = prev }
}

func (c *cursor) has(f Flag) bool { return c.flags&f != 0 }

// Parser drives the whole parse of one token stream into a single root AST
// node.
type Parser struct {
	c cursor
}

// New returns a Parser over tokens, cursor starting at index 0.
func New(tokens []token.Token) *Parser {
	return &Parser{c: cursor{tokens: tokens}}
}

// Parse parses the entire token stream and returns the root Block, or the
// first structured error encountered.
func Parse(tokens []token.Token) (*ast.Block, error) {
	p := New(tokens)
	block, err := p.parseMultiLineBlock()
	if err != nil {
		return nil, err
	}
	if !p.c.atEOF() {
		// Every failing indentationCheck restores its cursor to before the
		// NewLine it had consumed while scanning ahead, so a mismatched line
		// that no enclosing block could place leaves a NewLine sitting at
		// the cursor, not the offending WhiteSpace itself. Look past any
		// leftover NewLines on a scratch copy: if a WhiteSpace follows,
		// that's an indentation mismatch rather than a generic syntax error.
		scan := p.c
		for scan.peek().Kind == token.NewLine {
			scan.advance()
		}
		if t := scan.peek(); t.Kind == token.WhiteSpace {
			return nil, errs.New(errs.IndentationIssue, t.Line, t.StartCol)
		}
		return nil, errs.New(errs.SyntaxError, p.c.peek().Line, p.c.peek().StartCol)
	}
	return block, nil
}

// indentationCheck enforces spec.md §4.1's indentation rule: before every
// statement, any run of whitespace/newline tokens must match the current
// expected indentation exactly, except that consecutive newlines (blank
// lines) are skipped without a width check. A line with no leading
// whitespace has width 0.
func (p *Parser) indentationCheck() error {
	sawNewLine := false
	for {
		t := p.c.peek()
		switch t.Kind {
		case token.NewLine:
			p.c.advance()
			sawNewLine = true
			continue
		case token.WhiteSpace:
			if int(t.Width) != p.c.indentation {
				return errs.New(errs.IndentationIssue, t.Line, t.StartCol)
			}
			p.c.advance()
			return nil
		default:
			if sawNewLine && t.Kind != token.EOF && p.c.indentation != 0 {
				return errs.New(errs.IndentationIssue, t.Line, t.StartCol)
			}
			return nil
		}
	}
}

// inIndication enters a new indented block: the next token must be a
// newline then a whitespace strictly wider than the current indentation;
// it returns a restore function that must be called on block exit to
// return to the enclosing indentation, and ok=false if no indented block
// follows (not an error by itself; callers decide whether that's valid).
func (p *Parser) inIndication() (restore func(), ok bool) {
	snap := p.c.save()
	if p.c.peek().Kind != token.NewLine {
		p.c.restore(snap)
		return nil, false
	}
	p.c.advance()
	for p.c.peek().Kind == token.NewLine {
		p.c.advance()
	}
	ws := p.c.peek()
	if ws.Kind != token.WhiteSpace || int(ws.Width) <= p.c.indentation {
		p.c.restore(snap)
		return nil, false
	}
	p.c.advance()

	prevIndent := p.c.indentation
	p.c.indentation = int(ws.Width)
	return func() { p.c.indentation = prevIndent }, true
}

func pos(t token.Token) token.Pos { return t.Pos() }
