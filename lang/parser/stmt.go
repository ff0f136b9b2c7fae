package parser

import (
	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/errs"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
)

// parseMultiLineBlock repeatedly parses one statement at the current
// indentation, stopping when a token fails the indentation check or input
// ends, per spec.md §4.1's "Statements" rule.
func (p *Parser) parseMultiLineBlock() (*ast.Block, error) {
	start := pos(p.c.peek())
	block := &ast.Block{Start: start}

	for {
		if p.c.atEOF() {
			break
		}
		snap := p.c.save()
		if err := p.indentationCheck(); err != nil {
			p.c.restore(snap)
			break
		}
		if p.c.atEOF() {
			break
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			p.c.restore(snap)
			break
		}
		block.Statements = append(block.Statements, stmt)
	}

	block.End = pos(p.c.peek())
	return block, nil
}

// parseSingleLineBlock parses exactly one statement, used for a function
// body or control-flow body written on the same line as its header.
func (p *Parser) parseSingleLineBlock() (ast.Node, error) {
	return p.parseStatement()
}

// skipWhitespace consumes any run of WhiteSpace tokens (not NewLine), the
// equivalent of the original parser's cleanup_whitespaces between tokens
// on the same logical line.
func (p *Parser) skipWhitespace() {
	for p.c.peek().Kind == token.WhiteSpace {
		p.c.advance()
	}
}

// parseStatement tries each statement form in the order spec.md §4.1
// specifies, returning (nil, nil) if none match (an empty/None statement).
func (p *Parser) parseStatement() (ast.Node, error) {
	if n, err, matched := p.tryParseFunctionDefination(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseIf(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseEndlessLoop(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseWhileLoop(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseBreak(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseContinue(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseReturn(); matched {
		return n, err
	}
	if n, err, matched := p.tryParseLoadModule(); matched {
		return n, err
	}
	return p.parseAssignmentOrExpr()
}

func (p *Parser) tryParseFunctionDefination() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	start := p.c.peek()
	if start.Kind != token.Keyword || start.Kw != token.KwFn {
		p.c.restore(snap)
		return nil, nil, false
	}
	p.c.advance()
	indentation := p.c.indentation
	p.skipWhitespace()

	nameTok := p.c.peek()
	if nameTok.Kind != token.Symbol {
		p.c.restore(snap)
		return nil, errs.New(errs.FunctionNameNotDefined, nameTok.Line, nameTok.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	var args []string
	if p.c.peek().Kind == token.Operator && p.c.peek().Op == token.OpLeftParentheses {
		p.c.advance()
		for {
			p.skipWhitespace()
			if p.c.peek().Kind == token.Operator && p.c.peek().Op == token.OpRightParentheses {
				break
			}
			argTok := p.c.peek()
			if argTok.Kind != token.Symbol {
				p.c.restore(snap)
				return nil, errs.New(errs.ArgumentMustBeText, argTok.Line, argTok.StartCol), true
			}
			p.c.advance()
			args = append(args, argTok.Str)
			p.skipWhitespace()
			if p.c.peek().Kind == token.Operator && p.c.peek().Op == token.OpComma {
				p.c.advance()
				continue
			}
			break
		}
		closeTok := p.c.peek()
		if closeTok.Kind != token.Operator || closeTok.Op != token.OpRightParentheses {
			p.c.restore(snap)
			return nil, errs.New(errs.RightParanthesesMissing, closeTok.Line, closeTok.StartCol), true
		}
		p.c.advance()
	}

	p.skipWhitespace()
	colon := p.c.peek()
	if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
		p.c.restore(snap)
		return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	restoreFlag := p.c.withFlag(FlagFunctionDefination)
	defer restoreFlag()

	var body ast.Node
	var err error
	if restoreIndent, ok := p.inIndication(); ok {
		body, err = p.parseMultiLineBlock()
		restoreIndent()
	} else {
		body, err = p.parseSingleLineBlock()
	}
	if err != nil {
		return nil, err, true
	}
	if body == nil {
		p.c.restore(snap)
		return nil, errs.New(errs.FunctionConditionBodyNotFound, start.Line, start.StartCol), true
	}

	p.c.indentation = indentation
	return &ast.FunctionDefination{Start: pos(start), Name: nameTok.Str, Arguments: args, Body: ensureTrailingReturn(body)}, nil, true
}

// ensureTrailingReturn normalizes a function body to spec invariant 6: a
// Block whose last statement is a Return. A single-statement body (the
// same-line form) is wrapped in a Block; a body not already ending in an
// explicit döndür gets a bare Return(None) appended. The last non-Return
// statement's value is never implicitly returned — an explicit döndür is
// required to return a value.
func ensureTrailingReturn(body ast.Node) *ast.Block {
	block, ok := body.(*ast.Block)
	if !ok {
		start, end := body.Span()
		block = &ast.Block{Start: start, End: end, Statements: []ast.Node{body}}
	}
	if n := len(block.Statements); n > 0 {
		if _, isReturn := block.Statements[n-1].(*ast.Return); isReturn {
			return block
		}
	}
	block.Statements = append(block.Statements, &ast.Return{Start: block.End, End: block.End})
	return block
}

func (p *Parser) tryParseIf() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	start := p.c.peek()
	if start.Kind != token.Keyword || start.Kw != token.KwIf {
		p.c.restore(snap)
		return nil, nil, false
	}
	p.c.advance()
	p.skipWhitespace()

	test, err := p.parseExpr()
	if err != nil {
		p.c.restore(snap)
		return nil, err, true
	}
	p.skipWhitespace()
	colon := p.c.peek()
	if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
		p.c.restore(snap)
		return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	body, err := p.parseBranchBody()
	if err != nil {
		return nil, err, true
	}
	if body == nil {
		p.c.restore(snap)
		return nil, errs.New(errs.IfConditionBodyNotFound, start.Line, start.StartCol), true
	}

	stmt := &ast.IfStatement{Start: pos(start), Test: test, Body: body}

	sawElse := false
	for {
		elseSnap := p.c.save()
		if err := p.indentationCheck(); err != nil {
			p.c.restore(elseSnap)
			break
		}
		elseTok := p.c.peek()
		if elseTok.Kind != token.Keyword || elseTok.Kw != token.KwElse {
			p.c.restore(elseSnap)
			break
		}
		p.c.advance()
		p.skipWhitespace()

		if p.c.peek().Kind == token.Keyword && p.c.peek().Kw == token.KwIf {
			if sawElse {
				return nil, errs.New(errs.MultipleElseUsageNotValid, elseTok.Line, elseTok.StartCol), true
			}
			p.c.advance()
			p.skipWhitespace()
			eiTest, err := p.parseExpr()
			if err != nil {
				return nil, err, true
			}
			p.skipWhitespace()
			eiColon := p.c.peek()
			if eiColon.Kind != token.Operator || eiColon.Op != token.OpColonMark {
				return nil, errs.New(errs.ColonMarkMissing, eiColon.Line, eiColon.StartCol), true
			}
			p.c.advance()
			p.skipWhitespace()
			eiBody, err := p.parseBranchBody()
			if err != nil {
				return nil, err, true
			}
			stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIf{Test: eiTest, Body: eiBody})
			continue
		}

		if sawElse {
			return nil, errs.New(errs.MultipleElseUsageNotValid, elseTok.Line, elseTok.StartCol), true
		}
		colon := p.c.peek()
		if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
			return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol), true
		}
		p.c.advance()
		p.skipWhitespace()
		elseBody, err := p.parseBranchBody()
		if err != nil {
			return nil, err, true
		}
		stmt.ElseBody = elseBody
		sawElse = true
	}

	return stmt, nil, true
}

// parseBranchBody parses either an indented multi-line block or a single
// statement on the same line, for if/elseif/else bodies.
func (p *Parser) parseBranchBody() (ast.Node, error) {
	if restore, ok := p.inIndication(); ok {
		body, err := p.parseMultiLineBlock()
		restore()
		return body, err
	}
	return p.parseSingleLineBlock()
}

func (p *Parser) tryParseEndlessLoop() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	start := p.c.peek()
	if start.Kind != token.Keyword || start.Kw != token.KwEndless {
		p.c.restore(snap)
		return nil, nil, false
	}
	p.c.advance()
	p.skipWhitespace()
	colon := p.c.peek()
	if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
		p.c.restore(snap)
		return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	restoreFlag := p.c.withFlag(FlagLoop)
	body, err := p.parseBranchBody()
	restoreFlag()
	if err != nil {
		return nil, err, true
	}
	if body == nil {
		p.c.restore(snap)
		return nil, errs.New(errs.IfConditionBodyNotFound, start.Line, start.StartCol), true
	}
	return &ast.EndlessLoop{Start: pos(start), Body: body}, nil, true
}

// tryParseWhileLoop parses the two-part `do ... while` / `döngü ... iken`
// post-test loop form.
func (p *Parser) tryParseWhileLoop() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	start := p.c.peek()
	if start.Kind != token.Keyword || start.Kw != token.KwWhileStartPart {
		p.c.restore(snap)
		return nil, nil, false
	}
	p.c.advance()
	p.skipWhitespace()
	colon := p.c.peek()
	if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
		p.c.restore(snap)
		return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	restoreFlag := p.c.withFlag(FlagLoop)
	body, err := p.parseBranchBody()
	if err != nil {
		restoreFlag()
		return nil, err, true
	}
	if body == nil {
		restoreFlag()
		p.c.restore(snap)
		return nil, errs.New(errs.WhileStatementNotValid, start.Line, start.StartCol), true
	}

	endSnap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		restoreFlag()
		p.c.restore(endSnap)
		return nil, errs.New(errs.WhileStatementNotValid, start.Line, start.StartCol), true
	}
	whileTok := p.c.peek()
	if whileTok.Kind != token.Keyword || whileTok.Kw != token.KwWhileEndPart {
		restoreFlag()
		p.c.restore(snap)
		return nil, errs.New(errs.WhileStatementNotValid, start.Line, start.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()
	test, err := p.parseExpr()
	restoreFlag()
	if err != nil {
		return nil, err, true
	}

	return &ast.WhileLoop{Start: pos(start), Body: body, Test: test}, nil, true
}

func (p *Parser) tryParseBreak() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	t := p.c.peek()
	if t.Kind != token.Keyword || t.Kw != token.KwBreak {
		p.c.restore(snap)
		return nil, nil, false
	}
	if !p.c.has(FlagLoop) {
		p.c.restore(snap)
		return nil, errs.New(errs.BreakAndContinueBelongToLoops, t.Line, t.StartCol), true
	}
	p.c.advance()
	return &ast.Break{Start: pos(t), End: pos(t)}, nil, true
}

func (p *Parser) tryParseContinue() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	t := p.c.peek()
	if t.Kind != token.Keyword || t.Kw != token.KwContinue {
		p.c.restore(snap)
		return nil, nil, false
	}
	if !p.c.has(FlagLoop) {
		p.c.restore(snap)
		return nil, errs.New(errs.BreakAndContinueBelongToLoops, t.Line, t.StartCol), true
	}
	p.c.advance()
	return &ast.Continue{Start: pos(t), End: pos(t)}, nil, true
}

func (p *Parser) tryParseReturn() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	t := p.c.peek()
	if t.Kind != token.Keyword || t.Kw != token.KwReturn {
		p.c.restore(snap)
		return nil, nil, false
	}
	if !p.c.has(FlagFunctionDefination) {
		p.c.restore(snap)
		return nil, errs.New(errs.ReturnMustBeUsedInFunction, t.Line, t.StartCol), true
	}
	p.c.advance()
	p.skipWhitespace()

	if p.c.peek().Kind == token.NewLine || p.c.peek().Kind == token.EOF {
		return &ast.Return{Start: pos(t), End: pos(t)}, nil, true
	}

	restoreFlag := p.c.withFlag(FlagInReturn)
	expr, err := p.parseExpr()
	restoreFlag()
	if err != nil {
		return nil, err, true
	}
	return &ast.Return{Start: pos(t), End: pos(t), Expression: expr}, nil, true
}

func (p *Parser) tryParseLoadModule() (ast.Node, error, bool) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil, false
	}
	t := p.c.peek()
	if t.Kind != token.Keyword || t.Kw != token.KwUse {
		p.c.restore(snap)
		return nil, nil, false
	}
	p.c.advance()
	p.skipWhitespace()

	var path []string
	for {
		nameTok := p.c.peek()
		if nameTok.Kind != token.Symbol {
			p.c.restore(snap)
			return nil, errs.New(errs.SyntaxError, nameTok.Line, nameTok.StartCol), true
		}
		p.c.advance()
		path = append(path, nameTok.Str)
		if p.c.peek().Kind == token.Operator && p.c.peek().Op == token.OpDot {
			p.c.advance()
			continue
		}
		break
	}
	return &ast.LoadModule{Start: pos(t), End: pos(t), ModulePath: path}, nil, true
}

// parseAssignmentOrExpr handles the last two statement forms: an
// assignment (symbol/indexer target, = += -= *= /=, expression)
// or, if no assignment operator follows, the parsed expression stands on
// its own as a bare-expression statement.
func (p *Parser) parseAssignmentOrExpr() (ast.Node, error) {
	snap := p.c.save()
	if err := p.indentationCheck(); err != nil {
		p.c.restore(snap)
		return nil, nil
	}
	if p.c.atEOF() {
		p.c.restore(snap)
		return nil, nil
	}

	restoreFlag := p.c.withFlag(FlagInAssignment)
	left, err := p.parseExpr()
	restoreFlag()
	if err != nil {
		p.c.restore(snap)
		return nil, err
	}

	p.skipWhitespace()
	t := p.c.peek()
	assignOp, isAssign := assignOperatorOf(t)
	if !isAssign {
		return left, nil
	}
	switch left.(type) {
	case *ast.Symbol, *ast.Indexer:
	default:
		// Only a Symbol or an Indexer chain can be assigned to; anything
		// else means the "=" wasn't actually an assignment, so the
		// statement stands as the bare expression already parsed, and the
		// cursor is left sitting right before it rather than past it.
		return left, nil
	}
	p.c.advance()
	p.skipWhitespace()

	restoreExprFlag := p.c.withFlag(FlagInExpression)
	rhs, err := p.parseExpr()
	restoreExprFlag()
	if err != nil {
		return nil, err
	}

	return &ast.Assignment{Target: left, Op: assignOp, Expression: rhs}, nil
}

func assignOperatorOf(t token.Token) (ast.AssignOp, bool) {
	if t.Kind != token.Operator {
		return 0, false
	}
	switch t.Op {
	case token.OpAssign:
		return ast.AssignSet, true
	case token.OpAssignAddition:
		return ast.AssignAdd, true
	case token.OpAssignSubtraction:
		return ast.AssignSub, true
	case token.OpAssignMultiplication:
		return ast.AssignMul, true
	case token.OpAssignDivision:
		return ast.AssignDiv, true
	default:
		return 0, false
	}
}
