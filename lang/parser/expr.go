package parser

import (
	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/errs"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// binaryLevel describes one precedence level: the set of operators it
// matches and whether it builds an ast.Control node (or/and/equality/
// comparison) or an ast.Binary node (additive/multiplicative).
type binaryLevel struct {
	ops     []token.Op
	control bool
	next    func(p *Parser) (ast.Node, error)
}

// parseExpr parses a full expression at the lowest precedence (or).
func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{ops: []token.Op{token.OpOr}, control: true, next: (*Parser).parseAnd})
}

func (p *Parser) parseAnd() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{ops: []token.Op{token.OpAnd}, control: true, next: (*Parser).parseEquality})
}

func (p *Parser) parseEquality() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{ops: []token.Op{token.OpEqual, token.OpNotEqual}, control: true, next: (*Parser).parseComparison})
}

func (p *Parser) parseComparison() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{
		ops: []token.Op{token.OpGreaterThan, token.OpLessThan, token.OpGreaterEqualThan, token.OpLessEqualThan},
		control: true, next: (*Parser).parseAdditive,
	})
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{ops: []token.Op{token.OpAddition, token.OpSubtraction}, control: false, next: (*Parser).parseMultiplicative})
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinaryLevel(binaryLevel{ops: []token.Op{token.OpMultiplication, token.OpDivision, token.OpModulo}, control: false, next: (*Parser).parseUnary})
}

// parseBinaryLevel is the single combinator every precedence level (1-6)
// shares: parse the next-higher level, then repeatedly consume an operator
// at this level followed by another next-higher parse, building a
// left-associative chain. After each match the freshly built left operand
// is walked and any FuncCall/AccessorFuncCall inside it is marked
// assign_to_temp (idempotent).
func (p *Parser) parseBinaryLevel(level binaryLevel) (ast.Node, error) {
	left, err := level.next(p)
	if err != nil {
		return nil, err
	}

	for {
		t := p.c.peek()
		op := operatorOf(t)
		if !containsOp(level.ops, op) {
			return left, nil
		}
		p.c.advance()

		right, err := level.next(p)
		if err != nil {
			return nil, err
		}

		markTempReturn(left)
		markTempReturn(right)

		if level.control {
			left = &ast.Control{Left: left, Op: op, Right: right}
		} else {
			left = &ast.Binary{Left: left, Op: op, Right: right}
		}
	}
}

func operatorOf(t token.Token) token.Op {
	switch t.Kind {
	case token.Operator:
		return t.Op
	case token.Keyword:
		return t.Kw.ToOperator()
	default:
		return token.OpNone
	}
}

func containsOp(ops []token.Op, op token.Op) bool {
	if op == token.OpNone {
		return false
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// markTempReturn implements the "update functions for temp return" pass:
// any FuncCall/AccessorFuncCall reachable inside n (without crossing into a
// nested FunctionDefination body) is marked to stash its result in a temp
// slot. Applying it more than once on the same node is a no-op.
func markTempReturn(n ast.Node) {
	switch node := n.(type) {
	case *ast.FuncCall:
		node.AssignToTemp = true
		for _, a := range node.Arguments {
			markTempReturn(a)
		}
	case *ast.AccessorFuncCall:
		node.AssignToTemp = true
		markTempReturn(node.Source)
		markTempReturn(node.Indexer)
	case *ast.Binary:
		markTempReturn(node.Left)
		markTempReturn(node.Right)
	case *ast.Control:
		markTempReturn(node.Left)
		markTempReturn(node.Right)
	case *ast.PrefixUnary:
		markTempReturn(node.Operand)
	case *ast.SuffixUnary:
		markTempReturn(node.Operand)
	case *ast.Indexer:
		markTempReturn(node.Body)
		markTempReturn(node.IndexExpr)
	case *ast.ListLiteral:
		for _, item := range node.Items {
			markTempReturn(item)
		}
	case *ast.DictLiteral:
		for _, v := range node.Values {
			markTempReturn(v)
		}
	}
}

func (p *Parser) parseUnary() (ast.Node, error) {
	t := p.c.peek()
	op := operatorOf(t)
	switch op {
	case token.OpAddition, token.OpSubtraction, token.OpNot, token.OpIncrement, token.OpDeccrement:
		start := pos(t)
		p.c.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixUnary{Start: start, Op: op, Operand: operand}, nil
	}
	return p.parsePrimaryWithSuffix()
}

// parsePrimaryWithSuffix parses a primary production then greedily chains
// suffix extensions: .member, (args), [index].
func (p *Parser) parsePrimaryWithSuffix() (ast.Node, error) {
	n, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.c.peek()
		if isSuffixStart(t) {
			markIntermediateCall(n)
		}
		switch {
		case t.Kind == token.Operator && t.Op == token.OpDot:
			p.c.advance()
			nameTok := p.c.peek()
			if nameTok.Kind != token.Symbol {
				return nil, errs.New(errs.InvalidExpression, nameTok.Line, nameTok.StartCol)
			}
			p.c.advance()
			member := ast.Node(&ast.Symbol{Start: pos(nameTok), End: pos(nameTok), Name: nameTok.Str})

			if p.c.peek().Kind == token.Operator && p.c.peek().Op == token.OpLeftParentheses {
				args, end, err := p.parseArgList()
				if err != nil {
					return nil, err
				}
				member = &ast.FuncCall{End: end, Callee: member, Arguments: args}
			}
			n = &ast.AccessorFuncCall{Source: n, Indexer: member}

		case t.Kind == token.Operator && t.Op == token.OpLeftParentheses:
			args, end, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			n = &ast.FuncCall{End: end, Callee: n, Arguments: args}

		case t.Kind == token.Operator && t.Op == token.OpSquareBracketStart:
			p.c.advance()
			restoreFlag := p.c.withFlag(FlagInDictIndexer)
			idx, err := p.parseExpr()
			restoreFlag()
			if err != nil {
				return nil, err
			}
			closeTok := p.c.peek()
			if closeTok.Kind != token.Operator || closeTok.Op != token.OpSquareBracketEnd {
				return nil, errs.New(errs.ArrayNotClosed, closeTok.Line, closeTok.StartCol)
			}
			p.c.advance()
			n = &ast.Indexer{End: pos(closeTok), Body: n, IndexExpr: idx}

		case (t.Kind == token.Operator && t.Op == token.OpIncrement) || (t.Kind == token.Operator && t.Op == token.OpDeccrement):
			p.c.advance()
			n = &ast.SuffixUnary{End: pos(t), Op: t.Op, Operand: n}

		default:
			return n, nil
		}
	}
}

// isSuffixStart reports whether t begins another suffix-chain step
// (.member, (args), [index], ++/--), used to decide whether the node built
// so far is an intermediate result that needs temp-return marking.
func isSuffixStart(t token.Token) bool {
	if t.Kind != token.Operator {
		return false
	}
	switch t.Op {
	case token.OpDot, token.OpLeftParentheses, token.OpSquareBracketStart, token.OpIncrement, token.OpDeccrement:
		return true
	default:
		return false
	}
}

// markIntermediateCall marks n as assign_to_temp when n is a FuncCall or
// AccessorFuncCall about to be consumed by another suffix-chain step
// rather than returned as the chain's final value (spec scenario S5: the
// inner method() call is stashed to a temp so the outer indexer can run,
// the outermost chain result is not).
func markIntermediateCall(n ast.Node) {
	switch node := n.(type) {
	case *ast.FuncCall:
		node.AssignToTemp = true
	case *ast.AccessorFuncCall:
		node.AssignToTemp = true
	}
}

func (p *Parser) parseArgList() ([]ast.Node, token.Pos, error) {
	p.c.advance() // consume '('
	restoreFlag := p.c.withFlag(FlagInFunctionArg)
	defer restoreFlag()

	var args []ast.Node
	for {
		t := p.c.peek()
		if t.Kind == token.Operator && t.Op == token.OpRightParentheses {
			end := pos(t)
			p.c.advance()
			return args, end, nil
		}
		if t.Kind == token.EOF {
			return nil, token.Pos{}, errs.New(errs.RightParanthesesMissing, t.Line, t.StartCol)
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, token.Pos{}, err
		}
		args = append(args, arg)

		t = p.c.peek()
		if t.Kind == token.Operator && t.Op == token.OpComma {
			p.c.advance()
			continue
		}
		if t.Kind == token.Operator && t.Op == token.OpRightParentheses {
			end := pos(t)
			p.c.advance()
			return args, end, nil
		}
		return nil, token.Pos{}, errs.New(errs.RightParanthesesMissing, t.Line, t.StartCol)
	}
}

// parsePrimary parses literals, symbols, parenthesized expressions, list
// and dict literals, per spec.md §4.1's Primary productions.
func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.c.peek()

	switch t.Kind {
	case token.Integer:
		p.c.advance()
		return &ast.Primative{Start: pos(t), End: pos(t), Value: value.Number(float64(t.Int))}, nil

	case token.Double:
		p.c.advance()
		return &ast.Primative{Start: pos(t), End: pos(t), Value: value.Number(t.Double)}, nil

	case token.Text:
		p.c.advance()
		return &ast.Primative{Start: pos(t), End: pos(t), Value: &value.Text{Value: t.Str}}, nil

	case token.Symbol:
		p.c.advance()
		return &ast.Symbol{Start: pos(t), End: pos(t), Name: t.Str}, nil

	case token.Keyword:
		switch t.Kw {
		case token.KwTrue:
			p.c.advance()
			return &ast.Primative{Start: pos(t), End: pos(t), Value: value.Bool(true)}, nil
		case token.KwFalse:
			p.c.advance()
			return &ast.Primative{Start: pos(t), End: pos(t), Value: value.Bool(false)}, nil
		case token.KwEmpty:
			p.c.advance()
			return &ast.Primative{Start: pos(t), End: pos(t), Value: value.Empty{}}, nil
		}

	case token.Operator:
		switch t.Op {
		case token.OpLeftParentheses:
			p.c.advance()
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			closeTok := p.c.peek()
			if closeTok.Kind != token.Operator || closeTok.Op != token.OpRightParentheses {
				return nil, errs.New(errs.ParenthesesNotClosed, closeTok.Line, closeTok.StartCol)
			}
			p.c.advance()
			return expr, nil

		case token.OpSquareBracketStart:
			return p.parseListLiteral()

		case token.OpCurveBracketStart:
			return p.parseDictLiteral()
		}
	}

	return nil, errs.New(errs.InvalidExpression, t.Line, t.StartCol)
}

func (p *Parser) parseListLiteral() (ast.Node, error) {
	start := pos(p.c.peek())
	p.c.advance() // '['

	var items []ast.Node
	for {
		t := p.c.peek()
		if t.Kind == token.Operator && t.Op == token.OpSquareBracketEnd {
			p.c.advance()
			return &ast.ListLiteral{Start: start, End: pos(t), Items: items}, nil
		}
		if t.Kind == token.EOF {
			return nil, errs.New(errs.ArrayNotClosed, t.Line, t.StartCol)
		}
		item, err := p.parseExpr()
		if err != nil {
			return nil, errs.New(errs.InvalidListItem, t.Line, t.StartCol)
		}
		items = append(items, item)

		t = p.c.peek()
		if t.Kind == token.Operator && t.Op == token.OpComma {
			p.c.advance()
			continue
		}
		if t.Kind == token.Operator && t.Op == token.OpSquareBracketEnd {
			continue
		}
		return nil, errs.New(errs.ArrayNotClosed, t.Line, t.StartCol)
	}
}

func (p *Parser) parseDictLiteral() (ast.Node, error) {
	start := pos(p.c.peek())
	p.c.advance() // '{'

	var keys []ast.Node
	var vals []ast.Node
	for {
		t := p.c.peek()
		if t.Kind == token.Operator && t.Op == token.OpCurveBracketEnd {
			p.c.advance()
			return &ast.DictLiteral{Start: start, End: pos(t), Keys: keys, Values: vals}, nil
		}
		if t.Kind == token.EOF {
			return nil, errs.New(errs.DictNotClosed, t.Line, t.StartCol)
		}

		var key ast.Node
		switch t.Kind {
		case token.Text:
			p.c.advance()
			key = &ast.Primative{Start: pos(t), End: pos(t), Value: &value.Text{Value: t.Str}}
		case token.Symbol:
			p.c.advance()
			key = &ast.Primative{Start: pos(t), End: pos(t), Value: &value.Text{Value: t.Str}}
		default:
			return nil, errs.New(errs.DictionaryKeyNotValid, t.Line, t.StartCol)
		}

		colon := p.c.peek()
		if colon.Kind != token.Operator || colon.Op != token.OpColonMark {
			return nil, errs.New(errs.ColonMarkMissing, colon.Line, colon.StartCol)
		}
		p.c.advance()

		val, err := p.parseExpr()
		if err != nil {
			return nil, errs.New(errs.DictionaryValueNotValid, t.Line, t.StartCol)
		}
		keys = append(keys, key)
		vals = append(vals, val)

		sep := p.c.peek()
		if sep.Kind == token.Operator && sep.Op == token.OpComma {
			p.c.advance()
			continue
		}
		if sep.Kind == token.Operator && sep.Op == token.OpCurveBracketEnd {
			continue
		}
		return nil, errs.New(errs.DictNotClosed, sep.Line, sep.StartCol)
	}
}
