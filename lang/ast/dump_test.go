package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

func TestDumpAssignment(t *testing.T) {
	n := &ast.Assignment{
		Target:     &ast.Symbol{Name: "erhan"},
		Op:         ast.AssignSet,
		Expression: &ast.Primative{Value: value.Number(2020)},
	}

	want := "Assignment op=0\n" +
		"  Symbol erhan\n" +
		"  Primative number\n"
	assert.Equal(t, want, ast.Dump(n))
}

func TestDumpNestedBinary(t *testing.T) {
	n := &ast.Binary{
		Left:  &ast.Primative{Value: value.Number(1)},
		Op:    token.OpAddition,
		Right: &ast.Binary{Left: &ast.Primative{Value: value.Number(2)}, Op: token.OpMultiplication, Right: &ast.Primative{Value: value.Number(3)}},
	}

	want := "Binary op=1\n" +
		"  Primative number\n" +
		"  Binary op=3\n" +
		"    Primative number\n" +
		"    Primative number\n"
	assert.Equal(t, want, ast.Dump(n))
}

func TestDumpBlockAndFuncCall(t *testing.T) {
	n := &ast.Block{Statements: []ast.Node{
		&ast.FuncCall{Callee: &ast.Symbol{Name: "print"}, Arguments: []ast.Node{&ast.Primative{Value: value.Number(1)}}, AssignToTemp: true},
	}}

	want := "Block len=1\n" +
		"  FuncCall assignToTemp=true\n" +
		"    Symbol print\n" +
		"    Primative number\n"
	assert.Equal(t, want, ast.Dump(n))
}

func TestDumpNil(t *testing.T) {
	assert.Equal(t, "<nil>\n", ast.Dump(nil))
}

func TestBinarySpanCoversBothOperands(t *testing.T) {
	left := &ast.Symbol{Start: token.Pos{Line: 1, Col: 1}, End: token.Pos{Line: 1, Col: 2}, Name: "a"}
	right := &ast.Symbol{Start: token.Pos{Line: 1, Col: 6}, End: token.Pos{Line: 1, Col: 7}, Name: "b"}
	n := &ast.Binary{Left: left, Right: right, Op: token.OpAddition}

	start, end := n.Span()
	assert.Equal(t, token.Pos{Line: 1, Col: 1}, start)
	assert.Equal(t, token.Pos{Line: 1, Col: 7}, end)
}

func TestIfStatementSpanPrefersElseBody(t *testing.T) {
	n := &ast.IfStatement{
		Start: token.Pos{Line: 1, Col: 1},
		Test:  &ast.Symbol{},
		Body:  &ast.Block{End: token.Pos{Line: 2, Col: 5}},
		ElseIfs: []ast.ElseIf{
			{Body: &ast.Block{End: token.Pos{Line: 4, Col: 5}}},
		},
		ElseBody: &ast.Block{End: token.Pos{Line: 6, Col: 5}},
	}

	_, end := n.Span()
	assert.Equal(t, token.Pos{Line: 6, Col: 5}, end, "ElseBody should win over the last ElseIf when both are present")
}

func TestIfStatementSpanFallsBackToLastElseIf(t *testing.T) {
	n := &ast.IfStatement{
		Start: token.Pos{Line: 1, Col: 1},
		Test:  &ast.Symbol{},
		Body:  &ast.Block{End: token.Pos{Line: 2, Col: 5}},
		ElseIfs: []ast.ElseIf{
			{Body: &ast.Block{End: token.Pos{Line: 4, Col: 5}}},
		},
	}

	_, end := n.Span()
	assert.Equal(t, token.Pos{Line: 4, Col: 5}, end)
}

func TestAccessorFuncCallSpanSpansSourceToIndexer(t *testing.T) {
	n := &ast.AccessorFuncCall{
		Source:  &ast.Symbol{Start: token.Pos{Line: 1, Col: 1}, End: token.Pos{Line: 1, Col: 7}, Name: "object"},
		Indexer: &ast.FuncCall{Callee: &ast.Symbol{}, End: token.Pos{Line: 1, Col: 20}},
	}

	start, end := n.Span()
	assert.Equal(t, token.Pos{Line: 1, Col: 1}, start)
	assert.Equal(t, token.Pos{Line: 1, Col: 20}, end)
}
