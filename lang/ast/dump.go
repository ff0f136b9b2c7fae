package ast

import (
	"fmt"
	"strings"
)

// Dump renders n as an indented textual tree, the AST-stage equivalent of
// the teacher's ast.Printer, trimmed to what the parser/compiler pipeline
// needs for golden-file tests and the CLI's "parse" subcommand: node kind
// plus the fields that distinguish one instance from another, no position
// information (spec.md's testable properties don't depend on exact byte
// offsets surviving into the dump).
func Dump(n Node) string {
	var b strings.Builder
	dump(&b, n, 0)
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func dump(b *strings.Builder, n Node, depth int) {
	indent(b, depth)
	if n == nil {
		b.WriteString("<nil>\n")
		return
	}

	switch node := n.(type) {
	case *None:
		b.WriteString("None\n")

	case *Primative:
		fmt.Fprintf(b, "Primative %s\n", node.Value.Kind())

	case *Symbol:
		fmt.Fprintf(b, "Symbol %s\n", node.Name)

	case *Binary:
		fmt.Fprintf(b, "Binary op=%d\n", node.Op)
		dump(b, node.Left, depth+1)
		dump(b, node.Right, depth+1)

	case *Control:
		fmt.Fprintf(b, "Control op=%d\n", node.Op)
		dump(b, node.Left, depth+1)
		dump(b, node.Right, depth+1)

	case *PrefixUnary:
		fmt.Fprintf(b, "PrefixUnary op=%d\n", node.Op)
		dump(b, node.Operand, depth+1)

	case *SuffixUnary:
		fmt.Fprintf(b, "SuffixUnary op=%d\n", node.Op)
		dump(b, node.Operand, depth+1)

	case *Assignment:
		fmt.Fprintf(b, "Assignment op=%d\n", node.Op)
		dump(b, node.Target, depth+1)
		dump(b, node.Expression, depth+1)

	case *Block:
		fmt.Fprintf(b, "Block len=%d\n", len(node.Statements))
		for _, stmt := range node.Statements {
			dump(b, stmt, depth+1)
		}

	case *IfStatement:
		b.WriteString("IfStatement\n")
		dump(b, node.Test, depth+1)
		dump(b, node.Body, depth+1)
		for _, ei := range node.ElseIfs {
			indent(b, depth+1)
			b.WriteString("ElseIf\n")
			dump(b, ei.Test, depth+2)
			dump(b, ei.Body, depth+2)
		}
		if node.ElseBody != nil {
			indent(b, depth+1)
			b.WriteString("Else\n")
			dump(b, node.ElseBody, depth+2)
		}

	case *EndlessLoop:
		b.WriteString("EndlessLoop\n")
		dump(b, node.Body, depth+1)

	case *WhileLoop:
		b.WriteString("WhileLoop\n")
		dump(b, node.Body, depth+1)
		dump(b, node.Test, depth+1)

	case *Break:
		b.WriteString("Break\n")

	case *Continue:
		b.WriteString("Continue\n")

	case *Return:
		b.WriteString("Return\n")
		if node.Expression != nil {
			dump(b, node.Expression, depth+1)
		}

	case *FunctionDefination:
		fmt.Fprintf(b, "FunctionDefination %s(%s)\n", node.Name, strings.Join(node.Arguments, ", "))
		dump(b, node.Body, depth+1)

	case *FuncCall:
		fmt.Fprintf(b, "FuncCall assignToTemp=%v\n", node.AssignToTemp)
		dump(b, node.Callee, depth+1)
		for _, arg := range node.Arguments {
			dump(b, arg, depth+1)
		}

	case *Indexer:
		b.WriteString("Indexer\n")
		dump(b, node.Body, depth+1)
		dump(b, node.IndexExpr, depth+1)

	case *AccessorFuncCall:
		fmt.Fprintf(b, "AccessorFuncCall assignToTemp=%v\n", node.AssignToTemp)
		dump(b, node.Source, depth+1)
		dump(b, node.Indexer, depth+1)

	case *LoadModule:
		fmt.Fprintf(b, "LoadModule %s\n", strings.Join(node.ModulePath, "."))

	case *StoreModule:
		fmt.Fprintf(b, "StoreModule %s\n", strings.Join(node.ModulePath, "."))

	case *ListLiteral:
		fmt.Fprintf(b, "ListLiteral len=%d\n", len(node.Items))
		for _, item := range node.Items {
			dump(b, item, depth+1)
		}

	case *DictLiteral:
		fmt.Fprintf(b, "DictLiteral len=%d\n", len(node.Keys))
		for i := range node.Keys {
			dump(b, node.Keys[i], depth+1)
			dump(b, node.Values[i], depth+1)
		}

	default:
		fmt.Fprintf(b, "%T\n", n)
	}
}
