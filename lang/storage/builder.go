package storage

import (
	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// Builder performs the single pre-codegen walk over an AST: it allocates one
// Storage per function body (the top level included), dedupes primitive
// literals into each storage's constant list, registers assignment targets
// and function parameters as variable slots, and estimates each storage's
// temp_size from the expression subtrees it contains.
type Builder struct {
	Storages []*Storage
	arena    *value.Arena
}

// NewBuilder returns a Builder backed by arena for encoding constant
// primitives into VmObjects.
func NewBuilder(arena *value.Arena) *Builder {
	return &Builder{arena: arena}
}

// Build walks root (the top-level Block) and returns the index of its
// Storage (always 0) plus any error encountered. Every Storage reachable
// from root is appended to b.Storages and has Build called on it.
func (b *Builder) Build(root ast.Node) (int, error) {
	top := New(-1, b.arena)
	b.Storages = append(b.Storages, top)
	if err := b.walkBlockLike(root, 0); err != nil {
		return 0, err
	}
	for _, s := range b.Storages {
		if err := s.Build(); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// walkBlockLike walks any node in the context of storage index si.
func (b *Builder) walkBlockLike(n ast.Node, si int) error {
	if n == nil {
		return nil
	}
	switch node := n.(type) {
	case *ast.Block:
		for _, stmt := range node.Statements {
			if err := b.walkStatement(stmt, si); err != nil {
				return err
			}
		}
	default:
		return b.walkStatement(n, si)
	}
	return nil
}

func (b *Builder) walkStatement(n ast.Node, si int) error {
	st := b.Storages[si]

	switch node := n.(type) {
	case *ast.Assignment:
		if sym, ok := node.Target.(*ast.Symbol); ok {
			if _, err := st.AddVariable(sym.Name); err != nil {
				return err
			}
		} else if err := b.walkExpr(node.Target, si); err != nil {
			return err
		}
		return b.walkExpr(node.Expression, si)

	case *ast.IfStatement:
		if err := b.walkExpr(node.Test, si); err != nil {
			return err
		}
		if err := b.walkBlockLike(node.Body, si); err != nil {
			return err
		}
		for _, ei := range node.ElseIfs {
			if err := b.walkExpr(ei.Test, si); err != nil {
				return err
			}
			if err := b.walkBlockLike(ei.Body, si); err != nil {
				return err
			}
		}
		if node.ElseBody != nil {
			return b.walkBlockLike(node.ElseBody, si)
		}
		return nil

	case *ast.EndlessLoop:
		return b.walkBlockLike(node.Body, si)

	case *ast.WhileLoop:
		if err := b.walkBlockLike(node.Body, si); err != nil {
			return err
		}
		return b.walkExpr(node.Test, si)

	case *ast.Return:
		if node.Expression != nil {
			return b.walkExpr(node.Expression, si)
		}
		return nil

	case *ast.FunctionDefination:
		child := New(si, b.arena)
		b.Storages = append(b.Storages, child)
		childIdx := len(b.Storages) - 1
		for _, arg := range node.Arguments {
			if _, err := child.AddVariable(arg); err != nil {
				return err
			}
		}
		return b.walkBlockLike(node.Body, childIdx)

	case *ast.Break, *ast.Continue:
		return nil

	default:
		// A bare expression statement.
		return b.walkExpr(n, si)
	}
}

// walkExpr records constants/variables found in an expression subtree and
// grows st's temp_size estimate by the subtree's operator-nesting depth.
func (b *Builder) walkExpr(n ast.Node, si int) error {
	st := b.Storages[si]
	depth, err := b.walkExprDepth(n, si)
	if err != nil {
		return err
	}
	if depth > st.TempSize {
		st.TempSize = depth
	}
	return nil
}

// walkExprDepth recurses into an expression, registering constants/
// variables along the way, and returns the number of temp slots a
// straightforward left-to-right evaluation of this subtree would need
// live at once (the subtree height across Binary/Control nodes).
func (b *Builder) walkExprDepth(n ast.Node, si int) (int, error) {
	st := b.Storages[si]

	switch node := n.(type) {
	case nil, *ast.None:
		return 0, nil

	case *ast.Primative:
		if _, err := st.AddConstant(node.Value); err != nil {
			return 0, err
		}
		return 0, nil

	case *ast.Symbol:
		if _, err := st.AddVariable(node.Name); err != nil {
			return 0, err
		}
		return 0, nil

	case *ast.Binary:
		return b.walkBinaryDepth(node.Left, node.Right, si)

	case *ast.Control:
		return b.walkBinaryDepth(node.Left, node.Right, si)

	case *ast.PrefixUnary:
		d, err := b.walkExprDepth(node.Operand, si)
		return d, err

	case *ast.SuffixUnary:
		d, err := b.walkExprDepth(node.Operand, si)
		return d, err

	case *ast.FuncCall:
		maxDepth := 0
		if d, err := b.walkExprDepth(node.Callee, si); err != nil {
			return 0, err
		} else if d > maxDepth {
			maxDepth = d
		}
		for _, arg := range node.Arguments {
			d, err := b.walkExprDepth(arg, si)
			if err != nil {
				return 0, err
			}
			if d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth < 1 {
			maxDepth = 1
		}
		return maxDepth, nil

	case *ast.Indexer:
		ld, err := b.walkExprDepth(node.Body, si)
		if err != nil {
			return 0, err
		}
		rd, err := b.walkExprDepth(node.IndexExpr, si)
		if err != nil {
			return 0, err
		}
		if rd > ld {
			return rd, nil
		}
		return ld, nil

	case *ast.AccessorFuncCall:
		ld, err := b.walkExprDepth(node.Source, si)
		if err != nil {
			return 0, err
		}
		rd, err := b.walkExprDepth(node.Indexer, si)
		if err != nil {
			return 0, err
		}
		if rd < 1 {
			rd = 1
		}
		if rd > ld {
			return rd, nil
		}
		return ld, nil

	case *ast.ListLiteral:
		maxDepth := 0
		for _, item := range node.Items {
			d, err := b.walkExprDepth(item, si)
			if err != nil {
				return 0, err
			}
			if d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth < 1 {
			maxDepth = 1
		}
		return maxDepth, nil

	case *ast.DictLiteral:
		maxDepth := 0
		for i := range node.Keys {
			if d, err := b.walkExprDepth(node.Keys[i], si); err != nil {
				return 0, err
			} else if d > maxDepth {
				maxDepth = d
			}
			if d, err := b.walkExprDepth(node.Values[i], si); err != nil {
				return 0, err
			} else if d > maxDepth {
				maxDepth = d
			}
		}
		if maxDepth < 1 {
			maxDepth = 1
		}
		return maxDepth, nil

	default:
		return 0, nil
	}
}

// walkBinaryDepth implements the classic two-register-chain depth estimate:
// evaluating left then right needs max(depthLeft, depthRight+1) temps live
// at once.
func (b *Builder) walkBinaryDepth(left, right ast.Node, si int) (int, error) {
	ld, err := b.walkExprDepth(left, si)
	if err != nil {
		return 0, err
	}
	rd, err := b.walkExprDepth(right, si)
	if err != nil {
		return 0, err
	}
	depth := rd + 1
	if ld > depth {
		depth = ld
	}
	return depth, nil
}
