// Package compiler walks a parsed AST and a pre-built storage tree (see
// package storage) and emits a flat bytecode stream, grounded on
// original_source/src/compiler/compiler.go and the opcode/codegen shape of
// original_source/karamellib/src/compiler/context.rs. Unlike the teacher
// package this was adapted from, it does not build a CFG of basic blocks:
// jumps are emitted with a placeholder offset and patched in place once
// their target is known, matching the simpler scheme this language's
// storage model was designed around.
package compiler

import (
	"encoding/binary"

	"github.com/turkce-yazilim-konati/karamel/lang/ast"
	"github.com/turkce-yazilim-konati/karamel/lang/errs"
	"github.com/turkce-yazilim-konati/karamel/lang/storage"
	"github.com/turkce-yazilim-konati/karamel/lang/token"
	"github.com/turkce-yazilim-konati/karamel/lang/value"
)

// FuncEntry describes one compiled or native function, as recorded in the
// compiler-wide function tables.
type FuncEntry struct {
	Name                string
	ModulePath          []string
	StorageIndex        int // storage the function's parameters/body live in
	Offset              uint16
	ArgCount            int
	Native              value.NativeFunc // set for native entries, nil for opcode entries
}

// ModuleCollection resolves a dotted module path plus a name to a native
// function, per the external module contract (package class implements
// this once built-in modules are registered).
type ModuleCollection interface {
	FindMethod(modulePath []string, name string) (*value.FunctionReference, bool)
}

// Program is the result of a successful compilation.
type Program struct {
	Code      []byte
	Storages  []*storage.Storage
	Functions []*FuncEntry
}

type loopLabels struct {
	start     int
	breaks    []int // positions of pending Jump operands to patch to loop exit
	continues []int // positions of pending Jump operands to patch to start
}

// Compiler holds all state accumulated while emitting one program.
type Compiler struct {
	code     []byte
	storages []*storage.Storage
	modules  ModuleCollection

	// storageFuncs[si][name] is the function named name, visible starting
	// from storage si (the scope enclosing its "fn" statement).
	storageFuncs map[int]map[string]*FuncEntry
	functions    []*FuncEntry

	// storageCounter tracks the next storage.Builder-assigned child storage
	// index; it advances exactly once per FunctionDefination encountered, in
	// the same pre-order the Builder walk assigned storages, so the two
	// stay in lockstep without needing to thread indices through the AST.
	storageCounter int

	loops []*loopLabels
}

// New returns a Compiler for storages (as produced by storage.Builder),
// resolving native calls through modules.
func New(storages []*storage.Storage, modules ModuleCollection) *Compiler {
	return &Compiler{
		storages:       storages,
		modules:        modules,
		storageFuncs:   make(map[int]map[string]*FuncEntry),
		storageCounter: 0,
	}
}

// Compile compiles root (the top-level Block, storage index 0) and returns
// the finished Program.
func (c *Compiler) Compile(root ast.Node) (*Program, error) {
	if err := c.compileBlockLike(root, 0); err != nil {
		return nil, err
	}
	c.emit(Halt)
	return &Program{Code: c.code, Storages: c.storages, Functions: c.functions}, nil
}

// --- emission helpers ---

func (c *Compiler) emit(op Opcode) { c.code = append(c.code, byte(op)) }

func (c *Compiler) emitU8(op Opcode, v int) {
	c.code = append(c.code, byte(op), byte(v))
}

func (c *Compiler) emitU8U8(op Opcode, a, b int) {
	c.code = append(c.code, byte(op), byte(a), byte(b))
}

func (c *Compiler) emitU16U8(op Opcode, entry uint16, argc int) {
	c.code = append(c.code, byte(op), 0, 0, byte(argc))
	binary.LittleEndian.PutUint16(c.code[len(c.code)-4+1:], entry)
}

func (c *Compiler) emitU16(op Opcode, v uint16) {
	c.code = append(c.code, byte(op), 0, 0)
	binary.LittleEndian.PutUint16(c.code[len(c.code)-2:], v)
}

// emitJumpPlaceholder emits op followed by a 2-byte placeholder and returns
// the offset of that placeholder for a later patchJump call.
func (c *Compiler) emitJumpPlaceholder(op Opcode) int {
	c.code = append(c.code, byte(op), 0, 0)
	return len(c.code) - 2
}

// patchJump writes the signed offset, relative to the instruction pointer
// immediately after the 2-byte operand, needed to reach target into the
// placeholder at operandPos.
func (c *Compiler) patchJump(operandPos, target int) {
	rel := int16(target - (operandPos + 2))
	binary.LittleEndian.PutUint16(c.code[operandPos:], uint16(rel))
}

func (c *Compiler) here() int { return len(c.code) }

// --- statements ---

func (c *Compiler) compileBlockLike(n ast.Node, si int) error {
	if n == nil {
		return nil
	}
	if block, ok := n.(*ast.Block); ok {
		for _, stmt := range block.Statements {
			if err := c.compileStatement(stmt, si); err != nil {
				return err
			}
		}
		return nil
	}
	return c.compileStatement(n, si)
}

func (c *Compiler) compileStatement(n ast.Node, si int) error {
	st := c.storages[si]
	st.ResetTempCounter()

	switch node := n.(type) {
	case *ast.Assignment:
		return c.compileAssignment(node, si)

	case *ast.IfStatement:
		return c.compileIf(node, si)

	case *ast.EndlessLoop:
		return c.compileEndlessLoop(node, si)

	case *ast.WhileLoop:
		return c.compileWhileLoop(node, si)

	case *ast.Break:
		if len(c.loops) == 0 {
			return errs.New(errs.BreakAndContinueBelongToLoops, 0, 0)
		}
		pos := c.emitJumpPlaceholder(Jump)
		top := c.loops[len(c.loops)-1]
		top.breaks = append(top.breaks, pos)
		return nil

	case *ast.Continue:
		if len(c.loops) == 0 {
			return errs.New(errs.BreakAndContinueBelongToLoops, 0, 0)
		}
		pos := c.emitJumpPlaceholder(Jump)
		top := c.loops[len(c.loops)-1]
		top.continues = append(top.continues, pos)
		return nil

	case *ast.Return:
		if node.Expression != nil {
			if err := c.compileExpr(node.Expression, si); err != nil {
				return err
			}
		} else {
			if err := c.loadConstant(value.Empty{}, si); err != nil {
				return err
			}
		}
		c.emit(Return)
		return nil

	case *ast.FunctionDefination:
		return c.compileFunctionDefination(node, si)

	case *ast.LoadModule, *ast.StoreModule:
		// Module metadata is recorded by the parser/storage phase; no
		// bytecode is emitted for it directly.
		return nil

	default:
		if err := c.compileExpr(n, si); err != nil {
			return err
		}
		return nil
	}
}

func (c *Compiler) compileAssignment(node *ast.Assignment, si int) error {
	sym, ok := node.Target.(*ast.Symbol)
	if !ok {
		// Target is an Indexer: compile the base, the index, then the RHS,
		// and emit SetItem. Any other target is an InvalidExpression.
		return c.compileIndexedAssignment(node, si)
	}

	slot, ok := c.storages[si].GetVariableSlot(sym.Name)
	if !ok {
		return errs.New(errs.InvalidExpression, 0, 0)
	}

	switch node.Op {
	case ast.AssignSet:
		// erhan = diger, both bare symbols: fuse the load and store into one
		// instruction rather than round-tripping the value through the stack.
		if rhs, ok := node.Expression.(*ast.Symbol); ok {
			if srcSlot, ok := c.storages[si].GetVariableSlot(rhs.Name); ok {
				c.emitU8U8(FastStore, slot, srcSlot)
				return nil
			}
		}
		if err := c.compileExpr(node.Expression, si); err != nil {
			return err
		}
	case ast.AssignAdd, ast.AssignSub, ast.AssignMul, ast.AssignDiv:
		c.emitU8(Load, slot)
		if err := c.compileExpr(node.Expression, si); err != nil {
			return err
		}
		c.emit(compoundOp(node.Op))
	}
	c.emitU8(Store, slot)
	return nil
}

func compoundOp(op ast.AssignOp) Opcode {
	switch op {
	case ast.AssignAdd:
		return Addition
	case ast.AssignSub:
		return Subraction
	case ast.AssignMul:
		return Multiply
	case ast.AssignDiv:
		return Division
	default:
		return Addition
	}
}

func (c *Compiler) compileIndexedAssignment(node *ast.Assignment, si int) error {
	idx, ok := node.Target.(*ast.Indexer)
	if !ok {
		return errs.New(errs.InvalidExpression, 0, 0)
	}
	if err := c.compileExpr(idx.Body, si); err != nil {
		return err
	}
	if err := c.compileExpr(idx.IndexExpr, si); err != nil {
		return err
	}
	if err := c.compileExpr(node.Expression, si); err != nil {
		return err
	}
	c.emit(SetItem)
	return nil
}

func (c *Compiler) compileIf(node *ast.IfStatement, si int) error {
	if err := c.compileExpr(node.Test, si); err != nil {
		return err
	}
	falsePos := c.emitJumpPlaceholder(JumpIfFalse)
	if err := c.compileBlockLike(node.Body, si); err != nil {
		return err
	}
	endPos := c.emitJumpPlaceholder(Jump)
	c.patchJump(falsePos, c.here())

	if err := c.compileIfChain(node.ElseIfs, node.ElseBody, si); err != nil {
		return err
	}
	c.patchJump(endPos, c.here())
	return nil
}

func (c *Compiler) compileIfChain(elseifs []ast.ElseIf, elseBody ast.Node, si int) error {
	if len(elseifs) == 0 {
		return c.compileBlockLike(elseBody, si)
	}
	head := elseifs[0]
	if err := c.compileExpr(head.Test, si); err != nil {
		return err
	}
	falsePos := c.emitJumpPlaceholder(JumpIfFalse)
	if err := c.compileBlockLike(head.Body, si); err != nil {
		return err
	}
	endPos := c.emitJumpPlaceholder(Jump)
	c.patchJump(falsePos, c.here())
	if err := c.compileIfChain(elseifs[1:], elseBody, si); err != nil {
		return err
	}
	c.patchJump(endPos, c.here())
	return nil
}

func (c *Compiler) compileEndlessLoop(node *ast.EndlessLoop, si int) error {
	loop := &loopLabels{start: c.here()}
	c.loops = append(c.loops, loop)

	if err := c.compileBlockLike(node.Body, si); err != nil {
		return err
	}
	backPos := c.emitJumpPlaceholder(Jump)
	c.patchJump(backPos, loop.start)

	c.loops = c.loops[:len(c.loops)-1]
	for _, pos := range loop.continues {
		c.patchJump(pos, loop.start)
	}
	for _, pos := range loop.breaks {
		c.patchJump(pos, c.here())
	}
	return nil
}

func (c *Compiler) compileWhileLoop(node *ast.WhileLoop, si int) error {
	loop := &loopLabels{start: c.here()}
	c.loops = append(c.loops, loop)

	if err := c.compileBlockLike(node.Body, si); err != nil {
		return err
	}
	continueTarget := c.here()
	if err := c.compileExpr(node.Test, si); err != nil {
		return err
	}
	backPos := c.emitJumpPlaceholder(JumpIfFalse)
	exitPos := c.emitJumpPlaceholder(Jump)
	c.patchJump(backPos, c.here())
	c.patchJump(exitPos, loop.start)

	c.loops = c.loops[:len(c.loops)-1]
	for _, pos := range loop.continues {
		c.patchJump(pos, continueTarget)
	}
	for _, pos := range loop.breaks {
		c.patchJump(pos, c.here())
	}
	return nil
}

func (c *Compiler) compileFunctionDefination(node *ast.FunctionDefination, si int) error {
	c.storageCounter++
	childSi := c.storageCounter
	if childSi >= len(c.storages) {
		return errs.New(errs.FunctionNameNotDefined, 0, 0)
	}
	child := c.storages[childSi]

	skipPos := c.emitJumpPlaceholder(Jump)
	entry := c.here()

	// Register the entry before compiling the body, so a function can call
	// itself recursively by name.
	fe := &FuncEntry{
		Name:         node.Name,
		StorageIndex: childSi,
		Offset:       uint16(entry),
		ArgCount:     len(node.Arguments),
	}
	c.functions = append(c.functions, fe)
	if c.storageFuncs[si] == nil {
		c.storageFuncs[si] = make(map[string]*FuncEntry)
	}
	c.storageFuncs[si][node.Name] = fe

	for i := len(node.Arguments) - 1; i >= 0; i-- {
		slot, ok := child.GetVariableSlot(node.Arguments[i])
		if !ok {
			return errs.New(errs.ArgumentNotFound, 0, 0)
		}
		c.emitU8(Store, slot)
	}

	lastIsReturn := false
	if block, ok := node.Body.(*ast.Block); ok && len(block.Statements) > 0 {
		_, lastIsReturn = block.Statements[len(block.Statements)-1].(*ast.Return)
	}
	if err := c.compileBlockLike(node.Body, childSi); err != nil {
		return err
	}
	if !lastIsReturn {
		if err := c.loadConstant(value.Empty{}, childSi); err != nil {
			return err
		}
		c.emit(Return)
	}

	c.patchJump(skipPos, c.here())
	return nil
}

// --- expressions ---

func (c *Compiler) loadConstant(p value.Primative, si int) error {
	st := c.storages[si]
	slot, err := st.AddConstant(p)
	if err != nil {
		return err
	}
	c.emitU8(Load, slot)
	return nil
}

func (c *Compiler) compileExpr(n ast.Node, si int) error {
	switch node := n.(type) {
	case *ast.Primative:
		return c.loadConstant(node.Value, si)

	case *ast.Symbol:
		slot, ok := c.storages[si].GetVariableSlot(node.Name)
		if !ok {
			return errs.New(errs.InvalidExpression, 0, 0)
		}
		c.emitU8(Load, slot)
		return nil

	case *ast.Binary:
		return c.compileBinaryLike(node.Left, node.Op, node.Right, si)

	case *ast.Control:
		return c.compileControl(node, si)

	case *ast.PrefixUnary:
		return c.compilePrefixUnary(node, si)

	case *ast.SuffixUnary:
		if err := c.compileExpr(node.Operand, si); err != nil {
			return err
		}
		c.emit(incDecOp(node.Op))
		return nil

	case *ast.FuncCall:
		return c.compileFuncCall(node, si)

	case *ast.Indexer:
		if err := c.compileExpr(node.Body, si); err != nil {
			return err
		}
		if err := c.compileExpr(node.IndexExpr, si); err != nil {
			return err
		}
		c.emit(GetItem)
		return nil

	case *ast.AccessorFuncCall:
		return c.compileAccessorFuncCall(node, si)

	case *ast.ListLiteral:
		for _, item := range node.Items {
			if err := c.compileExpr(item, si); err != nil {
				return err
			}
		}
		c.emitU16(InitList, uint16(len(node.Items)))
		return nil

	case *ast.DictLiteral:
		for i := range node.Keys {
			if err := c.compileExpr(node.Keys[i], si); err != nil {
				return err
			}
			if err := c.compileExpr(node.Values[i], si); err != nil {
				return err
			}
		}
		c.emitU16(InitDict, uint16(len(node.Keys)))
		return nil

	case *ast.None, nil:
		return c.loadConstant(value.Empty{}, si)

	default:
		return errs.New(errs.InvalidExpression, 0, 0)
	}
}

func (c *Compiler) compileBinaryLike(left ast.Node, op token.Op, right ast.Node, si int) error {
	if err := c.compileExpr(left, si); err != nil {
		return err
	}
	if err := c.compileExpr(right, si); err != nil {
		return err
	}
	opc, err := opcodeForOp(op)
	if err != nil {
		return err
	}
	c.emit(opc)
	return nil
}

func opcodeForOp(op token.Op) (Opcode, error) {
	switch op {
	case token.OpAddition:
		return Addition, nil
	case token.OpSubtraction:
		return Subraction, nil
	case token.OpMultiplication:
		return Multiply, nil
	case token.OpDivision:
		return Division, nil
	case token.OpModulo:
		return Modulo, nil
	case token.OpEqual:
		return Equal, nil
	case token.OpNotEqual:
		return NotEqual, nil
	case token.OpGreaterThan:
		return GreaterThan, nil
	case token.OpLessThan:
		return LessThan, nil
	case token.OpGreaterEqualThan:
		return GreaterEqualThan, nil
	case token.OpLessEqualThan:
		return LessEqualThan, nil
	default:
		return Halt, errs.New(errs.InvalidExpression, 0, 0)
	}
}

// compileControl compiles or/and as short-circuit branches and every other
// Control operator (equality/comparison) as a plain compile-both-sides-emit
// -opcode sequence; see compileBinaryLike.
func (c *Compiler) compileControl(node *ast.Control, si int) error {
	switch node.Op {
	case token.OpAnd:
		if err := c.compileExpr(node.Left, si); err != nil {
			return err
		}
		skip := c.emitJumpPlaceholder(JumpIfFalse)
		if err := c.compileExpr(node.Right, si); err != nil {
			return err
		}
		end := c.emitJumpPlaceholder(Jump)
		c.patchJump(skip, c.here())
		if err := c.loadConstant(value.Bool(false), si); err != nil {
			return err
		}
		c.patchJump(end, c.here())
		return nil

	case token.OpOr:
		if err := c.compileExpr(node.Left, si); err != nil {
			return err
		}
		skip := c.emitJumpPlaceholder(JumpIfFalse)
		if err := c.loadConstant(value.Bool(true), si); err != nil {
			return err
		}
		end := c.emitJumpPlaceholder(Jump)
		c.patchJump(skip, c.here())
		if err := c.compileExpr(node.Right, si); err != nil {
			return err
		}
		c.patchJump(end, c.here())
		return nil

	default:
		return c.compileBinaryLike(node.Left, node.Op, node.Right, si)
	}
}

func (c *Compiler) compilePrefixUnary(node *ast.PrefixUnary, si int) error {
	switch node.Op {
	case token.OpIncrement:
		if err := c.compileExpr(node.Operand, si); err != nil {
			return err
		}
		c.emit(Increment)
		return nil
	case token.OpDeccrement:
		if err := c.compileExpr(node.Operand, si); err != nil {
			return err
		}
		c.emit(Decrement)
		return nil
	case token.OpNot:
		if err := c.compileExpr(node.Operand, si); err != nil {
			return err
		}
		c.emit(Not)
		return nil
	case token.OpSubtraction:
		// Unary minus has no dedicated opcode: compile as 0 - operand.
		if err := c.loadConstant(value.Number(0), si); err != nil {
			return err
		}
		if err := c.compileExpr(node.Operand, si); err != nil {
			return err
		}
		c.emit(Subraction)
		return nil
	case token.OpAddition:
		// Unary plus is a no-op beyond evaluating the operand.
		return c.compileExpr(node.Operand, si)
	default:
		return errs.New(errs.InvalidUnaryOperation, 0, 0)
	}
}

func incDecOp(op token.Op) Opcode {
	if op == token.OpDeccrement {
		return Decrement
	}
	return Increment
}

func (c *Compiler) compileFuncCall(node *ast.FuncCall, si int) error {
	for _, arg := range node.Arguments {
		if err := c.compileExpr(arg, si); err != nil {
			return err
		}
	}

	sym, ok := node.Callee.(*ast.Symbol)
	if !ok {
		return errs.New(errs.FunctionCallSyntaxNotValid, 0, 0)
	}

	if fe := c.lookupFunction(si, sym.Name); fe != nil {
		c.emitU16U8(Call, fe.Offset, len(node.Arguments))
		return c.stashTempReturn(node.AssignToTemp, si)
	}

	if c.modules != nil {
		if fref, ok := c.modules.FindMethod(nil, sym.Name); ok {
			slot, err := c.storages[si].AddLateConstant(fref)
			if err != nil {
				return err
			}
			c.emitU8U8(NativeCall, slot, len(node.Arguments))
			return c.stashTempReturn(node.AssignToTemp, si)
		}
	}
	return errs.New(errs.FunctionNameNotDefined, 0, 0)
}

// stashTempReturn implements the "update functions for temp return" pass's
// codegen half: a call result marked assign_to_temp must be recorded in a
// temp slot before whatever enclosing operator or suffix step consumes it.
// CopyToStore peeks the stack rather than popping it, so the call's result
// stays exactly where the caller already expects it.
func (c *Compiler) stashTempReturn(assignToTemp bool, si int) error {
	if !assignToTemp {
		return nil
	}
	slot := c.storages[si].GetFreeTempSlot()
	c.emitU8(CopyToStore, slot)
	return nil
}

func (c *Compiler) compileAccessorFuncCall(node *ast.AccessorFuncCall, si int) error {
	if err := c.compileExpr(node.Source, si); err != nil {
		return err
	}

	switch indexer := node.Indexer.(type) {
	case *ast.Symbol:
		if err := c.loadConstant(&value.Text{Value: indexer.Name}, si); err != nil {
			return err
		}
		c.emit(GetItem)
		return c.stashTempReturn(node.AssignToTemp, si)

	case *ast.FuncCall:
		for _, arg := range indexer.Arguments {
			if err := c.compileExpr(arg, si); err != nil {
				return err
			}
		}
		calleeSym, ok := indexer.Callee.(*ast.Symbol)
		if !ok {
			return errs.New(errs.FunctionCallSyntaxNotValid, 0, 0)
		}
		if c.modules != nil {
			if fref, ok := c.modules.FindMethod(moduleSourcePath(node.Source), calleeSym.Name); ok {
				slot, err := c.storages[si].AddLateConstant(fref)
				if err != nil {
					return err
				}
				c.emitU8U8(NativeCall, slot, len(indexer.Arguments))
				return c.stashTempReturn(node.AssignToTemp, si)
			}
		}
		c.emitU8U8(NativeCall, 0, len(indexer.Arguments))
		return c.stashTempReturn(node.AssignToTemp, si)

	default:
		return errs.New(errs.FunctionCallSyntaxNotValid, 0, 0)
	}
}

// moduleSourcePath reconstructs a dotted module path from a chain of
// AccessorFuncCall/Symbol nodes (e.g. "io" in "io.read(...)").
func moduleSourcePath(n ast.Node) []string {
	var parts []string
	for {
		switch node := n.(type) {
		case *ast.Symbol:
			parts = append([]string{node.Name}, parts...)
			return parts
		case *ast.AccessorFuncCall:
			if sym, ok := node.Indexer.(*ast.Symbol); ok {
				parts = append([]string{sym.Name}, parts...)
			}
			n = node.Source
		default:
			return parts
		}
	}
}

// lookupFunction walks from storage si outward via Parent links looking
// for name in each storage's function registry, per the function-linking
// contract.
func (c *Compiler) lookupFunction(si int, name string) *FuncEntry {
	for si >= 0 {
		if fns, ok := c.storageFuncs[si]; ok {
			if fe, ok := fns[name]; ok {
				return fe
			}
		}
		si = c.storages[si].Parent
	}
	return nil
}
