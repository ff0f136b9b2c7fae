package compiler

import "fmt"

// Opcode is a single bytecode instruction tag. Each opcode is one byte
// followed by a fixed, opcode-specific run of little-endian operand bytes.
type Opcode uint8

// "x OP y z" stack pictures describe the state of the operand stack before
// and after the instruction executes.
const ( //nolint:revive
	Halt Opcode = iota //                  - Halt        -       terminate

	// memory access
	Load        //          - Load<slot>        x              push memory[slot]
	Store       //          x Store<slot>       -               pop into memory[slot]
	FastStore   //          - FastStore<dst,src> -               memory[dst] = memory[src], fused load+store
	CopyToStore //          x CopyToStore<slot> x              peek into memory[slot]

	// arithmetic (binary, pop 2 push 1)
	Addition
	Subraction //nolint:misspell // kept identical to the source taxonomy's spelling
	Multiply
	Division
	Modulo

	// comparisons (binary, pop 2 push 1 bool)
	Equal
	NotEqual
	GreaterThan
	LessThan
	GreaterEqualThan
	LessEqualThan

	// logical
	And
	Or
	Not

	// unary, in place on top of stack
	Increment
	Decrement

	// calls
	NativeCall //   args.. - NativeCall<fnslot,argc>   result
	Call       //   args.. - Call<entry,argc>           result
	Return     //     value Return                      -       pop frame

	// control flow
	Jump        //        - Jump<i16>          -           unconditional
	JumpIfFalse //     cond JumpIfFalse<i16>    -           pop, jump if false/empty

	// composites
	InitList //  items.. InitList<count>   list
	InitDict //  pairs.. InitDict<count>   dict

	// indexer dispatch (resolved through the class capability set)
	GetItem //   obj idx GetItem     elem
	SetItem //   obj idx val SetItem -
)

var opcodeNames = [...]string{
	Halt:             "Halt",
	Load:             "Load",
	Store:            "Store",
	FastStore:        "FastStore",
	CopyToStore:      "CopyToStore",
	Addition:         "Addition",
	Subraction:       "Subraction",
	Multiply:         "Multiply",
	Division:         "Division",
	Modulo:           "Modulo",
	Equal:            "Equal",
	NotEqual:         "NotEqual",
	GreaterThan:      "GreaterThan",
	LessThan:         "LessThan",
	GreaterEqualThan: "GreaterEqualThan",
	LessEqualThan:    "LessEqualThan",
	And:              "And",
	Or:               "Or",
	Not:              "Not",
	Increment:        "Increment",
	Decrement:        "Decrement",
	NativeCall:       "NativeCall",
	Call:             "Call",
	Return:           "Return",
	Jump:             "Jump",
	JumpIfFalse:      "JumpIfFalse",
	InitList:         "InitList",
	InitDict:         "InitDict",
	GetItem:          "GetItem",
	SetItem:          "SetItem",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// operandBytes reports how many operand bytes follow this opcode in the
// stream, used by disassembly to step from one instruction to the next.
func (op Opcode) operandBytes() int {
	switch op {
	case Halt, Addition, Subraction, Multiply, Division, Modulo,
		Equal, NotEqual, GreaterThan, LessThan, GreaterEqualThan, LessEqualThan,
		And, Or, Not, Increment, Decrement, Return, GetItem, SetItem:
		return 0
	case Load, Store, CopyToStore:
		return 1
	case NativeCall, FastStore:
		return 2
	case Call:
		return 3
	case Jump, JumpIfFalse:
		return 2
	case InitList, InitDict:
		return 2
	default:
		return 0
	}
}
