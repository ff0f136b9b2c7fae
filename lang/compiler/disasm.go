package compiler

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Disassemble renders a compiled bytecode stream as one instruction per
// line: offset, mnemonic, and any operand bytes decoded as unsigned
// little-endian integers. Used by cmd/karamel's dump-bytecode subcommand
// and by compiler package tests to assert on emitted code without
// comparing raw bytes.
func Disassemble(code []byte) string {
	var b strings.Builder
	for i := 0; i < len(code); {
		op := Opcode(code[i])
		n := op.operandBytes()
		fmt.Fprintf(&b, "%04d %s", i, op)

		switch {
		case n == 1:
			fmt.Fprintf(&b, " %d", code[i+1])
		case n == 2 && (op == NativeCall || op == FastStore):
			fmt.Fprintf(&b, " %d %d", code[i+1], code[i+2])
		case n == 2:
			fmt.Fprintf(&b, " %d", binary.LittleEndian.Uint16(code[i+1:i+3]))
		case n == 3:
			fmt.Fprintf(&b, " %d %d", binary.LittleEndian.Uint16(code[i+1:i+3]), code[i+3])
		}
		b.WriteByte('\n')
		i += 1 + n
	}
	return b.String()
}
