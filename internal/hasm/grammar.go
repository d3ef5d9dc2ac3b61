// Package hasm parses emitted HRM assembly text back into a structured
// form, for the compiler's --verify round-trip check and for the language
// server's hover/diagnostics over compiled output. Grounded on the
// teacher's grammar/grammar.go + grammar/lexer.go (participle struct-tag
// grammar over a stateful lexer), generalized from Kanso's brace-delimited
// module syntax to HRM assembly's flat, label-and-mnemonic line format.
package hasm

import "github.com/alecthomas/participle/v2/lexer"

// HRMLexer tokenizes HRM assembly: a header line, then a flat sequence of
// `LABEL:`-prefixed or bare instruction lines.
var HRMLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Header", `-- HUMAN RESOURCE MACHINE PROGRAM --`, nil},
		{"Ident", `[a-zA-Z][a-zA-Z0-9]*`, nil},
		{"Number", `-?[0-9]+`, nil},
		{"Colon", `:`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

// Program is the root grammar node: an optional header followed by every
// line in the file.
type Program struct {
	Header string `@Header`
	Lines  []*Line `@@*`
}

// Line is either a bare instruction, a label followed by an instruction, or
// (the dedicated end block, when nothing ever falls through to it) a label
// with no instruction at all — the program simply halts there.
type Line struct {
	Label       string       `( @Ident Colon )?`
	Instruction *Instruction `@@?`
}

// Instruction is one mnemonic with an optional operand: a floor address for
// COPYFROM/COPYTO/ADD/SUB/BUMPUP/BUMPDN, or a label for JUMP/JUMPZ/JUMPN.
type Instruction struct {
	Mnemonic string `@Ident`
	Operand  string `@(Ident | Number)?`
}
