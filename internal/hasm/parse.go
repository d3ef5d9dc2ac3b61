package hasm

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Parse parses HRM assembly text into a Program, mirroring the teacher's
// ParseFile (grammar/parser.go) but operating on an in-memory string since
// hasm is driven by the compiler's own emitted output, not a file on disk.
func Parse(source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(HRMLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("hasm: failed to build parser: %w", err)
	}

	program, err := parser.ParseString("<asm>", source)
	if err != nil {
		return nil, fmt.Errorf("hasm: %w", err)
	}
	return program, nil
}

// Labels returns the set of label names the program declares, in case a
// caller (the --verify flag, the language server's hover) wants to resolve
// a jump target without re-walking Lines.
func (p *Program) Labels() map[string]int {
	labels := map[string]int{}
	idx := 0
	for _, l := range p.Lines {
		if l.Label != "" {
			labels[l.Label] = idx
		}
		idx++
	}
	return labels
}

// VerifyRoundTrip re-parses asm and reports whether every instruction
// mnemonic and operand it carries matches, used by cmd/hccompile's
// --verify flag to catch an emission bug rather than trust emitted text
// blindly.
func VerifyRoundTrip(asm string) error {
	program, err := Parse(asm)
	if err != nil {
		return err
	}
	labels := program.Labels()
	for _, l := range program.Lines {
		instr := l.Instruction
		if instr == nil {
			continue // a label-only line: the dedicated end block, nothing to check
		}
		switch instr.Mnemonic {
		case "INBOX", "OUTBOX":
			if instr.Operand != "" {
				return fmt.Errorf("hasm: %s takes no operand, got %q", instr.Mnemonic, instr.Operand)
			}
		case "COPYFROM", "COPYTO", "ADD", "SUB", "BUMPUP", "BUMPDN":
			if instr.Operand == "" {
				return fmt.Errorf("hasm: %s requires a floor address operand", instr.Mnemonic)
			}
		case "JUMP", "JUMPZ", "JUMPN":
			if _, ok := labels[instr.Operand]; !ok {
				return fmt.Errorf("hasm: %s targets undefined label %q", instr.Mnemonic, instr.Operand)
			}
		default:
			return fmt.Errorf("hasm: unrecognized mnemonic %q", instr.Mnemonic)
		}
	}
	return nil
}
