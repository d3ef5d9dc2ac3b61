package ir

import (
	"fmt"

	"hc/internal/errors"
)

// InstrKind enumerates the linear instructions and pseudo-instructions
// spec.md §3 describes. Jumps are modeled separately (see Jump) since they
// only ever terminate a block.
type InstrKind int

const (
	KindInput InstrKind = iota
	KindOutput
	KindLoad
	KindSave
	KindAdd
	KindSubtract
	KindBumpUp
	KindBumpDown
	// Pseudo-instructions: must be expanded by internal/dataflow before
	// textual emission. Surviving to emission is a compiler bug.
	KindLoadConstant
	KindDifference
)

// Operand is either a named floor cell or an immediate constant, used by
// the Difference pseudo-instruction whose two sides may each be either.
type Operand struct {
	IsConst bool
	Name    string
	Value   int
}

func VarOperand(name string) Operand { return Operand{Name: name} }
func ConstOperand(v int) Operand     { return Operand{IsConst: true, Value: v} }

func (o Operand) String() string {
	if o.IsConst {
		return fmt.Sprintf("%d", o.Value)
	}
	return o.Name
}

// Instruction is a single linear machine (or pseudo) instruction. Its
// VariablesUsed set is populated by liveness analysis (internal/dataflow)
// and read back by dead-store elimination.
type Instruction struct {
	Kind  InstrKind
	Name  string // operand for Load/Save/Add/Subtract/BumpUp/BumpDown
	Value int    // operand for LoadConstant

	DiffLeft  Operand // operands for Difference
	DiffRight Operand

	VariablesUsed map[string]bool
}

func newInstr(kind InstrKind) *Instruction {
	return &Instruction{Kind: kind, VariablesUsed: map[string]bool{}}
}

func NewInput() *Instruction  { return newInstr(KindInput) }
func NewOutput() *Instruction { return newInstr(KindOutput) }

func NewLoad(name string) *Instruction {
	i := newInstr(KindLoad)
	i.Name = name
	return i
}

func NewSave(name string) *Instruction {
	i := newInstr(KindSave)
	i.Name = name
	return i
}

func NewAdd(name string) *Instruction {
	i := newInstr(KindAdd)
	i.Name = name
	return i
}

func NewSubtract(name string) *Instruction {
	i := newInstr(KindSubtract)
	i.Name = name
	return i
}

func NewBumpUp(name string) *Instruction {
	i := newInstr(KindBumpUp)
	i.Name = name
	return i
}

func NewBumpDown(name string) *Instruction {
	i := newInstr(KindBumpDown)
	i.Name = name
	return i
}

func NewLoadConstant(v int) *Instruction {
	i := newInstr(KindLoadConstant)
	i.Value = v
	return i
}

func NewDifference(left, right Operand) *Instruction {
	i := newInstr(KindDifference)
	i.DiffLeft, i.DiffRight = left, right
	return i
}

// ReadsVariable reports whether the instruction's Name operand must already
// be initialized (used by liveness analysis). COPYTO (Save) only writes the
// floor cell, so it is deliberately excluded here.
func (i *Instruction) ReadsVariable() bool {
	switch i.Kind {
	case KindLoad, KindAdd, KindSubtract, KindBumpUp, KindBumpDown:
		return true
	default:
		return false
	}
}

// WritesVariable reports whether the instruction defines Name.
func (i *Instruction) WritesVariable() bool {
	switch i.Kind {
	case KindSave, KindBumpUp, KindBumpDown:
		return true
	default:
		return false
	}
}

func (i *Instruction) IsPseudo() bool {
	return i.Kind == KindLoadConstant || i.Kind == KindDifference
}

// ToAsm renders the instruction's textual form. Calling this on a pseudo
// instruction that survived to emission is a compiler bug — callers must
// check IsPseudo first (see internal/dataflow's expansion pass and
// internal/compiler's final-emission invariant check).
func (i *Instruction) ToAsm(nameToAddr func(string) int) string {
	switch i.Kind {
	case KindInput:
		return "INBOX"
	case KindOutput:
		return "OUTBOX"
	case KindLoad:
		return fmt.Sprintf("COPYFROM %d", nameToAddr(i.Name))
	case KindSave:
		return fmt.Sprintf("COPYTO %d", nameToAddr(i.Name))
	case KindAdd:
		return fmt.Sprintf("ADD %d", nameToAddr(i.Name))
	case KindSubtract:
		return fmt.Sprintf("SUB %d", nameToAddr(i.Name))
	case KindBumpUp:
		return fmt.Sprintf("BUMPUP %d", nameToAddr(i.Name))
	case KindBumpDown:
		return fmt.Sprintf("BUMPDN %d", nameToAddr(i.Name))
	default:
		panic(internalErrorf(errors.ErrorUnexpandedPseudo, "pseudo-instruction %v survived to emission", i.Kind))
	}
}

func (j *Jump) ToAsm() string {
	return fmt.Sprintf("%s %s", j.mnemonic(), j.Dest.Label)
}
