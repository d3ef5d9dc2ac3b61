package dataflow

import "hc/internal/ir"

// MemoryAssignment implements spec.md §4.9: floor addresses are assigned
// deterministically — init-declared names bind first, in their textual
// order; every other name encountered while scanning Load/Save/Add/
// Subtract/BumpUp/BumpDown instructions in final block/instruction order is
// assigned the first free address.
type MemoryAssignment struct {
	Addresses map[string]int
}

func (ma *MemoryAssignment) Name() string        { return "memory-assignment" }
func (ma *MemoryAssignment) Description() string { return "maps variable names to floor addresses" }

func (ma *MemoryAssignment) Apply(program *ir.Program) bool {
	addrs := map[string]int{}
	occupied := map[int]bool{}

	for _, name := range program.Order {
		if addr, ok := program.InitialMemory[name]; ok {
			addrs[name] = addr
			occupied[addr] = true
		}
	}
	for name, addr := range program.InitialMemory {
		if _, ok := addrs[name]; !ok {
			addrs[name] = addr
			occupied[addr] = true
		}
	}

	nextHole := 0
	allocate := func() int {
		for occupied[nextHole] {
			nextHole++
		}
		occupied[nextHole] = true
		return nextHole
	}

	for _, b := range program.Blocks {
		for _, instr := range b.Instructions {
			switch instr.Kind {
			case ir.KindLoad, ir.KindSave, ir.KindAdd, ir.KindSubtract, ir.KindBumpUp, ir.KindBumpDown:
				if _, ok := addrs[instr.Name]; !ok {
					addrs[instr.Name] = allocate()
				}
			}
		}
	}

	changed := !addressesEqual(ma.Addresses, addrs)
	ma.Addresses = addrs
	return changed
}

// NameToAddr is passed to ir.Emit as the address resolver once the pipeline
// has converged.
func (ma *MemoryAssignment) NameToAddr(name string) int {
	return ma.Addresses[name]
}

func addressesEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
