package dataflow

import "hc/internal/ir"

// VariableMerge implements spec.md §4.6: variables that are never alive at
// the same instruction (no interference edge) may share one floor cell.
// init-declared names are pinned to their address and are never merged
// away, though another name may still be merged into one of them.
type VariableMerge struct{}

func (vm *VariableMerge) Name() string        { return "variable-merge" }
func (vm *VariableMerge) Description() string { return "coalesces non-interfering variables onto a shared name" }

func (vm *VariableMerge) Apply(program *ir.Program) bool {
	interferes := map[[2]string]bool{}

	addPair := func(a, b string) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		interferes[[2]string{a, b}] = true
	}

	for _, b := range program.Blocks {
		for _, instr := range b.Instructions {
			var used []string
			for name, ok := range instr.VariablesUsed {
				if ok {
					used = append(used, name)
				}
			}
			for i := 0; i < len(used); i++ {
				for j := i + 1; j < len(used); j++ {
					addPair(used[i], used[j])
				}
			}
		}
	}

	pinned := map[string]bool{}
	for name := range program.InitialMemory {
		pinned[name] = true
	}

	// order is deterministic: init-declared names first (program.Order is
	// populated by the compiler's memory-map prepass in their textual
	// order), then every other name in first-encounter block/instruction
	// order, matching spec.md §5's memory-assignment ordering guarantee.
	var ordered []string
	seen := map[string]bool{}
	for _, n := range program.Order {
		if !seen[n] {
			ordered = append(ordered, n)
			seen[n] = true
		}
	}
	for _, b := range program.Blocks {
		for _, instr := range b.Instructions {
			for _, n := range instructionNames(instr) {
				if !seen[n] {
					ordered = append(ordered, n)
					seen[n] = true
				}
			}
		}
	}

	alias := map[string]string{}
	resolve := func(n string) string {
		for alias[n] != "" && alias[n] != n {
			n = alias[n]
		}
		return n
	}

	changed := false
	for i := 0; i < len(ordered); i++ {
		a := resolve(ordered[i])
		if pinned[a] {
			continue // a is a keep-alive sink: never retired, but may absorb others
		}
		for j := i + 1; j < len(ordered); j++ {
			b := resolve(ordered[j])
			if a == b {
				continue
			}
			if interferes[pairKey(a, b)] {
				continue
			}
			// Merge a into b: prefer retiring the non-pinned, later-declared
			// name. If b is pinned, a is simply renamed to b; otherwise
			// fold a into b (b survives under its own name, a is retired).
			// Anything that conflicted with a now conflicts with b too, so a
			// later decision in this loop won't merge b with a name a could
			// never have shared a cell with.
			var inheritedFrom []string
			for pair := range interferes {
				if pair[0] == a {
					inheritedFrom = append(inheritedFrom, pair[1])
				} else if pair[1] == a {
					inheritedFrom = append(inheritedFrom, pair[0])
				}
			}
			for _, x := range inheritedFrom {
				addPair(b, x)
			}
			alias[a] = b
			changed = true
			break
		}
	}

	if !changed {
		return false
	}

	for _, b := range program.Blocks {
		for _, instr := range b.Instructions {
			if instr.Kind != ir.KindLoadConstant {
				if instr.Name != "" {
					instr.Name = resolve(instr.Name)
				}
			}
			if !instr.DiffLeft.IsConst {
				instr.DiffLeft.Name = resolve(instr.DiffLeft.Name)
			}
			if !instr.DiffRight.IsConst {
				instr.DiffRight.Name = resolve(instr.DiffRight.Name)
			}
			if len(instr.VariablesUsed) > 0 {
				renamed := map[string]bool{}
				for name, ok := range instr.VariablesUsed {
					if ok {
						renamed[resolve(name)] = true
					}
				}
				instr.VariablesUsed = renamed
			}
		}
	}

	return true
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func instructionNames(instr *ir.Instruction) []string {
	var out []string
	if instr.Name != "" && instr.Kind != ir.KindLoadConstant {
		out = append(out, instr.Name)
	}
	if !instr.DiffLeft.IsConst && instr.DiffLeft.Name != "" {
		out = append(out, instr.DiffLeft.Name)
	}
	if !instr.DiffRight.IsConst && instr.DiffRight.Name != "" {
		out = append(out, instr.DiffRight.Name)
	}
	return out
}
