package lowering

import (
	"sync"

	"hc/internal/ast"
	"hc/internal/errors"
	"hc/internal/token"
)

// Plan is a memoized expansion strategy for multiplying a value by a
// positive integer using only additions: applying Factors in order against
// an accumulator starting at the base value yields base*(n-Offset), and
// Offset further copies of the original value are then added on top to
// reach base*n. Each factor f contributes f-1 self-adds of the running
// value; each unit of Offset contributes one further add of the original
// value, so Offset is only worth taking when it buys a cheaper
// factorization of n-Offset than n itself has (e.g. a prime n next to a
// cheaply-factored n-1).
type Plan struct {
	Factors []int
	Offset  int
	Cost    int
}

var (
	planMu     sync.Mutex
	planMemo   = map[int]Plan{1: {Factors: nil, Cost: 0}}
	factorMemo = map[int]Plan{1: {Factors: nil, Cost: 0}}
)

// planFor returns the cost-minimizing expansion of n (n >= 1), searching
// both pure factorizations and factorization-plus-offset, memoized in a
// process-wide table that is never evicted.
func planFor(n int) Plan {
	planMu.Lock()
	defer planMu.Unlock()
	return planForLocked(n)
}

func planForLocked(n int) Plan {
	if p, ok := planMemo[n]; ok {
		return p
	}
	best := factorPlanLocked(n)

	for offset := 1; offset <= 3 && offset < n; offset++ {
		base := n - offset
		if base < 1 {
			continue
		}
		sub := factorPlanLocked(base)
		cost := sub.Cost + offset
		if cost < best.Cost {
			best = Plan{Factors: sub.Factors, Offset: offset, Cost: cost}
		}
	}

	planMemo[n] = best
	return best
}

// factorPlanLocked is the pure divisor/self-add search, with no offset term.
// planForLocked layers the offset search on top of it against strictly
// smaller bases, so this recursion always terminates.
func factorPlanLocked(n int) Plan {
	if p, ok := factorMemo[n]; ok {
		return p
	}
	best := Plan{Factors: []int{n}, Cost: n - 1}
	for f := 2; f <= n; f++ {
		if n%f != 0 {
			continue
		}
		sub := factorPlanLocked(n / f)
		cost := (f - 1) + sub.Cost
		if cost <= best.Cost {
			best = Plan{Factors: append([]int{f}, sub.Factors...), Cost: cost}
		}
	}
	factorMemo[n] = best
	return best
}

// lowerMultiply implements spec.md §4.1's multiplication rules: only
// expr*constant (or constant*expr) is accepted; the constant side is
// expanded via the memoized planner into nested self-adds.
func (lw *Lowerer) lowerMultiply(leftRaw, rightRaw ast.Expr, pos token.Position) (ast.Expr, []ast.Stmt) {
	left, linj := lw.LowerValue(leftRaw)
	right, rinj := lw.LowerValue(rightRaw)
	injected := append(append([]ast.Stmt{}, linj...), rinj...)

	nl, lIsNum := isNumber(left)
	nr, rIsNum := isNumber(right)

	switch {
	case lIsNum && rIsNum:
		return &ast.Number{Position: pos, Value: nl.Value * nr.Value}, injected
	case rIsNum:
		expr, more := lw.expandMultiply(left, nr.Value, pos)
		return expr, append(injected, more...)
	case lIsNum:
		expr, more := lw.expandMultiply(right, nl.Value, pos)
		return expr, append(injected, more...)
	default:
		lw.errorf(pos, errors.ErrorInvalidMultiplication,
			"Multiplication requires one constant operand on line %d", pos.Line)
		// Degrade gracefully so later passes still see a well-shaped tree.
		return &ast.Number{Position: pos, Value: 0}, injected
	}
}

func (lw *Lowerer) expandMultiply(base ast.Expr, n int, pos token.Position) (ast.Expr, []ast.Stmt) {
	if n == 0 {
		var injected []ast.Stmt
		if HasSideEffects(base) {
			injected = append(injected, &ast.ExprLine{Position: pos, Expr: base})
		}
		return &ast.Number{Position: pos, Value: 0}, injected
	}
	neg := n < 0
	if neg {
		n = -n
	}

	var injected []ast.Stmt
	cur := base
	if n > 1 && !isSimple(cur) {
		ref, stmt := lw.hoist(cur, pos)
		injected = append(injected, stmt)
		cur = ref
	} else if n > 1 && HasSideEffects(cur) {
		ref, stmt := lw.hoist(cur, pos)
		injected = append(injected, stmt)
		cur = ref
	}

	plan := planFor(n)
	origRef := cur
	for i, f := range plan.Factors {
		chain := selfAddChain(cur, f, pos)
		if i == len(plan.Factors)-1 {
			cur = chain
		} else {
			ref, stmt := lw.hoist(chain, pos)
			injected = append(injected, stmt)
			cur = ref
		}
	}

	if len(plan.Factors) == 0 {
		cur = origRef // n-plan.Offset == 1, nothing left to scale
	}

	for i := 0; i < plan.Offset; i++ {
		cur = &ast.Binary{Position: pos, Op: ast.OpAdd, Left: cur, Right: origRef}
	}

	if neg {
		result, more := lw.reduceAdditive(ast.OpSubtract, &ast.Number{Position: pos, Value: 0}, cur, pos)
		return result, append(injected, more...)
	}
	return cur, injected
}

// selfAddChain builds value+value+...+value (f copies, f-1 Add nodes).
func selfAddChain(value ast.Expr, f int, pos token.Position) ast.Expr {
	if f <= 1 {
		return value
	}
	acc := value
	for i := 1; i < f; i++ {
		acc = &ast.Binary{Position: pos, Op: ast.OpAdd, Left: acc, Right: value}
	}
	return acc
}
