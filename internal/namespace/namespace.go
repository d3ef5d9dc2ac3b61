// Package namespace tracks the set of names in use within a program and
// mints fresh synthetic names for values the lowering pass needs to hoist
// into temporaries.
package namespace

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// Namespace is the set of variable names already claimed by a program,
// together with a cursor for generating fresh ones.
type Namespace struct {
	names          map[string]bool
	nextGeneratdID int
}

// New returns an empty Namespace.
func New() *Namespace {
	return &Namespace{names: make(map[string]bool)}
}

// AddName records name as claimed. It is a no-op if name is already present.
func (ns *Namespace) AddName(name string) {
	ns.names[name] = true
}

// Has reports whether name has been claimed, either by a source declaration
// or by a previous call to GetUniqueName.
func (ns *Namespace) Has(name string) bool {
	return ns.names[name]
}

// Merge folds other's claimed names into ns, used when combining the
// namespaces of nested blocks that were parsed independently.
func (ns *Namespace) Merge(other *Namespace) {
	for n := range other.names {
		ns.names[n] = true
	}
}

// GetUniqueName mints and claims a fresh name not already present in the
// namespace, used to hold a hoisted intermediate value.
func (ns *Namespace) GetUniqueName() string {
	for {
		candidate := generateName(ns.nextGeneratdID)
		ns.nextGeneratdID++
		if !ns.names[candidate] {
			ns.names[candidate] = true
			return candidate
		}
	}
}

// generateName produces the idx'th name in the sequence a, b, c, ..., z, aa,
// ab, ..., matching a base-26 counter over lowercase letters.
func generateName(idx int) string {
	if idx < 26 {
		return string(rune('a' + idx))
	}
	var sb strings.Builder
	n := idx
	for n >= 0 {
		sb.WriteByte(byte('a' + n%26))
		n = n/26 - 1
	}
	s := sb.String()
	// reverse
	runes := []byte(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ReportLabel formats a generated name for inclusion in diagnostic or
// --verify report output, e.g. "tmpVarA" style headers.
func ReportLabel(name string) string {
	return strcase.ToCamel("tmp_" + name)
}
