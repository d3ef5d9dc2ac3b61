// Package compiler wires the full HC→HRM pipeline together: parsing,
// expression lowering, CFG construction, dataflow optimization, and textual
// emission (spec.md §4). It is the single entry point cmd/hccompile drives.
package compiler

import (
	"fmt"
	"strings"

	"hc/internal/config"
	"hc/internal/dataflow"
	"hc/internal/errors"
	"hc/internal/ir"
	"hc/internal/lowering"
	"hc/internal/namespace"
	"hc/internal/parser"
)

// SourceError wraps one or more CompilerError diagnostics that the CLI
// reports with exit code 1 — lexical, syntactic, or semantic errors. An
// InternalError reaching Compile's caller instead signals a compiler bug
// and is never a SourceError.
type SourceError struct {
	Errs []errors.CompilerError
	text string
}

func (e *SourceError) Error() string { return e.text }

func newSourceError(filename, source string, errs []errors.CompilerError) *SourceError {
	reporter := errors.NewErrorReporter(filename, source)
	var sb strings.Builder
	for i, ce := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(reporter.FormatError(ce))
	}
	return &SourceError{Errs: errs, text: sb.String()}
}

// Compile runs the pipeline end to end with the default pass configuration
// and returns the emitted HRM assembly text. Only source and semantic
// errors are returned as a *SourceError, matching spec.md §7's CLI-visible
// error taxonomy; a compiler invariant violation instead comes back as a
// plain error wrapping *ir.InternalError, which the caller must not treat
// as a user-facing source error.
func Compile(filename, source string) (asm string, err error) {
	return CompileWithConfig(filename, source, config.Default())
}

// CompileWithConfig is Compile, honoring an hc.yaml's dataflow pass toggles.
func CompileWithConfig(filename, source string, cfg *config.Config) (asm string, err error) {
	result, err := CompileDetailedWithConfig(filename, source, cfg)
	if err != nil {
		return "", err
	}
	return result.Asm, nil
}

// CompileResult is everything the pipeline produces, for callers (like
// internal/lsp) that want more than the emitted text — the final floor
// address of every variable, for hover/completion.
type CompileResult struct {
	Asm   string
	Addrs map[string]int
}

// CompileDetailed is Compile, returning the full CompileResult.
func CompileDetailed(filename, source string) (*CompileResult, error) {
	return CompileDetailedWithConfig(filename, source, config.Default())
}

// CompileDetailedWithConfig is CompileWithConfig, returning the full
// CompileResult.
func CompileDetailedWithConfig(filename, source string, cfg *config.Config) (result *CompileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*ir.InternalError); ok {
				err = fmt.Errorf("internal compiler error (%s): %s", ie.Code, ie.Message)
				return
			}
			panic(r)
		}
	}()

	list, perrs := parser.Parse(filename, source)
	if len(perrs) > 0 {
		return nil, newSourceError(filename, source, perrs)
	}

	initialMemory, order, merrs := extractMemoryMap(list)
	if len(merrs) > 0 {
		return nil, newSourceError(filename, source, merrs)
	}

	ns := namespace.New()
	collectNames(list, ns)

	low := lowering.New(ns)
	loweredList := low.LowerStatementList(list)
	if lerrs := low.Errors(); len(lerrs) > 0 {
		return nil, newSourceError(filename, source, lerrs)
	}

	bld := ir.NewBuilder()
	program := bld.EmitStatementList(loweredList)
	blocks := bld.ExtractBlocks(program)

	prog := ir.NewProgram(blocks, initialMemory, order)

	pipeline := dataflow.NewPipelineWithConfig(cfg.Passes)
	pipeline.Run(prog)

	if derrs := pipeline.Liveness().Errors(); len(derrs) > 0 {
		return nil, newSourceError(filename, source, derrs)
	}
	if derrs := pipeline.AccumulatorState().Errors(); len(derrs) > 0 {
		return nil, newSourceError(filename, source, derrs)
	}

	asmText := ir.Emit(prog.Blocks, pipeline.MemoryAssignment().NameToAddr)
	return &CompileResult{Asm: asmText, Addrs: pipeline.MemoryAssignment().Addresses}, nil
}
