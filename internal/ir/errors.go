package ir

import (
	"fmt"

	"hc/internal/errors"
)

// InternalError signals that a compiler invariant was violated — a
// pseudo-instruction surviving to emission, or a binary operation whose
// operand is not in the shape lowering promised. These never reach the CLI
// as a source error; internal/compiler recovers them at the top level and
// reports them as a fatal diagnostic distinct from HCTypeError.
type InternalError struct {
	errors.CompilerError
}

func (e *InternalError) Error() string { return e.Message }

func internalErrorf(code, format string, args ...interface{}) *InternalError {
	return &InternalError{errors.CompilerError{
		Level:   errors.Error,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}}
}
