package behavior

import "errors"

// Sentinel errors for compiling and evaluating behavior source.
var (
	ErrEmptySource     = errors.New("behavior: source is empty")
	ErrSyntax          = errors.New("behavior: syntax error")
	ErrUnknownFunction = errors.New("behavior: unknown function")
	ErrEvaluation      = errors.New("behavior: evaluation failed")
	ErrNotPortable     = errors.New("behavior: no script equivalent")
)
