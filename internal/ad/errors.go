package ad

import "errors"

// Sentinel errors for the differentiation engine. Every fatal condition
// wraps one of these; a fatal condition aborts the whole run with no
// partial result.
var (
	// ErrMissingRule indicates a node kind with no differentiation rule.
	// Compound tensor operators must be eliminated by an upstream
	// expansion pass before differentiation.
	ErrMissingRule = errors.New("ad: no differentiation rule for node kind")

	// ErrIndexCollision indicates a bound summation index that coincides
	// with a free index of the differentiation variable.
	ErrIndexCollision = errors.New("ad: index scope collision")

	// ErrPrecondition indicates a violated shape or scalarity
	// precondition of a differentiation rule.
	ErrPrecondition = errors.New("ad: rule precondition violated")

	// ErrDomain indicates a derivative that is undefined on the given
	// input, such as the logarithm of a structural zero.
	ErrDomain = errors.New("ad: derivative domain violation")

	// ErrInternal indicates an engine bug: a node reached a context
	// that should already have resolved it.
	ErrInternal = errors.New("ad: internal consistency violation")
)
