package ledger

import "errors"

// Outcomes a caller can match with errors.Is. A failed operation leaves the
// ledger untouched.
var (
	ErrInvalidKind         = errors.New("invalid contribution kind")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrOutOfStock          = errors.New("reward out of stock")
	ErrUnknownEntity       = errors.New("unknown entity")
	ErrAlreadyExists       = errors.New("already exists")

	// ErrSpinBelowRedeemed accompanies ErrInsufficientCredits when the student
	// holds SpinCost credits but a spin would leave total below redeemed.
	ErrSpinBelowRedeemed = errors.New("spin would drop total below redeemed")
)
