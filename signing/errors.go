package signing

import "errors"

var (
	// ErrUnknownSecret is returned for a secret name outside the fixed set.
	ErrUnknownSecret = errors.New("signing: unknown secret name")

	// ErrUnknownProvider is returned when a layout references a provider
	// instance that does not exist.
	ErrUnknownProvider = errors.New("signing: unknown provider")

	// ErrEmptyChain is returned when a layout gives a secret no sources.
	ErrEmptyChain = errors.New("signing: empty provider chain")
)
