package secret

import "context"

// Provider looks up secret values by key.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	// Name identifies the provider in chains, logs and metrics.
	Name() string

	// Lookup returns the value for key and whether it is present.
	// A present key may carry an empty value.
	Lookup(ctx context.Context, key string) (string, bool)

	Close() error
}

// Built-in provider kinds.
const (
	KindEnv        = "env"
	KindProperties = "properties"
	KindDotenv     = "dotenv"
)
