package secret

import (
	"context"
	"os"
)

// EnvProvider reads values from the process environment on every lookup.
//
// A variable that is set to the empty string is present.
type EnvProvider struct {
	name string
}

// NewEnvProvider creates an environment provider named "env".
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{name: KindEnv}
}

func (p *EnvProvider) Name() string { return p.name }

// Lookup reports the variable named key.
func (p *EnvProvider) Lookup(_ context.Context, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	return os.LookupEnv(key)
}

func (p *EnvProvider) Close() error { return nil }
