package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DotenvProvider serves keys from a .env file without touching the process
// environment. Load semantics match PropertiesProvider.
type DotenvProvider struct {
	name   string
	path   string
	values map[string]string
	err    error
}

// LoadDotenv reads and parses path once.
func LoadDotenv(path string) *DotenvProvider {
	p := &DotenvProvider{name: KindDotenv, path: path}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.err = fmt.Errorf("stat dotenv %q: %w", path, err)
		}
		return p
	}

	values, err := godotenv.Read(path)
	if err != nil {
		p.err = fmt.Errorf("parse dotenv %q: %w", path, err)
		return p
	}
	p.values = values
	return p
}

func (p *DotenvProvider) Name() string { return p.name }

// Path returns the file path the provider was loaded from.
func (p *DotenvProvider) Path() string { return p.path }

// Loaded reports whether the file existed and parsed cleanly.
func (p *DotenvProvider) Loaded() bool { return p.values != nil }

// Err returns the read or parse failure, if any.
func (p *DotenvProvider) Err() error { return p.err }

func (p *DotenvProvider) Lookup(_ context.Context, key string) (string, bool) {
	if p.values == nil || key == "" {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

func (p *DotenvProvider) Close() error { return nil }
