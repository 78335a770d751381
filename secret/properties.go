package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/magiconair/properties"
)

// PropertiesProvider serves keys from a Java properties file.
//
// The file is read and parsed once, when the provider is created. A missing
// file yields an empty provider. A file that cannot be read or parsed also
// yields an empty provider; the failure is kept and reported by Err.
type PropertiesProvider struct {
	name   string
	path   string
	props  *properties.Properties
	loaded bool
	err    error
}

// LoadProperties reads path and returns a provider over its contents.
//
// The file is decoded as ISO-8859-1 with \u escapes, like java.util.Properties,
// and ${...} references are kept verbatim.
func LoadProperties(path string) *PropertiesProvider {
	p := &PropertiesProvider{name: KindProperties, path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.err = fmt.Errorf("read properties %q: %w", path, err)
		}
		return p
	}

	loader := &properties.Loader{
		Encoding:         properties.ISO_8859_1,
		DisableExpansion: true,
	}
	props, err := loader.LoadBytes(data)
	if err != nil {
		// A half-parsed file is treated as no file at all.
		p.err = fmt.Errorf("parse properties %q: %w", path, err)
		return p
	}

	p.props = props
	p.loaded = true
	return p
}

func (p *PropertiesProvider) Name() string { return p.name }

// Path returns the file path the provider was loaded from.
func (p *PropertiesProvider) Path() string { return p.path }

// Loaded reports whether the file existed and parsed cleanly.
func (p *PropertiesProvider) Loaded() bool { return p.loaded }

// Err returns the read or parse failure, if any. A missing file is not an error.
func (p *PropertiesProvider) Err() error { return p.err }

// Lookup returns the property named key.
func (p *PropertiesProvider) Lookup(_ context.Context, key string) (string, bool) {
	if !p.loaded || key == "" {
		return "", false
	}
	return p.props.Get(key)
}

// Keys returns the property keys in file order.
func (p *PropertiesProvider) Keys() []string {
	if !p.loaded {
		return nil
	}
	return p.props.Keys()
}

func (p *PropertiesProvider) Close() error { return nil }
